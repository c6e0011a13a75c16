package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetapp/internal/crypto"
	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
	"budgetapp/internal/models"
	"budgetapp/internal/plaid"
)

// Per-account outcome of a sync or balance refresh.
const (
	AccountStatusSucceeded = "succeeded"
	AccountStatusFailed    = "failed"
)

// AccountRefreshResult is the outcome of refreshing one account's balances.
type AccountRefreshResult struct {
	LinkedAccountID string `json:"linked_account_id"`
	InstitutionName string `json:"institution_name,omitempty"`
	Status          string `json:"status"`
	ErrorCode       string `json:"error_code,omitempty"`
	Error           string `json:"error,omitempty"`
}

// RefreshResult reports a balance refresh across a user's accounts.
type RefreshResult struct {
	Accounts []AccountRefreshResult `json:"accounts"`
}

// linkedAccountService manages aggregation connections and their sealed
// credentials.
type linkedAccountService struct {
	db     *gorm.DB
	client AggregationClient
	sealer *crypto.Sealer
	log    *zap.SugaredLogger
}

// NewLinkedAccountService creates a new LinkedAccountServicer.
func NewLinkedAccountService(db *gorm.DB, client AggregationClient, sealer *crypto.Sealer) LinkedAccountServicer {
	return &linkedAccountService{
		db:     db,
		client: client,
		sealer: sealer,
		log:    logger.Named("linked_accounts"),
	}
}

// credentialContext binds a sealed credential to its owner and item, so a
// ciphertext copied onto another row does not open.
func credentialContext(userID, itemID string) string {
	return userID + ":" + itemID
}

// CreateLinkToken asks the provider for a short-lived Link token. Provider
// failures are returned as-is without retry.
func (s *linkedAccountService) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	resp, err := s.client.CreateLinkToken(ctx, userID)
	if err != nil {
		return "", translateUpstream(err)
	}
	return resp.LinkToken, nil
}

// LinkAccount exchanges a public token and stores the sealed credential.
// Exchanging again for the same item replaces the credential in place.
func (s *linkedAccountService) LinkAccount(ctx context.Context, userID, publicToken string) (*models.LinkedAccount, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if publicToken == "" {
		return nil, apperrors.WithFields(
			apperrors.WithMessage(apperrors.ErrValidation, "Missing public token"),
			map[string][]string{"public_token": {msgRequired}},
		)
	}

	exchange, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, translateUpstream(err)
	}

	sealed, err := s.sealer.Seal(exchange.AccessToken, credentialContext(userID, exchange.ItemID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account := &models.LinkedAccount{
		UserID:                userID,
		ItemID:                exchange.ItemID,
		AccessTokenCiphertext: sealed,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token_ciphertext", "updated_at"}),
	}).Create(account).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// On conflict the generated ID was discarded, so read the stored row into a
	// fresh value; the preset ID would otherwise be added to the lookup.
	var stored models.LinkedAccount
	if err := s.db.Where("user_id = ? AND item_id = ?", userID, exchange.ItemID).First(&stored).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.enrich(ctx, &stored, exchange.AccessToken)
	return &stored, nil
}

// enrich fills display labels and balances. Failures only cost the labels.
func (s *linkedAccountService) enrich(ctx context.Context, account *models.LinkedAccount, accessToken string) {
	resp, err := s.client.GetAccounts(ctx, accessToken)
	if err != nil {
		s.log.Warnw("account enrichment failed", "linked_account_id", account.ID, "error", err)
		return
	}

	updates := map[string]interface{}{}
	if len(resp.Accounts) > 0 {
		first := resp.Accounts[0]
		updates["account_name"] = first.Name
		updates["account_type"] = first.Type
		updates["mask"] = first.Mask
		updates["current_balance"] = first.Balances.Current
		updates["available_balance"] = first.Balances.Available
		updates["credit_limit"] = first.Balances.Limit

		account.AccountName = first.Name
		account.AccountType = first.Type
		account.Mask = first.Mask
		account.CurrentBalance = first.Balances.Current
		account.AvailableBalance = first.Balances.Available
		account.CreditLimit = first.Balances.Limit
	}

	if id := resp.Item.InstitutionID; id != "" {
		updates["institution_id"] = id
		account.InstitutionID = id
		if inst, err := s.client.GetInstitution(ctx, id); err != nil {
			s.log.Warnw("institution lookup failed", "linked_account_id", account.ID, "institution_id", id, "error", err)
		} else {
			updates["institution_name"] = inst.Name
			account.InstitutionName = inst.Name
		}
	}

	if len(updates) == 0 {
		return
	}
	if err := s.db.Model(&models.LinkedAccount{}).Where("id = ?", account.ID).Updates(updates).Error; err != nil {
		s.log.Warnw("failed to store account labels", "linked_account_id", account.ID, "error", err)
	}
}

// ListForUser returns every linked account owned by userID.
func (s *linkedAccountService) ListForUser(userID string) ([]models.LinkedAccount, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var accounts []models.LinkedAccount
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetForUser returns one linked account, NotFound when it belongs to someone else.
func (s *linkedAccountService) GetForUser(userID, accountID string) (*models.LinkedAccount, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var account models.LinkedAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkedAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// ListUserIDsWithAccounts returns every user that has at least one linked account.
func (s *linkedAccountService) ListUserIDsWithAccounts() ([]string, error) {
	var ids []string
	if err := s.db.Model(&models.LinkedAccount{}).Distinct("user_id").Order("user_id").Pluck("user_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

// UpdateSyncMetadata stamps the last sync time and, when given, the cached
// balances. Last write wins.
func (s *linkedAccountService) UpdateSyncMetadata(accountID string, syncedAt time.Time, balances *models.Balances) error {
	updates := map[string]interface{}{"last_synced": syncedAt}
	if balances != nil {
		updates["current_balance"] = balances.Current
		updates["available_balance"] = balances.Available
		updates["credit_limit"] = balances.Limit
	}
	res := s.db.Model(&models.LinkedAccount{}).Where("id = ?", accountID).Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrLinkedAccountNotFound
	}
	return nil
}

// RefreshBalances re-reads balances for each of the user's accounts. One
// account failing does not stop the others.
func (s *linkedAccountService) RefreshBalances(ctx context.Context, userID string) (*RefreshResult, error) {
	accounts, err := s.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperrors.ErrNoLinkedAccounts
	}

	result := &RefreshResult{Accounts: make([]AccountRefreshResult, 0, len(accounts))}
	for i := range accounts {
		account := &accounts[i]
		entry := AccountRefreshResult{
			LinkedAccountID: account.ID,
			InstitutionName: account.InstitutionName,
			Status:          AccountStatusSucceeded,
		}

		if err := s.refreshOne(ctx, account); err != nil {
			appErr := translateUpstream(err)
			entry.Status = AccountStatusFailed
			entry.ErrorCode = appErr.Code
			entry.Error = appErr.Message
			s.log.Warnw("balance refresh failed",
				"user_id", userID,
				"linked_account_id", account.ID,
				"code", appErr.Code,
				"error", err,
			)
		}
		result.Accounts = append(result.Accounts, entry)
	}
	return result, nil
}

func (s *linkedAccountService) refreshOne(ctx context.Context, account *models.LinkedAccount) error {
	token, err := s.Credential(account)
	if err != nil {
		return err
	}
	resp, err := s.client.GetAccounts(ctx, token)
	if err != nil {
		return err
	}
	var balances *models.Balances
	if len(resp.Accounts) > 0 {
		balances = balancesFrom(resp.Accounts[0])
	}
	return s.storeBalances(account.ID, balances)
}

// storeBalances writes balances without touching last_synced.
func (s *linkedAccountService) storeBalances(accountID string, balances *models.Balances) error {
	if balances == nil {
		return nil
	}
	err := s.db.Model(&models.LinkedAccount{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"current_balance":   balances.Current,
		"available_balance": balances.Available,
		"credit_limit":      balances.Limit,
	}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Credential unseals the account's access token.
func (s *linkedAccountService) Credential(account *models.LinkedAccount) (string, error) {
	token, err := s.sealer.Open(account.AccessTokenCiphertext, credentialContext(account.UserID, account.ItemID))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidCredential, err)
	}
	return token, nil
}

func balancesFrom(a plaid.Account) *models.Balances {
	return &models.Balances{
		Current:   a.Balances.Current,
		Available: a.Balances.Available,
		Limit:     a.Balances.Limit,
	}
}

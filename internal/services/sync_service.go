package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
	"budgetapp/internal/models"
	"budgetapp/internal/plaid"
)

// LookbackDays is the fixed window a reconciliation run requests.
const LookbackDays = 30

const transactionLockStripes = 64

var errSkipRecord = errors.New("remote record skipped")

// upsertColumns are overwritten when a transaction identifier already exists.
var upsertColumns = []string{
	"linked_account_id", "user_id", "amount", "date", "name", "category", "payment_channel", "updated_at",
}

// SyncOptions tunes a reconciliation engine.
type SyncOptions struct {
	// Concurrency is how many accounts are reconciled at once.
	Concurrency int
	// MaxAttempts bounds fetch attempts per account when rate limited.
	MaxAttempts int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// AccountSyncResult is the outcome of reconciling one linked account.
type AccountSyncResult struct {
	LinkedAccountID string `json:"linked_account_id"`
	InstitutionName string `json:"institution_name,omitempty"`
	Status          string `json:"status"`
	Created         int    `json:"created"`
	Updated         int    `json:"updated"`
	Skipped         int    `json:"skipped"`
	ErrorCode       string `json:"error_code,omitempty"`
	Error           string `json:"error,omitempty"`
}

// SyncResult reports one reconciliation run for a user.
type SyncResult struct {
	Created  int                 `json:"created"`
	Updated  int                 `json:"updated"`
	Skipped  int                 `json:"skipped"`
	Accounts []AccountSyncResult `json:"accounts"`
}

// Failed returns how many accounts could not be reconciled.
func (r *SyncResult) Failed() int {
	n := 0
	for _, a := range r.Accounts {
		if a.Status == AccountStatusFailed {
			n++
		}
	}
	return n
}

// AllFailed reports whether no account was reconciled.
func (r *SyncResult) AllFailed() bool {
	return len(r.Accounts) > 0 && r.Failed() == len(r.Accounts)
}

// UserSyncError records a user whose run could not start.
type UserSyncError struct {
	UserID    string `json:"user_id"`
	ErrorCode string `json:"error_code"`
	Error     string `json:"error"`
}

// BatchSyncResult reports a reconciliation pass over every user.
type BatchSyncResult struct {
	Users          int             `json:"users"`
	Created        int             `json:"created"`
	Updated        int             `json:"updated"`
	Skipped        int             `json:"skipped"`
	FailedAccounts int             `json:"failed_accounts"`
	Errors         []UserSyncError `json:"errors,omitempty"`
}

// syncService reconciles remote transactions into the local store.
type syncService struct {
	db       *gorm.DB
	accounts LinkedAccountServicer
	client   AggregationClient
	opts     SyncOptions
	locks    *keyLocks
	log      *zap.SugaredLogger
}

// NewSyncService creates a new SyncServicer.
func NewSyncService(db *gorm.DB, accounts LinkedAccountServicer, client AggregationClient, opts SyncOptions) SyncServicer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &syncService{
		db:       db,
		accounts: accounts,
		client:   client,
		opts:     opts,
		locks:    newKeyLocks(transactionLockStripes),
		log:      logger.Named("sync"),
	}
}

// SyncUserTransactions pulls the lookback window from every linked account
// of userID and upserts it by provider transaction identifier. A failing
// account is recorded in the result and never stops the others. The run
// ignores cancellation of ctx so every account reaches an outcome.
func (s *syncService) SyncUserTransactions(ctx context.Context, userID string) (*SyncResult, error) {
	accounts, err := s.accounts.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperrors.ErrNoLinkedAccounts
	}

	ctx = context.WithoutCancel(ctx)
	now := s.opts.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -LookbackDays)

	results := make([]AccountSyncResult, len(accounts))
	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for i := range accounts {
		i := i
		g.Go(func() error {
			results[i] = s.syncAccount(ctx, &accounts[i], start, end)
			return nil
		})
	}
	_ = g.Wait()

	result := &SyncResult{Accounts: results}
	for _, r := range results {
		result.Created += r.Created
		result.Updated += r.Updated
		result.Skipped += r.Skipped
	}

	s.log.Infow("reconciliation finished",
		"user_id", userID,
		"accounts", len(results),
		"failed_accounts", result.Failed(),
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	return result, nil
}

// syncAccount reconciles a single linked account. It never returns an error;
// failures are reported in the result.
func (s *syncService) syncAccount(ctx context.Context, account *models.LinkedAccount, start, end time.Time) AccountSyncResult {
	res := AccountSyncResult{
		LinkedAccountID: account.ID,
		InstitutionName: account.InstitutionName,
	}

	fail := func(err error) AccountSyncResult {
		appErr := translateUpstream(err)
		res.Status = AccountStatusFailed
		res.ErrorCode = appErr.Code
		res.Error = appErr.Message
		s.log.Warnw("account reconciliation failed",
			"user_id", account.UserID,
			"linked_account_id", account.ID,
			"code", appErr.Code,
			"error", err,
		)
		return res
	}

	token, err := s.accounts.Credential(account)
	if err != nil {
		return fail(err)
	}

	remote, err := s.fetchWithRetry(ctx, token, start, end)
	if err != nil {
		return fail(err)
	}

	for _, rt := range remote.Transactions {
		created, err := s.upsertTransaction(account, rt)
		switch {
		case errors.Is(err, errSkipRecord):
			res.Skipped++
		case err != nil:
			res.Skipped++
			s.log.Errorw("failed to store transaction",
				"linked_account_id", account.ID,
				"transaction_id", rt.TransactionID,
				"error", err,
			)
		case created:
			res.Created++
		default:
			res.Updated++
		}
	}

	var balances *models.Balances
	if len(remote.Accounts) > 0 {
		balances = balancesFrom(remote.Accounts[0])
	}
	if err := s.accounts.UpdateSyncMetadata(account.ID, s.opts.Now(), balances); err != nil {
		s.log.Warnw("failed to update sync metadata", "linked_account_id", account.ID, "error", err)
	}

	res.Status = AccountStatusSucceeded
	return res
}

// fetchWithRetry retries only rate-limit failures, doubling the delay each time.
func (s *syncService) fetchWithRetry(ctx context.Context, token string, start, end time.Time) (*plaid.TransactionsResult, error) {
	delay := s.opts.RetryBaseDelay
	for attempt := 1; ; attempt++ {
		remote, err := s.client.GetTransactions(ctx, token, start, end)
		if err == nil {
			return remote, nil
		}
		if !errors.Is(err, plaid.ErrRateLimited) || attempt >= s.opts.MaxAttempts {
			return nil, err
		}

		s.log.Infow("rate limited, backing off", "attempt", attempt, "delay", delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
		delay *= 2
	}
}

// upsertTransaction writes one remote record keyed by its transaction
// identifier and reports whether a new row was created.
func (s *syncService) upsertTransaction(account *models.LinkedAccount, rt plaid.Transaction) (bool, error) {
	if rt.TransactionID == "" {
		return false, errSkipRecord
	}
	date, err := plaid.ParseDate(rt.Date)
	if err != nil {
		return false, fmt.Errorf("%w: bad date %q", errSkipRecord, rt.Date)
	}

	row := &models.Transaction{
		LinkedAccountID: account.ID,
		UserID:          account.UserID,
		TransactionID:   rt.TransactionID,
		Amount:          rt.Amount.Round(2),
		Date:            datatypes.Date(date),
		Name:            displayName(rt),
		Category:        categoryOf(rt),
		PaymentChannel:  rt.PaymentChannel,
	}

	unlock := s.locks.Lock(rt.TransactionID)
	defer unlock()

	var existing int64
	if err := s.db.Model(&models.Transaction{}).Where("transaction_id = ?", rt.TransactionID).Count(&existing).Error; err != nil {
		return false, err
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(row).Error
	if err != nil {
		return false, err
	}
	return existing == 0, nil
}

// categoryOf takes the provider's top-level category.
func categoryOf(rt plaid.Transaction) string {
	if len(rt.Category) > 0 && rt.Category[0] != "" {
		return rt.Category[0]
	}
	return models.UncategorizedCategory
}

func displayName(rt plaid.Transaction) string {
	if rt.Name != "" {
		return rt.Name
	}
	return rt.MerchantName
}

// SyncAllUsers runs a reconciliation for every user with linked accounts,
// one user at a time.
func (s *syncService) SyncAllUsers(ctx context.Context) (*BatchSyncResult, error) {
	userIDs, err := s.accounts.ListUserIDsWithAccounts()
	if err != nil {
		return nil, err
	}

	batch := &BatchSyncResult{Users: len(userIDs)}
	for _, userID := range userIDs {
		res, err := s.SyncUserTransactions(ctx, userID)
		if err != nil {
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			batch.Errors = append(batch.Errors, UserSyncError{UserID: userID, ErrorCode: appErr.Code, Error: appErr.Message})
			s.log.Errorw("user reconciliation failed", "user_id", userID, "error", err)
			continue
		}
		batch.Created += res.Created
		batch.Updated += res.Updated
		batch.Skipped += res.Skipped
		batch.FailedAccounts += res.Failed()
	}
	return batch, nil
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetapp/internal/models"
	"budgetapp/internal/services"
)

// AccountHandler handles linked account requests.
type AccountHandler struct {
	accountService services.LinkedAccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.LinkedAccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// LinkedAccountResponse is the outward representation of a linked account.
// The access credential is never part of it.
type LinkedAccountResponse struct {
	ID               string     `json:"id"`
	ItemID           string     `json:"item_id"`
	InstitutionName  string     `json:"institution_name"`
	AccountName      string     `json:"account_name"`
	AccountType      string     `json:"account_type"`
	Mask             string     `json:"mask"`
	CurrentBalance   *string    `json:"current_balance"`
	AvailableBalance *string    `json:"available_balance"`
	CreditLimit      *string    `json:"credit_limit"`
	LastSynced       *time.Time `json:"last_synced"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toLinkedAccountResponse(a *models.LinkedAccount) LinkedAccountResponse {
	return LinkedAccountResponse{
		ID:               a.ID,
		ItemID:           a.ItemID,
		InstitutionName:  a.InstitutionName,
		AccountName:      a.AccountName,
		AccountType:      a.AccountType,
		Mask:             a.Mask,
		CurrentBalance:   money(a.CurrentBalance),
		AvailableBalance: money(a.AvailableBalance),
		CreditLimit:      money(a.CreditLimit),
		LastSynced:       a.LastSynced,
		CreatedAt:        a.CreatedAt,
	}
}

func money(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

// ListAccounts returns the caller's linked accounts
// @Summary     List linked accounts
// @Description List the authenticated user's linked bank accounts with cached balances
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  LinkedAccountResponse "Linked accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.accountService.ListForUser(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]LinkedAccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toLinkedAccountResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshBalances re-reads balances from the bank data provider
// @Summary     Refresh balances
// @Description Refresh cached balances for each linked account. One account failing does not stop the others.
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.RefreshResult "Per-account outcome"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No linked accounts"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/refresh-balances [post]
func (h *AccountHandler) RefreshBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accountService.RefreshBalances(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionRefreshBalances, "linked_account", "", c.ClientIP(), nil)

	c.JSON(http.StatusOK, result)
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetapp/internal/services"
)

// PlaidHandler handles account linking and reconciliation requests.
type PlaidHandler struct {
	accountService services.LinkedAccountServicer
	syncService    services.SyncServicer
	auditService   services.AuditServicer
}

// NewPlaidHandler creates a new PlaidHandler.
func NewPlaidHandler(accountService services.LinkedAccountServicer, syncService services.SyncServicer, auditService services.AuditServicer) *PlaidHandler {
	return &PlaidHandler{accountService: accountService, syncService: syncService, auditService: auditService}
}

// LinkTokenResponse carries a short-lived Link token.
type LinkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// ExchangeTokenRequest carries the public token returned by Plaid Link.
type ExchangeTokenRequest struct {
	PublicToken string `json:"public_token"`
}

// ExchangeTokenResponse confirms a linked account.
type ExchangeTokenResponse struct {
	Success bool                  `json:"success"`
	Account LinkedAccountResponse `json:"account"`
}

// SyncResponse reports a reconciliation run. Success is false only when
// every account failed.
type SyncResponse struct {
	Success  bool                         `json:"success"`
	Message  string                       `json:"message"`
	Created  int                          `json:"created"`
	Updated  int                          `json:"updated"`
	Skipped  int                          `json:"skipped"`
	Failed   int                          `json:"failed"`
	Accounts []services.AccountSyncResult `json:"accounts"`
}

// CreateLinkToken issues a Link token for the caller
// @Summary     Create a Link token
// @Description Request a short-lived token used to open Plaid Link in the client
// @Tags        plaid
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} LinkTokenResponse "Link token"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Bank data provider failure"
// @Router      /link-token [post]
func (h *PlaidHandler) CreateLinkToken(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := h.accountService.CreateLinkToken(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, LinkTokenResponse{LinkToken: token})
}

// ExchangeToken links a bank connection
// @Summary     Exchange a public token
// @Description Exchange the Plaid Link public token for a stored, encrypted access credential. Exchanging again for the same item refreshes the credential.
// @Tags        plaid
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExchangeTokenRequest true "Public token"
// @Success     200 {object} ExchangeTokenResponse "Account linked"
// @Failure     400 {object} ErrorResponse "Missing or invalid public token"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Bank data provider failure"
// @Router      /exchange-token [post]
func (h *PlaidHandler) ExchangeToken(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExchangeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.accountService.LinkAccount(c.Request.Context(), userID, req.PublicToken)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionLinkAccount, "linked_account", account.ID, c.ClientIP(),
		map[string]interface{}{"institution_name": account.InstitutionName})

	c.JSON(http.StatusOK, ExchangeTokenResponse{Success: true, Account: toLinkedAccountResponse(account)})
}

// SyncTransactions reconciles the caller's linked accounts
// @Summary     Sync transactions
// @Description Pull the last 30 days of transactions from every linked account and merge them by provider transaction ID. Each account reports its own outcome.
// @Tags        plaid
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SyncResponse "Run summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No linked accounts"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sync-transactions [post]
func (h *PlaidHandler) SyncTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.syncService.SyncUserTransactions(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionSyncTransactions, "transaction", "", c.ClientIP(),
		map[string]interface{}{"created": result.Created, "updated": result.Updated, "failed_accounts": result.Failed()})

	c.JSON(http.StatusOK, newSyncResponse(result))
}

func newSyncResponse(result *services.SyncResult) SyncResponse {
	failed := result.Failed()
	msg := fmt.Sprintf("Synced %d new transactions", result.Created)
	switch {
	case result.AllFailed():
		msg = fmt.Sprintf("Sync failed for all %d linked accounts", failed)
	case failed > 0:
		msg = fmt.Sprintf("%s; %d of %d linked accounts failed", msg, failed, len(result.Accounts))
	}
	return SyncResponse{
		Success:  !result.AllFailed(),
		Message:  msg,
		Created:  result.Created,
		Updated:  result.Updated,
		Skipped:  result.Skipped,
		Failed:   failed,
		Accounts: result.Accounts,
	}
}

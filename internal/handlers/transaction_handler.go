package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
	"budgetapp/internal/pagination"
	"budgetapp/internal/services"
	"budgetapp/internal/validator"
)

// unknownInstitution labels transactions whose account has no institution name.
const unknownInstitution = "Unknown Bank"

// TransactionHandler handles reconciled transaction reads.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionResponse represents a transaction in the response
type TransactionResponse struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transaction_id"`
	LinkedAccountID string    `json:"linked_account_id"`
	InstitutionName string    `json:"institution_name"`
	Amount          string    `json:"amount"`
	Date            string    `json:"date"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	PaymentChannel  string    `json:"payment_channel"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		TransactionID:   t.TransactionID,
		LinkedAccountID: t.LinkedAccountID,
		InstitutionName: institutionName(t),
		Amount:          t.Amount.StringFixed(2),
		Date:            formatDate(time.Time(t.Date)),
		Name:            t.Name,
		Category:        t.Category,
		PaymentChannel:  t.PaymentChannel,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func institutionName(t *models.Transaction) string {
	if t.LinkedAccount == nil || t.LinkedAccount.InstitutionName == "" {
		return unknownInstitution
	}
	return t.LinkedAccount.InstitutionName
}

func formatDate(t time.Time) string {
	return t.UTC().Format(validator.DateLayout)
}

// ListTransactions returns the caller's transactions
// @Summary     List transactions
// @Description List reconciled transactions newest first. Totals are returned in the X-Total-Count header.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query string false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 50, max 500)"
// @Param       account_id query string false "Filter by linked account ID"
// @Param       from       query string false "Earliest date (YYYY-MM-DD)"
// @Param       to         query string false "Latest date (YYYY-MM-DD)"
// @Success     200 {array}  TransactionResponse "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListForUser(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]TransactionResponse, 0, len(result.Data))
	for i := range result.Data {
		resp = append(resp, toTransactionResponse(&result.Data[i]))
	}

	c.Header("X-Total-Count", strconv.FormatInt(result.TotalItems, 10))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.JSON(http.StatusOK, resp)
}

// ExportTransactions downloads the caller's transaction history
// @Summary     Export transactions
// @Description Download matching transactions as an XLSX workbook or CSV file
// @Tags        transactions
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce     text/csv
// @Security    BearerAuth
// @Param       format     query string false "xlsx (default) or csv"
// @Param       account_id query string false "Filter by linked account ID"
// @Param       from       query string false "Earliest date (YYYY-MM-DD)"
// @Param       to         query string false "Latest date (YYYY-MM-DD)"
// @Success     200 {file}   file "Export"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	format := c.DefaultQuery("format", exportXLSX)
	if format != exportXLSX && format != exportCSV {
		respondWithError(c, apperrors.WithFields(apperrors.ErrValidation, map[string][]string{
			"format": {`Must be "xlsx" or "csv".`},
		}))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.transactionService.ExportForUser(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if format == exportCSV {
		err = writeCSV(c, rows)
	} else {
		err = writeXLSX(c, rows)
	}
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
	}
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	fields := map[string][]string{}

	if v := c.Query("account_id"); v != "" {
		filter.LinkedAccountID = &v
	}

	if v := c.Query("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			fields["from"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
		} else {
			filter.FromDate = &t
		}
	}

	if v := c.Query("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			fields["to"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
		} else {
			filter.ToDate = &t
		}
	}

	if len(fields) > 0 {
		return filter, apperrors.WithFields(apperrors.ErrValidation, fields)
	}
	return filter, nil
}

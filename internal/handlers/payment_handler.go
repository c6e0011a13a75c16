package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
	"budgetapp/internal/services"
)

// PaymentHandler handles payment CRUD requests.
type PaymentHandler struct {
	paymentService services.PaymentServicer
	auditService   services.AuditServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer, auditService services.AuditServicer) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, auditService: auditService}
}

// amountField accepts a JSON number or a numeric string.
type amountField struct {
	decimal.Decimal
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	if err := a.Decimal.UnmarshalJSON(b); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(float64(0))}
	}
	return nil
}

// nullableDate tells an absent paidDate apart from an explicit null.
type nullableDate struct {
	Set   bool
	Value *string
}

func (d *nullableDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(s)}
	}
	d.Value = &s
	return nil
}

// PaymentRequest is the body of create, update and partial update.
// Omitted fields are left as they are.
type PaymentRequest struct {
	Recipient   *string      `json:"recipient"`
	Amount      *amountField `json:"amount" swaggertype:"string" example:"120.50"`
	DueDate     *string      `json:"dueDate" binding:"omitempty,datetime=2006-01-02" example:"2026-05-01"`
	PaidDate    nullableDate `json:"paidDate" swaggertype:"string" example:"2026-04-28"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Status      *string      `json:"status" binding:"omitempty,payment_status" enums:"pending,paid,missed"`
	IsRecurring *bool        `json:"isRecurring"`
	Frequency   *string      `json:"frequency" binding:"omitempty,payment_frequency" enums:"weekly,biweekly,monthly,quarterly,annually"`
}

// PaymentResponse represents a payment in the response
type PaymentResponse struct {
	ID          string    `json:"id"`
	Recipient   string    `json:"recipient"`
	Amount      string    `json:"amount"`
	DueDate     string    `json:"dueDate"`
	PaidDate    *string   `json:"paidDate"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	IsRecurring bool      `json:"isRecurring"`
	Frequency   string    `json:"frequency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPaymentResponse(p *models.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID,
		Recipient:   p.Recipient,
		Amount:      p.Amount.StringFixed(2),
		DueDate:     formatDate(time.Time(p.DueDate)),
		Category:    p.Category,
		Description: p.Description,
		Status:      string(p.Status),
		IsRecurring: p.IsRecurring,
		Frequency:   string(p.Frequency),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.PaidDate != nil {
		s := formatDate(time.Time(*p.PaidDate))
		resp.PaidDate = &s
	}
	return resp
}

// toInput converts the request body into service input, reporting malformed
// dates against their field.
func (r *PaymentRequest) toInput() (services.PaymentInput, error) {
	in := services.PaymentInput{
		Recipient:   r.Recipient,
		Category:    r.Category,
		Description: r.Description,
		IsRecurring: r.IsRecurring,
	}
	fields := map[string][]string{}
	const badDate = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."

	if r.Amount != nil {
		in.Amount = &r.Amount.Decimal
	}
	if r.DueDate != nil {
		t, err := parseDate(*r.DueDate)
		if err != nil {
			fields["dueDate"] = []string{badDate}
		} else {
			in.DueDate = &t
		}
	}
	if r.PaidDate.Set {
		if r.PaidDate.Value == nil || *r.PaidDate.Value == "" {
			in.ClearPaidDate = true
		} else if t, err := parseDate(*r.PaidDate.Value); err != nil {
			fields["paidDate"] = []string{badDate}
		} else {
			in.PaidDate = &t
		}
	}
	if r.Status != nil {
		s := models.PaymentStatus(*r.Status)
		in.Status = &s
	}
	if r.Frequency != nil {
		f := models.PaymentFrequency(*r.Frequency)
		in.Frequency = &f
	}

	if len(fields) > 0 {
		return in, apperrors.WithFields(apperrors.ErrValidation, fields)
	}
	return in, nil
}

func bindPayment(c *gin.Context) (services.PaymentInput, error) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.PaymentInput{}, bindError(err)
	}
	return req.toInput()
}

func paymentChanges(p *models.Payment) map[string]interface{} {
	return map[string]interface{}{
		"recipient": p.Recipient,
		"amount":    p.Amount.StringFixed(2),
		"status":    string(p.Status),
		"due_date":  formatDate(time.Time(p.DueDate)),
	}
}

// ListPayments returns the caller's payments
// @Summary     List payments
// @Description List the authenticated user's payments ordered by due date
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  PaymentResponse "Payments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payments, err := h.paymentService.ListForUser(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, toPaymentResponse(&payments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePayment creates a payment
// @Summary     Create a payment
// @Description Create a bill. Status defaults to pending and frequency to monthly.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PaymentRequest true "Payment details"
// @Success     201 {object} PaymentResponse "Payment created"
// @Failure     400 {object} ErrorResponse "Validation error"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in, err := bindPayment(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.Create(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreatePayment, "payment", payment.ID, c.ClientIP(), paymentChanges(payment))

	c.JSON(http.StatusCreated, toPaymentResponse(payment))
}

// GetPayment returns one payment
// @Summary     Get payment
// @Description Get one of the caller's payments
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Param       id  path     string true "Payment ID"
// @Success     200 {object} PaymentResponse "Payment"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id", apperrors.ErrPaymentNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.GetForUser(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

// UpdatePayment replaces a payment
// @Summary     Update payment
// @Description Update a payment. recipient, amount, dueDate and category are required.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Payment ID"
// @Param       request body PaymentRequest true "Payment details"
// @Success     200 {object} PaymentResponse "Payment updated"
// @Failure     400 {object} ErrorResponse "Validation error"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	h.save(c, h.paymentService.Update)
}

// PatchPayment partially updates a payment
// @Summary     Partially update payment
// @Description Update only the supplied fields of a payment. Send "paidDate": null to clear the paid date.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Payment ID"
// @Param       request body PaymentRequest true "Fields to change"
// @Success     200 {object} PaymentResponse "Payment updated"
// @Failure     400 {object} ErrorResponse "Validation error"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments/{id} [patch]
func (h *PaymentHandler) PatchPayment(c *gin.Context) {
	h.save(c, h.paymentService.Patch)
}

func (h *PaymentHandler) save(c *gin.Context, apply func(userID, paymentID string, in services.PaymentInput) (*models.Payment, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id", apperrors.ErrPaymentNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in, err := bindPayment(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := apply(userID, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionUpdatePayment, "payment", payment.ID, c.ClientIP(), paymentChanges(payment))

	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

// DeletePayment deletes a payment
// @Summary     Delete payment
// @Description Delete one of the caller's payments
// @Tags        payments
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     204 "Payment deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id", apperrors.ErrPaymentNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.paymentService.Delete(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDeletePayment, "payment", id, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

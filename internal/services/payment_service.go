package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
)

const (
	maxRecipientLength = 255
	maxCategoryLength  = 100
	maxAmountDigits    = 10
	amountPlaces       = 2

	msgAmountPositive = "Amount must be a positive number"
)

// paymentService handles user-owned bill records.
type paymentService struct {
	db *gorm.DB
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB) PaymentServicer {
	return &paymentService{db: db}
}

// ListForUser returns the caller's payments ordered by due date.
func (s *paymentService) ListForUser(userID string) ([]models.Payment, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var payments []models.Payment
	if err := s.db.Where("user_id = ?", userID).Order("due_date ASC, created_at ASC").Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payments, nil
}

// Create validates and stores a new payment. Status defaults to pending and
// frequency to monthly.
func (s *paymentService) Create(userID string, in PaymentInput) (*models.Payment, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := validatePayment(in, true); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:    userID,
		Status:    models.PaymentStatusPending,
		Frequency: models.FrequencyMonthly,
	}
	applyPayment(payment, in)

	if err := s.db.Create(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// GetForUser returns one payment. A payment owned by someone else is
// indistinguishable from a missing one.
func (s *paymentService) GetForUser(userID, paymentID string) (*models.Payment, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var payment models.Payment
	if err := s.db.Where("id = ? AND user_id = ?", paymentID, userID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payment, nil
}

// Update handles a full update (PUT): the mandatory fields must be supplied.
func (s *paymentService) Update(userID, paymentID string, in PaymentInput) (*models.Payment, error) {
	return s.save(userID, paymentID, in, true)
}

// Patch applies only the supplied fields.
func (s *paymentService) Patch(userID, paymentID string, in PaymentInput) (*models.Payment, error) {
	return s.save(userID, paymentID, in, false)
}

func (s *paymentService) save(userID, paymentID string, in PaymentInput, requireAll bool) (*models.Payment, error) {
	payment, err := s.GetForUser(userID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := validatePayment(in, requireAll); err != nil {
		return nil, err
	}

	applyPayment(payment, in)

	if err := s.db.Save(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// Delete removes a payment owned by userID.
func (s *paymentService) Delete(userID, paymentID string) error {
	if userID == "" {
		return apperrors.ErrUnauthorized
	}
	res := s.db.Where("id = ? AND user_id = ?", paymentID, userID).Delete(&models.Payment{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrPaymentNotFound
	}
	return nil
}

// MarkOverdue moves pending payments whose due date is more than
// policy.GraceDays before today to missed. It runs only when called.
func (s *paymentService) MarkOverdue(today time.Time, policy OverduePolicy) (int64, error) {
	if policy.GraceDays < 0 {
		return 0, apperrors.WithFields(apperrors.ErrValidation, map[string][]string{
			"grace_days": {"Ensure this value is greater than or equal to 0."},
		})
	}
	y, m, d := today.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -policy.GraceDays)

	res := s.db.Model(&models.Payment{}).
		Where("status = ? AND due_date < ?", models.PaymentStatusPending, datatypes.Date(cutoff)).
		Updates(map[string]interface{}{"status": models.PaymentStatusMissed, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// validatePayment checks supplied fields; with required set, the mandatory
// fields must be present too.
func validatePayment(in PaymentInput, required bool) error {
	fields := map[string][]string{}
	add := func(field, msg string) {
		fields[field] = append(fields[field], msg)
	}

	if required {
		if in.Recipient == nil || strings.TrimSpace(*in.Recipient) == "" {
			add("recipient", msgRequired)
		}
		if in.Amount == nil {
			add("amount", msgRequired)
		}
		if in.DueDate == nil {
			add("dueDate", msgRequired)
		}
		if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
			add("category", msgRequired)
		}
	} else {
		if in.Recipient != nil && strings.TrimSpace(*in.Recipient) == "" {
			add("recipient", "This field may not be blank.")
		}
		if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
			add("category", "This field may not be blank.")
		}
	}

	if in.Recipient != nil && len([]rune(*in.Recipient)) > maxRecipientLength {
		add("recipient", fmt.Sprintf("Ensure this field has no more than %d characters.", maxRecipientLength))
	}
	if in.Category != nil && len([]rune(*in.Category)) > maxCategoryLength {
		add("category", fmt.Sprintf("Ensure this field has no more than %d characters.", maxCategoryLength))
	}
	if in.Amount != nil {
		for _, msg := range checkAmount(*in.Amount) {
			add("amount", msg)
		}
	}
	if in.Status != nil && !in.Status.IsValid() {
		add("status", fmt.Sprintf("%q is not a valid choice.", string(*in.Status)))
	}
	if in.Frequency != nil && !in.Frequency.IsValid() {
		add("frequency", fmt.Sprintf("%q is not a valid choice.", string(*in.Frequency)))
	}

	if len(fields) > 0 {
		return apperrors.WithFields(apperrors.ErrValidation, fields)
	}
	return nil
}

// checkAmount enforces amount > 0 within numeric(10,2).
func checkAmount(amount decimal.Decimal) []string {
	if !amount.IsPositive() {
		return []string{msgAmountPositive}
	}
	var msgs []string
	if -amount.Exponent() > amountPlaces && !amount.Equal(amount.Round(amountPlaces)) {
		msgs = append(msgs, fmt.Sprintf("Ensure that there are no more than %d decimal places.", amountPlaces))
	}
	if amount.Truncate(0).String() != "0" && len(amount.Truncate(0).String()) > maxAmountDigits-amountPlaces {
		msgs = append(msgs, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxAmountDigits-amountPlaces))
	}
	return msgs
}

// applyPayment copies the supplied fields onto payment.
func applyPayment(payment *models.Payment, in PaymentInput) {
	if in.Recipient != nil {
		payment.Recipient = strings.TrimSpace(*in.Recipient)
	}
	if in.Amount != nil {
		payment.Amount = in.Amount.Round(amountPlaces)
	}
	if in.DueDate != nil {
		payment.DueDate = toDate(*in.DueDate)
	}
	if in.PaidDate != nil {
		d := toDate(*in.PaidDate)
		payment.PaidDate = &d
	} else if in.ClearPaidDate {
		payment.PaidDate = nil
	}
	if in.Category != nil {
		payment.Category = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		payment.Description = *in.Description
	}
	if in.Status != nil {
		payment.Status = *in.Status
	}
	if in.IsRecurring != nil {
		payment.IsRecurring = *in.IsRecurring
	}
	if in.Frequency != nil {
		payment.Frequency = *in.Frequency
	}
}

func toDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

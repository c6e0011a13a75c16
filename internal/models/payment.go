package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentStatus is the lifecycle state of a bill.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusMissed  PaymentStatus = "missed"
)

// PaymentFrequency is how often a recurring bill comes due.
type PaymentFrequency string

const (
	FrequencyWeekly    PaymentFrequency = "weekly"
	FrequencyBiweekly  PaymentFrequency = "biweekly"
	FrequencyMonthly   PaymentFrequency = "monthly"
	FrequencyQuarterly PaymentFrequency = "quarterly"
	FrequencyAnnually  PaymentFrequency = "annually"
)

// ValidPaymentStatuses lists the accepted status values.
var ValidPaymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusMissed}

// ValidPaymentFrequencies lists the accepted frequency values.
var ValidPaymentFrequencies = []PaymentFrequency{
	FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually,
}

// IsValid reports whether s is a known status.
func (s PaymentStatus) IsValid() bool {
	for _, v := range ValidPaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsValid reports whether f is a known frequency.
func (f PaymentFrequency) IsValid() bool {
	for _, v := range ValidPaymentFrequencies {
		if f == v {
			return true
		}
	}
	return false
}

// Payment is a manually entered bill owned by a user.
type Payment struct {
	Base
	UserID      string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Recipient   string           `gorm:"size:255;not null" json:"recipient"`
	Amount      decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"amount"`
	DueDate     datatypes.Date   `gorm:"not null;index" json:"due_date"`
	PaidDate    *datatypes.Date  `json:"paid_date"`
	Category    string           `gorm:"size:100;not null" json:"category"`
	Description string           `gorm:"type:text" json:"description"`
	Status      PaymentStatus    `gorm:"size:20;not null;default:'pending'" json:"status"`
	IsRecurring bool             `gorm:"not null;default:false" json:"is_recurring"`
	Frequency   PaymentFrequency `gorm:"size:20;not null;default:'monthly'" json:"frequency"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

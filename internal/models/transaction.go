package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// UncategorizedCategory is stored when the provider supplies no category.
const UncategorizedCategory = "Uncategorized"

// Transaction mirrors one remote ledger entry. TransactionID is the provider's
// identifier and the only key reconciliation matches on.
type Transaction struct {
	Base
	LinkedAccountID string          `gorm:"type:uuid;not null;index" json:"linked_account_id"`
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	TransactionID   string          `gorm:"uniqueIndex;size:255;not null" json:"transaction_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date            datatypes.Date  `gorm:"not null;index" json:"date"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Category        string          `gorm:"size:255;not null;default:'Uncategorized'" json:"category"`
	PaymentChannel  string          `gorm:"size:50" json:"payment_channel,omitempty"`

	LinkedAccount *LinkedAccount `gorm:"foreignKey:LinkedAccountID;constraint:OnDelete:CASCADE" json:"-"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LinkedAccount is one aggregation connection (a Plaid item) owned by a user.
// The access credential is stored sealed and never serialized.
type LinkedAccount struct {
	Base
	UserID                string              `gorm:"type:uuid;not null;uniqueIndex:idx_linked_accounts_user_item,priority:1" json:"user_id"`
	ItemID                string              `gorm:"not null;uniqueIndex:idx_linked_accounts_user_item,priority:2" json:"item_id"`
	AccessTokenCiphertext string              `gorm:"not null" json:"-"`
	InstitutionID         string              `gorm:"size:64" json:"institution_id,omitempty"`
	InstitutionName       string              `gorm:"size:255" json:"institution_name,omitempty"`
	AccountName           string              `gorm:"size:255" json:"account_name,omitempty"`
	AccountType           string              `gorm:"size:50" json:"account_type,omitempty"`
	Mask                  string              `gorm:"size:10" json:"mask,omitempty"`
	CurrentBalance        decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"current_balance"`
	AvailableBalance      decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"available_balance"`
	CreditLimit           decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"credit_limit"`
	LastSynced            *time.Time          `json:"last_synced"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Balances is the cached balance snapshot written after a sync or refresh.
type Balances struct {
	Current   decimal.NullDecimal
	Available decimal.NullDecimal
	Limit     decimal.NullDecimal
}

package plaid

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format Plaid uses on the wire.
const DateLayout = "2006-01-02"

// FormatDate formats a time as a Plaid date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a Plaid date string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// LinkTokenResponse is the response from /link/token/create.
type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

// ExchangeResponse is the response from /item/public_token/exchange.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// Balances are the balance figures Plaid reports for an account.
type Balances struct {
	Current   decimal.NullDecimal `json:"current"`
	Available decimal.NullDecimal `json:"available"`
	Limit     decimal.NullDecimal `json:"limit"`
	Currency  string              `json:"iso_currency_code"`
}

// Account is a Plaid account.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Mask         string   `json:"mask"`
	Balances     Balances `json:"balances"`
}

// Item describes the connection an access token belongs to.
type Item struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id"`
}

// Transaction is one remote ledger entry. Amount is positive for money
// leaving the account, as Plaid reports it.
type Transaction struct {
	TransactionID  string          `json:"transaction_id"`
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	Name           string          `json:"name"`
	MerchantName   string          `json:"merchant_name"`
	Category       []string        `json:"category"`
	PaymentChannel string          `json:"payment_channel"`
	Pending        bool            `json:"pending"`
}

// AccountsResponse is the response from /accounts/get.
type AccountsResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

// TransactionsPage is one page of /transactions/get.
type TransactionsPage struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
	Item              Item          `json:"item"`
	RequestID         string        `json:"request_id"`
}

// TransactionsResult is every transaction in a date range, collected across pages.
type TransactionsResult struct {
	Accounts     []Account
	Transactions []Transaction
	Item         Item
}

// Institution is a financial institution.
type Institution struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

// InstitutionResponse is the response from /institutions/get_by_id.
type InstitutionResponse struct {
	Institution Institution `json:"institution"`
	RequestID   string      `json:"request_id"`
}

// errorResponse is the error body Plaid returns.
type errorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

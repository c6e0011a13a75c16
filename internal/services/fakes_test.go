package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetapp/internal/plaid"
)

var _ AggregationClient = (*fakeClient)(nil)

// fakeClient serves canned Plaid responses keyed by access token.
type fakeClient struct {
	mu sync.Mutex

	linkToken    string
	linkTokenErr error

	exchanges   map[string]*plaid.ExchangeResponse
	exchangeErr error

	transactions map[string]*plaid.TransactionsResult
	// txErrs is consumed in order per token before transactions are served.
	txErrs map[string][]error

	accounts    map[string]*plaid.AccountsResponse
	accountsErr error

	institutions map[string]string

	txCalls   map[string]int
	lastStart time.Time
	lastEnd   time.Time
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		linkToken:    "link-sandbox-token",
		exchanges:    map[string]*plaid.ExchangeResponse{},
		transactions: map[string]*plaid.TransactionsResult{},
		txErrs:       map[string][]error{},
		accounts:     map[string]*plaid.AccountsResponse{},
		institutions: map[string]string{},
		txCalls:      map[string]int{},
	}
}

func (f *fakeClient) CreateLinkToken(_ context.Context, _ string) (*plaid.LinkTokenResponse, error) {
	if f.linkTokenErr != nil {
		return nil, f.linkTokenErr
	}
	return &plaid.LinkTokenResponse{LinkToken: f.linkToken}, nil
}

func (f *fakeClient) ExchangePublicToken(_ context.Context, publicToken string) (*plaid.ExchangeResponse, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	resp, ok := f.exchanges[publicToken]
	if !ok {
		return nil, plaid.NewAPIError(400, "INVALID_INPUT", "INVALID_PUBLIC_TOKEN", "public token is invalid")
	}
	return resp, nil
}

func (f *fakeClient) GetTransactions(_ context.Context, accessToken string, start, end time.Time) (*plaid.TransactionsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCalls[accessToken]++
	f.lastStart, f.lastEnd = start, end

	if errs := f.txErrs[accessToken]; len(errs) > 0 {
		f.txErrs[accessToken] = errs[1:]
		return nil, errs[0]
	}
	resp, ok := f.transactions[accessToken]
	if !ok {
		return &plaid.TransactionsResult{}, nil
	}
	return resp, nil
}

func (f *fakeClient) GetAccounts(_ context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	if f.accountsErr != nil {
		return nil, f.accountsErr
	}
	resp, ok := f.accounts[accessToken]
	if !ok {
		return &plaid.AccountsResponse{}, nil
	}
	return resp, nil
}

func (f *fakeClient) GetInstitution(_ context.Context, institutionID string) (*plaid.Institution, error) {
	name, ok := f.institutions[institutionID]
	if !ok {
		return nil, plaid.ErrUpstreamRejected
	}
	return &plaid.Institution{InstitutionID: institutionID, Name: name}, nil
}

func (f *fakeClient) calls(accessToken string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txCalls[accessToken]
}

// remoteTx builds a remote transaction record.
func remoteTx(id, amount, date, name string, category ...string) plaid.Transaction {
	return plaid.Transaction{
		TransactionID:  id,
		Amount:         decimal.RequireFromString(amount),
		Date:           date,
		Name:           name,
		Category:       category,
		PaymentChannel: "online",
	}
}

func balance(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

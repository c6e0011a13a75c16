// Package plaid is the client for the Plaid account-aggregation API: link
// tokens, public token exchange, transactions, accounts and institutions.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	sandboxBaseURL     = "https://sandbox.plaid.com"
	developmentBaseURL = "https://development.plaid.com"
	productionBaseURL  = "https://production.plaid.com"

	apiVersion = "2020-09-14"

	// transactionsPageSize is the largest page /transactions/get accepts.
	transactionsPageSize = 500

	maxErrorBody = 64 << 10
)

// ClientConfig configures the Plaid client.
type ClientConfig struct {
	// Environment is "sandbox", "development", or "production".
	Environment string

	ClientID string
	// Secret is never logged.
	Secret string

	ClientName   string
	CountryCodes []string
	Products     []string

	// RequestsPerSecond paces outbound calls. Zero disables pacing.
	RequestsPerSecond float64

	// Timeout bounds every request. Defaults to 30s.
	Timeout time.Duration

	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client
}

// Client is an HTTP client for the Plaid API. It never retries; callers
// decide what is retryable from the returned error kind.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	baseURL      string
	clientID     string
	secret       string
	clientName   string
	countryCodes []string
	products     []string
}

// NewClient creates a new Plaid client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, ErrNotConfigured
	}

	var baseURL string
	switch strings.ToLower(cfg.Environment) {
	case "production":
		baseURL = productionBaseURL
	case "development":
		baseURL = developmentBaseURL
	default:
		baseURL = sandboxBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	clientName := cfg.ClientName
	if clientName == "" {
		clientName = "Budget App"
	}
	countryCodes := cfg.CountryCodes
	if len(countryCodes) == 0 {
		countryCodes = []string{"US"}
	}
	products := cfg.Products
	if len(products) == 0 {
		products = []string{"transactions"}
	}

	return &Client{
		httpClient:   httpClient,
		limiter:      limiter,
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		secret:       cfg.Secret,
		clientName:   clientName,
		countryCodes: countryCodes,
		products:     products,
	}, nil
}

// SetBaseURL points the client at another host (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// CreateLinkToken issues a short-lived token the front end uses to open Link.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error) {
	body := map[string]interface{}{
		"client_name":   c.clientName,
		"language":      "en",
		"country_codes": c.countryCodes,
		"products":      c.products,
		"user":          map[string]string{"client_user_id": clientUserID},
	}
	return doPost[LinkTokenResponse](ctx, c, "/link/token/create", body)
}

// ExchangePublicToken trades a one-time public token for a durable access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	body := map[string]interface{}{
		"public_token": publicToken,
	}
	return doPost[ExchangeResponse](ctx, c, "/item/public_token/exchange", body)
}

// GetTransactions returns every transaction between start and end inclusive,
// following offset pagination until total_transactions have been read.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) (*TransactionsResult, error) {
	result := &TransactionsResult{}
	offset := 0
	for {
		body := map[string]interface{}{
			"access_token": accessToken,
			"start_date":   FormatDate(start),
			"end_date":     FormatDate(end),
			"options": map[string]int{
				"count":  transactionsPageSize,
				"offset": offset,
			},
		}
		page, err := doPost[TransactionsPage](ctx, c, "/transactions/get", body)
		if err != nil {
			return nil, err
		}

		if offset == 0 {
			result.Accounts = page.Accounts
			result.Item = page.Item
		}
		result.Transactions = append(result.Transactions, page.Transactions...)
		offset += len(page.Transactions)

		if len(page.Transactions) == 0 || offset >= page.TotalTransactions {
			return result, nil
		}
	}
}

// GetAccounts returns the accounts and cached balances of an item.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	body := map[string]interface{}{
		"access_token": accessToken,
	}
	return doPost[AccountsResponse](ctx, c, "/accounts/get", body)
}

// GetInstitution looks up an institution's display details.
func (c *Client) GetInstitution(ctx context.Context, institutionID string) (*Institution, error) {
	body := map[string]interface{}{
		"institution_id": institutionID,
		"country_codes":  c.countryCodes,
	}
	resp, err := doPost[InstitutionResponse](ctx, c, "/institutions/get_by_id", body)
	if err != nil {
		return nil, err
	}
	return &resp.Institution, nil
}

// doPost performs a POST request with JSON body and decodes the response.
func doPost[Resp any](ctx context.Context, c *Client, path string, reqBody map[string]interface{}) (*Resp, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, unavailable(path, err)
	}

	reqBody["client_id"] = c.clientID
	reqBody["secret"] = c.secret

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Plaid-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result Resp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, unavailable(path, fmt.Errorf("failed to decode response: %w", err))
	}
	return &result, nil
}

// parseError turns a non-200 response into an *APIError carrying its kind.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return NewAPIError(resp.StatusCode, "", "", string(body))
	}

	apiErr := NewAPIError(resp.StatusCode, errResp.ErrorType, errResp.ErrorCode, errResp.ErrorMessage)
	apiErr.RequestID = errResp.RequestID
	return apiErr
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"budgetapp/internal/middleware"
	"budgetapp/internal/models"
	"budgetapp/internal/pagination"
	"budgetapp/internal/services"
	"budgetapp/internal/validator"
)

// --- mock services ---

var (
	_ services.UserServicer          = (*mockUserService)(nil)
	_ services.LinkedAccountServicer = (*mockLinkedAccountService)(nil)
	_ services.SyncServicer          = (*mockSyncService)(nil)
	_ services.TransactionServicer   = (*mockTransactionService)(nil)
	_ services.PaymentServicer       = (*mockPaymentService)(nil)
	_ services.AuditServicer         = (*mockAuditService)(nil)
)

type mockUserService struct {
	registerFn              func(username, email, password string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	attemptLoginFn          func(username, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
}

func (m *mockUserService) Register(username, email, password string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(username, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) AttemptLogin(username, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(username, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

type mockLinkedAccountService struct {
	createLinkTokenFn func(ctx context.Context, userID string) (string, error)
	linkAccountFn     func(ctx context.Context, userID, publicToken string) (*models.LinkedAccount, error)
	listForUserFn     func(userID string) ([]models.LinkedAccount, error)
	getForUserFn      func(userID, accountID string) (*models.LinkedAccount, error)
	refreshBalancesFn func(ctx context.Context, userID string) (*services.RefreshResult, error)
}

func (m *mockLinkedAccountService) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	if m.createLinkTokenFn != nil {
		return m.createLinkTokenFn(ctx, userID)
	}
	return "", nil
}

func (m *mockLinkedAccountService) LinkAccount(ctx context.Context, userID, publicToken string) (*models.LinkedAccount, error) {
	if m.linkAccountFn != nil {
		return m.linkAccountFn(ctx, userID, publicToken)
	}
	return &models.LinkedAccount{}, nil
}

func (m *mockLinkedAccountService) ListForUser(userID string) ([]models.LinkedAccount, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(userID)
	}
	return nil, nil
}

func (m *mockLinkedAccountService) GetForUser(userID, accountID string) (*models.LinkedAccount, error) {
	if m.getForUserFn != nil {
		return m.getForUserFn(userID, accountID)
	}
	return &models.LinkedAccount{}, nil
}

func (m *mockLinkedAccountService) ListUserIDsWithAccounts() ([]string, error) {
	return nil, nil
}

func (m *mockLinkedAccountService) UpdateSyncMetadata(_ string, _ time.Time, _ *models.Balances) error {
	return nil
}

func (m *mockLinkedAccountService) RefreshBalances(ctx context.Context, userID string) (*services.RefreshResult, error) {
	if m.refreshBalancesFn != nil {
		return m.refreshBalancesFn(ctx, userID)
	}
	return &services.RefreshResult{}, nil
}

func (m *mockLinkedAccountService) Credential(_ *models.LinkedAccount) (string, error) {
	return "", nil
}

type mockSyncService struct {
	syncUserFn func(ctx context.Context, userID string) (*services.SyncResult, error)
	syncAllFn  func(ctx context.Context) (*services.BatchSyncResult, error)
}

func (m *mockSyncService) SyncUserTransactions(ctx context.Context, userID string) (*services.SyncResult, error) {
	if m.syncUserFn != nil {
		return m.syncUserFn(ctx, userID)
	}
	return &services.SyncResult{}, nil
}

func (m *mockSyncService) SyncAllUsers(ctx context.Context) (*services.BatchSyncResult, error) {
	if m.syncAllFn != nil {
		return m.syncAllFn(ctx)
	}
	return &services.BatchSyncResult{}, nil
}

type mockTransactionService struct {
	listForUserFn   func(userID string, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	exportForUserFn func(userID string, filter services.TransactionFilter) ([]models.Transaction, error)
}

func (m *mockTransactionService) ListForUser(userID string, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse[models.Transaction](nil, 1, 50, 0)
	return &resp, nil
}

func (m *mockTransactionService) ExportForUser(userID string, filter services.TransactionFilter) ([]models.Transaction, error) {
	if m.exportForUserFn != nil {
		return m.exportForUserFn(userID, filter)
	}
	return nil, nil
}

type mockPaymentService struct {
	listForUserFn func(userID string) ([]models.Payment, error)
	createFn      func(userID string, in services.PaymentInput) (*models.Payment, error)
	getForUserFn  func(userID, paymentID string) (*models.Payment, error)
	updateFn      func(userID, paymentID string, in services.PaymentInput) (*models.Payment, error)
	patchFn       func(userID, paymentID string, in services.PaymentInput) (*models.Payment, error)
	deleteFn      func(userID, paymentID string) error
	markOverdueFn func(today time.Time, policy services.OverduePolicy) (int64, error)
}

func (m *mockPaymentService) ListForUser(userID string) ([]models.Payment, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(userID)
	}
	return nil, nil
}

func (m *mockPaymentService) Create(userID string, in services.PaymentInput) (*models.Payment, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.Payment{}, nil
}

func (m *mockPaymentService) GetForUser(userID, paymentID string) (*models.Payment, error) {
	if m.getForUserFn != nil {
		return m.getForUserFn(userID, paymentID)
	}
	return &models.Payment{}, nil
}

func (m *mockPaymentService) Update(userID, paymentID string, in services.PaymentInput) (*models.Payment, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, paymentID, in)
	}
	return &models.Payment{}, nil
}

func (m *mockPaymentService) Patch(userID, paymentID string, in services.PaymentInput) (*models.Payment, error) {
	if m.patchFn != nil {
		return m.patchFn(userID, paymentID, in)
	}
	return &models.Payment{}, nil
}

func (m *mockPaymentService) Delete(userID, paymentID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, paymentID)
	}
	return nil
}

func (m *mockPaymentService) MarkOverdue(today time.Time, policy services.OverduePolicy) (int64, error) {
	if m.markOverdueFn != nil {
		return m.markOverdueFn(today, policy)
	}
	return 0, nil
}

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Log(_, action, _, _, _ string, _ map[string]interface{}) {
	m.actions = append(m.actions, action)
}

// --- test helpers ---

const testUserID = "0190a6f0-0000-7000-8000-000000000001"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertFieldError(t *testing.T, result map[string]interface{}, field string) {
	t.Helper()
	errObj, _ := result["error"].(map[string]interface{})
	fields, _ := errObj["fields"].(map[string]interface{})
	if msgs, _ := fields[field].([]interface{}); len(msgs) == 0 {
		t.Errorf("expected field error for %q, got %v", field, errObj["fields"])
	}
}

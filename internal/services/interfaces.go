package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"budgetapp/internal/models"
	"budgetapp/internal/pagination"
	"budgetapp/internal/plaid"
)

// AggregationClient is the part of the Plaid API the services depend on.
type AggregationClient interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (*plaid.LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error)
	GetTransactions(ctx context.Context, accessToken string, start, end time.Time) (*plaid.TransactionsResult, error)
	GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
	GetInstitution(ctx context.Context, institutionID string) (*plaid.Institution, error)
}

var _ AggregationClient = (*plaid.Client)(nil)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(username, email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(username, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// LinkedAccountServicer defines the contract for aggregation connections.
type LinkedAccountServicer interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	LinkAccount(ctx context.Context, userID, publicToken string) (*models.LinkedAccount, error)
	ListForUser(userID string) ([]models.LinkedAccount, error)
	GetForUser(userID, accountID string) (*models.LinkedAccount, error)
	ListUserIDsWithAccounts() ([]string, error)
	UpdateSyncMetadata(accountID string, syncedAt time.Time, balances *models.Balances) error
	RefreshBalances(ctx context.Context, userID string) (*RefreshResult, error)
	Credential(account *models.LinkedAccount) (string, error)
}

// SyncServicer defines the contract for transaction reconciliation.
type SyncServicer interface {
	SyncUserTransactions(ctx context.Context, userID string) (*SyncResult, error)
	SyncAllUsers(ctx context.Context) (*BatchSyncResult, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	LinkedAccountID *string
	FromDate        *time.Time
	ToDate          *time.Time
}

// TransactionServicer defines the contract for reading reconciled transactions.
type TransactionServicer interface {
	ListForUser(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	ExportForUser(userID string, filter TransactionFilter) ([]models.Transaction, error)
}

// PaymentInput carries client-supplied payment fields. A nil field was not
// supplied; PUT requires the mandatory ones, PATCH applies only what is set.
type PaymentInput struct {
	Recipient   *string
	Amount      *decimal.Decimal
	DueDate     *time.Time
	PaidDate    *time.Time
	Category    *string
	Description *string
	Status      *models.PaymentStatus
	IsRecurring *bool
	Frequency   *models.PaymentFrequency

	// ClearPaidDate removes a stored paid date when PaidDate is nil.
	ClearPaidDate bool
}

// OverduePolicy controls when a pending payment is considered missed.
type OverduePolicy struct {
	// GraceDays is how many days past the due date a payment stays pending.
	GraceDays int
}

// PaymentServicer defines the contract for user-owned bill records.
type PaymentServicer interface {
	ListForUser(userID string) ([]models.Payment, error)
	Create(userID string, in PaymentInput) (*models.Payment, error)
	GetForUser(userID, paymentID string) (*models.Payment, error)
	Update(userID, paymentID string, in PaymentInput) (*models.Payment, error)
	Patch(userID, paymentID string, in PaymentInput) (*models.Payment, error)
	Delete(userID, paymentID string) error
	MarkOverdue(today time.Time, policy OverduePolicy) (int64, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

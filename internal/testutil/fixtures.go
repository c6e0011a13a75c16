package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetapp/internal/crypto"
	"budgetapp/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// TestCredentialSecret is the sealing secret fixtures encrypt credentials with.
const TestCredentialSecret = "test-credential-secret"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns a UTC calendar date.
func Date(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Sealer returns the sealer matching TestCredentialSecret.
func Sealer(t *testing.T) *crypto.Sealer {
	t.Helper()
	s, err := crypto.NewSealer(TestCredentialSecret)
	if err != nil {
		t.Fatalf("failed to create sealer: %v", err)
	}
	return s
}

// CreateTestUser creates a user with a hashed password and unique username/email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWith(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWith creates a user with the given username and email.
func CreateTestUserWith(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestLinkedAccount creates a linked account whose sealed credential
// opens to accessToken under TestCredentialSecret.
func CreateTestLinkedAccount(t *testing.T, db *gorm.DB, userID, accessToken string) *models.LinkedAccount {
	t.Helper()

	itemID := fmt.Sprintf("item-%d", nextID())
	sealed, err := Sealer(t).Seal(accessToken, userID+":"+itemID)
	if err != nil {
		t.Fatalf("failed to seal credential: %v", err)
	}

	account := &models.LinkedAccount{
		UserID:                userID,
		ItemID:                itemID,
		AccessTokenCiphertext: sealed,
		InstitutionName:       "First Platypus Bank",
		AccountName:           "Plaid Checking",
		AccountType:           "depository",
		Mask:                  "0000",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test linked account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a reconciled transaction on the given account.
func CreateTestTransaction(t *testing.T, db *gorm.DB, account *models.LinkedAccount, transactionID string, amount string, date datatypes.Date) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		LinkedAccountID: account.ID,
		UserID:          account.UserID,
		TransactionID:   transactionID,
		Amount:          decimal.RequireFromString(amount),
		Date:            date,
		Name:            "Test Merchant",
		Category:        models.UncategorizedCategory,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestPayment creates a pending monthly payment due on dueDate.
func CreateTestPayment(t *testing.T, db *gorm.DB, userID string, dueDate datatypes.Date) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		UserID:    userID,
		Recipient: fmt.Sprintf("Test Recipient %d", nextID()),
		Amount:    decimal.RequireFromString("100.00"),
		DueDate:   dueDate,
		Category:  "Utilities",
		Status:    models.PaymentStatusPending,
		Frequency: models.FrequencyMonthly,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return payment
}

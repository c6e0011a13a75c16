package services

import (
	"errors"
	"testing"
	"time"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
	"budgetapp/internal/testutil"
)

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.Register("  alice ", "Alice@Example.com", "s3cret-pass")
		testutil.AssertNoError(t, err)
		if user.ID == "" {
			t.Fatal("expected user ID to be assigned")
		}
		if user.Username != "alice" {
			t.Errorf("expected trimmed username, got %q", user.Username)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %q", user.Email)
		}
		if user.Password == "s3cret-pass" {
			t.Error("password must be hashed")
		}
	})

	t.Run("duplicate_username_writes_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestUserWith(t, db, "alice", "alice@example.com")

		_, err := svc.Register("alice", "other@example.com", "pw")
		testutil.AssertFieldError(t, err, "CONFLICT", "username")
		testutil.AssertRowCount(t, db.Model(&models.User{}), 1)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestUserWith(t, db, "alice", "alice@example.com")

		_, err := svc.Register("bob", "ALICE@example.com", "pw")
		testutil.AssertFieldError(t, err, "CONFLICT", "email")
	})

	t.Run("both_conflicts_reported", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestUserWith(t, db, "alice", "alice@example.com")

		_, err := svc.Register("alice", "alice@example.com", "pw")
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("expected AppError, got %v", err)
		}
		if len(appErr.Fields["username"]) == 0 || len(appErr.Fields["email"]) == 0 {
			t.Errorf("expected both fields reported, got %v", appErr.Fields)
		}
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.Register("", " ", "")
		testutil.AssertFieldError(t, err, "VALIDATION_ERROR", "username")
		testutil.AssertFieldError(t, err, "VALIDATION_ERROR", "email")
		testutil.AssertFieldError(t, err, "VALIDATION_ERROR", "password")
	})
}

func TestGetUserByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	got, err := svc.GetUserByID(user.ID)
	testutil.AssertNoError(t, err)
	if got.Username != user.Username {
		t.Errorf("expected %s, got %s", user.Username, got.Username)
	}

	_, err = svc.GetUserByID("00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")

	_, err = svc.GetUserByID("")
	testutil.AssertAppError(t, err, "UNAUTHORIZED")
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_resets_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Update("failed_login_attempts", 3)

		got, err := svc.AttemptLogin(user.Username, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if got.LastLoginAt == nil {
			t.Error("expected last_login_at to be set")
		}

		var stored models.User
		db.First(&stored, "id = ?", user.ID)
		if stored.FailedLoginAttempts != 0 {
			t.Errorf("expected failures reset, got %d", stored.FailedLoginAttempts)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody", "pw")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("locks_after_repeated_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < maxFailedLoginAttempts; i++ {
			_, err := svc.AttemptLogin(user.Username, "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		_, err := svc.AttemptLogin(user.Username, testutil.TestPassword)
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("expired_lock_allows_login", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Update("locked_until", time.Now().Add(-time.Minute))

		_, err := svc.AttemptLogin(user.Username, testutil.TestPassword)
		testutil.AssertNoError(t, err)
	})
}

func TestRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "abc123"))
	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "abc123" {
		t.Errorf("expected abc123, got %q", hash)
	}

	err = svc.StoreRefreshTokenHash("00000000-0000-0000-0000-000000000000", "x")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

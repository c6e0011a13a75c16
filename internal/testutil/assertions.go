package testutil

import (
	"errors"
	"testing"

	apperrors "budgetapp/internal/errors"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertFieldError checks that err is an *AppError carrying a message for field.
func AssertFieldError(t *testing.T, err error, expectedCode, field string) {
	t.Helper()

	AssertAppError(t, err, expectedCode)

	var appErr *apperrors.AppError
	errors.As(err, &appErr)
	if len(appErr.Fields[field]) == 0 {
		t.Errorf("expected field error for %q, got fields %v", field, appErr.Fields)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertRowCount fails the test if query does not count want rows.
func AssertRowCount(t *testing.T, query *gorm.DB, want int64) {
	t.Helper()
	var got int64
	if err := query.Count(&got).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %d rows, got %d", want, got)
	}
}

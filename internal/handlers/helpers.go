package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
	"budgetapp/internal/middleware"
	"budgetapp/internal/uuid"
	"budgetapp/internal/validator"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter. A malformed ID can never match a
// row, so it is reported as notFound rather than as bad input.
func parsePathID(c *gin.Context, param string, notFound *apperrors.AppError) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", notFound
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(validator.DateLayout, s, time.UTC)
}

// bindError turns a binding failure into a field-level validation error when
// the failing fields are known.
func bindError(err error) *apperrors.AppError {
	if fields := validator.FieldErrors(err); len(fields) > 0 {
		return apperrors.WithFields(apperrors.ErrValidation, fields)
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, "Malformed request body")
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, message and field errors.
// Otherwise it logs the unexpected error and returns a generic internal
// server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

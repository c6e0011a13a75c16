package services

import (
	"errors"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/plaid"
)

// translateUpstream maps an aggregation client failure onto the application
// error taxonomy. The provider detail stays in Internal.
func translateUpstream(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, plaid.ErrInvalidCredential):
		return apperrors.Wrap(apperrors.ErrInvalidCredential, err)
	case errors.Is(err, plaid.ErrInvalidToken):
		return apperrors.Wrap(apperrors.ErrInvalidToken, err)
	case errors.Is(err, plaid.ErrRateLimited):
		return apperrors.Wrap(apperrors.ErrRateLimited, err)
	case errors.Is(err, plaid.ErrUpstreamRejected):
		return apperrors.Wrap(apperrors.ErrUpstreamRejected, err)
	default:
		return apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
	}
}

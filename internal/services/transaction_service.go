package services

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
	"budgetapp/internal/pagination"
)

// maxExportRows caps a single export.
const maxExportRows = 50000

// transactionService reads reconciled transactions.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

func (s *transactionService) scoped(userID string, filter TransactionFilter) *gorm.DB {
	q := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.LinkedAccountID != nil {
		q = q.Where("linked_account_id = ?", *filter.LinkedAccountID)
	}
	if filter.FromDate != nil {
		q = q.Where("date >= ?", datatypes.Date(*filter.FromDate))
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", datatypes.Date(*filter.ToDate))
	}
	return q
}

// ListForUser returns the caller's transactions, newest first.
func (s *transactionService) ListForUser(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	page.Defaults()

	var total int64
	if err := s.scoped(userID, filter).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := s.scoped(userID, filter).
		Preload("LinkedAccount").
		Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &resp, nil
}

// ExportForUser returns every matching transaction, newest first.
func (s *transactionService) ExportForUser(userID string, filter TransactionFilter) ([]models.Transaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var transactions []models.Transaction
	err := s.scoped(userID, filter).
		Preload("LinkedAccount").
		Order("date DESC, created_at DESC").
		Limit(maxExportRows).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

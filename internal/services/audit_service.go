package services

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"budgetapp/internal/logger"
	"budgetapp/internal/models"
)

// Audit actions.
const (
	AuditActionRegister         = "REGISTER"
	AuditActionLinkAccount      = "LINK_ACCOUNT"
	AuditActionSyncTransactions = "SYNC_TRANSACTIONS"
	AuditActionRefreshBalances  = "REFRESH_BALANCES"
	AuditActionCreatePayment    = "CREATE_PAYMENT"
	AuditActionUpdatePayment    = "UPDATE_PAYMENT"
	AuditActionDeletePayment    = "DELETE_PAYMENT"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}
	if changes != nil {
		entry.Changes = datatypes.JSONMap(changes)
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

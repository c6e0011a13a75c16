package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgetapp/internal/services"
)

// PipelineHandler serves the scheduler-facing endpoints. Requests carry an
// API key instead of a user identity.
type PipelineHandler struct {
	syncService    services.SyncServicer
	paymentService services.PaymentServicer
	now            func() time.Time
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(syncService services.SyncServicer, paymentService services.PaymentServicer) *PipelineHandler {
	return &PipelineHandler{syncService: syncService, paymentService: paymentService, now: time.Now}
}

// MarkOverdueRequest configures an overdue pass.
type MarkOverdueRequest struct {
	GraceDays int `json:"grace_days" binding:"min=0"`
}

// MarkOverdueResponse reports how many payments became missed.
type MarkOverdueResponse struct {
	Marked int64 `json:"marked"`
}

// SyncAll reconciles every user with linked accounts
// @Summary     Sync all users
// @Description Run transaction reconciliation for every user that has linked accounts
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} services.BatchSyncResult "Batch summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/sync [post]
func (h *PipelineHandler) SyncAll(c *gin.Context) {
	result, err := h.syncService.SyncAllUsers(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MarkOverdue moves past-due pending payments to missed
// @Summary     Mark overdue payments
// @Description Mark pending payments whose due date is more than grace_days in the past as missed
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string             true  "Pipeline API key"
// @Param       request   body   MarkOverdueRequest false "Grace period"
// @Success     200 {object} MarkOverdueResponse "Number of payments marked"
// @Failure     400 {object} ErrorResponse "Validation error"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/payments/mark-overdue [post]
func (h *PipelineHandler) MarkOverdue(c *gin.Context) {
	var req MarkOverdueRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, bindError(err))
		return
	}

	n, err := h.paymentService.MarkOverdue(h.now(), services.OverduePolicy{GraceDays: req.GraceDays})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MarkOverdueResponse{Marked: n})
}

package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quotient-crm/approval-engine/internal/application/engine"
	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine engine.Engine
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(eng engine.Engine, logger Logger) *Handlers {
	return &Handlers{
		engine: eng,
		logger: logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SubmitRequest is the submission payload
type SubmitRequest struct {
	QuotationID string  `json:"quotation_id" binding:"required"`
	SubmitterID string  `json:"submitter_id" binding:"required"`
	DiscountPct float64 `json:"discount_pct" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
}

// DecisionRequest is the approve/reject payload
type DecisionRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
	Comments   string `json:"comments"`
}

// EscalateRequest is the escalation payload
type EscalateRequest struct {
	EscalatorID string `json:"escalator_id" binding:"required"`
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Submit handles POST /api/v1/approvals
func (h *Handlers) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := h.engine.Submit(c.Request.Context(), engine.SubmitInput{
		QuotationID: req.QuotationID,
		SubmitterID: req.SubmitterID,
		DiscountPct: req.DiscountPct,
		Reason:      req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if !result.RequiresApproval {
		status = http.StatusOK
	}
	c.JSON(status, Response{Success: true, Data: result})
}

// Approve handles POST /api/v1/approvals/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	h.decide(c, h.engine.Approve)
}

// Reject handles POST /api/v1/approvals/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	h.decide(c, h.engine.Reject)
}

func (h *Handlers) decide(c *gin.Context, op func(ctx context.Context, approvalID, approverID, comments string) (*approval.Request, error)) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	updated, err := op(c.Request.Context(), c.Param("id"), req.ApproverID, req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// Escalate handles POST /api/v1/approvals/:id/escalate
func (h *Handlers) Escalate(c *gin.Context) {
	var req EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	updated, err := h.engine.Escalate(c.Request.Context(), c.Param("id"), req.EscalatorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// Get handles GET /api/v1/approvals/:id
func (h *Handlers) Get(c *gin.Context) {
	req, err := h.engine.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// List handles GET /api/v1/approvals
func (h *Handlers) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	requests, err := h.engine.ListRequests(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// PendingForQuotation handles GET /api/v1/quotations/:id/approval
func (h *Handlers) PendingForQuotation(c *gin.Context) {
	req, err := h.engine.PendingForQuotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if req == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "no open approval request for quotation"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// HistoryForQuotation handles GET /api/v1/quotations/:id/approvals
func (h *Handlers) HistoryForQuotation(c *gin.Context) {
	requests, err := h.engine.ListForQuotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// respondError maps the engine's error taxonomy to HTTP statuses
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, approval.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, approval.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, approval.ErrRequestAlreadyOpen),
		errors.Is(err, approval.ErrAlreadyDecided),
		errors.Is(err, approval.ErrInvalidTransition),
		errors.Is(err, approval.ErrConcurrentModification):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}

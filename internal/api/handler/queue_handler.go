package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
	"github.com/ErmoGarcia/expense-toolkit/internal/queue"
	"github.com/ErmoGarcia/expense-toolkit/internal/rules"
)

// QueueHandler handles HTTP requests for the review queue
type QueueHandler struct {
	queueService queue.Service
	ruleEngine   rules.Engine
	logger       *slog.Logger
}

// NewQueueHandler creates a new review queue handler
func NewQueueHandler(logger *slog.Logger, queueService queue.Service, ruleEngine rules.Engine) *QueueHandler {
	return &QueueHandler{
		queueService: queueService,
		ruleEngine:   ruleEngine,
		logger:       logger,
	}
}

// Next returns the oldest pending record awaiting review
func (h *QueueHandler) Next(c *gin.Context) {
	rec, err := h.queueService.Next(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get next pending record", "error", err)
		RespondInternalError(c)
		return
	}
	if rec == nil {
		RespondNoContent(c)
		return
	}

	RespondOK(c, rec)
}

// Count returns the review queue depth
func (h *QueueHandler) Count(c *gin.Context) {
	count, err := h.queueService.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count pending records", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"count": count})
}

// ProcessRequest carries a manual review decision for one pending record
type ProcessRequest struct {
	RecordID uuid.UUID `json:"record_id" binding:"required"`
	queue.FinalizeInput
}

// Process finalizes one pending record
func (h *QueueHandler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	exp, err := h.queueService.Process(c.Request.Context(), req.RecordID, req.FinalizeInput)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}

	RespondCreated(c, exp)
}

// Discard deletes a pending record outright
func (h *QueueHandler) Discard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid record ID")
		return
	}

	if err := h.queueService.Discard(c.Request.Context(), id); err != nil {
		h.respondQueueError(c, err)
		return
	}

	RespondNoContent(c)
}

// Duplicates reports pending records with (date, amount) siblings
func (h *QueueHandler) Duplicates(c *gin.Context) {
	candidates, err := h.queueService.FindDuplicates(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to find duplicates", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, candidates)
}

// CombineRequest carries a merge or group decision
type CombineRequest struct {
	RecordIDs []uuid.UUID `json:"record_ids" binding:"required,min=2"`
	queue.FinalizeInput
}

// Merge combines pending records into one finalized expense
func (h *QueueHandler) Merge(c *gin.Context) {
	var req CombineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	exp, err := h.queueService.Merge(c.Request.Context(), req.RecordIDs, req.FinalizeInput)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}

	RespondCreated(c, exp)
}

// Group combines pending records under a summary expense with visible children
func (h *QueueHandler) Group(c *gin.Context) {
	var req CombineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	exp, err := h.queueService.Group(c.Request.Context(), req.RecordIDs, req.FinalizeInput)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}

	RespondCreated(c, exp)
}

// ApplyRules runs one rule pass over the whole pending queue
func (h *QueueHandler) ApplyRules(c *gin.Context) {
	result, err := h.ruleEngine.ApplyAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Rule pass failed", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, result)
}

func (h *QueueHandler) respondQueueError(c *gin.Context, err error) {
	var notFound record.ErrRecordNotFound
	var finalized expense.ErrAlreadyFinalized
	var tooFew queue.ErrTooFewRecords

	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, notFound.Error())
	case errors.As(err, &finalized):
		RespondConflict(c, finalized.Error())
	case errors.As(err, &tooFew):
		RespondBadRequest(c, tooFew.Error())
	case errors.Is(err, expense.ErrInvalidExpenseType):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("Queue operation failed", "error", err)
		RespondInternalError(c)
	}
}

package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/notification"
	"github.com/ErmoGarcia/expense-toolkit/internal/notifier"
)

// NotificationHandler handles HTTP requests for notification intake
type NotificationHandler struct {
	notifierService notifier.Service
	logger          *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(logger *slog.Logger, notifierService notifier.Service) *NotificationHandler {
	return &NotificationHandler{
		notifierService: notifierService,
		logger:          logger,
	}
}

// IngestRequest is the bulk notification intake body
type IngestRequest struct {
	Notifications []*notification.Payload `json:"notifications" binding:"required,min=1,dive"`
}

// Create stores the payloads and queues them for asynchronous parsing.
// Intake is accepted as soon as the payloads are stored; parsing happens in
// the worker process.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	for _, p := range req.Notifications {
		if p.ChannelID == "" {
			RespondBadRequest(c, "channel_id is required for every notification")
			return
		}
	}

	stored, err := h.notifierService.Ingest(c.Request.Context(), req.Notifications)
	if err != nil {
		h.logger.Error("Failed to ingest notifications", "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, stored)
}

// ListUnprocessed returns stored notifications still awaiting a verdict
func (h *NotificationHandler) ListUnprocessed(c *gin.Context) {
	notifications, err := h.notifierService.ListUnprocessed(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list unprocessed notifications", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, notifications)
}

package notifier

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// EventHandler adapts the notification service to the Kafka consumer's
// message contract.
type EventHandler struct {
	logger  *slog.Logger
	service Service
}

func NewEventHandler(logger *slog.Logger, service Service) *EventHandler {
	return &EventHandler{
		logger:  logger,
		service: service,
	}
}

// HandleMessage processes one queued notification. The message key carries
// the stored notification ID; the stored row is authoritative, so the value
// is not trusted beyond routing.
func (h *EventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	id, err := uuid.Parse(string(key))
	if err != nil {
		// A malformed key can never succeed; ack it instead of looping
		h.logger.Error("Dropping message with malformed notification ID", "key", string(key), "error", err)
		return nil
	}

	return h.service.Process(ctx, id)
}

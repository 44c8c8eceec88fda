package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines raw notification persistence operations
type Repository interface {
	Create(ctx context.Context, n *RawNotification) error
	GetByID(ctx context.Context, id uuid.UUID) (*RawNotification, error)

	// ListUnprocessed returns notifications awaiting parsing, oldest first
	ListUnprocessed(ctx context.Context) ([]*RawNotification, error)

	// MarkProcessed stores the parsing verdict for a notification
	MarkProcessed(ctx context.Context, id uuid.UUID, isExpense bool, pendingRecordID *uuid.UUID, parseError string) error
	WithTx(tx pgx.Tx) Repository
}

// ErrNotificationNotFound indicates a missing stored notification
type ErrNotificationNotFound struct {
	NotificationID uuid.UUID
}

func (e ErrNotificationNotFound) Error() string {
	return "notification not found: " + e.NotificationID.String()
}

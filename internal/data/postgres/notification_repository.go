package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/notification"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

const notificationColumns = `id, app_package, app_name, title, text, notified_at,
		processed, is_expense, pending_record_id, parse_error, received_at`

// NotificationRepository implements the notification.Repository interface for PostgreSQL
type NotificationRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewNotificationRepository creates a new PostgreSQL notification repository
func NewNotificationRepository(logger *slog.Logger, db *persistence.PostgresDB) notification.Repository {
	return &NotificationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *NotificationRepository) WithTx(tx pgx.Tx) notification.Repository {
	return &NotificationRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a raw notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.RawNotification) error {
	query := `
		INSERT INTO raw_notifications (id, app_package, app_name, title, text, notified_at,
			processed, is_expense, pending_record_id, parse_error, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		n.ID,
		n.AppPackage,
		n.AppName,
		n.Title,
		n.Text,
		n.NotifiedAt,
		n.Processed,
		n.IsExpense,
		n.PendingRecordID,
		n.ParseError,
		n.ReceivedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", "error", err)
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by its ID
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.RawNotification, error) {
	query := `SELECT ` + notificationColumns + ` FROM raw_notifications WHERE id = $1`

	n, err := scanNotification(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound{NotificationID: id}
		}
		r.logger.Error("Failed to get notification", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListUnprocessed returns notifications awaiting parsing, oldest first
func (r *NotificationRepository) ListUnprocessed(ctx context.Context) ([]*notification.RawNotification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM raw_notifications
		WHERE processed = FALSE
		ORDER BY received_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list unprocessed notifications", "error", err)
		return nil, fmt.Errorf("failed to list unprocessed notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.RawNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	return notifications, nil
}

// MarkProcessed stores the parsing verdict for a notification
func (r *NotificationRepository) MarkProcessed(ctx context.Context, id uuid.UUID, isExpense bool, pendingRecordID *uuid.UUID, parseError string) error {
	query := `
		UPDATE raw_notifications
		SET processed = TRUE, is_expense = $2, pending_record_id = $3, parse_error = $4
		WHERE id = $1
	`

	tag, err := r.querier.Exec(ctx, query, id, isExpense, pendingRecordID, parseError)
	if err != nil {
		r.logger.Error("Failed to mark notification processed", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark notification processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound{NotificationID: id}
	}

	return nil
}

func scanNotification(row pgx.Row) (*notification.RawNotification, error) {
	var n notification.RawNotification
	err := row.Scan(
		&n.ID,
		&n.AppPackage,
		&n.AppName,
		&n.Title,
		&n.Text,
		&n.NotifiedAt,
		&n.Processed,
		&n.IsExpense,
		&n.PendingRecordID,
		&n.ParseError,
		&n.ReceivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

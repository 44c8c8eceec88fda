// Package mongo provides the MongoDB implementation of the audit event store.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/audit"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

const auditCollection = "audit_events"

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit event repository
func NewAuditRepository(logger *slog.Logger, db *persistence.MongoDB) audit.Repository {
	return &AuditRepository{
		collection: db.Collection(auditCollection),
		logger:     logger,
	}
}

// Record stores one audit event
func (r *AuditRepository) Record(ctx context.Context, event *audit.Event) error {
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		r.logger.Error("Failed to record audit event", "kind", event.Kind, "error", err)
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// ListRecent returns the most recent audit events, newest first
func (r *AuditRepository) ListRecent(ctx context.Context, limit int64) ([]*audit.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.logger.Error("Failed to list audit events", "error", err)
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*audit.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}

	return events, nil
}

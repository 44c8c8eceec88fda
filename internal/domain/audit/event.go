// Package audit defines immutable pipeline audit events. Events record what
// the pipeline did (imports, rule passes, merges) after the fact; they are
// written best-effort and never participate in the pipeline's transactions.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event kinds
const (
	KindImportCompleted = "import_completed"
	KindImportFailed    = "import_failed"
	KindRulesApplied    = "rules_applied"
	KindRecordsMerged   = "records_merged"
	KindRecordsGrouped  = "records_grouped"
)

// Event is one immutable pipeline audit entry
type Event struct {
	ID         uuid.UUID         `bson:"_id" json:"id"`
	Kind       string            `bson:"kind" json:"kind"`
	OccurredAt time.Time         `bson:"occurred_at" json:"occurred_at"`
	Details    map[string]string `bson:"details" json:"details"`
}

// NewEvent builds an audit event of the given kind
func NewEvent(kind string, details map[string]string) *Event {
	return &Event{
		ID:         uuid.New(),
		Kind:       kind,
		OccurredAt: time.Now(),
		Details:    details,
	}
}

// Repository defines audit event persistence operations
type Repository interface {
	Record(ctx context.Context, event *Event) error
	ListRecent(ctx context.Context, limit int64) ([]*Event, error)
}

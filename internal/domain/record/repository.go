package record

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines pending record persistence operations.
// A record counts as pending while no finalized expense links to it.
type Repository interface {
	// Create inserts a pending record. A (account, fingerprint) uniqueness
	// violation is returned as ErrDuplicateFingerprint so callers can treat
	// racing inserts as skips.
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ExistsByFingerprint reports whether any record, pending or already
	// finalized, carries the fingerprint for the account.
	ExistsByFingerprint(ctx context.Context, accountID uuid.UUID, fingerprint string) (bool, error)

	// ListPending returns records not yet linked to a finalized expense,
	// oldest import first.
	ListPending(ctx context.Context) ([]*Record, error)
	NextPending(ctx context.Context) (*Record, error)
	CountPending(ctx context.Context) (int64, error)

	// ListPendingByDateAmount returns pending records sharing the exact
	// (date, amount) pair, used by the duplicate finder.
	ListPendingByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]*Record, error)

	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

// ErrRecordNotFound indicates a missing pending record
type ErrRecordNotFound struct {
	RecordID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "pending record not found: " + e.RecordID.String()
}

// ErrDuplicateFingerprint indicates the (account, fingerprint) pair already exists
type ErrDuplicateFingerprint struct {
	AccountID   uuid.UUID
	Fingerprint string
}

func (e ErrDuplicateFingerprint) Error() string {
	return "record already exists for account " + e.AccountID.String() + " with fingerprint " + e.Fingerprint
}

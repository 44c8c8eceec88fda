package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines finalized expense persistence operations
type Repository interface {
	Create(ctx context.Context, exp *Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// ExistsForPendingRecord reports whether a pending record was already finalized
	ExistsForPendingRecord(ctx context.Context, recordID uuid.UUID) (bool, error)

	// ListByDateAmount returns finalized expenses sharing the exact
	// (date, amount) pair, archived ones included.
	ListByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]*Expense, error)

	AttachTags(ctx context.Context, expenseID uuid.UUID, tagIDs []uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

// MerchantAliasRepository resolves and creates merchant aliases
type MerchantAliasRepository interface {
	// GetByDisplayName returns nil, nil when no alias exists under the name
	GetByDisplayName(ctx context.Context, displayName string) (*MerchantAlias, error)
	Create(ctx context.Context, alias *MerchantAlias) error
	WithTx(tx pgx.Tx) MerchantAliasRepository
}

// TagRepository resolves and creates tags by name
type TagRepository interface {
	// GetByName returns nil, nil when no tag exists under the name
	GetByName(ctx context.Context, name string) (*Tag, error)
	Create(ctx context.Context, tag *Tag) error
	WithTx(tx pgx.Tx) TagRepository
}

// ErrExpenseNotFound indicates a missing finalized expense
type ErrExpenseNotFound struct {
	ExpenseID uuid.UUID
}

func (e ErrExpenseNotFound) Error() string {
	return "expense not found: " + e.ExpenseID.String()
}

// ErrAlreadyFinalized indicates the pending record already has a finalized expense
type ErrAlreadyFinalized struct {
	RecordID uuid.UUID
}

func (e ErrAlreadyFinalized) Error() string {
	return "pending record already finalized: " + e.RecordID.String()
}

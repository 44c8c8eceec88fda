// Package queue implements the review queue over pending records: inspecting
// the queue, finalizing or discarding records, finding duplicate candidates,
// and merging or grouping records into finalized expenses.
package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
)

// FinalizeInput carries the review decision applied when a pending record
// becomes an expense. MerchantName and CategoryID are required.
type FinalizeInput struct {
	MerchantName string    `json:"merchant_name" binding:"required"`
	CategoryID   uuid.UUID `json:"category_id" binding:"required"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	ExpenseType  string    `json:"type,omitempty"`
}

// Finalizer turns pending records into finalized expenses. It owns the
// merchant alias and tag get-or-create behavior shared by manual review,
// rule save actions, and merge/group.
type Finalizer struct {
	expenseRepo expense.Repository
	aliasRepo   expense.MerchantAliasRepository
	tagRepo     expense.TagRepository
	logger      *slog.Logger
}

func NewFinalizer(
	expenseRepo expense.Repository,
	aliasRepo expense.MerchantAliasRepository,
	tagRepo expense.TagRepository,
	logger *slog.Logger,
) *Finalizer {
	return &Finalizer{
		expenseRepo: expenseRepo,
		aliasRepo:   aliasRepo,
		tagRepo:     tagRepo,
		logger:      logger,
	}
}

// WithTx wraps the finalizer's repositories with a transaction
func (f *Finalizer) WithTx(tx pgx.Tx) *Finalizer {
	return &Finalizer{
		expenseRepo: f.expenseRepo.WithTx(tx),
		aliasRepo:   f.aliasRepo.WithTx(tx),
		tagRepo:     f.tagRepo.WithTx(tx),
		logger:      f.logger,
	}
}

// Finalize creates the expense for a pending record. The record row itself
// stays put; it stops being pending the moment the expense links to it.
func (f *Finalizer) Finalize(ctx context.Context, rec *record.Record, input FinalizeInput) (*expense.Expense, error) {
	if err := expense.ValidateType(input.ExpenseType); err != nil {
		return nil, err
	}

	finalized, err := f.expenseRepo.ExistsForPendingRecord(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if finalized {
		return nil, expense.ErrAlreadyFinalized{RecordID: rec.ID}
	}

	alias, err := f.getOrCreateAlias(ctx, rec.RawMerchantName, input.MerchantName, input.CategoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	exp := &expense.Expense{
		ID:              uuid.New(),
		PendingRecordID: &rec.ID,
		AccountID:       rec.AccountID,
		Date:            rec.Date,
		Amount:          rec.Amount,
		Currency:        rec.Currency,
		Fingerprint:     rec.Fingerprint,
		MerchantAliasID: &alias.ID,
		CategoryID:      &input.CategoryID,
		Description:     input.Description,
		Type:            input.ExpenseType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := f.expenseRepo.Create(ctx, exp); err != nil {
		return nil, err
	}

	if err := f.attachTags(ctx, exp.ID, input.Tags); err != nil {
		return nil, err
	}

	return exp, nil
}

// getOrCreateAlias resolves the display name to an alias, creating one that
// remembers the raw merchant string and the chosen category as its default.
func (f *Finalizer) getOrCreateAlias(ctx context.Context, rawName, displayName string, categoryID uuid.UUID) (*expense.MerchantAlias, error) {
	alias, err := f.aliasRepo.GetByDisplayName(ctx, displayName)
	if err != nil {
		return nil, err
	}
	if alias != nil {
		return alias, nil
	}

	alias = &expense.MerchantAlias{
		ID:                uuid.New(),
		RawName:           rawName,
		DisplayName:       displayName,
		DefaultCategoryID: &categoryID,
		CreatedAt:         time.Now(),
	}
	if err := f.aliasRepo.Create(ctx, alias); err != nil {
		return nil, err
	}

	f.logger.Info("Created merchant alias", "display_name", displayName)
	return alias, nil
}

func (f *Finalizer) attachTags(ctx context.Context, expenseID uuid.UUID, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tagIDs := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, err := f.tagRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if tag == nil {
			tag = &expense.Tag{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
			if err := f.tagRepo.Create(ctx, tag); err != nil {
				return err
			}
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	return f.expenseRepo.AttachTags(ctx, expenseID, tagIDs)
}

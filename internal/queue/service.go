package queue

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/audit"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

// Service exposes the review queue operations
type Service interface {
	// Next returns the oldest pending record, or nil when the queue is empty
	Next(ctx context.Context) (*record.Record, error)
	Count(ctx context.Context) (int64, error)

	// Process finalizes one pending record with a manual review decision
	Process(ctx context.Context, recordID uuid.UUID, input FinalizeInput) (*expense.Expense, error)

	// Discard deletes a pending record outright. Unlike merge, discard keeps
	// no provenance; the same transaction can be ingested again later.
	Discard(ctx context.Context, recordID uuid.UUID) error

	// FindDuplicates reports pending records sharing exact (date, amount)
	// with other pending records or finalized expenses.
	FindDuplicates(ctx context.Context) ([]*DuplicateCandidate, error)

	// Merge combines two or more pending records into one finalized expense
	Merge(ctx context.Context, recordIDs []uuid.UUID, input FinalizeInput) (*expense.Expense, error)

	// Group combines records like Merge but also creates one visible child
	// expense per original, linked to the summary expense.
	Group(ctx context.Context, recordIDs []uuid.UUID, input FinalizeInput) (*expense.Expense, error)
}

type ServiceImpl struct {
	pgDB        *persistence.PostgresDB
	recordRepo  record.Repository
	expenseRepo expense.Repository
	finalizer   *Finalizer
	auditRepo   audit.Repository
	logger      *slog.Logger
}

func NewService(
	pgDB *persistence.PostgresDB,
	recordRepo record.Repository,
	expenseRepo expense.Repository,
	finalizer *Finalizer,
	auditRepo audit.Repository,
	logger *slog.Logger,
) Service {
	return &ServiceImpl{
		pgDB:        pgDB,
		recordRepo:  recordRepo,
		expenseRepo: expenseRepo,
		finalizer:   finalizer,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// Next returns the oldest pending record
func (s *ServiceImpl) Next(ctx context.Context) (*record.Record, error) {
	return s.recordRepo.NextPending(ctx)
}

// Count returns how many records await review
func (s *ServiceImpl) Count(ctx context.Context) (int64, error) {
	return s.recordRepo.CountPending(ctx)
}

// Process finalizes one pending record atomically
func (s *ServiceImpl) Process(ctx context.Context, recordID uuid.UUID, input FinalizeInput) (*expense.Expense, error) {
	var exp *expense.Expense
	err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		rec, err := s.recordRepo.WithTx(tx).GetByID(ctx, recordID)
		if err != nil {
			return err
		}

		exp, err = s.finalizer.WithTx(tx).Finalize(ctx, rec, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Finalized pending record", "record_id", recordID.String(), "expense_id", exp.ID.String())
	return exp, nil
}

// Discard deletes a pending record, refusing if it was already finalized
func (s *ServiceImpl) Discard(ctx context.Context, recordID uuid.UUID) error {
	return s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		finalized, err := s.expenseRepo.WithTx(tx).ExistsForPendingRecord(ctx, recordID)
		if err != nil {
			return err
		}
		if finalized {
			return expense.ErrAlreadyFinalized{RecordID: recordID}
		}
		return s.recordRepo.WithTx(tx).Delete(ctx, recordID)
	})
}

// recordAudit writes an audit event best-effort
func (s *ServiceImpl) recordAudit(ctx context.Context, kind string, details map[string]string) {
	if s.auditRepo == nil {
		return
	}
	if err := s.auditRepo.Record(ctx, audit.NewEvent(kind, details)); err != nil {
		s.logger.Warn("Failed to record audit event", "kind", kind, "error", err)
	}
}

package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/audit"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
)

// ErrTooFewRecords indicates a merge or group over fewer than two records
type ErrTooFewRecords struct {
	Count int
}

func (e ErrTooFewRecords) Error() string {
	return fmt.Sprintf("merge requires at least 2 records, got %d", e.Count)
}

// Merge combines two or more pending records into one finalized expense:
// summed amount, earliest date, currency and account from the first record.
// The originals survive as archived expense rows so their fingerprints keep
// blocking re-ingestion.
func (s *ServiceImpl) Merge(ctx context.Context, recordIDs []uuid.UUID, input FinalizeInput) (*expense.Expense, error) {
	return s.combine(ctx, recordIDs, input, false)
}

// Group combines records like Merge but additionally creates one visible
// child expense per original, carrying the original's date, amount and
// description, linked to the summary expense.
func (s *ServiceImpl) Group(ctx context.Context, recordIDs []uuid.UUID, input FinalizeInput) (*expense.Expense, error) {
	return s.combine(ctx, recordIDs, input, true)
}

func (s *ServiceImpl) combine(ctx context.Context, recordIDs []uuid.UUID, input FinalizeInput, withChildren bool) (*expense.Expense, error) {
	if len(recordIDs) < 2 {
		return nil, ErrTooFewRecords{Count: len(recordIDs)}
	}
	if err := expense.ValidateType(input.ExpenseType); err != nil {
		return nil, err
	}

	var parent *expense.Expense
	err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recordRepo := s.recordRepo.WithTx(tx)
		expenseRepo := s.expenseRepo.WithTx(tx)
		finalizer := s.finalizer.WithTx(tx)

		// Validate everything up front so a bad ID makes the whole
		// operation a no-op.
		records := make([]*record.Record, 0, len(recordIDs))
		for _, id := range recordIDs {
			rec, err := recordRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			finalized, err := expenseRepo.ExistsForPendingRecord(ctx, id)
			if err != nil {
				return err
			}
			if finalized {
				return expense.ErrAlreadyFinalized{RecordID: id}
			}
			records = append(records, rec)
		}

		total, earliest := combineTotals(records)

		alias, err := finalizer.getOrCreateAlias(ctx, records[0].RawMerchantName, input.MerchantName, input.CategoryID)
		if err != nil {
			return err
		}

		now := time.Now()
		parent = &expense.Expense{
			ID:              uuid.New(),
			AccountID:       records[0].AccountID,
			Date:            earliest,
			Amount:          total,
			Currency:        records[0].Currency,
			MerchantAliasID: &alias.ID,
			CategoryID:      &input.CategoryID,
			Description:     input.Description,
			Type:            input.ExpenseType,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := expenseRepo.Create(ctx, parent); err != nil {
			return err
		}
		if err := finalizer.attachTags(ctx, parent.ID, input.Tags); err != nil {
			return err
		}

		// Archive the originals as expense rows. They keep their
		// fingerprints, which is what keeps the merged transactions from
		// being ingested again.
		for _, rec := range records {
			archived := &expense.Expense{
				ID:              uuid.New(),
				PendingRecordID: &rec.ID,
				AccountID:       rec.AccountID,
				Date:            rec.Date,
				Amount:          rec.Amount,
				Currency:        rec.Currency,
				Fingerprint:     rec.Fingerprint,
				MerchantAliasID: &alias.ID,
				CategoryID:      &input.CategoryID,
				Description:     rec.RawDescription,
				ParentExpenseID: &parent.ID,
				Archived:        true,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := expenseRepo.Create(ctx, archived); err != nil {
				return err
			}
		}

		if withChildren {
			for _, rec := range records {
				child := &expense.Expense{
					ID:              uuid.New(),
					AccountID:       rec.AccountID,
					Date:            rec.Date,
					Amount:          rec.Amount,
					Currency:        rec.Currency,
					MerchantAliasID: &alias.ID,
					CategoryID:      &input.CategoryID,
					Description:     rec.RawDescription,
					Type:            input.ExpenseType,
					ParentExpenseID: &parent.ID,
					CreatedAt:       now,
					UpdatedAt:       now,
				}
				if err := expenseRepo.Create(ctx, child); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := audit.KindRecordsMerged
	if withChildren {
		kind = audit.KindRecordsGrouped
	}
	s.recordAudit(ctx, kind, map[string]string{
		"expense_id": parent.ID.String(),
		"record_ids": joinIDs(recordIDs),
		"amount":     parent.Amount.String(),
	})

	s.logger.Info("Combined pending records",
		"expense_id", parent.ID.String(),
		"records", len(recordIDs),
		"grouped", withChildren,
	)
	return parent, nil
}

// combineTotals sums the amounts and picks the earliest transaction date
func combineTotals(records []*record.Record) (decimal.Decimal, time.Time) {
	total := decimal.Zero
	earliest := records[0].Date
	for _, rec := range records {
		total = total.Add(rec.Amount)
		if rec.Date.Before(earliest) {
			earliest = rec.Date
		}
	}
	return total, earliest
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

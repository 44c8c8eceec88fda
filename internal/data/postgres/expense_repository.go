package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

const expenseColumns = `id, pending_record_id, account_id, transaction_date, amount, currency,
		fingerprint, merchant_alias_id, category_id, description, expense_type,
		parent_expense_id, archived, created_at, updated_at`

// ExpenseRepository implements the expense.Repository interface for PostgreSQL
type ExpenseRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewExpenseRepository creates a new PostgreSQL expense repository
func NewExpenseRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.Repository {
	return &ExpenseRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return &ExpenseRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a finalized expense
func (r *ExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	query := `
		INSERT INTO expenses (id, pending_record_id, account_id, transaction_date, amount, currency,
			fingerprint, merchant_alias_id, category_id, description, expense_type,
			parent_expense_id, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.querier.Exec(ctx, query,
		exp.ID,
		exp.PendingRecordID,
		exp.AccountID,
		exp.Date,
		exp.Amount,
		exp.Currency,
		exp.Fingerprint,
		exp.MerchantAliasID,
		exp.CategoryID,
		exp.Description,
		exp.Type,
		exp.ParentExpenseID,
		exp.Archived,
		exp.CreatedAt,
		exp.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", "error", err)
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetByID retrieves an expense by its ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	exp, err := scanExpense(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, expense.ErrExpenseNotFound{ExpenseID: id}
		}
		r.logger.Error("Failed to get expense", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return exp, nil
}

// ExistsForPendingRecord reports whether a pending record was already finalized
func (r *ExpenseRepository) ExistsForPendingRecord(ctx context.Context, recordID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM expenses WHERE pending_record_id = $1)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, recordID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check expense for record", "record_id", recordID.String(), "error", err)
		return false, fmt.Errorf("failed to check expense for record: %w", err)
	}

	return exists, nil
}

// ListByDateAmount returns expenses sharing the exact (date, amount) pair.
// Archived expenses are included so merged originals still flag duplicates.
func (r *ExpenseRepository) ListByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]*expense.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE transaction_date = $1 AND amount = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, date, amount)
	if err != nil {
		r.logger.Error("Failed to list expenses by date and amount", "error", err)
		return nil, fmt.Errorf("failed to list expenses by date and amount: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}

	return expenses, nil
}

// AttachTags links tags to an expense, ignoring links that already exist
func (r *ExpenseRepository) AttachTags(ctx context.Context, expenseID uuid.UUID, tagIDs []uuid.UUID) error {
	query := `
		INSERT INTO expense_tags (expense_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (expense_id, tag_id) DO NOTHING
	`

	for _, tagID := range tagIDs {
		if _, err := r.querier.Exec(ctx, query, expenseID, tagID); err != nil {
			r.logger.Error("Failed to attach tag", "expense_id", expenseID.String(), "tag_id", tagID.String(), "error", err)
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}

	return nil
}

func scanExpense(row pgx.Row) (*expense.Expense, error) {
	var exp expense.Expense
	err := row.Scan(
		&exp.ID,
		&exp.PendingRecordID,
		&exp.AccountID,
		&exp.Date,
		&exp.Amount,
		&exp.Currency,
		&exp.Fingerprint,
		&exp.MerchantAliasID,
		&exp.CategoryID,
		&exp.Description,
		&exp.Type,
		&exp.ParentExpenseID,
		&exp.Archived,
		&exp.CreatedAt,
		&exp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

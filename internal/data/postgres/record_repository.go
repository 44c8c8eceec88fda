package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

const recordColumns = `id, account_id, fingerprint, transaction_date, amount, currency,
		raw_merchant_name, raw_description, source, source_file, imported_at`

// A record is pending while no expense row links back to it.
const pendingFilter = `NOT EXISTS (SELECT 1 FROM expenses e WHERE e.pending_record_id = pr.id)`

// RecordRepository implements the record.Repository interface for PostgreSQL
type RecordRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewRecordRepository creates a new PostgreSQL pending record repository
func NewRecordRepository(logger *slog.Logger, db *persistence.PostgresDB) record.Repository {
	return &RecordRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *RecordRepository) WithTx(tx pgx.Tx) record.Repository {
	return &RecordRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a pending record. The (account_id, fingerprint) unique
// constraint turns racing duplicate inserts into ErrDuplicateFingerprint.
func (r *RecordRepository) Create(ctx context.Context, rec *record.Record) error {
	query := `
		INSERT INTO pending_records (id, account_id, fingerprint, transaction_date, amount, currency,
			raw_merchant_name, raw_description, source, source_file, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.AccountID,
		rec.Fingerprint,
		rec.Date,
		rec.Amount,
		rec.Currency,
		rec.RawMerchantName,
		rec.RawDescription,
		rec.Source,
		rec.SourceFile,
		rec.ImportedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return record.ErrDuplicateFingerprint{AccountID: rec.AccountID, Fingerprint: rec.Fingerprint}
		}
		r.logger.Error("Failed to create pending record", "error", err)
		return fmt.Errorf("failed to create pending record: %w", err)
	}

	return nil
}

// GetByID retrieves a pending record by its ID
func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM pending_records WHERE id = $1`

	rec, err := scanRecord(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrRecordNotFound{RecordID: id}
		}
		r.logger.Error("Failed to get pending record", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get pending record: %w", err)
	}

	return rec, nil
}

// ExistsByFingerprint reports whether the fingerprint was ever ingested for
// the account, through a pending record or a finalized expense. Discarded
// records leave no trace and can be ingested again.
func (r *RecordRepository) ExistsByFingerprint(ctx context.Context, accountID uuid.UUID, fingerprint string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM pending_records WHERE account_id = $1 AND fingerprint = $2
		) OR EXISTS (
			SELECT 1 FROM expenses WHERE account_id = $1 AND fingerprint = $2
		)
	`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, accountID, fingerprint).Scan(&exists); err != nil {
		r.logger.Error("Failed to check fingerprint", "account_id", accountID.String(), "error", err)
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}

	return exists, nil
}

// ListPending returns records awaiting review, oldest import first
func (r *RecordRepository) ListPending(ctx context.Context) ([]*record.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM pending_records pr
		WHERE ` + pendingFilter + `
		ORDER BY imported_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list pending records", "error", err)
		return nil, fmt.Errorf("failed to list pending records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// NextPending returns the oldest record awaiting review, or nil when the
// queue is empty.
func (r *RecordRepository) NextPending(ctx context.Context) (*record.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM pending_records pr
		WHERE ` + pendingFilter + `
		ORDER BY imported_at ASC, id ASC
		LIMIT 1
	`

	rec, err := scanRecord(r.querier.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Empty queue
		}
		r.logger.Error("Failed to get next pending record", "error", err)
		return nil, fmt.Errorf("failed to get next pending record: %w", err)
	}

	return rec, nil
}

// CountPending returns how many records await review
func (r *RecordRepository) CountPending(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM pending_records pr WHERE ` + pendingFilter

	var count int64
	if err := r.querier.QueryRow(ctx, query).Scan(&count); err != nil {
		r.logger.Error("Failed to count pending records", "error", err)
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}

	return count, nil
}

// ListPendingByDateAmount returns pending records sharing the exact
// (date, amount) pair, used by the duplicate finder.
func (r *RecordRepository) ListPendingByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]*record.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM pending_records pr
		WHERE transaction_date = $1 AND amount = $2 AND ` + pendingFilter + `
		ORDER BY imported_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, date, amount)
	if err != nil {
		r.logger.Error("Failed to list records by date and amount", "error", err)
		return nil, fmt.Errorf("failed to list records by date and amount: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Delete removes a pending record outright. Used by discard, which by
// contract keeps no provenance.
func (r *RecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM pending_records WHERE id = $1`

	tag, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete pending record", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete pending record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return record.ErrRecordNotFound{RecordID: id}
	}

	return nil
}

func scanRecord(row pgx.Row) (*record.Record, error) {
	var rec record.Record
	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Fingerprint,
		&rec.Date,
		&rec.Amount,
		&rec.Currency,
		&rec.RawMerchantName,
		&rec.RawDescription,
		&rec.Source,
		&rec.SourceFile,
		&rec.ImportedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows pgx.Rows) ([]*record.Record, error) {
	var records []*record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending records: %w", err)
	}
	return records, nil
}

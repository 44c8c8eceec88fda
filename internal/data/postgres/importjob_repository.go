package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/importjob"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

const jobColumns = `id, filename, stored_filename, account_id, file_size, status,
		records_imported, records_skipped, error_message, imported_at, processed_at`

// ImportJobRepository implements the importjob.Repository interface for PostgreSQL
type ImportJobRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewImportJobRepository creates a new PostgreSQL import job repository
func NewImportJobRepository(logger *slog.Logger, db *persistence.PostgresDB) importjob.Repository {
	return &ImportJobRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ImportJobRepository) WithTx(tx pgx.Tx) importjob.Repository {
	return &ImportJobRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new import job
func (r *ImportJobRepository) Create(ctx context.Context, job *importjob.Job) error {
	query := `
		INSERT INTO import_jobs (id, filename, stored_filename, account_id, file_size, status,
			records_imported, records_skipped, error_message, imported_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		job.ID,
		job.Filename,
		job.StoredFilename,
		job.AccountID,
		job.FileSize,
		job.Status,
		job.RecordsImported,
		job.RecordsSkipped,
		job.ErrorMessage,
		job.ImportedAt,
		job.ProcessedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create import job", "error", err)
		return fmt.Errorf("failed to create import job: %w", err)
	}

	return nil
}

// Update persists the current state of an import job
func (r *ImportJobRepository) Update(ctx context.Context, job *importjob.Job) error {
	query := `
		UPDATE import_jobs
		SET account_id = $2, status = $3, records_imported = $4, records_skipped = $5,
			error_message = $6, processed_at = $7
		WHERE id = $1
	`

	tag, err := r.querier.Exec(ctx, query,
		job.ID,
		job.AccountID,
		job.Status,
		job.RecordsImported,
		job.RecordsSkipped,
		job.ErrorMessage,
		job.ProcessedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update import job", "id", job.ID.String(), "error", err)
		return fmt.Errorf("failed to update import job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return importjob.ErrJobNotFound{JobID: job.ID}
	}

	return nil
}

// GetByID retrieves an import job by its ID
func (r *ImportJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*importjob.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs WHERE id = $1`

	job, err := scanJob(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, importjob.ErrJobNotFound{JobID: id}
		}
		r.logger.Error("Failed to get import job", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}

	return job, nil
}

// List returns import jobs newest first
func (r *ImportJobRepository) List(ctx context.Context) ([]*importjob.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs ORDER BY imported_at DESC, id DESC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list import jobs", "error", err)
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*importjob.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import jobs: %w", err)
	}

	return jobs, nil
}

func scanJob(row pgx.Row) (*importjob.Job, error) {
	var job importjob.Job
	err := row.Scan(
		&job.ID,
		&job.Filename,
		&job.StoredFilename,
		&job.AccountID,
		&job.FileSize,
		&job.Status,
		&job.RecordsImported,
		&job.RecordsSkipped,
		&job.ErrorMessage,
		&job.ImportedAt,
		&job.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

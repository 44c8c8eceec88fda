package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

// TagRepository implements expense.TagRepository for PostgreSQL
type TagRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTagRepository creates a new PostgreSQL tag repository
func NewTagRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.TagRepository {
	return &TagRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *TagRepository) WithTx(tx pgx.Tx) expense.TagRepository {
	return &TagRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByName retrieves a tag by name
func (r *TagRepository) GetByName(ctx context.Context, name string) (*expense.Tag, error) {
	query := `SELECT id, name, created_at FROM tags WHERE name = $1`

	var tag expense.Tag
	err := r.querier.QueryRow(ctx, query, name).Scan(
		&tag.ID,
		&tag.Name,
		&tag.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No tag yet; callers create one on first use
		}
		r.logger.Error("Failed to get tag", "name", name, "error", err)
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

// Create stores a new tag
func (r *TagRepository) Create(ctx context.Context, tag *expense.Tag) error {
	query := `INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := r.querier.Exec(ctx, query,
		tag.ID,
		tag.Name,
		tag.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create tag", "error", err)
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

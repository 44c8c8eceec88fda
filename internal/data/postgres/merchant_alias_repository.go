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

// MerchantAliasRepository implements expense.MerchantAliasRepository for PostgreSQL
type MerchantAliasRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewMerchantAliasRepository creates a new PostgreSQL merchant alias repository
func NewMerchantAliasRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.MerchantAliasRepository {
	return &MerchantAliasRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *MerchantAliasRepository) WithTx(tx pgx.Tx) expense.MerchantAliasRepository {
	return &MerchantAliasRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByDisplayName retrieves an alias by display name
func (r *MerchantAliasRepository) GetByDisplayName(ctx context.Context, displayName string) (*expense.MerchantAlias, error) {
	query := `
		SELECT id, raw_name, display_name, default_category_id, created_at
		FROM merchant_aliases
		WHERE display_name = $1
	`

	var alias expense.MerchantAlias
	err := r.querier.QueryRow(ctx, query, displayName).Scan(
		&alias.ID,
		&alias.RawName,
		&alias.DisplayName,
		&alias.DefaultCategoryID,
		&alias.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No alias yet; callers create one on first use
		}
		r.logger.Error("Failed to get merchant alias", "display_name", displayName, "error", err)
		return nil, fmt.Errorf("failed to get merchant alias: %w", err)
	}

	return &alias, nil
}

// Create stores a new merchant alias
func (r *MerchantAliasRepository) Create(ctx context.Context, alias *expense.MerchantAlias) error {
	query := `
		INSERT INTO merchant_aliases (id, raw_name, display_name, default_category_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		alias.ID,
		alias.RawName,
		alias.DisplayName,
		alias.DefaultCategoryID,
		alias.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create merchant alias", "error", err)
		return fmt.Errorf("failed to create merchant alias: %w", err)
	}

	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/rule"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

// RuleRepository implements the rule.Repository interface for PostgreSQL.
// Rules are managed elsewhere; the pipeline only reads the active set.
type RuleRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewRuleRepository creates a new PostgreSQL rule repository
func NewRuleRepository(logger *slog.Logger, db *persistence.PostgresDB) rule.Repository {
	return &RuleRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *RuleRepository) WithTx(tx pgx.Tx) rule.Repository {
	return &RuleRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// ListActive returns active rules in creation order, the order the engine
// evaluates them in.
func (r *RuleRepository) ListActive(ctx context.Context) ([]*rule.Rule, error) {
	query := `
		SELECT id, name, active, match_field, match_type, match_value, action, save_data, created_at, updated_at
		FROM rules
		WHERE active = TRUE
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list active rules", "error", err)
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	defer rows.Close()

	var rules []*rule.Rule
	for rows.Next() {
		var ru rule.Rule
		var saveData []byte
		err := rows.Scan(
			&ru.ID,
			&ru.Name,
			&ru.Active,
			&ru.Field,
			&ru.MatchType,
			&ru.MatchValue,
			&ru.Action,
			&saveData,
			&ru.CreatedAt,
			&ru.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if len(saveData) > 0 {
			var sd rule.SaveData
			if err := json.Unmarshal(saveData, &sd); err != nil {
				return nil, fmt.Errorf("failed to decode rule save data: %w", err)
			}
			ru.SaveData = &sd
		}
		rules = append(rules, &ru)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	return rules, nil
}

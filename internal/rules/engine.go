// Package rules implements the triage rule engine: one batch pass that runs
// every active rule over every pending record, discarding or finalizing the
// records whose first matching rule says so.
package rules

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/audit"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/rule"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
	"github.com/ErmoGarcia/expense-toolkit/internal/queue"
)

// Result summarizes one rule pass
type Result struct {
	Processed int `json:"processed"`
	Discarded int `json:"discarded"`
	Saved     int `json:"saved"`
}

// Engine runs rule passes over the pending queue
type Engine interface {
	// ApplyAll runs one pass over all pending records inside a single
	// transaction. Records no rule matches are left untouched.
	ApplyAll(ctx context.Context) (*Result, error)
}

type EngineImpl struct {
	pgDB       *persistence.PostgresDB
	ruleRepo   rule.Repository
	recordRepo record.Repository
	finalizer  *queue.Finalizer
	auditRepo  audit.Repository
	logger     *slog.Logger
}

func NewEngine(
	pgDB *persistence.PostgresDB,
	ruleRepo rule.Repository,
	recordRepo record.Repository,
	finalizer *queue.Finalizer,
	auditRepo audit.Repository,
	logger *slog.Logger,
) Engine {
	return &EngineImpl{
		pgDB:       pgDB,
		ruleRepo:   ruleRepo,
		recordRepo: recordRepo,
		finalizer:  finalizer,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// ApplyAll runs one batch pass. Rules apply in creation order and the first
// match wins per record, so discard rules placed before save rules take
// precedence.
func (e *EngineImpl) ApplyAll(ctx context.Context) (*Result, error) {
	result := &Result{}

	err := e.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		ruleRepo := e.ruleRepo.WithTx(tx)
		recordRepo := e.recordRepo.WithTx(tx)
		finalizer := e.finalizer.WithTx(tx)

		rules, err := ruleRepo.ListActive(ctx)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}

		pending, err := recordRepo.ListPending(ctx)
		if err != nil {
			return err
		}

		for _, rec := range pending {
			result.Processed++

			matched := firstMatch(rules, rec)
			if matched == nil {
				continue
			}

			switch matched.Action {
			case rule.ActionDiscard:
				if err := recordRepo.Delete(ctx, rec.ID); err != nil {
					return err
				}
				result.Discarded++
			case rule.ActionSave:
				input := queue.FinalizeInput{
					MerchantName: matched.SaveData.MerchantName,
					CategoryID:   matched.SaveData.CategoryID,
					Description:  matched.SaveData.Description,
					Tags:         matched.SaveData.Tags,
					ExpenseType:  matched.SaveData.ExpenseType,
				}
				if _, err := finalizer.Finalize(ctx, rec, input); err != nil {
					return err
				}
				result.Saved++
			}

			e.logger.Debug("Rule matched",
				"rule", matched.Name,
				"record_id", rec.ID.String(),
				"action", string(matched.Action),
			)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.recordAudit(ctx, map[string]string{
		"processed": strconv.Itoa(result.Processed),
		"discarded": strconv.Itoa(result.Discarded),
		"saved":     strconv.Itoa(result.Saved),
	})

	e.logger.Info("Rule pass completed",
		"processed", result.Processed,
		"discarded", result.Discarded,
		"saved", result.Saved,
	)
	return result, nil
}

// firstMatch returns the first rule matching the record, or nil
func firstMatch(rules []*rule.Rule, rec *record.Record) *rule.Rule {
	for _, r := range rules {
		if Matches(r, rec) {
			return r
		}
	}
	return nil
}

// Matches evaluates one rule against one record. A broken rule (oversized or
// uncompilable pattern) is a no-match, never an error: one bad rule must not
// stall a whole pass.
func Matches(r *rule.Rule, rec *record.Record) bool {
	value := r.Field.Value(rec)

	switch r.MatchType {
	case rule.MatchExact:
		return value == r.MatchValue
	case rule.MatchRegex:
		if len(r.MatchValue) > rule.MaxPatternLength {
			return false
		}
		re, err := regexp.Compile("(?i)" + r.MatchValue)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	default:
		return false
	}
}

// recordAudit writes an audit event best-effort
func (e *EngineImpl) recordAudit(ctx context.Context, details map[string]string) {
	if e.auditRepo == nil {
		return
	}
	if err := e.auditRepo.Record(ctx, audit.NewEvent(audit.KindRulesApplied, details)); err != nil {
		e.logger.Warn("Failed to record audit event", "kind", audit.KindRulesApplied, "error", err)
	}
}

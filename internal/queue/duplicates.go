package queue

import (
	"context"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
)

// DuplicateCandidate is one pending record together with everything that
// shares its exact (date, amount) pair. The finder only reports; resolution
// stays with the reviewer.
type DuplicateCandidate struct {
	Record         *record.Record     `json:"record"`
	PendingMatches []*record.Record   `json:"pending_matches,omitempty"`
	ExpenseMatches []*expense.Expense `json:"expense_matches,omitempty"`
}

// FindDuplicates scans the whole pending queue. Quadratic over queue size,
// which stays small in practice because the queue is worked down daily.
func (s *ServiceImpl) FindDuplicates(ctx context.Context) ([]*DuplicateCandidate, error) {
	pending, err := s.recordRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []*DuplicateCandidate
	for _, rec := range pending {
		siblings, err := s.recordRepo.ListPendingByDateAmount(ctx, rec.Date, rec.Amount)
		if err != nil {
			return nil, err
		}

		var pendingMatches []*record.Record
		for _, sib := range siblings {
			if sib.ID != rec.ID {
				pendingMatches = append(pendingMatches, sib)
			}
		}

		expenseMatches, err := s.expenseRepo.ListByDateAmount(ctx, rec.Date, rec.Amount)
		if err != nil {
			return nil, err
		}

		if len(pendingMatches) == 0 && len(expenseMatches) == 0 {
			continue
		}

		candidates = append(candidates, &DuplicateCandidate{
			Record:         rec,
			PendingMatches: pendingMatches,
			ExpenseMatches: expenseMatches,
		})
	}

	return candidates, nil
}

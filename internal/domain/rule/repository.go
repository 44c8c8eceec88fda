package rule

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines rule persistence operations. Rules are produced by an
// external management UI; the pipeline only reads them.
type Repository interface {
	// ListActive returns active rules in creation order, which is the
	// order the engine evaluates them in.
	ListActive(ctx context.Context) ([]*Rule, error)
	WithTx(tx pgx.Tx) Repository
}

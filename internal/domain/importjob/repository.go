package importjob

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines import job persistence operations
type Repository interface {
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// List returns jobs newest first
	List(ctx context.Context) ([]*Job, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrJobNotFound indicates a missing import job
type ErrJobNotFound struct {
	JobID uuid.UUID
}

func (e ErrJobNotFound) Error() string {
	return "import job not found: " + e.JobID.String()
}

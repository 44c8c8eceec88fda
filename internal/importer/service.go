// Package importer orchestrates bank statement file imports: it stores the
// upload, tracks the job lifecycle, detects the format, and persists the
// parsed transactions atomically with exact imported/skipped accounting.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/config"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/account"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/audit"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/importjob"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
	"github.com/ErmoGarcia/expense-toolkit/internal/parser"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

// Service orchestrates statement file imports
type Service interface {
	// Import stores the uploaded file, runs the full pipeline, and returns
	// the terminal job. A failed import returns the job with a nil error;
	// the error return is for infrastructure failures only.
	Import(ctx context.Context, filename string, src io.Reader) (*importjob.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*importjob.Job, error)
	ListJobs(ctx context.Context) ([]*importjob.Job, error)
}

type ServiceImpl struct {
	pgDB        *persistence.PostgresDB
	registry    *parser.Registry
	jobRepo     importjob.Repository
	accountRepo account.Repository
	recordRepo  record.Repository
	auditRepo   audit.Repository
	cfg         *config.ImportConfig
	logger      *slog.Logger
}

func NewService(
	pgDB *persistence.PostgresDB,
	registry *parser.Registry,
	jobRepo importjob.Repository,
	accountRepo account.Repository,
	recordRepo record.Repository,
	auditRepo audit.Repository,
	cfg *config.ImportConfig,
	logger *slog.Logger,
) Service {
	return &ServiceImpl{
		pgDB:        pgDB,
		registry:    registry,
		jobRepo:     jobRepo,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		auditRepo:   auditRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Import runs the whole pipeline for one uploaded file
func (s *ServiceImpl) Import(ctx context.Context, filename string, src io.Reader) (*importjob.Job, error) {
	path, size, err := s.storeUpload(filename, src)
	if err != nil {
		return nil, err
	}

	job, err := importjob.NewJob(filename, filepath.Base(path), size)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	// The processing status is committed before parsing starts so a crash
	// mid-parse leaves a visibly stuck job rather than a phantom pending one.
	if err := job.MarkProcessing(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Processing import", "job_id", job.ID.String(), "filename", filename)

	if err := s.process(ctx, job, path); err != nil {
		return s.failJob(ctx, job, err)
	}

	s.recordAudit(ctx, audit.KindImportCompleted, map[string]string{
		"job_id":   job.ID.String(),
		"filename": job.Filename,
		"imported": strconv.Itoa(*job.RecordsImported),
		"skipped":  strconv.Itoa(*job.RecordsSkipped),
	})

	s.logger.Info("Import completed",
		"job_id", job.ID.String(),
		"imported", *job.RecordsImported,
		"skipped", *job.RecordsSkipped,
	)
	return job, nil
}

// process detects the format, parses, and persists everything in one
// database transaction. Either all rows land with the completed status, or
// none do.
func (s *ServiceImpl) process(ctx context.Context, job *importjob.Job, path string) error {
	p, err := s.registry.Detect(path)
	if err != nil {
		return err
	}

	s.logger.Info("Detected statement format", "job_id", job.ID.String(), "parser", p.Name())

	txs, err := p.Parse(ctx, path)
	if err != nil {
		return err
	}

	return s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)
		recordRepo := s.recordRepo.WithTx(tx)
		jobRepo := s.jobRepo.WithTx(tx)

		acc, err := s.getOrCreateAccount(ctx, accountRepo, p.BankName())
		if err != nil {
			return err
		}
		job.AccountID = &acc.ID

		imported, skipped := 0, 0
		seen := make(map[string]struct{}, len(txs)) // Dedup within the file itself

		for _, t := range txs {
			if _, ok := seen[t.Fingerprint]; ok {
				skipped++
				continue
			}
			seen[t.Fingerprint] = struct{}{}

			exists, err := recordRepo.ExistsByFingerprint(ctx, acc.ID, t.Fingerprint)
			if err != nil {
				return err
			}
			if exists {
				skipped++
				continue
			}

			err = recordRepo.Create(ctx, record.FromCanonical(acc.ID, t, job.Filename))
			if err != nil {
				var dup record.ErrDuplicateFingerprint
				if errors.As(err, &dup) {
					skipped++
					continue
				}
				return err
			}
			imported++
		}

		if err := job.Complete(imported, skipped); err != nil {
			return err
		}
		return jobRepo.Update(ctx, job)
	})
}

func (s *ServiceImpl) getOrCreateAccount(ctx context.Context, repo account.Repository, bankName string) (*account.Account, error) {
	acc, err := repo.GetByBankName(ctx, bankName)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		return acc, nil
	}

	acc, err = account.NewAccount(bankName, s.cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("Created account", "account_id", acc.ID.String(), "bank_name", bankName)
	return acc, nil
}

// failJob records the failure on the job itself. The job update happens
// outside the rolled-back import transaction so the verdict survives.
func (s *ServiceImpl) failJob(ctx context.Context, job *importjob.Job, cause error) (*importjob.Job, error) {
	s.logger.Error("Import failed", "job_id", job.ID.String(), "error", cause)

	if err := job.Fail(cause.Error()); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record import failure: %w", err)
	}

	s.recordAudit(ctx, audit.KindImportFailed, map[string]string{
		"job_id":   job.ID.String(),
		"filename": job.Filename,
		"error":    cause.Error(),
	})

	return job, nil
}

// GetJob retrieves one import job
func (s *ServiceImpl) GetJob(ctx context.Context, id uuid.UUID) (*importjob.Job, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ListJobs returns all import jobs, newest first
func (s *ServiceImpl) ListJobs(ctx context.Context) ([]*importjob.Job, error) {
	return s.jobRepo.List(ctx)
}

// storeUpload copies the upload into the configured directory under a
// collision-free name, keeping the original extension for format detection.
func (s *ServiceImpl) storeUpload(filename string, src io.Reader) (string, int64, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	stored := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(s.cfg.UploadDir, stored)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", 0, fmt.Errorf("failed to store upload: %w", err)
	}
	if size > s.cfg.MaxUploadBytes {
		_ = os.Remove(path)
		return "", 0, ErrUploadTooLarge{Filename: filename, Limit: s.cfg.MaxUploadBytes}
	}

	return path, size, nil
}

// recordAudit writes an audit event best-effort; audit failures never fail imports
func (s *ServiceImpl) recordAudit(ctx context.Context, kind string, details map[string]string) {
	if s.auditRepo == nil {
		return
	}
	if err := s.auditRepo.Record(ctx, audit.NewEvent(kind, details)); err != nil {
		s.logger.Warn("Failed to record audit event", "kind", kind, "error", err)
	}
}

// ErrUploadTooLarge indicates the uploaded file exceeds the configured limit
type ErrUploadTooLarge struct {
	Filename string
	Limit    int64
}

func (e ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("file %s exceeds the upload limit of %d bytes", e.Filename, e.Limit)
}

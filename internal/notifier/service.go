package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ErmoGarcia/expense-toolkit/internal/config"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/account"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/notification"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/messaging/producers"
	"github.com/ErmoGarcia/expense-toolkit/internal/platform/persistence"
)

// Service handles notification intake and asynchronous processing
type Service interface {
	// Ingest stores incoming payloads and queues them for processing.
	// A failed publish leaves the notification stored and unprocessed so it
	// can be picked up again.
	Ingest(ctx context.Context, payloads []*notification.Payload) ([]*notification.RawNotification, error)

	// Process parses one stored notification and, when it describes an
	// expense or income movement, persists a pending record.
	Process(ctx context.Context, id uuid.UUID) error

	ListUnprocessed(ctx context.Context) ([]*notification.RawNotification, error)
}

type ServiceImpl struct {
	pgDB             *persistence.PostgresDB
	notificationRepo notification.Repository
	accountRepo      account.Repository
	recordRepo       record.Repository
	producer         producers.MessagePublisher
	cfg              *config.ImportConfig
	logger           *slog.Logger
}

func NewService(
	pgDB *persistence.PostgresDB,
	notificationRepo notification.Repository,
	accountRepo account.Repository,
	recordRepo record.Repository,
	producer producers.MessagePublisher,
	cfg *config.ImportConfig,
	logger *slog.Logger,
) Service {
	return &ServiceImpl{
		pgDB:             pgDB,
		notificationRepo: notificationRepo,
		accountRepo:      accountRepo,
		recordRepo:       recordRepo,
		producer:         producer,
		cfg:              cfg,
		logger:           logger,
	}
}

// Ingest stores the payloads and publishes their IDs to the notification topic
func (s *ServiceImpl) Ingest(ctx context.Context, payloads []*notification.Payload) ([]*notification.RawNotification, error) {
	stored := make([]*notification.RawNotification, 0, len(payloads))

	for _, p := range payloads {
		n := notification.FromPayload(p)
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			return stored, err
		}
		stored = append(stored, n)

		if s.producer == nil {
			continue
		}
		if err := s.producer.Publish(ctx, n.ID.String(), n); err != nil {
			// Still stored; ListUnprocessed keeps it reachable for a retry
			s.logger.Error("Failed to queue notification", "notification_id", n.ID.String(), "error", err)
		}
	}

	return stored, nil
}

// Process parses a stored notification and records the verdict
func (s *ServiceImpl) Process(ctx context.Context, id uuid.UUID) error {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Processed {
		return nil // Re-delivered message; verdict already stored
	}

	extraction := Classify(n.Text)
	if extraction == nil {
		return s.notificationRepo.MarkProcessed(ctx, n.ID, false, nil, "")
	}

	date := n.ReceivedAt
	if n.NotifiedAt != nil {
		date = *n.NotifiedAt
	}

	canonical := transaction.WithFingerprint(transaction.Canonical{
		Date:            transaction.TruncateToDay(date),
		Amount:          extraction.Amount,
		Currency:        s.cfg.DefaultCurrency,
		RawMerchantName: extraction.Merchant,
		RawDescription:  n.Text,
		Source:          transaction.SourceNotification,
	})

	err = s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)
		recordRepo := s.recordRepo.WithTx(tx)
		notificationRepo := s.notificationRepo.WithTx(tx)

		acc, err := s.getOrCreateAccount(ctx, accountRepo, BankName(n.AppPackage))
		if err != nil {
			return err
		}

		exists, err := recordRepo.ExistsByFingerprint(ctx, acc.ID, canonical.Fingerprint)
		if err != nil {
			return err
		}
		if exists {
			return notificationRepo.MarkProcessed(ctx, n.ID, true, nil, "duplicate of an existing record")
		}

		rec := record.FromCanonical(acc.ID, canonical, "")
		if err := recordRepo.Create(ctx, rec); err != nil {
			var dup record.ErrDuplicateFingerprint
			if errors.As(err, &dup) {
				return notificationRepo.MarkProcessed(ctx, n.ID, true, nil, "duplicate of an existing record")
			}
			return err
		}

		s.logger.Info("Notification parsed into pending record",
			"notification_id", n.ID.String(),
			"record_id", rec.ID.String(),
			"pattern", extraction.Pattern,
		)
		return notificationRepo.MarkProcessed(ctx, n.ID, true, &rec.ID, "")
	})
	if err != nil {
		// Store the parse failure so the notification does not loop forever
		if markErr := s.notificationRepo.MarkProcessed(ctx, n.ID, false, nil, err.Error()); markErr != nil {
			return markErr
		}
		s.logger.Error("Failed to process notification", "notification_id", n.ID.String(), "error", err)
	}

	return nil
}

// ListUnprocessed returns stored notifications awaiting a verdict
func (s *ServiceImpl) ListUnprocessed(ctx context.Context) ([]*notification.RawNotification, error) {
	return s.notificationRepo.ListUnprocessed(ctx)
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

package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/expense"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
)

// Mock implementations of the repository dependencies

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, rec *record.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.Record), args.Error(1)
}

func (m *MockRecordRepository) ExistsByFingerprint(ctx context.Context, accountID uuid.UUID, fingerprint string) (bool, error) {
	args := m.Called(ctx, accountID, fingerprint)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) ListPending(ctx context.Context) ([]*record.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*record.Record), args.Error(1)
}

func (m *MockRecordRepository) NextPending(ctx context.Context) (*record.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.Record), args.Error(1)
}

func (m *MockRecordRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) ListPendingByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]*record.Record, error) {
	args := m.Called(ctx, date, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*record.Record), args.Error(1)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordRepository) WithTx(tx pgx.Tx) record.Repository {
	return m
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ExistsForPendingRecord(ctx context.Context, recordID uuid.UUID) (bool, error) {
	args := m.Called(ctx, recordID)
	return args.Bool(0), args.Error(1)
}

func (m *MockExpenseRepository) ListByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]*expense.Expense, error) {
	args := m.Called(ctx, date, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) AttachTags(ctx context.Context, expenseID uuid.UUID, tagIDs []uuid.UUID) error {
	args := m.Called(ctx, expenseID, tagIDs)
	return args.Error(0)
}

func (m *MockExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return m
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func pendingRecord(date time.Time, amount string) *record.Record {
	return &record.Record{
		ID:     uuid.New(),
		Date:   date,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestFindDuplicates(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("reports pending siblings", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		expenseRepo := new(MockExpenseRepository)
		s := &ServiceImpl{recordRepo: recordRepo, expenseRepo: expenseRepo, logger: testLogger()}

		a := pendingRecord(day, "-15.99")
		b := pendingRecord(day, "-15.99")

		recordRepo.On("ListPending", ctx).Return([]*record.Record{a, b}, nil)
		recordRepo.On("ListPendingByDateAmount", ctx, day, a.Amount).Return([]*record.Record{a, b}, nil)
		expenseRepo.On("ListByDateAmount", ctx, day, a.Amount).Return([]*expense.Expense(nil), nil)

		candidates, err := s.FindDuplicates(ctx)
		require.NoError(t, err)
		require.Len(t, candidates, 2)

		assert.Equal(t, a.ID, candidates[0].Record.ID)
		require.Len(t, candidates[0].PendingMatches, 1)
		assert.Equal(t, b.ID, candidates[0].PendingMatches[0].ID)
		assert.Empty(t, candidates[0].ExpenseMatches)
	})

	t.Run("reports finalized expense siblings", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		expenseRepo := new(MockExpenseRepository)
		s := &ServiceImpl{recordRepo: recordRepo, expenseRepo: expenseRepo, logger: testLogger()}

		rec := pendingRecord(day, "-9.99")
		exp := &expense.Expense{ID: uuid.New(), Date: day, Amount: rec.Amount, Archived: true}

		recordRepo.On("ListPending", ctx).Return([]*record.Record{rec}, nil)
		recordRepo.On("ListPendingByDateAmount", ctx, day, rec.Amount).Return([]*record.Record{rec}, nil)
		expenseRepo.On("ListByDateAmount", ctx, day, rec.Amount).Return([]*expense.Expense{exp}, nil)

		candidates, err := s.FindDuplicates(ctx)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Empty(t, candidates[0].PendingMatches)
		require.Len(t, candidates[0].ExpenseMatches, 1)
		assert.Equal(t, exp.ID, candidates[0].ExpenseMatches[0].ID)
	})

	t.Run("no siblings means no candidates", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		expenseRepo := new(MockExpenseRepository)
		s := &ServiceImpl{recordRepo: recordRepo, expenseRepo: expenseRepo, logger: testLogger()}

		rec := pendingRecord(day, "-3.00")

		recordRepo.On("ListPending", ctx).Return([]*record.Record{rec}, nil)
		recordRepo.On("ListPendingByDateAmount", ctx, day, rec.Amount).Return([]*record.Record{rec}, nil)
		expenseRepo.On("ListByDateAmount", ctx, day, rec.Amount).Return([]*expense.Expense(nil), nil)

		candidates, err := s.FindDuplicates(ctx)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}

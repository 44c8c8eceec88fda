package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/account"
)

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}

	acc := &account.Account{
		ID:          uuid.New(),
		Name:        "Revolut",
		BankName:    "Revolut",
		AccountType: "checking",
		Currency:    "EUR",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `INSERT INTO accounts \(id, name, bank_name, account_type, currency, created_at, updated_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.Name, acc.BankName, acc.AccountType, acc.Currency, acc.CreatedAt, acc.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.Name, acc.BankName, acc.AccountType, acc.Currency, acc.CreatedAt, acc.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, acc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	accID := uuid.New()
	now := time.Now()

	expectedAccount := &account.Account{
		ID:          accID,
		Name:        "Openbank",
		BankName:    "Openbank",
		AccountType: "checking",
		Currency:    "EUR",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `SELECT id, name, bank_name, account_type, currency, created_at, updated_at\s+FROM accounts\s+WHERE id = \$1`
	columns := []string{"id", "name", "bank_name", "account_type", "currency", "created_at", "updated_at"}

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(columns).
			AddRow(expectedAccount.ID, expectedAccount.Name, expectedAccount.BankName, expectedAccount.AccountType, expectedAccount.Currency, expectedAccount.CreatedAt, expectedAccount.UpdatedAt)
		mock.ExpectQuery(query).WithArgs(accID).WillReturnRows(rows)

		acc, err := repo.GetByID(ctx, accID)
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByID(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var notFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, accID, notFoundErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByBankName(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	now := time.Now()

	expectedAccount := &account.Account{
		ID:          uuid.New(),
		Name:        "Bankinter",
		BankName:    "Bankinter",
		AccountType: "checking",
		Currency:    "EUR",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `SELECT id, name, bank_name, account_type, currency, created_at, updated_at\s+FROM accounts\s+WHERE bank_name = \$1`
	columns := []string{"id", "name", "bank_name", "account_type", "currency", "created_at", "updated_at"}

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(columns).
			AddRow(expectedAccount.ID, expectedAccount.Name, expectedAccount.BankName, expectedAccount.AccountType, expectedAccount.Currency, expectedAccount.CreatedAt, expectedAccount.UpdatedAt)
		mock.ExpectQuery(query).WithArgs("Bankinter").WillReturnRows(rows)

		acc, err := repo.GetByBankName(ctx, "Bankinter")
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found returns nil without error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("Bankinter").WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByBankName(ctx, "Bankinter")
		assert.NoError(t, err)
		assert.Nil(t, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs("Bankinter").WillReturnError(dbErr)

		acc, err := repo.GetByBankName(ctx, "Bankinter")
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to get account by bank name")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

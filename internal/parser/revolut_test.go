package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const revolutCSV = `Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance
CARD_PAYMENT,Current,2024-03-14 18:02:11,2024-03-15 09:30:00,Mercadona,-15.99,0,EUR,COMPLETED,120.50
CARD_PAYMENT,Current,2024-03-15 10:00:00,,Pending Shop,-5.00,0,EUR,PENDING,115.50
TOPUP,Current,2024-03-16 08:00:00,2024-03-16 08:00:01,Payment from Employer,1000.00,0,EUR,COMPLETED,1115.50
CARD_PAYMENT,Current,2024-03-17 12:00:00,,Started Only,-7.50,0,EUR,COMPLETED,1108.00
`

func TestRevolutParser_CanParse(t *testing.T) {
	p := NewRevolutParser("EUR")

	t.Run("accepts revolut csv", func(t *testing.T) {
		path := writeTempFile(t, "statement.csv", revolutCSV)
		assert.True(t, p.CanParse(path))
	})

	t.Run("rejects csv without revolut columns", func(t *testing.T) {
		path := writeTempFile(t, "other.csv", "Date,Concept,Value\n2024-01-01,x,1\n")
		assert.False(t, p.CanParse(path))
	})

	t.Run("rejects non csv extension", func(t *testing.T) {
		path := writeTempFile(t, "statement.xls", revolutCSV)
		assert.False(t, p.CanParse(path))
	})
}

func TestRevolutParser_Parse(t *testing.T) {
	p := NewRevolutParser("EUR")
	path := writeTempFile(t, "statement.csv", revolutCSV)

	txs, err := p.Parse(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	t.Run("skips non completed rows", func(t *testing.T) {
		for _, tx := range txs {
			assert.NotContains(t, tx.RawDescription, "Pending Shop")
		}
	})

	t.Run("uses completed date", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), txs[0].Date)
	})

	t.Run("falls back to started date", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), txs[2].Date)
	})

	t.Run("joins type and description", func(t *testing.T) {
		assert.Equal(t, "CARD_PAYMENT - Mercadona", txs[0].RawDescription)
		assert.Equal(t, "Mercadona", txs[0].RawMerchantName)
	})

	t.Run("parses amounts and currency", func(t *testing.T) {
		assert.True(t, txs[0].Amount.Equal(mustDecimal(t, "-15.99")))
		assert.True(t, txs[1].Amount.Equal(mustDecimal(t, "1000.00")))
		assert.Equal(t, "EUR", txs[0].Currency)
	})

	t.Run("fingerprints and source are set", func(t *testing.T) {
		for _, tx := range txs {
			assert.Len(t, tx.Fingerprint, 16)
			assert.Equal(t, transaction.SourceFileImport, tx.Source)
		}
	})
}

func TestRevolutParser_AcceptsRowsWithoutStateColumn(t *testing.T) {
	// Exports without a State column carry only settled movements, so every
	// row is taken.
	csvNoState := `Type,Started Date,Completed Date,Description,Amount,Currency
CARD_PAYMENT,2024-03-14 18:02:11,2024-03-15 09:30:00,Mercadona,-15.99,EUR
`
	p := NewRevolutParser("EUR")
	path := writeTempFile(t, "statement.csv", csvNoState)

	txs, err := p.Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

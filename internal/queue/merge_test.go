package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
)

func TestCombineTotals(t *testing.T) {
	records := []*record.Record{
		{
			Date:   time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("-15.99"),
		},
		{
			Date:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("-9.99"),
		},
	}

	total, earliest := combineTotals(records)

	assert.True(t, total.Equal(decimal.RequireFromString("-25.98")), "got %s", total)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), earliest)
}

func TestCombineTotals_SingleDateAndMixedSigns(t *testing.T) {
	records := []*record.Record{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("-20.00")},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("5.00")},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("-1.50")},
	}

	total, earliest := combineTotals(records)

	assert.True(t, total.Equal(decimal.RequireFromString("-16.50")), "got %s", total)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), earliest)
}

func TestMerge_RequiresAtLeastTwoRecords(t *testing.T) {
	s := &ServiceImpl{}
	input := FinalizeInput{MerchantName: "Amazon", CategoryID: uuid.New()}

	_, err := s.Merge(context.Background(), []uuid.UUID{uuid.New()}, input)
	var tooFew ErrTooFewRecords
	require.ErrorAs(t, err, &tooFew)
	assert.Equal(t, 1, tooFew.Count)

	_, err = s.Group(context.Background(), nil, input)
	require.ErrorAs(t, err, &tooFew)
	assert.Equal(t, 0, tooFew.Count)
}

func TestMerge_RejectsInvalidExpenseType(t *testing.T) {
	s := &ServiceImpl{}
	input := FinalizeInput{MerchantName: "Amazon", CategoryID: uuid.New(), ExpenseType: "luxury"}

	_, err := s.Merge(context.Background(), []uuid.UUID{uuid.New(), uuid.New()}, input)
	assert.Error(t, err)
}

package rules

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
	"github.com/ErmoGarcia/expense-toolkit/internal/domain/rule"
)

func testRecord() *record.Record {
	return &record.Record{
		ID:              uuid.New(),
		Amount:          decimal.RequireFromString("-15.99"),
		RawMerchantName: "MERCADONA VALENCIA",
		RawDescription:  "Card payment - MERCADONA VALENCIA",
		Source:          "file_import",
	}
}

func mustRule(t *testing.T, field, matchType, value, action string, sd *rule.SaveData) *rule.Rule {
	t.Helper()
	r, err := rule.NewRule("test rule", true, field, matchType, value, action, sd)
	require.NoError(t, err)
	return r
}

func TestMatches(t *testing.T) {
	rec := testRecord()

	t.Run("exact match on merchant", func(t *testing.T) {
		r := mustRule(t, "merchant_name", "exact", "MERCADONA VALENCIA", "discard", nil)
		assert.True(t, Matches(r, rec))
	})

	t.Run("exact is case sensitive", func(t *testing.T) {
		r := mustRule(t, "merchant_name", "exact", "mercadona valencia", "discard", nil)
		assert.False(t, Matches(r, rec))
	})

	t.Run("regex is case insensitive", func(t *testing.T) {
		r := mustRule(t, "description", "regex", "mercadona", "discard", nil)
		assert.True(t, Matches(r, rec))
	})

	t.Run("regex searches anywhere in the value", func(t *testing.T) {
		r := mustRule(t, "description", "regex", "payment", "discard", nil)
		assert.True(t, Matches(r, rec))
	})

	t.Run("amount matches by decimal rendering", func(t *testing.T) {
		r := mustRule(t, "amount", "exact", "-15.99", "discard", nil)
		assert.True(t, Matches(r, rec))
	})

	t.Run("broken regex is a no-match", func(t *testing.T) {
		r := mustRule(t, "description", "exact", "placeholder", "discard", nil)
		r.MatchType = rule.MatchRegex
		r.MatchValue = "([unclosed"
		assert.False(t, Matches(r, rec))
	})

	t.Run("oversized pattern is a no-match", func(t *testing.T) {
		r := mustRule(t, "description", "exact", "placeholder", "discard", nil)
		r.MatchType = rule.MatchRegex
		r.MatchValue = strings.Repeat("a", rule.MaxPatternLength+1)
		assert.False(t, Matches(r, rec))
	})
}

func TestFirstMatch(t *testing.T) {
	rec := testRecord()

	discard := mustRule(t, "merchant_name", "regex", "mercadona", "discard", nil)
	save := mustRule(t, "merchant_name", "regex", "mercadona", "save", &rule.SaveData{
		MerchantName: "Mercadona",
		CategoryID:   uuid.New(),
	})

	t.Run("first rule in order wins", func(t *testing.T) {
		assert.Same(t, discard, firstMatch([]*rule.Rule{discard, save}, rec))
		assert.Same(t, save, firstMatch([]*rule.Rule{save, discard}, rec))
	})

	t.Run("no rule matches", func(t *testing.T) {
		miss := mustRule(t, "merchant_name", "exact", "CARREFOUR", "discard", nil)
		assert.Nil(t, firstMatch([]*rule.Rule{miss}, rec))
	})
}

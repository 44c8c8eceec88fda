// Package transaction defines the canonical transaction record that every
// statement parser and the notification parser must produce, together with
// the fingerprint used for deduplication.
package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which channel produced a canonical transaction
const (
	SourceFileImport   = "file_import"
	SourceNotification = "notification"
)

// Common errors
var (
	ErrZeroDate      = errors.New("transaction date cannot be zero")
	ErrEmptyCurrency = errors.New("currency cannot be empty")
)

// Canonical is the normalized, parser-agnostic representation of one bank
// transaction. Amount is an exact decimal; the sign encodes direction
// (negative = outflow, positive = inflow). Date carries no time component.
type Canonical struct {
	Date            time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	RawMerchantName string          `json:"raw_merchant_name"`
	RawDescription  string          `json:"raw_description"`
	Fingerprint     string          `json:"fingerprint"`
	Source          string          `json:"source_tag"`
}

// Validate checks the invariants every parser output must satisfy
func (c *Canonical) Validate() error {
	if c.Date.IsZero() {
		return ErrZeroDate
	}
	if c.Currency == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// Date values are normalized to UTC midnight so that equality comparisons
// during dedup and duplicate detection never depend on a time component.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateToDay strips the time component from t, keeping the calendar date
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

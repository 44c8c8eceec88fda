// Package record defines the pending record aggregate: a canonical transaction
// that has been persisted but not yet reviewed, discarded, or finalized.
package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/transaction"
)

// Record is a persisted canonical transaction awaiting review or rule
// resolution. Records are uniquely keyed by (account, fingerprint) so the
// same transaction can never be ingested twice for one account.
type Record struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	Fingerprint     string          `json:"fingerprint"`
	Date            time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	RawMerchantName string          `json:"raw_merchant_name"`
	RawDescription  string          `json:"raw_description"`
	Source          string          `json:"source"`
	SourceFile      string          `json:"source_file,omitempty"`
	ImportedAt      time.Time       `json:"imported_at"`
}

// FromCanonical builds a pending record for an account from a parser's output
func FromCanonical(accountID uuid.UUID, tx transaction.Canonical, sourceFile string) *Record {
	return &Record{
		ID:              uuid.New(),
		AccountID:       accountID,
		Fingerprint:     tx.Fingerprint,
		Date:            transaction.TruncateToDay(tx.Date),
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		RawMerchantName: tx.RawMerchantName,
		RawDescription:  tx.RawDescription,
		Source:          tx.Source,
		SourceFile:      sourceFile,
		ImportedAt:      time.Now(),
	}
}

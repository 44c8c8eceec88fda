// Package expense defines the finalized expense aggregate and its satellite
// entities (merchant aliases and tags). A finalized expense is the reviewed,
// categorized form of one or more pending records.
package expense

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense type labels
const (
	TypeFixed             = "fixed"
	TypeNecessaryVariable = "necessary variable"
	TypeDiscretionary     = "discretionary"
)

// ErrInvalidExpenseType indicates an unknown expense type label
var ErrInvalidExpenseType = errors.New("expense type must be one of: fixed, necessary variable, discretionary")

// ValidateType checks an expense type label; empty is allowed
func ValidateType(t string) error {
	switch t {
	case "", TypeFixed, TypeNecessaryVariable, TypeDiscretionary:
		return nil
	default:
		return ErrInvalidExpenseType
	}
}

// Expense is a finalized record derived from one or more pending records.
// Archived expenses are kept for audit; they retain their fingerprint lineage
// and still participate in duplicate detection.
type Expense struct {
	ID              uuid.UUID       `json:"id"`
	PendingRecordID *uuid.UUID      `json:"pending_record_id,omitempty"`
	AccountID       uuid.UUID       `json:"account_id"`
	Date            time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Fingerprint     string          `json:"fingerprint,omitempty"`
	MerchantAliasID *uuid.UUID      `json:"merchant_alias_id,omitempty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	Type            string          `json:"type,omitempty"`
	ParentExpenseID *uuid.UUID      `json:"parent_expense_id,omitempty"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MerchantAlias maps a raw merchant string from a bank export to a display
// name and an optional default category.
type MerchantAlias struct {
	ID                uuid.UUID  `json:"id"`
	RawName           string     `json:"raw_name"`
	DisplayName       string     `json:"display_name"`
	DefaultCategoryID *uuid.UUID `json:"default_category_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Tag is a free-form label attached to finalized expenses, created on first use
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

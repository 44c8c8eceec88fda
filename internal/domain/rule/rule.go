// Package rule defines user-managed triage rules evaluated against pending
// records. Rules are ordered by creation; the first match wins per record.
package rule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/record"
)

// MatchField names a pending record field a rule may match against.
// The set is closed: unknown field names are rejected when the rule is
// built, never at evaluation time.
type MatchField string

const (
	FieldMerchantName MatchField = "merchant_name"
	FieldDescription  MatchField = "description"
	FieldAmount       MatchField = "amount"
	FieldSource       MatchField = "source"
)

// MatchType selects the comparison applied to the field value
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchRegex MatchType = "regex"
)

// Action is what the engine does with a matched record
type Action string

const (
	ActionDiscard Action = "discard"
	ActionSave    Action = "save"
)

// MaxPatternLength caps regex patterns; anything longer is treated as
// no-match to keep one bad rule from stalling a whole pass.
const MaxPatternLength = 500

// Common errors
var (
	ErrEmptyName        = errors.New("rule name cannot be empty")
	ErrEmptyMatchValue  = errors.New("rule match value cannot be empty")
	ErrMissingSaveData  = errors.New("save_data is required for save action")
	ErrEmptyMerchant    = errors.New("save_data merchant name cannot be empty")
	ErrMissingCategory  = errors.New("save_data category is required")
	ErrPatternTooLong   = fmt.Errorf("rule pattern exceeds %d characters", MaxPatternLength)
	ErrUnknownField     = errors.New("unknown rule field")
	ErrUnknownMatchType = errors.New("match type must be exact or regex")
	ErrUnknownAction    = errors.New("action must be discard or save")
)

// SaveData carries the data a save-action rule applies when finalizing a
// matched record. MerchantName and CategoryID are required; the rest is
// optional.
type SaveData struct {
	MerchantName string    `json:"merchant_name"`
	CategoryID   uuid.UUID `json:"category_id"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	ExpenseType  string    `json:"type,omitempty"`
}

// Rule is a stored match/action pair
type Rule struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	Field      MatchField `json:"field"`
	MatchType  MatchType  `json:"match_type"`
	MatchValue string     `json:"match_value"`
	Action     Action     `json:"action"`
	SaveData   *SaveData  `json:"save_data,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ParseField validates a field name against the closed allow-list
func ParseField(s string) (MatchField, error) {
	switch MatchField(s) {
	case FieldMerchantName, FieldDescription, FieldAmount, FieldSource:
		return MatchField(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

// Value returns the record field this rule matches against, string-coerced.
// Amounts compare by their canonical decimal rendering.
func (f MatchField) Value(rec *record.Record) string {
	switch f {
	case FieldMerchantName:
		return rec.RawMerchantName
	case FieldDescription:
		return rec.RawDescription
	case FieldAmount:
		return rec.Amount.String()
	case FieldSource:
		return rec.Source
	default:
		return ""
	}
}

// NewRule builds a validated rule. Field, match type, action and save data
// are all checked here so the engine never sees a malformed rule.
func NewRule(name string, active bool, field, matchType, matchValue, action string, saveData *SaveData) (*Rule, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if matchValue == "" {
		return nil, ErrEmptyMatchValue
	}
	if len(matchValue) > MaxPatternLength {
		return nil, ErrPatternTooLong
	}

	f, err := ParseField(field)
	if err != nil {
		return nil, err
	}

	mt := MatchType(matchType)
	if mt != MatchExact && mt != MatchRegex {
		return nil, ErrUnknownMatchType
	}

	act := Action(action)
	switch act {
	case ActionDiscard:
	case ActionSave:
		if saveData == nil {
			return nil, ErrMissingSaveData
		}
		if saveData.MerchantName == "" {
			return nil, ErrEmptyMerchant
		}
		if saveData.CategoryID == uuid.Nil {
			return nil, ErrMissingCategory
		}
	default:
		return nil, ErrUnknownAction
	}

	now := time.Now()
	return &Rule{
		ID:         uuid.New(),
		Name:       name,
		Active:     active,
		Field:      f,
		MatchType:  mt,
		MatchValue: matchValue,
		Action:     act,
		SaveData:   saveData,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

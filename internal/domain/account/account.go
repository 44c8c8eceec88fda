package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyBankName         = errors.New("bank name cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
)

// Account represents a bank account that canonical transactions are attributed to.
// Accounts are resolved or created on demand from the bank name a parser or the
// notification channel declares.
type Account struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	BankName    string    `json:"bank_name"`
	AccountType string    `json:"account_type"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAccount creates a new account for the given bank
func NewAccount(bankName string, currency string) (*Account, error) {
	if bankName == "" {
		return nil, ErrEmptyBankName
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}

	now := time.Now()
	return &Account{
		ID:          uuid.New(),
		Name:        bankName + " Account",
		BankName:    bankName,
		AccountType: "checking",
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

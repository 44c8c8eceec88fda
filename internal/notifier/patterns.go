// Package notifier turns raw bank push notifications into pending records.
// A fixed, ordered pattern table recognizes the notification texts of the
// supported banking apps; everything else is classified as not an expense.
package notifier

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Classification of a matched notification text
type Classification string

const (
	ClassExpense    Classification = "expense"
	ClassIncome     Classification = "income"
	ClassNonExpense Classification = "non_expense"
)

// Extraction is the merchant and amount pulled out of a matched text
type Extraction struct {
	Pattern  string
	Class    Classification
	Merchant string
	Amount   decimal.Decimal
}

// denyKeywords short-circuit parsing: notifications carrying any of these are
// never expenses, whatever else the text looks like.
var denyKeywords = []string{
	"código de confirmación",
	"confirmation code",
	"security code",
	"verificación",
	"verification",
	"balance",
	"saldo disponible",
}

type pattern struct {
	name    string
	class   Classification
	re      *regexp.Regexp
	extract func(m []string) (amount, merchant string)
}

// patterns are evaluated in order; the first structural match wins
var patterns = []pattern{
	{
		name:  "revolut_payment",
		class: ClassExpense,
		re:    regexp.MustCompile(`(?i)Has pagado ([\d,]+)\s*€ en (.+?)(?:\s*[🍽️🚎🍕🍔🛍️💳]|$)`),
		extract: func(m []string) (string, string) {
			return m[1], strings.TrimSpace(m[2])
		},
	},
	{
		name:  "openbank_payment",
		class: ClassExpense,
		re:    regexp.MustCompile(`(?i)pago con tu tarjeta \*\*(\d+) el (\d+/\d+) (\d+:\d+) por ([\d,]+) EUR en (.+?)(?:\.|$)`),
		extract: func(m []string) (string, string) {
			return m[4], strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[5]), "."))
		},
	},
	{
		name:  "openbank_bizum_received",
		class: ClassIncome,
		re:    regexp.MustCompile(`(?i)Has recibido un Bizum de ([\d,]+) EUR de (.+?) por`),
		extract: func(m []string) (string, string) {
			return m[1], "Bizum from " + strings.TrimSpace(m[2])
		},
	},
	{
		name:  "openbank_bizum_sent",
		class: ClassExpense,
		re:    regexp.MustCompile(`(?i)Has enviado un Bizum de ([\d,]+) EUR a (.+?) por`),
		extract: func(m []string) (string, string) {
			return m[1], "Bizum to " + strings.TrimSpace(m[2])
		},
	},
	{
		name:    "openbank_confirmation",
		class:   ClassNonExpense,
		re:      regexp.MustCompile(`(?i)Código de confirmación [A-Z0-9]+ para consultar`),
		extract: func(m []string) (string, string) { return "", "" },
	},
}

// bankByAppPackage maps the notifying app to the bank account label.
// Unknown packages pass through so a new app still groups its records.
var bankByAppPackage = map[string]string{
	"com.revolut.revolut": "Revolut",
	"es.openbank.mobile":  "Openbank",
	"com.barclays.app":    "Barclays",
	"com.santander.app":   "Santander",
}

// BankName resolves an app package to a bank account label
func BankName(appPackage string) string {
	if appPackage == "" {
		return "Unknown"
	}
	if name, ok := bankByAppPackage[appPackage]; ok {
		return name
	}
	return appPackage
}

// Classify runs the deny-list and the pattern table over a notification text.
// It returns nil when the text is not an expense or income movement; that is
// a verdict, not an error.
func Classify(text string) *Extraction {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	for _, kw := range denyKeywords {
		if strings.Contains(lower, kw) {
			return nil
		}
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.class == ClassNonExpense {
			return nil
		}

		amountText, merchant := p.extract(m)
		amount, err := decimal.NewFromString(strings.ReplaceAll(amountText, ",", "."))
		if err != nil {
			continue // Malformed amount in a matching shape; try the next pattern
		}

		// Sign follows the classification, whatever the text carried
		if p.class == ClassExpense {
			amount = amount.Abs().Neg()
		} else {
			amount = amount.Abs()
		}

		if merchant == "" {
			merchant = "Unknown"
		}

		return &Extraction{
			Pattern:  p.name,
			Class:    p.class,
			Merchant: merchant,
			Amount:   amount,
		}
	}

	return nil
}

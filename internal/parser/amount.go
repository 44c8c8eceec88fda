package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses an amount string that may use either point-decimal
// ("1234.56") or comma-decimal notation with an optional thousands dot
// ("1.234,56", "123,45"). Disambiguation rule: if both separators are
// present the dot is a thousands separator; if only a comma is present it
// is the decimal point; otherwise the string parses as-is.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}

	return decimal.NewFromString(s)
}

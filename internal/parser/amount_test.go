package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain point decimal", "1234.56", "1234.56"},
		{"comma decimal", "123,45", "123.45"},
		{"thousands dot with comma decimal", "1.234,56", "1234.56"},
		{"negative comma decimal", "-15,99", "-15.99"},
		{"negative thousands", "-1.234,56", "-1234.56"},
		{"integer", "42", "42"},
		{"leading and trailing spaces", "  -9,99  ", "-9.99"},
		{"non-breaking space separator", "1 234,56", "1234.56"},
		{"zero", "0,00", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(mustDecimal(t, tc.want)), "got %s want %s", got, tc.want)
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseAmount("n/a")
		assert.Error(t, err)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseAmount("")
		assert.Error(t, err)
	})
}

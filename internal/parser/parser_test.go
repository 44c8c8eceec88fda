package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Detect(t *testing.T) {
	r := NewRegistry("EUR")

	t.Run("detection order is fixed", func(t *testing.T) {
		assert.Equal(t, []string{"revolut", "bankinter", "bankinter_card", "openbank"}, r.Parsers())
	})

	t.Run("detects revolut csv", func(t *testing.T) {
		path := writeTempFile(t, "export.csv", revolutCSV)
		p, err := r.Detect(path)
		require.NoError(t, err)
		assert.Equal(t, "revolut", p.Name())
	})

	t.Run("detects openbank html xls", func(t *testing.T) {
		path := writeOpenbankFile(t, openbankHTML)
		p, err := r.Detect(path)
		require.NoError(t, err)
		assert.Equal(t, "openbank", p.Name())
	})

	t.Run("unknown format is a typed error", func(t *testing.T) {
		path := writeTempFile(t, "unknown.csv", "a,b,c\n1,2,3\n")
		_, err := r.Detect(path)
		var unknown ErrUnknownFormat
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "unknown.csv", unknown.Filename)
	})
}

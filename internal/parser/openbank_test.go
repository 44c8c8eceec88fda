package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/text/encoding/charmap"
)

const openbankHTML = `<html>
<body>
<table>
<tr><td>Consulta de movimientos</td></tr>
<tr><td>Fecha Operación</td><td>Fecha Valor</td><td>Concepto</td><td>Importe</td><td>Saldo</td></tr>
<tr><td>15/03/2024</td><td>15/03/2024</td><td>Compra en MERCADONA</td><td>-15,99</td><td>1.200,00</td></tr>
<tr><td>16/03/2024</td><td>16/03/2024</td><td>Recibo luz</td><td>-1.234,56</td><td>-34,56</td></tr>
<tr><td></td><td></td><td>fila vacía</td><td></td><td></td></tr>
</table>
</body>
</html>`

// writeOpenbankFile encodes the document as ISO-8859-1 under an .xls
// extension, matching the bank's actual export.
func writeOpenbankFile(t *testing.T, content string) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "movimientos.xls")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))
	return path
}

func TestOpenBankParser_CanParse(t *testing.T) {
	p := NewOpenBankParser("EUR")

	t.Run("accepts html disguised as xls", func(t *testing.T) {
		path := writeOpenbankFile(t, openbankHTML)
		assert.True(t, p.CanParse(path))
	})

	t.Run("rejects non html xls", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "real.xls")
		require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0o644))
		assert.False(t, p.CanParse(path))
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.html")
		require.NoError(t, os.WriteFile(path, []byte(openbankHTML), 0o644))
		assert.False(t, p.CanParse(path))
	})
}

func TestOpenBankParser_Parse(t *testing.T) {
	p := NewOpenBankParser("EUR")
	path := writeOpenbankFile(t, openbankHTML)

	txs, err := p.Parse(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	t.Run("parses dates in day month year order", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), txs[0].Date)
	})

	t.Run("applies locale amount rule", func(t *testing.T) {
		assert.True(t, txs[0].Amount.Equal(mustDecimal(t, "-15.99")))
		assert.True(t, txs[1].Amount.Equal(mustDecimal(t, "-1234.56")))
	})

	t.Run("uses concept for merchant and description", func(t *testing.T) {
		assert.Equal(t, "Compra en MERCADONA", txs[0].RawMerchantName)
		assert.Equal(t, "Compra en MERCADONA", txs[0].RawDescription)
	})

	t.Run("uses default currency", func(t *testing.T) {
		assert.Equal(t, "EUR", txs[0].Currency)
	})
}

func TestOpenBankParser_HeaderNotFound(t *testing.T) {
	p := NewOpenBankParser("EUR")
	path := writeOpenbankFile(t, `<html><body><table><tr><td>nada</td></tr></table></body></html>`)

	_, err := p.Parse(context.Background(), path)
	var headerErr ErrHeaderNotFound
	require.ErrorAs(t, err, &headerErr)
}

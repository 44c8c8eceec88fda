package notifier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestClassify(t *testing.T) {
	t.Run("revolut payment", func(t *testing.T) {
		e := Classify("Has pagado 12,50 € en Mercadona Valencia")
		require.NotNil(t, e)
		assert.Equal(t, "revolut_payment", e.Pattern)
		assert.Equal(t, ClassExpense, e.Class)
		assert.Equal(t, "Mercadona Valencia", e.Merchant)
		assert.True(t, e.Amount.Equal(mustDecimal(t, "-12.50")))
	})

	t.Run("openbank card payment", func(t *testing.T) {
		e := Classify("Se ha realizado un pago con tu tarjeta **1234 el 15/03 14:30 por 45,20 EUR en AMAZON ES.")
		require.NotNil(t, e)
		assert.Equal(t, "openbank_payment", e.Pattern)
		assert.Equal(t, "AMAZON ES", e.Merchant)
		assert.True(t, e.Amount.Equal(mustDecimal(t, "-45.20")))
	})

	t.Run("bizum received is income", func(t *testing.T) {
		e := Classify("Has recibido un Bizum de 20,00 EUR de JUAN PEREZ por Cena")
		require.NotNil(t, e)
		assert.Equal(t, ClassIncome, e.Class)
		assert.Equal(t, "Bizum from JUAN PEREZ", e.Merchant)
		assert.True(t, e.Amount.Equal(mustDecimal(t, "20.00")))
	})

	t.Run("bizum sent is expense", func(t *testing.T) {
		e := Classify("Has enviado un Bizum de 15,00 EUR a MARIA GARCIA por Regalo")
		require.NotNil(t, e)
		assert.Equal(t, ClassExpense, e.Class)
		assert.Equal(t, "Bizum to MARIA GARCIA", e.Merchant)
		assert.True(t, e.Amount.Equal(mustDecimal(t, "-15.00")))
	})

	t.Run("confirmation code is not an expense", func(t *testing.T) {
		assert.Nil(t, Classify("Código de confirmación A1B2C3 para consultar tus movimientos"))
	})

	t.Run("deny list wins over patterns", func(t *testing.T) {
		// The text would match the payment shape, but the balance keyword
		// disqualifies it first.
		assert.Nil(t, Classify("Saldo disponible tras el pago con tu tarjeta **1234 el 15/03 14:30 por 45,20 EUR en AMAZON ES."))
	})

	t.Run("unrecognized text is not an expense", func(t *testing.T) {
		assert.Nil(t, Classify("Tu paquete ha sido entregado"))
	})

	t.Run("empty text is not an expense", func(t *testing.T) {
		assert.Nil(t, Classify(""))
	})

	t.Run("sign is forced by classification", func(t *testing.T) {
		// Amounts in notification texts are always unsigned; the pattern
		// class decides the sign.
		e := Classify("Has pagado 9,99 € en Netflix")
		require.NotNil(t, e)
		assert.True(t, e.Amount.IsNegative())
	})
}

func TestBankName(t *testing.T) {
	assert.Equal(t, "Revolut", BankName("com.revolut.revolut"))
	assert.Equal(t, "Openbank", BankName("es.openbank.mobile"))
	assert.Equal(t, "Barclays", BankName("com.barclays.app"))
	assert.Equal(t, "Santander", BankName("com.santander.app"))
	assert.Equal(t, "com.example.newbank", BankName("com.example.newbank"))
	assert.Equal(t, "Unknown", BankName(""))
}

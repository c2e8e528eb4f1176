package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/optica-api/internal/domain/billing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals_ConDescuento(t *testing.T) {
	lines := []billing.Line{
		{Quantity: 2, UnitPrice: dec("100")},
		{Quantity: 1, UnitPrice: dec("50")},
	}

	got := billing.ComputeTotals(lines, []decimal.Decimal{dec("25")}, billing.DefaultTaxRate)

	assert.Equal(t, "250.00", billing.Money(got.Subtotal))
	assert.Equal(t, "25.00", billing.Money(got.Discounts))
	assert.Equal(t, "225.00", billing.Money(got.DiscountedSubtotal))
	assert.Equal(t, "33.75", billing.Money(got.Tax))
	assert.Equal(t, "258.75", billing.Money(got.Total))
	assert.True(t, got.Total.Equal(dec("258.75")), "el total debe ser exacto")
}

func TestComputeTotals_SinDescuentos(t *testing.T) {
	lines := []billing.Line{{Quantity: 3, UnitPrice: dec("19.99")}}

	got := billing.ComputeTotals(lines, nil, billing.DefaultTaxRate)

	assert.True(t, got.Discounts.IsZero())
	expected := dec("59.97").Mul(dec("1.15"))
	assert.True(t, got.Total.Equal(expected), "total = subtotal × 1.15, obtenido %s", got.Total)
	assert.Equal(t, "68.97", billing.Money(got.Total))
}

func TestComputeTotals_RedondeoSoloAlPresentar(t *testing.T) {
	// Redondear cada línea daría 0.03; acumulando con precisión completa queda 0.015 -> 0.02.
	lines := []billing.Line{
		{Quantity: 1, UnitPrice: dec("0.005")},
		{Quantity: 1, UnitPrice: dec("0.005")},
		{Quantity: 1, UnitPrice: dec("0.005")},
	}

	got := billing.ComputeTotals(lines, nil, billing.DefaultTaxRate)

	assert.True(t, got.Subtotal.Equal(dec("0.015")))
	assert.Equal(t, "0.02", billing.Money(got.Subtotal))
	assert.Equal(t, "0.02", got.Rounded().Subtotal.StringFixed(2))
}

func TestDiscountAmount(t *testing.T) {
	assert.True(t, billing.DiscountAmount(dec("250"), dec("10")).Equal(dec("25")))
	assert.True(t, billing.DiscountAmount(dec("99.99"), dec("0")).IsZero())
}

func TestLineTotal(t *testing.T) {
	assert.True(t, billing.LineTotal(4, dec("12.5")).Equal(dec("50")))
}

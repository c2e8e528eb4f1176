// Package billing contiene el cálculo de totales de la factura (servicio de dominio).
//
// Orden del cálculo:
//
//	subtotal          = Σ cantidad × precio unitario
//	descuentos        = Σ montos asignados
//	subtotal neto     = subtotal − descuentos
//	ISV               = subtotal neto × tasa
//	total             = subtotal neto + ISV
//
// Los montos se acumulan con precisión completa; el redondeo a 2 decimales
// ocurre solo al presentar (Rounded, Money).
package billing

import "github.com/shopspring/decimal"

// DefaultTaxRate tasa legal de ISV (15 %).
var DefaultTaxRate = decimal.RequireFromString("0.15")

var hundred = decimal.NewFromInt(100)

// Line es la información mínima de una línea para calcular totales.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals resultado del cálculo.
type Totals struct {
	Subtotal           decimal.Decimal
	Discounts          decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	Tax                decimal.Decimal
	Total              decimal.Decimal
}

// LineTotal cantidad × precio unitario, sin redondear.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// DiscountAmount monto de un descuento porcentual (percentage=10 -> 10 %) sobre base.
func DiscountAmount(base, percentage decimal.Decimal) decimal.Decimal {
	return base.Mul(percentage).Div(hundred)
}

// Subtotal Σ cantidad × precio.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return sum
}

// ComputeTotals calcula los totales de la factura con la tasa dada.
// Una lista de descuentos vacía equivale a descuentos = 0.
func ComputeTotals(lines []Line, discounts []decimal.Decimal, taxRate decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	disc := decimal.Zero
	for _, d := range discounts {
		disc = disc.Add(d)
	}
	net := subtotal.Sub(disc)
	tax := net.Mul(taxRate)
	return Totals{
		Subtotal:           subtotal,
		Discounts:          disc,
		DiscountedSubtotal: net,
		Tax:                tax,
		Total:              net.Add(tax),
	}
}

// Rounded devuelve una copia redondeada a 2 decimales para presentación.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:           t.Subtotal.Round(2),
		Discounts:          t.Discounts.Round(2),
		DiscountedSubtotal: t.DiscountedSubtotal.Round(2),
		Tax:                t.Tax.Round(2),
		Total:              t.Total.Round(2),
	}
}

// Money formatea un monto con 2 decimales fijos (redondeo half-up).
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

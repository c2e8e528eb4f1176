package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-api/internal/domain/entity"
)

// ErrInconsistentInvoice la cabecera no cuadra con sus líneas y descuentos.
var ErrInconsistentInvoice = errors.New("factura inconsistente")

// ValidateInvoice comprueba que los totales de la cabecera coincidan con la suma de líneas
// y descuentos, y que cada línea tenga cantidad positiva y total = cantidad × precio.
func ValidateInvoice(
	invoice *entity.Invoice,
	details []*entity.InvoiceDetail,
	discounts []*entity.InvoiceDiscount,
	taxRate decimal.Decimal,
) error {
	if invoice == nil {
		return fmt.Errorf("%w: factura nula", ErrInconsistentInvoice)
	}
	if len(details) == 0 {
		return fmt.Errorf("%w: la factura debe tener al menos una línea", ErrInconsistentInvoice)
	}
	var errs []error
	lines := make([]Line, 0, len(details))
	for i, d := range details {
		if d.Quantity <= 0 {
			errs = append(errs, fmt.Errorf("línea %d: cantidad %d no es positiva", i, d.Quantity))
		}
		if !d.LineTotal.Equal(LineTotal(d.Quantity, d.UnitPrice)) {
			errs = append(errs, fmt.Errorf("línea %d: total %s no coincide con cantidad × precio", i, d.LineTotal))
		}
		lines = append(lines, Line{Quantity: d.Quantity, UnitPrice: d.UnitPrice})
	}
	amounts := make([]decimal.Decimal, 0, len(discounts))
	for _, d := range discounts {
		if d.Amount.IsNegative() {
			errs = append(errs, fmt.Errorf("descuento %d: monto negativo", d.DiscountID))
		}
		amounts = append(amounts, d.Amount)
	}
	expected := ComputeTotals(lines, amounts, taxRate)
	if expected.DiscountedSubtotal.IsNegative() {
		errs = append(errs, fmt.Errorf("los descuentos (%s) exceden el subtotal (%s)", expected.Discounts, expected.Subtotal))
	}
	check := func(name string, got, want decimal.Decimal) {
		if !got.Equal(want) {
			errs = append(errs, fmt.Errorf("%s (%s) no coincide con el calculado (%s)", name, got, want))
		}
	}
	check("subtotal", invoice.Subtotal, expected.Subtotal)
	check("descuentos", invoice.DiscountTotal, expected.Discounts)
	check("impuesto", invoice.TaxTotal, expected.Tax)
	check("total", invoice.Total, expected.Total)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInconsistentInvoice, errors.Join(errs...))
	}
	return nil
}

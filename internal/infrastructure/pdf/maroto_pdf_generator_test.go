package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/optica-api/internal/application/billing"
	domainbilling "github.com/jhoicas/optica-api/internal/domain/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
)

func sampleDocument(withDiscount bool) *appbilling.InvoiceDocument {
	lines := []*entity.InvoiceDetail{
		{Code: "LEN-01", Description: "Lente monofocal", Quantity: 2, UnitPrice: decimal.NewFromInt(100), LineTotal: decimal.NewFromInt(200)},
		{Code: "EXA-01", Description: "Examen visual", Quantity: 1, UnitPrice: decimal.NewFromInt(50), LineTotal: decimal.NewFromInt(50)},
	}
	var discounts []decimal.Decimal
	var discountLines []appbilling.DiscountLine
	if withDiscount {
		discounts = []decimal.Decimal{decimal.NewFromInt(25)}
		discountLines = []appbilling.DiscountLine{{Name: "Tercera edad", Percentage: decimal.NewFromInt(10), Amount: decimal.NewFromInt(25)}}
	}
	totals := domainbilling.ComputeTotals([]domainbilling.Line{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	}, discounts, domainbilling.DefaultTaxRate)

	return &appbilling.InvoiceDocument{
		Issuer: entity.Company{Name: "Óptica Central", RTN: "08011999123456", Address: "Tegucigalpa", Phone: "2222-0000"},
		Number: domainbilling.FiscalNumber("000-001-01", 1),
		Invoice: &entity.Invoice{
			ID: 1, IssuedAt: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
			DocumentType: entity.DefaultDocumentType, OrderNumber: "OC-77", Status: entity.InvoiceStatusActive,
		},
		Client:        &entity.Client{Name: "Ana López", TaxID: "0801199000111"},
		Employee:      &entity.Employee{Name: "Carlos Ruiz"},
		PaymentMethod: &entity.PaymentMethod{Name: "Efectivo"},
		Lines:         lines,
		Discounts:     discountLines,
		Authorization: &entity.FiscalAuthorization{
			Code: "ABC123-XYZ", RangeFrom: 1, RangeTo: 5000,
			EmissionDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ExpirationDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		Totals:  totals,
		TaxRate: domainbilling.DefaultTaxRate,
	}
}

func TestMarotoPDFGenerator_Render(t *testing.T) {
	g := NewMarotoPDFGenerator()
	for _, withDiscount := range []bool{true, false} {
		out, err := g.Render(context.Background(), sampleDocument(withDiscount))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un PDF")
	}
}

func TestMarotoPDFGenerator_IncompleteDocument(t *testing.T) {
	doc := sampleDocument(false)
	doc.Authorization = nil
	_, err := NewMarotoPDFGenerator().Render(context.Background(), doc)
	assert.Error(t, err)
}

func TestTotalsRows_DiscountsOnlyWhenPresent(t *testing.T) {
	assert.Len(t, totalsRows(sampleDocument(false)), 3)
	// subtotal + 1 descuento + total descuentos + subtotal con descuento + ISV + total
	assert.Len(t, totalsRows(sampleDocument(true)), 6)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "L 1,234.50", formatMoney(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "L 258.75", formatMoney(decimal.RequireFromString("258.75")))
	assert.Equal(t, "L 0.01", formatMoney(decimal.RequireFromString("0.005")))
}

// Package pdf genera el documento fiscal de la factura (Honduras: CAI, RTN, ISV).
//
// Layout de la página carta:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + RTN         │  Tipo doc + N° + Fecha       │
//	│  CAI: código / rango autorizado / fecha límite de emisión    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + RTN + contacto │ Elaboró + Forma de pago  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Descripción | Cant | P.Unit | Total         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuentos / ISV / TOTAL                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Leyendas legales + firmas                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	appbilling "github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// Honduras agrupa miles con coma y usa punto decimal.
var moneyPrinter = message.NewPrinter(language.English)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.DocumentRenderer = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.DocumentRenderer usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Render(ctx context.Context, doc *appbilling.InvoiceDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil || doc.Invoice == nil || doc.Authorization == nil {
		return nil, fmt.Errorf("pdf: documento incompleto")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Invoice.DocumentType+" "+doc.Number, true).
		WithAuthor(doc.Issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(caiRow(doc.Authorization))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(doc))
	if r := serviceRow(doc.Invoice); r != nil {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(doc)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(legalRows(doc)...)
	m.AddRows(signatureRow())

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y tipo de documento + número + fecha (der).
func headerRow(doc *appbilling.InvoiceDocument) core.Row {
	issuer := doc.Issuer
	contact := fmt.Sprintf("%s   |   Tel: %s   |   %s",
		nonEmpty(issuer.Address, "-"), nonEmpty(issuer.Phone, "-"), nonEmpty(issuer.Email, "-"))

	left := col.New(7).Add(
		text.New(issuer.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		text.New("RTN: "+nonEmpty(issuer.RTN, "-"), props.Text{Size: 9, Top: 8, Color: colorGray}),
		text.New(contact, props.Text{Size: 7, Top: 13, Color: colorGray}),
	)
	if issuer.TradeName != "" {
		left.Add(text.New(issuer.TradeName, props.Text{Size: 8, Top: 17, Style: fontstyle.Italic}))
	}

	return row.New(22).Add(
		left,
		col.New(5).Add(
			text.New(upper(doc.Invoice.DocumentType), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+doc.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+doc.Invoice.IssuedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 15, Color: colorGray,
			}),
		),
	)
}

// caiRow: datos de la autorización de impresión vigente.
func caiRow(cai *entity.FiscalAuthorization) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CAI: "+cai.Code, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1}),
			text.New(fmt.Sprintf("Rango autorizado: %08d al %08d   |   Fecha límite de emisión: %s",
				cai.RangeFrom, cai.RangeTo, cai.ExpirationDate.Format("02/01/2006"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

// partiesRow: cliente (izq), quien elabora y forma de pago (der).
func partiesRow(doc *appbilling.InvoiceDocument) core.Row {
	c := doc.Client
	return row.New(20).Add(
		col.New(8).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(c.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("RTN: "+nonEmpty(c.TaxID, "Consumidor final"), props.Text{Size: 8, Top: 11, Color: colorGray}),
			text.New(fmt.Sprintf("%s   |   %s", nonEmpty(c.Address, "-"), nonEmpty(c.Email, "-")), props.Text{
				Size: 8, Top: 15, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Elaboró: "+doc.Employee.Name, props.Text{Size: 8, Align: align.Right, Top: 6}),
			text.New("Forma de pago: "+doc.PaymentMethod.Name, props.Text{Size: 8, Align: align.Right, Top: 11}),
		),
	)
}

// serviceRow: campos de servicio si la factura los trae; nil si no hay ninguno.
func serviceRow(inv *entity.Invoice) core.Row {
	var parts []string
	if inv.OrderNumber != "" {
		parts = append(parts, "Orden: "+inv.OrderNumber)
	}
	if inv.Agency != "" {
		parts = append(parts, "Agencia: "+inv.Agency)
	}
	if inv.AdvertisingPeriod != "" {
		parts = append(parts, "Período: "+inv.AdvertisingPeriod)
	}
	if inv.Notes != "" {
		parts = append(parts, "Notas: "+inv.Notes)
	}
	if len(parts) == 0 {
		return nil
	}
	return row.New(6).Add(col.New(12).Add(text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Top: 1})))
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Descripción", 5, align.Left),
		h("Cant.", 1, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea de detalle.
func tableDetailRows(lines []*entity.InvoiceDetail) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, d := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(d.Code, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(d.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", d.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatMoney(d.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(d.LineTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRows: bloque de totales alineado a la derecha. Descuentos solo si hay.
func totalsRows(doc *appbilling.InvoiceDocument) []core.Row {
	t := doc.Totals
	entry := func(label, value string, grand bool) core.Row {
		p := props.Text{Size: 9, Align: align.Right, Right: 1}
		if grand {
			p = props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1}
		}
		lp := p
		lp.Style = fontstyle.Bold
		return row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(label, lp)),
			col.New(3).Add(text.New(value, p)),
		)
	}

	rows := []core.Row{entry("Subtotal:", formatMoney(t.Subtotal), false)}
	if t.Discounts.IsPositive() {
		for _, d := range doc.Discounts {
			rows = append(rows, entry(fmt.Sprintf("Desc. %s (%s%%):", d.Name, d.Percentage.String()), "-"+formatMoney(d.Amount), false))
		}
		rows = append(rows,
			entry("Total descuentos:", "-"+formatMoney(t.Discounts), false),
			entry("Subtotal con descuento:", formatMoney(t.DiscountedSubtotal), false),
		)
	}
	rate := doc.TaxRate.Mul(decimal.NewFromInt(100)).String()
	rows = append(rows,
		entry(fmt.Sprintf("ISV %s%%:", rate), formatMoney(t.Tax), false),
		entry("TOTAL A PAGAR:", formatMoney(t.Total), true),
	)
	return rows
}

// legalRows: leyendas obligatorias del documento fiscal.
func legalRows(doc *appbilling.InvoiceDocument) []core.Row {
	notices := []string{
		"La factura es beneficio de todos. ¡Exíjala!",
		"Original: Cliente   |   Copia: Obligado tributario emisor",
		fmt.Sprintf("Documento válido hasta el %s dentro del rango autorizado por el CAI.",
			doc.Authorization.ExpirationDate.Format("02/01/2006")),
	}
	if doc.Invoice.IsVoid() {
		notices = append(notices, "DOCUMENTO ANULADO")
	}
	rows := make([]core.Row, 0, len(notices))
	for _, n := range notices {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(n, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
		)))
	}
	return rows
}

// signatureRow: firmas de quien entrega y quien recibe.
func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center, Top: 12}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 17, Color: colorGray}),
		)
	}
	return row.New(24).Add(sig("Entregado por"), sig("Recibido por"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney redondea a centavos y agrupa miles. Ej: 1234.5 -> "L 1,234.50".
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return moneyPrinter.Sprintf("L %v", number.Decimal(f, number.Scale(2)))
}

func upper(s string) string {
	if s == "" {
		return "FACTURA"
	}
	return strings.ToUpper(s)
}

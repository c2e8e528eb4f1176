package billing

import (
	"context"

	"github.com/shopspring/decimal"

	domainbilling "github.com/jhoicas/optica-api/internal/domain/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
)

//go:generate mockgen -source=document.go -destination=document_mock.go -package=billing

// DiscountLine descuento ya resuelto para imprimir.
type DiscountLine struct {
	Name       string
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

// InvoiceDocument todo lo necesario para la representación impresa de una factura.
// Las líneas llevan precios del catálogo, nunca los enviados por el cliente.
type InvoiceDocument struct {
	Issuer        entity.Company
	Number        string
	Invoice       *entity.Invoice
	Client        *entity.Client
	Employee      *entity.Employee
	PaymentMethod *entity.PaymentMethod
	Lines         []*entity.InvoiceDetail
	Discounts     []DiscountLine
	Authorization *entity.FiscalAuthorization
	Totals        domainbilling.Totals
	TaxRate       decimal.Decimal
}

// DocumentRenderer genera el documento fiscal (PDF) de una factura.
type DocumentRenderer interface {
	Render(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}

// ArtifactStore guarda documentos generados y devuelve un handle para recuperarlos.
type ArtifactStore interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
	Open(ctx context.Context, handle string) ([]byte, error)
	Delete(ctx context.Context, handle string) error
}

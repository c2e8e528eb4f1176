package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura. active -> void es la única transición permitida; void es terminal.
const (
	InvoiceStatusActive = "active"
	InvoiceStatusVoid   = "void"
)

// DefaultDocumentType tipo de documento cuando la solicitud no lo indica.
const DefaultDocumentType = "Factura"

// Invoice representa la cabecera de una factura. ID es el número fiscal (secuencial).
// Los montos y DocumentHandle se fijan una sola vez durante la creación.
type Invoice struct {
	ID              int64
	IssuedAt        time.Time
	DocumentType    string
	ClientID        int64
	EmployeeID      int64
	PaymentMethodID int64

	// Campos propios del servicio, opacos para el libro de facturas.
	AdvertisingPeriod string
	Agency            string
	OrderNumber       string
	Notes             string

	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal

	DocumentHandle string // archivo del documento fiscal en el almacén de artefactos
	Status         string
	VoidedAt       *time.Time
	CreatedAt      time.Time
}

// IsVoid indica si la factura está anulada.
func (i *Invoice) IsVoid() bool { return i.Status == InvoiceStatusVoid }

// CanTransitionTo aplica la máquina de estados active -(void)-> void.
func (i *Invoice) CanTransitionTo(status string) bool {
	return i.Status == InvoiceStatusActive && status == InvoiceStatusVoid
}

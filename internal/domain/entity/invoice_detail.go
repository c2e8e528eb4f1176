package entity

import "github.com/shopspring/decimal"

// InvoiceDetail representa una línea de detalle de una factura (inmutable).
// Code, Description y UnitPrice se copian del catálogo al momento de facturar.
type InvoiceDetail struct {
	ID          int64
	InvoiceID   int64
	ProductID   int64
	AttributeID *int64
	Code        string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

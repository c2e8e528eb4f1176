package entity

import "github.com/shopspring/decimal"

// Discount definición reutilizable de descuento porcentual, con ciclo de vida propio.
type Discount struct {
	ID         int64
	Name       string
	Percentage decimal.Decimal // 10 = 10 %
	Active     bool
}

// InvoiceDiscount asignación de un descuento a una factura. Identidad compuesta (InvoiceID, DiscountID).
type InvoiceDiscount struct {
	InvoiceID  int64
	DiscountID int64
	Amount     decimal.Decimal
}

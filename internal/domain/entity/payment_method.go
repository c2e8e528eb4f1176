package entity

// PaymentMethod forma de pago (efectivo, tarjeta, transferencia…).
type PaymentMethod struct {
	ID     int64
	Name   string
	Active bool
}

package entity

import "time"

// Client representa un cliente de la óptica (receptor de la factura).
type Client struct {
	ID        int64
	Name      string
	TaxID     string // RTN o identidad
	Address   string
	Email     string
	Phone     string
	CreatedAt time.Time
}

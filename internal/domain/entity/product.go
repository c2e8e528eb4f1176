package entity

import "github.com/shopspring/decimal"

// Product representa un producto o servicio del catálogo con su precio de venta.
type Product struct {
	ID        int64
	Code      string
	Name      string
	SalePrice decimal.Decimal
	Active    bool
}

// ProductAttribute variante de un producto (ej. graduación, color de montura).
// Si SalePrice es nil se usa el precio del producto.
type ProductAttribute struct {
	ID        int64
	ProductID int64
	Name      string
	Value     string
	SalePrice *decimal.Decimal
	Active    bool
}

// CatalogEntry es la combinación producto/atributo ya resuelta y con precio vigente.
type CatalogEntry struct {
	ProductID   int64
	AttributeID *int64
	Code        string
	Description string
	UnitPrice   decimal.Decimal
}

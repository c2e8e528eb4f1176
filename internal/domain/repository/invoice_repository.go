package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-api/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas. Los campos cero no filtran.
type InvoiceFilter struct {
	Status     string
	ClientID   int64
	EmployeeID int64
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	Limit      int
	Offset     int
}

// InvoiceRepository define el puerto de persistencia para Invoice, detalles y descuentos.
// No expone Delete ni actualización de campos fiscales: solo se permiten fijar totales y
// documento durante la creación y marcar la anulación.
type InvoiceRepository interface {
	// Create inserta la cabecera y asigna invoice.ID (secuencia).
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error
	CreateDiscount(ctx context.Context, discount *entity.InvoiceDiscount) error
	SetTotals(ctx context.Context, id int64, subtotal, discountTotal, taxTotal, total decimal.Decimal) error
	SetDocumentHandle(ctx context.Context, id int64, handle string) error
	MarkVoid(ctx context.Context, id int64, at time.Time) error

	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	// GetForUpdate igual que GetByID pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Invoice, error)
	GetDetailsByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceDetail, error)
	GetDiscountsByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceDiscount, error)
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, int, error)
}

package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

// CatalogResolver resuelve por ID las entidades que la facturación necesita para
// validar, valorar e imprimir una factura. Registros inactivos cuentan como inexistentes.
// Devuelve domain.ErrNotFound si no existe; cualquier otro error es de infraestructura.
type CatalogResolver struct {
	clients        repository.ClientRepository
	employees      repository.EmployeeRepository
	paymentMethods repository.PaymentMethodRepository
	products       repository.ProductRepository
	discounts      repository.DiscountRepository
}

// NewCatalogResolver construye el resolvedor.
func NewCatalogResolver(
	clients repository.ClientRepository,
	employees repository.EmployeeRepository,
	paymentMethods repository.PaymentMethodRepository,
	products repository.ProductRepository,
	discounts repository.DiscountRepository,
) *CatalogResolver {
	return &CatalogResolver{
		clients:        clients,
		employees:      employees,
		paymentMethods: paymentMethods,
		products:       products,
		discounts:      discounts,
	}
}

func (r *CatalogResolver) ResolveClient(ctx context.Context, id int64) (*entity.Client, error) {
	c, err := r.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolver cliente %d: %w", id, err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *CatalogResolver) ResolveEmployee(ctx context.Context, id int64) (*entity.Employee, error) {
	e, err := r.employees.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolver empleado %d: %w", id, err)
	}
	if e == nil || !e.Active {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r *CatalogResolver) ResolvePaymentMethod(ctx context.Context, id int64) (*entity.PaymentMethod, error) {
	pm, err := r.paymentMethods.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolver forma de pago %d: %w", id, err)
	}
	if pm == nil || !pm.Active {
		return nil, domain.ErrNotFound
	}
	return pm, nil
}

func (r *CatalogResolver) ResolveDiscount(ctx context.Context, id int64) (*entity.Discount, error) {
	d, err := r.discounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolver descuento %d: %w", id, err)
	}
	if d == nil || !d.Active {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// ResolveCatalogEntry resuelve producto o producto/atributo con su precio de venta vigente.
// El atributo debe pertenecer al producto; su precio, si lo tiene, reemplaza al del producto.
func (r *CatalogResolver) ResolveCatalogEntry(ctx context.Context, productID int64, attributeID *int64) (*entity.CatalogEntry, error) {
	p, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("resolver producto %d: %w", productID, err)
	}
	if p == nil || !p.Active {
		return nil, domain.ErrNotFound
	}
	entry := &entity.CatalogEntry{
		ProductID:   p.ID,
		Code:        p.Code,
		Description: p.Name,
		UnitPrice:   p.SalePrice,
	}
	if attributeID == nil {
		return entry, nil
	}
	attr, err := r.products.GetAttributeByID(ctx, *attributeID)
	if err != nil {
		return nil, fmt.Errorf("resolver atributo %d: %w", *attributeID, err)
	}
	if attr == nil || !attr.Active || attr.ProductID != p.ID {
		return nil, domain.ErrNotFound
	}
	id := attr.ID
	entry.AttributeID = &id
	entry.Description = fmt.Sprintf("%s - %s: %s", p.Name, attr.Name, attr.Value)
	if attr.SalePrice != nil {
		entry.UnitPrice = *attr.SalePrice
	}
	return entry, nil
}

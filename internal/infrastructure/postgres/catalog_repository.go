package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

// CatalogRepo lectura del catálogo que consume la facturación (clientes, empleados,
// formas de pago, productos/atributos y descuentos). Las altas y cambios viven en otros módulos.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el repositorio. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// Vistas tipadas sobre CatalogRepo, una por puerto.
type (
	clientReader        struct{ r *CatalogRepo }
	employeeReader      struct{ r *CatalogRepo }
	paymentMethodReader struct{ r *CatalogRepo }
	productReader       struct{ r *CatalogRepo }
	discountReader      struct{ r *CatalogRepo }
)

var (
	_ repository.ClientRepository        = clientReader{}
	_ repository.EmployeeRepository      = employeeReader{}
	_ repository.PaymentMethodRepository = paymentMethodReader{}
	_ repository.ProductRepository       = productReader{}
	_ repository.DiscountRepository      = discountReader{}
)

func (c *CatalogRepo) Clients() repository.ClientRepository { return clientReader{c} }

func (c *CatalogRepo) Employees() repository.EmployeeRepository { return employeeReader{c} }

func (c *CatalogRepo) PaymentMethods() repository.PaymentMethodRepository {
	return paymentMethodReader{c}
}

func (c *CatalogRepo) Products() repository.ProductRepository { return productReader{c} }

func (c *CatalogRepo) Discounts() repository.DiscountRepository { return discountReader{c} }

// noRows traduce pgx.ErrNoRows al contrato nil, nil de los puertos de lectura.
func noRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

func (v clientReader) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	const q = `
		SELECT id, name, tax_id, address, email, phone, created_at
		FROM clients WHERE id = $1`
	var c entity.Client
	err := v.r.q.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (v employeeReader) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	const q = `SELECT id, name, email, role, active FROM employees WHERE id = $1`
	var e entity.Employee
	err := v.r.q.QueryRow(ctx, q, id).Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.Active)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

func (v paymentMethodReader) GetByID(ctx context.Context, id int64) (*entity.PaymentMethod, error) {
	const q = `SELECT id, name, active FROM payment_methods WHERE id = $1`
	var pm entity.PaymentMethod
	err := v.r.q.QueryRow(ctx, q, id).Scan(&pm.ID, &pm.Name, &pm.Active)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return &pm, nil
}

func (v productReader) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	const q = `SELECT id, code, name, sale_price, active FROM products WHERE id = $1`
	var p entity.Product
	err := v.r.q.QueryRow(ctx, q, id).Scan(&p.ID, &p.Code, &p.Name, &p.SalePrice, &p.Active)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (v productReader) GetAttributeByID(ctx context.Context, id int64) (*entity.ProductAttribute, error) {
	const q = `
		SELECT id, product_id, name, value, sale_price, active
		FROM product_attributes WHERE id = $1`
	var a entity.ProductAttribute
	err := v.r.q.QueryRow(ctx, q, id).Scan(&a.ID, &a.ProductID, &a.Name, &a.Value, &a.SalePrice, &a.Active)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product attribute: %w", err)
	}
	return &a, nil
}

func (v discountReader) GetByID(ctx context.Context, id int64) (*entity.Discount, error) {
	const q = `SELECT id, name, percentage, active FROM discounts WHERE id = $1`
	var d entity.Discount
	err := v.r.q.QueryRow(ctx, q, id).Scan(&d.ID, &d.Name, &d.Percentage, &d.Active)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get discount: %w", err)
	}
	return &d, nil
}

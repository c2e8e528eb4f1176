package repository

import (
	"context"

	"github.com/jhoicas/optica-api/internal/domain/entity"
)

// Puertos de solo lectura que consume la facturación. Todos devuelven nil, nil si no existe.

// ClientRepository lectura de clientes.
type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
}

// EmployeeRepository lectura de empleados.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Employee, error)
}

// PaymentMethodRepository lectura de formas de pago.
type PaymentMethodRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.PaymentMethod, error)
}

// ProductRepository lectura de productos y sus atributos.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetAttributeByID(ctx context.Context, id int64) (*entity.ProductAttribute, error)
}

// DiscountRepository lectura de definiciones de descuento.
type DiscountRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Discount, error)
}

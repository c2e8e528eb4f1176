package memory

import (
	"context"

	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

// Altas de catálogo para pruebas y entornos locales. ID cero = se asigna uno.

func (s *Store) nextID(id int64) int64 {
	if id != 0 {
		return id
	}
	return s.catalogSeq.Add(1)
}

func (s *Store) AddClient(c entity.Client) *entity.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID(c.ID)
	s.cat.clients[c.ID] = &c
	return &c
}

func (s *Store) AddEmployee(e entity.Employee) *entity.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID(e.ID)
	s.cat.employees[e.ID] = &e
	return &e
}

func (s *Store) AddPaymentMethod(pm entity.PaymentMethod) *entity.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm.ID = s.nextID(pm.ID)
	s.cat.paymentMethods[pm.ID] = &pm
	return &pm
}

func (s *Store) AddProduct(p entity.Product) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID(p.ID)
	s.cat.products[p.ID] = &p
	return &p
}

func (s *Store) AddAttribute(a entity.ProductAttribute) *entity.ProductAttribute {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID(a.ID)
	s.cat.attributes[a.ID] = &a
	return &a
}

func (s *Store) AddDiscount(d entity.Discount) *entity.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextID(d.ID)
	s.cat.discounts[d.ID] = &d
	return &d
}

// Lectores por puerto.

func (s *Store) Clients() repository.ClientRepository { return clientReader{s} }

func (s *Store) Employees() repository.EmployeeRepository { return employeeReader{s} }

func (s *Store) PaymentMethods() repository.PaymentMethodRepository { return paymentMethodReader{s} }

func (s *Store) Products() repository.ProductRepository { return productReader{s} }

func (s *Store) Discounts() repository.DiscountRepository { return discountReader{s} }

type (
	clientReader        struct{ s *Store }
	employeeReader      struct{ s *Store }
	paymentMethodReader struct{ s *Store }
	productReader       struct{ s *Store }
	discountReader      struct{ s *Store }
)

// lookup copia el registro bajo lectura; nil si no existe.
func lookup[T any](s *Store, m map[int64]*T, id int64) *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := m[id]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

func (r clientReader) GetByID(_ context.Context, id int64) (*entity.Client, error) {
	return lookup(r.s, r.s.cat.clients, id), nil
}

func (r employeeReader) GetByID(_ context.Context, id int64) (*entity.Employee, error) {
	return lookup(r.s, r.s.cat.employees, id), nil
}

func (r paymentMethodReader) GetByID(_ context.Context, id int64) (*entity.PaymentMethod, error) {
	return lookup(r.s, r.s.cat.paymentMethods, id), nil
}

func (r productReader) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	return lookup(r.s, r.s.cat.products, id), nil
}

func (r productReader) GetAttributeByID(_ context.Context, id int64) (*entity.ProductAttribute, error) {
	return lookup(r.s, r.s.cat.attributes, id), nil
}

func (r discountReader) GetByID(_ context.Context, id int64) (*entity.Discount, error) {
	return lookup(r.s, r.s.cat.discounts, id), nil
}

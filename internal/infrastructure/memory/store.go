// Package memory implementa los puertos de persistencia en memoria. Las transacciones se
// serializan y trabajan sobre una copia del estado que solo se publica al confirmar.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

var _ billing.TxRunner = (*Store)(nil)

// Store estado completo: catálogo, libro de facturas y CAI.
type Store struct {
	txMu sync.Mutex   // una transacción a la vez
	mu   sync.RWMutex // protege state y catalog

	state *ledgerState
	cat   catalog

	// Las secuencias no vuelven atrás con un rollback, igual que BIGSERIAL.
	invoiceSeq atomic.Int64
	detailSeq  atomic.Int64
	caiSeq     atomic.Int64
	catalogSeq atomic.Int64
}

type ledgerState struct {
	invoices  map[int64]*entity.Invoice
	details   map[int64][]*entity.InvoiceDetail
	discounts map[int64][]*entity.InvoiceDiscount
	cais      map[int64]*entity.FiscalAuthorization
}

type catalog struct {
	clients        map[int64]*entity.Client
	employees      map[int64]*entity.Employee
	paymentMethods map[int64]*entity.PaymentMethod
	products       map[int64]*entity.Product
	attributes     map[int64]*entity.ProductAttribute
	discounts      map[int64]*entity.Discount
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		state: &ledgerState{
			invoices:  map[int64]*entity.Invoice{},
			details:   map[int64][]*entity.InvoiceDetail{},
			discounts: map[int64][]*entity.InvoiceDiscount{},
			cais:      map[int64]*entity.FiscalAuthorization{},
		},
		cat: catalog{
			clients:        map[int64]*entity.Client{},
			employees:      map[int64]*entity.Employee{},
			paymentMethods: map[int64]*entity.PaymentMethod{},
			products:       map[int64]*entity.Product{},
			attributes:     map[int64]*entity.ProductAttribute{},
			discounts:      map[int64]*entity.Discount{},
		},
	}
}

// RunInTx ejecuta fn sobre una copia del estado; solo si fn devuelve nil la copia reemplaza al estado.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, uow billing.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	uow := &unitOfWork{
		invoices: &InvoiceRepo{s: s, tx: work},
		cai:      &FiscalAuthorizationRepo{s: s, tx: work},
	}
	if err := fn(ctx, uow); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

type unitOfWork struct {
	invoices *InvoiceRepo
	cai      *FiscalAuthorizationRepo
}

func (u *unitOfWork) Invoices() repository.InvoiceRepository { return u.invoices }

func (u *unitOfWork) FiscalAuthorizations() repository.FiscalAuthorizationRepository {
	return u.cai
}

// Invoices repositorio fuera de transacción (lecturas).
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

// FiscalAuthorizations repositorio fuera de transacción.
func (s *Store) FiscalAuthorizations() *FiscalAuthorizationRepo {
	return &FiscalAuthorizationRepo{s: s}
}

// Counts filas confirmadas de facturas, líneas y asignaciones de descuento.
func (s *Store) Counts() (invoices, details, discounts int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.state.details {
		details += len(d)
	}
	for _, d := range s.state.discounts {
		discounts += len(d)
	}
	return len(s.state.invoices), details, discounts
}

func (st *ledgerState) clone() *ledgerState {
	c := &ledgerState{
		invoices:  make(map[int64]*entity.Invoice, len(st.invoices)),
		details:   make(map[int64][]*entity.InvoiceDetail, len(st.details)),
		discounts: make(map[int64][]*entity.InvoiceDiscount, len(st.discounts)),
		cais:      make(map[int64]*entity.FiscalAuthorization, len(st.cais)),
	}
	for id, inv := range st.invoices {
		c.invoices[id] = copyInvoice(inv)
	}
	for id, list := range st.details {
		out := make([]*entity.InvoiceDetail, len(list))
		for i, d := range list {
			cp := *d
			out[i] = &cp
		}
		c.details[id] = out
	}
	for id, list := range st.discounts {
		out := make([]*entity.InvoiceDiscount, len(list))
		for i, d := range list {
			cp := *d
			out[i] = &cp
		}
		c.discounts[id] = out
	}
	for id, fa := range st.cais {
		cp := *fa
		c.cais[id] = &cp
	}
	return c
}

func copyInvoice(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	if inv.VoidedAt != nil {
		t := *inv.VoidedAt
		cp.VoidedAt = &t
	}
	return &cp
}

// ── Invoices ──────────────────────────────────────────────────────────────────

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo opera sobre la copia de la transacción (tx) o, sin tx, sobre el estado confirmado.
type InvoiceRepo struct {
	s  *Store
	tx *ledgerState
}

func (r *InvoiceRepo) read(fn func(st *ledgerState)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	fn(r.s.state)
}

func (r *InvoiceRepo) write(fn func(st *ledgerState) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.state)
}

func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(func(st *ledgerState) error {
		invoice.ID = r.s.invoiceSeq.Add(1)
		st.invoices[invoice.ID] = copyInvoice(invoice)
		return nil
	})
}

func (r *InvoiceRepo) CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(func(st *ledgerState) error {
		if _, ok := st.invoices[detail.InvoiceID]; !ok {
			return domain.ErrNotFound
		}
		if detail.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
		detail.ID = r.s.detailSeq.Add(1)
		cp := *detail
		st.details[detail.InvoiceID] = append(st.details[detail.InvoiceID], &cp)
		return nil
	})
}

func (r *InvoiceRepo) CreateDiscount(ctx context.Context, d *entity.InvoiceDiscount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(func(st *ledgerState) error {
		if _, ok := st.invoices[d.InvoiceID]; !ok {
			return domain.ErrNotFound
		}
		if d.Amount.IsNegative() {
			return domain.ErrInvalidInput
		}
		for _, existing := range st.discounts[d.InvoiceID] {
			if existing.DiscountID == d.DiscountID {
				return domain.ErrDuplicate
			}
		}
		cp := *d
		st.discounts[d.InvoiceID] = append(st.discounts[d.InvoiceID], &cp)
		return nil
	})
}

func (r *InvoiceRepo) SetTotals(_ context.Context, id int64, subtotal, discountTotal, taxTotal, total decimal.Decimal) error {
	return r.write(func(st *ledgerState) error {
		inv, ok := st.invoices[id]
		if !ok {
			return domain.ErrNotFound
		}
		inv.Subtotal, inv.DiscountTotal, inv.TaxTotal, inv.Total = subtotal, discountTotal, taxTotal, total
		return nil
	})
}

func (r *InvoiceRepo) SetDocumentHandle(_ context.Context, id int64, handle string) error {
	return r.write(func(st *ledgerState) error {
		inv, ok := st.invoices[id]
		if !ok || inv.DocumentHandle != "" {
			return domain.ErrConflict
		}
		inv.DocumentHandle = handle
		return nil
	})
}

func (r *InvoiceRepo) MarkVoid(_ context.Context, id int64, at time.Time) error {
	return r.write(func(st *ledgerState) error {
		inv, ok := st.invoices[id]
		if !ok {
			return domain.ErrNotFound
		}
		if inv.Status != entity.InvoiceStatusActive {
			return domain.ErrAlreadyVoid
		}
		inv.Status = entity.InvoiceStatusVoid
		inv.VoidedAt = &at
		return nil
	})
}

func (r *InvoiceRepo) GetByID(_ context.Context, id int64) (*entity.Invoice, error) {
	var out *entity.Invoice
	r.read(func(st *ledgerState) {
		if inv, ok := st.invoices[id]; ok {
			out = copyInvoice(inv)
		}
	})
	return out, nil
}

// GetForUpdate no necesita bloquear filas: las transacciones ya están serializadas.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) GetDetailsByInvoiceID(_ context.Context, invoiceID int64) ([]*entity.InvoiceDetail, error) {
	var out []*entity.InvoiceDetail
	r.read(func(st *ledgerState) {
		for _, d := range st.details[invoiceID] {
			cp := *d
			out = append(out, &cp)
		}
	})
	return out, nil
}

func (r *InvoiceRepo) GetDiscountsByInvoiceID(_ context.Context, invoiceID int64) ([]*entity.InvoiceDiscount, error) {
	var out []*entity.InvoiceDiscount
	r.read(func(st *ledgerState) {
		for _, d := range st.discounts[invoiceID] {
			cp := *d
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DiscountID < out[j].DiscountID })
	return out, nil
}

func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var matched []*entity.Invoice
	r.read(func(st *ledgerState) {
		for _, inv := range st.invoices {
			if matches(inv, f) {
				matched = append(matched, copyInvoice(inv))
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := len(matched)
	if f.Offset >= total {
		return []*entity.Invoice{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return matched[f.Offset:end], total, nil
}

func matches(inv *entity.Invoice, f repository.InvoiceFilter) bool {
	switch {
	case f.Status != "" && inv.Status != f.Status:
		return false
	case f.ClientID > 0 && inv.ClientID != f.ClientID:
		return false
	case f.EmployeeID > 0 && inv.EmployeeID != f.EmployeeID:
		return false
	case f.IssuedFrom != nil && inv.IssuedAt.Before(*f.IssuedFrom):
		return false
	case f.IssuedTo != nil && !inv.IssuedAt.Before(*f.IssuedTo):
		return false
	}
	return true
}

// ── CAI ───────────────────────────────────────────────────────────────────────

var _ repository.FiscalAuthorizationRepository = (*FiscalAuthorizationRepo)(nil)

// FiscalAuthorizationRepo reproduce el índice único parcial: un solo CAI activo.
type FiscalAuthorizationRepo struct {
	s  *Store
	tx *ledgerState
}

func (r *FiscalAuthorizationRepo) inv() *InvoiceRepo { return &InvoiceRepo{s: r.s, tx: r.tx} }

func (r *FiscalAuthorizationRepo) Create(_ context.Context, fa *entity.FiscalAuthorization) error {
	return r.inv().write(func(st *ledgerState) error {
		if fa.Active && activeOther(st, 0) {
			return domain.ErrConflict
		}
		fa.ID = r.s.caiSeq.Add(1)
		cp := *fa
		st.cais[fa.ID] = &cp
		return nil
	})
}

func (r *FiscalAuthorizationRepo) GetByID(_ context.Context, id int64) (*entity.FiscalAuthorization, error) {
	var out *entity.FiscalAuthorization
	r.inv().read(func(st *ledgerState) {
		if fa, ok := st.cais[id]; ok {
			cp := *fa
			out = &cp
		}
	})
	return out, nil
}

func (r *FiscalAuthorizationRepo) GetActive(_ context.Context) (*entity.FiscalAuthorization, error) {
	var out *entity.FiscalAuthorization
	r.inv().read(func(st *ledgerState) {
		for _, fa := range st.cais {
			if fa.Active {
				cp := *fa
				out = &cp
				return
			}
		}
	})
	return out, nil
}

func (r *FiscalAuthorizationRepo) List(_ context.Context) ([]*entity.FiscalAuthorization, error) {
	var out []*entity.FiscalAuthorization
	r.inv().read(func(st *ledgerState) {
		for _, fa := range st.cais {
			cp := *fa
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *FiscalAuthorizationRepo) DeactivateAll(_ context.Context) (int64, error) {
	var n int64
	err := r.inv().write(func(st *ledgerState) error {
		for _, fa := range st.cais {
			if fa.Active {
				fa.Active = false
				fa.UpdatedAt = time.Now()
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *FiscalAuthorizationRepo) Update(_ context.Context, fa *entity.FiscalAuthorization) error {
	return r.inv().write(func(st *ledgerState) error {
		if _, ok := st.cais[fa.ID]; !ok {
			return domain.ErrNotFound
		}
		if fa.Active && activeOther(st, fa.ID) {
			return domain.ErrConflict
		}
		cp := *fa
		st.cais[fa.ID] = &cp
		return nil
	})
}

func activeOther(st *ledgerState, id int64) bool {
	for _, fa := range st.cais {
		if fa.Active && fa.ID != id {
			return true
		}
	}
	return false
}

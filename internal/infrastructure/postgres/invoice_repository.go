package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, issued_at, document_type, client_id, employee_id, payment_method_id,
	advertising_period, agency, order_number, notes,
	subtotal, discount_total, tax_total, total,
	document_handle, status, voided_at, created_at`

// Create persiste la cabecera; el id lo asigna la secuencia y es el número fiscal.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	const query = `
		INSERT INTO invoices (issued_at, document_type, client_id, employee_id, payment_method_id,
			advertising_period, agency, order_number, notes,
			subtotal, discount_total, tax_total, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		invoice.IssuedAt, invoice.DocumentType, invoice.ClientID, invoice.EmployeeID, invoice.PaymentMethodID,
		invoice.AdvertisingPeriod, invoice.Agency, invoice.OrderNumber, invoice.Notes,
		invoice.Subtotal, invoice.DiscountTotal, invoice.TaxTotal, invoice.Total,
		invoice.Status, invoice.CreatedAt,
	).Scan(&invoice.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert invoice: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error {
	const query = `
		INSERT INTO invoice_details (invoice_id, product_id, attribute_id, code, description, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		detail.InvoiceID, detail.ProductID, detail.AttributeID, detail.Code, detail.Description,
		detail.Quantity, detail.UnitPrice, detail.LineTotal,
	).Scan(&detail.ID)
	if err != nil {
		return fmt.Errorf("insert invoice detail: %w", err)
	}
	return nil
}

// CreateDiscount persiste la asignación de un descuento. (invoice_id, discount_id) es único.
func (r *InvoiceRepo) CreateDiscount(ctx context.Context, d *entity.InvoiceDiscount) error {
	const query = `INSERT INTO invoice_discounts (invoice_id, discount_id, amount) VALUES ($1, $2, $3)`
	if _, err := r.q.Exec(ctx, query, d.InvoiceID, d.DiscountID, d.Amount); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("descuento %d repetido en factura %d: %w", d.DiscountID, d.InvoiceID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice discount: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) SetTotals(ctx context.Context, id int64, subtotal, discountTotal, taxTotal, total decimal.Decimal) error {
	const query = `
		UPDATE invoices
		SET subtotal = $2, discount_total = $3, tax_total = $4, total = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, subtotal, discountTotal, taxTotal, total)
	if err != nil {
		return fmt.Errorf("set invoice totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDocumentHandle fija el documento; solo si aún no tenía uno.
func (r *InvoiceRepo) SetDocumentHandle(ctx context.Context, id int64, handle string) error {
	const query = `UPDATE invoices SET document_handle = $2 WHERE id = $1 AND document_handle IS NULL`
	tag, err := r.q.Exec(ctx, query, id, handle)
	if err != nil {
		return fmt.Errorf("set invoice document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("factura %d sin fila o con documento: %w", id, domain.ErrConflict)
	}
	return nil
}

// MarkVoid aplica active -> void; cualquier otro estado no se toca.
func (r *InvoiceRepo) MarkVoid(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE invoices SET status = $2, voided_at = $3 WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, query, id, entity.InvoiceStatusVoid, at, entity.InvoiceStatusActive)
	if err != nil {
		return fmt.Errorf("void invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyVoid
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepo) get(ctx context.Context, query string, id int64) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetDetailsByInvoiceID obtiene todas las líneas de una factura en orden de inserción.
func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceDetail, error) {
	const query = `
		SELECT id, invoice_id, product_id, attribute_id, code, description, quantity, unit_price, line_total
		FROM invoice_details WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice details: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.ProductID, &d.AttributeID, &d.Code, &d.Description,
			&d.Quantity, &d.UnitPrice, &d.LineTotal); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) GetDiscountsByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceDiscount, error) {
	const query = `
		SELECT invoice_id, discount_id, amount
		FROM invoice_discounts WHERE invoice_id = $1 ORDER BY discount_id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice discounts: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDiscount
	for rows.Next() {
		var d entity.InvoiceDiscount
		if err := rows.Scan(&d.InvoiceID, &d.DiscountID, &d.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice discount: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// List devuelve la página pedida (más reciente primero) y el total sin paginar.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	where, args := invoiceWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM invoices%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

func invoiceWhere(f repository.InvoiceFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.ClientID > 0 {
		add("client_id = $%d", f.ClientID)
	}
	if f.EmployeeID > 0 {
		add("employee_id = $%d", f.EmployeeID)
	}
	if f.IssuedFrom != nil {
		add("issued_at >= $%d", *f.IssuedFrom)
	}
	if f.IssuedTo != nil {
		add("issued_at < $%d", *f.IssuedTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var handle *string
	err := row.Scan(
		&inv.ID, &inv.IssuedAt, &inv.DocumentType, &inv.ClientID, &inv.EmployeeID, &inv.PaymentMethodID,
		&inv.AdvertisingPeriod, &inv.Agency, &inv.OrderNumber, &inv.Notes,
		&inv.Subtotal, &inv.DiscountTotal, &inv.TaxTotal, &inv.Total,
		&handle, &inv.Status, &inv.VoidedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.DocumentHandle = derefStr(handle)
	return &inv, nil
}

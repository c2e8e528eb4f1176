package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/infrastructure/memory"
)

const prefix = "000-001-01"

type fixture struct {
	store     *memory.Store
	renderer  *billing.MockDocumentRenderer
	artifacts *billing.MockArtifactStore
	ledger    *billing.LedgerUseCase
	query     *billing.QueryUseCase

	client   *entity.Client
	employee *entity.Employee
	cash     *entity.PaymentMethod
	lens     *entity.Product
	exam     *entity.Product
	promo    *entity.Discount
	session  billing.Session
}

type fixtureOpt func(*memory.Store)

func withCAI(expiration time.Time) fixtureOpt {
	return func(s *memory.Store) {
		err := s.FiscalAuthorizations().Create(context.Background(), &entity.FiscalAuthorization{
			Code: "35B4C1-8A2F90-1C4E7D-55AA10-0B9E3F-12", RangeFrom: 1, RangeTo: 5000,
			EmissionDate: time.Now().AddDate(0, -1, 0), ExpirationDate: expiration, Active: true,
		})
		if err != nil {
			panic(err)
		}
	}
}

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	s := memory.NewStore()
	if len(opts) == 0 {
		opts = []fixtureOpt{withCAI(time.Now().AddDate(1, 0, 0))}
	}
	for _, opt := range opts {
		opt(s)
	}

	f := &fixture{
		store:     s,
		renderer:  billing.NewMockDocumentRenderer(ctrl),
		artifacts: billing.NewMockArtifactStore(ctrl),
		client:    s.AddClient(entity.Client{Name: "Ana López", TaxID: "0801199000111"}),
		employee:  s.AddEmployee(entity.Employee{Name: "Carlos Ruiz", Role: entity.RoleCajero, Active: true}),
		cash:      s.AddPaymentMethod(entity.PaymentMethod{Name: "Efectivo", Active: true}),
		lens:      s.AddProduct(entity.Product{Code: "LEN-01", Name: "Lente monofocal", SalePrice: decimal.NewFromInt(100), Active: true}),
		exam:      s.AddProduct(entity.Product{Code: "EXA-01", Name: "Examen visual", SalePrice: decimal.NewFromInt(50), Active: true}),
		promo:     s.AddDiscount(entity.Discount{Name: "Promoción", Percentage: decimal.NewFromInt(10), Active: true}),
	}
	f.session = billing.Session{EmployeeID: f.employee.ID, Role: entity.RoleCajero}

	resolver := billing.NewCatalogResolver(s.Clients(), s.Employees(), s.PaymentMethods(), s.Products(), s.Discounts())
	f.ledger = billing.NewLedgerUseCase(s, resolver, f.renderer, f.artifacts, nil, nil, billing.LedgerConfig{
		TaxRate:      decimal.RequireFromString("0.15"),
		NumberPrefix: prefix,
		Issuer:       entity.Company{Name: "Óptica Central", RTN: "08011999123456"},
	})
	f.query = billing.NewQueryUseCase(s.Invoices(), f.artifacts, prefix)
	return f
}

// expectDocument espera un render y un guardado exitosos por cada factura creada.
func (f *fixture) expectDocument(times int) {
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return([]byte("%PDF-1.4"), nil).Times(times)
	f.artifacts.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, _ []byte) (string, error) {
			return "stored_" + name, nil
		}).Times(times)
}

func (f *fixture) request(lines ...dto.InvoiceLineItemRequest) dto.CreateInvoiceRequest {
	if len(lines) == 0 {
		lines = []dto.InvoiceLineItemRequest{
			{ProductID: f.lens.ID, Quantity: 2},
			{ProductID: f.exam.ID, Quantity: 1},
		}
	}
	return dto.CreateInvoiceRequest{
		Header:    dto.InvoiceHeaderRequest{ClientID: f.client.ID, PaymentMethodID: f.cash.ID},
		LineItems: lines,
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "se esperaba ValidationError, llegó %v", err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	return ve.Fields
}

func TestCreateInvoice_TotalsWithDiscount(t *testing.T) {
	f := newFixture(t)
	f.expectDocument(1)

	req := f.request()
	req.Discounts = []dto.InvoiceDiscountRequest{{DiscountID: f.promo.ID}}
	resp, err := f.ledger.CreateInvoice(context.Background(), f.session, req)
	require.NoError(t, err)

	assert.Equal(t, "250", resp.Subtotal.String())
	assert.Equal(t, "25", resp.DiscountTotal.String())
	assert.Equal(t, "33.75", resp.TaxTotal.String())
	assert.Equal(t, "258.75", resp.Total.String())
	assert.Equal(t, entity.InvoiceStatusActive, resp.Status)
	assert.Equal(t, prefix+"-00000001", resp.Number)
	assert.Equal(t, "stored_factura_"+prefix+"-00000001.pdf", resp.DocumentHandle)
	assert.Equal(t, f.employee.ID, resp.EmployeeID, "empleado de la sesión por defecto")
	assert.Equal(t, entity.DefaultDocumentType, resp.DocumentType)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "200", resp.Details[0].LineTotal.String())
	require.Len(t, resp.Discounts, 1)
	assert.Equal(t, "25", resp.Discounts[0].Amount.String())

	invoices, details, discounts := f.store.Counts()
	assert.Equal(t, 1, invoices)
	assert.Equal(t, 2, details)
	assert.Equal(t, 1, discounts)
}

func TestCreateInvoice_ExplicitDiscountAmount(t *testing.T) {
	f := newFixture(t)
	f.expectDocument(1)

	amount := decimal.NewFromInt(40)
	req := f.request()
	req.Discounts = []dto.InvoiceDiscountRequest{{DiscountID: f.promo.ID, Amount: &amount}}
	resp, err := f.ledger.CreateInvoice(context.Background(), f.session, req)
	require.NoError(t, err)
	assert.Equal(t, "40", resp.DiscountTotal.String())
	assert.Equal(t, "241.5", resp.Total.String()) // (250-40) × 1.15
}

func TestCreateInvoice_NoDiscountsStoresNoRows(t *testing.T) {
	f := newFixture(t)
	f.expectDocument(1)

	resp, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request(dto.InvoiceLineItemRequest{ProductID: f.lens.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.Equal(t, "0", resp.DiscountTotal.String())
	assert.Equal(t, "30", resp.TaxTotal.String())
	assert.Equal(t, "230", resp.Total.String())
	assert.Empty(t, resp.Discounts)

	_, _, discounts := f.store.Counts()
	assert.Zero(t, discounts, "sin descuentos no se inserta ninguna asignación")
}

func TestCreateInvoice_DocumentCarriesCatalogData(t *testing.T) {
	f := newFixture(t)
	gradation := decimal.NewFromInt(120)
	attr := f.store.AddAttribute(entity.ProductAttribute{ProductID: f.lens.ID, Name: "Graduación", Value: "-1.50", SalePrice: &gradation, Active: true})

	var captured *billing.InvoiceDocument
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *billing.InvoiceDocument) ([]byte, error) {
			captured = doc
			return []byte("%PDF"), nil
		})
	f.artifacts.EXPECT().Save(gomock.Any(), "factura_"+prefix+"-00000001.pdf", []byte("%PDF")).Return("h.pdf", nil)

	_, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request(dto.InvoiceLineItemRequest{ProductID: f.lens.ID, AttributeID: &attr.ID, Quantity: 1}))
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, prefix+"-00000001", captured.Number)
	assert.Equal(t, "Óptica Central", captured.Issuer.Name)
	assert.Equal(t, "Ana López", captured.Client.Name)
	assert.Equal(t, "Carlos Ruiz", captured.Employee.Name)
	assert.Equal(t, "Efectivo", captured.PaymentMethod.Name)
	require.NotNil(t, captured.Authorization)
	require.Len(t, captured.Lines, 1)
	assert.Equal(t, "Lente monofocal - Graduación: -1.50", captured.Lines[0].Description)
	assert.Equal(t, "120", captured.Lines[0].UnitPrice.String(), "el precio del atributo reemplaza al del producto")
	assert.Equal(t, "138", captured.Totals.Total.String())
}

func TestCreateInvoice_RenderFailureLeavesNothing(t *testing.T) {
	f := newFixture(t)
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(nil, errors.New("fuente no disponible"))

	_, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request())
	require.Error(t, err)

	invoices, details, discounts := f.store.Counts()
	assert.Zero(t, invoices)
	assert.Zero(t, details)
	assert.Zero(t, discounts)
}

func TestCreateInvoice_CommitFailureDeletesDocument(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return([]byte("%PDF"), nil)
	f.artifacts.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, []byte) (string, error) {
			cancel() // el commit posterior falla
			return "huerfano.pdf", nil
		})
	f.artifacts.EXPECT().Delete(gomock.Any(), "huerfano.pdf").
		DoAndReturn(func(ctx context.Context, _ string) error {
			assert.NoError(t, ctx.Err(), "la limpieza no debe heredar la cancelación")
			return nil
		})

	_, err := f.ledger.CreateInvoice(ctx, f.session, f.request())
	require.ErrorIs(t, err, context.Canceled)

	invoices, _, _ := f.store.Counts()
	assert.Zero(t, invoices)
}

func TestCreateInvoice_MonotonicNumbers(t *testing.T) {
	f := newFixture(t)
	gomock.InOrder(
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return([]byte("%PDF"), nil).Times(2),
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(nil, errors.New("falla")),
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return([]byte("%PDF"), nil),
	)
	f.artifacts.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, _ []byte) (string, error) {
			return "stored_" + name, nil
		}).Times(3)

	var ids []int64
	for i := 0; i < 2; i++ {
		resp, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request())
		require.NoError(t, err)
		ids = append(ids, resp.ID)
	}
	_, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request())
	require.Error(t, err)
	resp, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request())
	require.NoError(t, err)
	ids = append(ids, resp.ID)

	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
	invoices, _, _ := f.store.Counts()
	assert.Equal(t, 3, invoices)
}

func TestCreateInvoice_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)
	const n = 10
	f.expectDocument(n)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int64]bool{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request())
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[resp.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("sin líneas", func(t *testing.T) {
		req := f.request()
		req.LineItems = nil
		_, err := f.ledger.CreateInvoice(ctx, f.session, req)
		assert.Contains(t, fields(t, err), "line_items")
	})

	t.Run("referencias inexistentes", func(t *testing.T) {
		req := f.request(dto.InvoiceLineItemRequest{ProductID: 9999, Quantity: 1})
		req.Header.ClientID = 9999
		req.Header.PaymentMethodID = 0
		fs := fields(t, nil2(f.ledger.CreateInvoice(ctx, f.session, req)))
		assert.Equal(t, "no existe", fs["header.client_id"])
		assert.Equal(t, "requerido", fs["header.payment_method_id"])
		assert.Equal(t, "no existe", fs["line_items[0].product_id"])
	})

	t.Run("cantidad no positiva", func(t *testing.T) {
		_, err := f.ledger.CreateInvoice(ctx, f.session, f.request(dto.InvoiceLineItemRequest{ProductID: f.lens.ID, Quantity: 0}))
		assert.Contains(t, fields(t, err), "line_items[0].quantity")
	})

	t.Run("atributo de otro producto", func(t *testing.T) {
		attr := f.store.AddAttribute(entity.ProductAttribute{ProductID: f.exam.ID, Name: "Tipo", Value: "Completo", Active: true})
		_, err := f.ledger.CreateInvoice(ctx, f.session, f.request(dto.InvoiceLineItemRequest{ProductID: f.lens.ID, AttributeID: &attr.ID, Quantity: 1}))
		assert.Equal(t, "no existe", fields(t, err)["line_items[0].product_id"])
	})

	t.Run("producto inactivo", func(t *testing.T) {
		old := f.store.AddProduct(entity.Product{Code: "OLD", Name: "Descontinuado", SalePrice: decimal.NewFromInt(10)})
		_, err := f.ledger.CreateInvoice(ctx, f.session, f.request(dto.InvoiceLineItemRequest{ProductID: old.ID, Quantity: 1}))
		assert.Equal(t, "no existe", fields(t, err)["line_items[0].product_id"])
	})

	t.Run("descuento duplicado", func(t *testing.T) {
		req := f.request()
		req.Discounts = []dto.InvoiceDiscountRequest{{DiscountID: f.promo.ID}, {DiscountID: f.promo.ID}}
		_, err := f.ledger.CreateInvoice(ctx, f.session, req)
		assert.Equal(t, "duplicado", fields(t, err)["discounts[1].discount_id"])
	})

	t.Run("descuentos mayores al subtotal", func(t *testing.T) {
		amount := decimal.NewFromInt(300)
		req := f.request()
		req.Discounts = []dto.InvoiceDiscountRequest{{DiscountID: f.promo.ID, Amount: &amount}}
		_, err := f.ledger.CreateInvoice(ctx, f.session, req)
		assert.Contains(t, fields(t, err), "discounts")
	})

	t.Run("monto negativo", func(t *testing.T) {
		amount := decimal.NewFromInt(-1)
		req := f.request()
		req.Discounts = []dto.InvoiceDiscountRequest{{DiscountID: f.promo.ID, Amount: &amount}}
		_, err := f.ledger.CreateInvoice(ctx, f.session, req)
		assert.Contains(t, fields(t, err), "discounts[0].amount")
	})

	invoices, _, _ := f.store.Counts()
	assert.Zero(t, invoices, "ninguna solicitud inválida escribe")
}

func TestCreateInvoice_WithoutActiveCAI(t *testing.T) {
	f := newFixture(t, func(*memory.Store) {})
	_, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request())
	assert.ErrorIs(t, err, domain.ErrNoActiveCAI)

	invoices, details, _ := f.store.Counts()
	assert.Zero(t, invoices)
	assert.Zero(t, details)
}

func TestCreateInvoice_ExpiredCAI(t *testing.T) {
	f := newFixture(t, withCAI(time.Now().AddDate(0, 0, -1)))
	_, err := f.ledger.CreateInvoice(context.Background(), f.session, f.request())
	assert.ErrorIs(t, err, domain.ErrCAIExpired)
}

func TestVoidInvoice(t *testing.T) {
	f := newFixture(t)
	f.expectDocument(1)
	ctx := context.Background()

	created, err := f.ledger.CreateInvoice(ctx, f.session, f.request())
	require.NoError(t, err)

	voided, err := f.ledger.VoidInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusVoid, voided.Status)
	require.NotNil(t, voided.VoidedAt)

	stored, err := f.query.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusVoid, stored.Status)
	assert.Equal(t, created.Total.String(), stored.Total.String(), "anular no toca los montos")
	assert.Equal(t, created.DocumentHandle, stored.DocumentHandle)
	assert.Len(t, stored.Details, 2)

	_, err = f.ledger.VoidInvoice(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoid)

	_, err = f.ledger.VoidInvoice(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditInvoice_AlwaysRejected(t *testing.T) {
	f := newFixture(t)
	f.expectDocument(1)
	ctx := context.Background()

	created, err := f.ledger.CreateInvoice(ctx, f.session, f.request())
	require.NoError(t, err)

	for _, id := range []string{"1", "9999", "abc", ""} {
		err := f.ledger.EditInvoice(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInvoiceImmutable)
		assert.Equal(t, "las facturas no se pueden modificar, deben anularse", err.Error())
	}

	stored, err := f.query.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusActive, stored.Status)
	assert.Equal(t, created.Total.String(), stored.Total.String())
	assert.Equal(t, created.ClientID, stored.ClientID)
	assert.Equal(t, created.DocumentHandle, stored.DocumentHandle)
	assert.True(t, created.IssuedAt.Equal(stored.IssuedAt))
	assert.Equal(t, len(created.Details), len(stored.Details))
}

func TestQuery_ListAndDocument(t *testing.T) {
	f := newFixture(t)
	f.expectDocument(3)
	ctx := context.Background()

	var last *dto.InvoiceResponse
	for i := 0; i < 3; i++ {
		resp, err := f.ledger.CreateInvoice(ctx, f.session, f.request())
		require.NoError(t, err)
		last = resp
	}
	_, err := f.ledger.VoidInvoice(ctx, last.ID)
	require.NoError(t, err)

	page, err := f.query.List(ctx, dto.ListInvoicesQuery{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, last.ID, page.Items[0].ID, "más reciente primero")

	voided, err := f.query.List(ctx, dto.ListInvoicesQuery{Status: entity.InvoiceStatusVoid})
	require.NoError(t, err)
	assert.Equal(t, 1, voided.Page.Total)

	today := time.Now().UTC().Format("2006-01-02")
	byDate, err := f.query.List(ctx, dto.ListInvoicesQuery{From: today, To: today})
	require.NoError(t, err)
	assert.Equal(t, 3, byDate.Page.Total)

	_, err = f.query.List(ctx, dto.ListInvoicesQuery{Status: "pagada", From: "10/05/2024"})
	fs := fields(t, err)
	assert.Contains(t, fs, "status")
	assert.Contains(t, fs, "from")

	f.artifacts.EXPECT().Open(gomock.Any(), last.DocumentHandle).Return([]byte("%PDF-1.4"), nil)
	pdf, name, err := f.query.DownloadDocument(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Equal(t, "factura_"+last.Number+".pdf", name)

	_, _, err = f.query.DownloadDocument(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// nil2 descarta el primer valor de retorno.
func nil2[T any](_ T, err error) error { return err }

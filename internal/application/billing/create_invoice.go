package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	domainbilling "github.com/jhoicas/optica-api/internal/domain/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/pkg/logger"
)

// LedgerConfig parámetros fiscales del libro de facturas.
type LedgerConfig struct {
	TaxRate      decimal.Decimal // 0.15 = ISV 15 %
	NumberPrefix string          // ej. "000-001-01"
	Issuer       entity.Company
}

// Etapas de la creación, usadas en métricas y logs.
const (
	stageValidation = "validation"
	stageHeader     = "header"
	stageDetails    = "details"
	stageDiscounts  = "discounts"
	stageTotals     = "totals"
	stageCAI        = "cai"
	stageRender     = "render"
	stageStore      = "store"
	stageCommit     = "commit"
)

// LedgerUseCase crea facturas de forma atómica (cabecera, líneas, descuentos, totales y
// documento) y aplica la única transición permitida: active -> void.
type LedgerUseCase struct {
	txRunner TxRunner
	resolver *CatalogResolver
	renderer DocumentRenderer
	store    ArtifactStore
	metrics  LedgerMetrics
	log      *logger.Logger
	cfg      LedgerConfig
}

// NewLedgerUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	resolver *CatalogResolver,
	renderer DocumentRenderer,
	store ArtifactStore,
	metrics LedgerMetrics,
	log *logger.Logger,
	cfg LedgerConfig,
) *LedgerUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.TaxRate.IsZero() {
		cfg.TaxRate = domainbilling.DefaultTaxRate
	}
	return &LedgerUseCase{
		txRunner: txRunner,
		resolver: resolver,
		renderer: renderer,
		store:    store,
		metrics:  metrics,
		log:      log,
		cfg:      cfg,
	}
}

// resolvedLine línea validada con su entrada de catálogo.
type resolvedLine struct {
	entry    *entity.CatalogEntry
	quantity int
}

// resolvedDiscount asignación validada con su definición.
type resolvedDiscount struct {
	discount *entity.Discount
	amount   decimal.Decimal
}

// resolvedRequest todo lo resuelto antes de abrir la transacción.
type resolvedRequest struct {
	client        *entity.Client
	employee      *entity.Employee
	paymentMethod *entity.PaymentMethod
	lines         []resolvedLine
	discounts     []resolvedDiscount
}

// CreateInvoice valida las referencias, calcula totales con precios del catálogo y persiste
// cabecera, líneas, descuentos, totales y documento en una sola unidad de trabajo.
// Si algo falla no queda nada visible: ni filas ni documento.
func (uc *LedgerUseCase) CreateInvoice(ctx context.Context, session Session, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	started := time.Now()

	req, err := uc.resolve(ctx, session, in)
	if err != nil {
		uc.metrics.CreationFailed(stageValidation)
		return nil, err
	}

	lines := make([]domainbilling.Line, 0, len(req.lines))
	for _, l := range req.lines {
		lines = append(lines, domainbilling.Line{Quantity: l.quantity, UnitPrice: l.entry.UnitPrice})
	}
	amounts := make([]decimal.Decimal, 0, len(req.discounts))
	for _, d := range req.discounts {
		amounts = append(amounts, d.amount)
	}
	totals := domainbilling.ComputeTotals(lines, amounts, uc.cfg.TaxRate)

	issuedAt := time.Now()
	if in.Header.IssuedAt != nil && !in.Header.IssuedAt.IsZero() {
		issuedAt = *in.Header.IssuedAt
	}
	docType := in.Header.DocumentType
	if docType == "" {
		docType = entity.DefaultDocumentType
	}

	inv := &entity.Invoice{
		IssuedAt:          issuedAt,
		DocumentType:      docType,
		ClientID:          req.client.ID,
		EmployeeID:        req.employee.ID,
		PaymentMethodID:   req.paymentMethod.ID,
		AdvertisingPeriod: in.Header.AdvertisingPeriod,
		Agency:            in.Header.Agency,
		OrderNumber:       in.Header.OrderNumber,
		Notes:             in.Header.Notes,
		Status:            entity.InvoiceStatusActive,
		CreatedAt:         time.Now(),
	}
	var (
		details   []*entity.InvoiceDetail
		allocs    []*entity.InvoiceDiscount
		handle    string
		failStage = stageCommit
	)

	err = uc.txRunner.RunInTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		invoices := uow.Invoices()

		// 1) Cabecera: la secuencia asigna el número de factura.
		if err := invoices.Create(ctx, inv); err != nil {
			failStage = stageHeader
			return err
		}

		// 2) Líneas con el precio resuelto del catálogo.
		details = make([]*entity.InvoiceDetail, 0, len(req.lines))
		for _, l := range req.lines {
			d := &entity.InvoiceDetail{
				InvoiceID:   inv.ID,
				ProductID:   l.entry.ProductID,
				AttributeID: l.entry.AttributeID,
				Code:        l.entry.Code,
				Description: l.entry.Description,
				Quantity:    l.quantity,
				UnitPrice:   l.entry.UnitPrice,
				LineTotal:   domainbilling.LineTotal(l.quantity, l.entry.UnitPrice),
			}
			if err := invoices.CreateDetail(ctx, d); err != nil {
				failStage = stageDetails
				return err
			}
			details = append(details, d)
		}

		// 3) Asignaciones de descuento. Sin descuentos no se inserta nada.
		allocs = make([]*entity.InvoiceDiscount, 0, len(req.discounts))
		for _, d := range req.discounts {
			a := &entity.InvoiceDiscount{InvoiceID: inv.ID, DiscountID: d.discount.ID, Amount: d.amount}
			if err := invoices.CreateDiscount(ctx, a); err != nil {
				failStage = stageDiscounts
				return err
			}
			allocs = append(allocs, a)
		}

		// 4) Totales, fijados una sola vez.
		inv.Subtotal = totals.Subtotal
		inv.DiscountTotal = totals.Discounts
		inv.TaxTotal = totals.Tax
		inv.Total = totals.Total
		if err := domainbilling.ValidateInvoice(inv, details, allocs, uc.cfg.TaxRate); err != nil {
			failStage = stageTotals
			return err
		}
		if err := invoices.SetTotals(ctx, inv.ID, inv.Subtotal, inv.DiscountTotal, inv.TaxTotal, inv.Total); err != nil {
			failStage = stageTotals
			return err
		}

		// 5) CAI vigente para las leyendas del documento.
		cai, err := uow.FiscalAuthorizations().GetActive(ctx)
		if err != nil {
			failStage = stageCAI
			return err
		}
		if cai == nil {
			failStage = stageCAI
			return domain.ErrNoActiveCAI
		}
		if cai.ExpiredAt(inv.IssuedAt) {
			failStage = stageCAI
			return fmt.Errorf("%w: vence %s", domain.ErrCAIExpired, cai.ExpirationDate.Format("2006-01-02"))
		}

		// 6) Documento fiscal, dentro de la misma unidad de trabajo.
		doc := &InvoiceDocument{
			Issuer:        uc.cfg.Issuer,
			Number:        domainbilling.FiscalNumber(uc.cfg.NumberPrefix, inv.ID),
			Invoice:       inv,
			Client:        req.client,
			Employee:      req.employee,
			PaymentMethod: req.paymentMethod,
			Lines:         details,
			Discounts:     discountLines(req.discounts),
			Authorization: cai,
			Totals:        totals,
			TaxRate:       uc.cfg.TaxRate,
		}
		pdf, err := uc.renderer.Render(ctx, doc)
		if err != nil {
			failStage = stageRender
			return fmt.Errorf("generar documento: %w", err)
		}
		h, err := uc.store.Save(ctx, documentFileName(doc.Number), pdf)
		if err != nil {
			failStage = stageStore
			return fmt.Errorf("guardar documento: %w", err)
		}
		handle = h
		if err := invoices.SetDocumentHandle(ctx, inv.ID, h); err != nil {
			failStage = stageStore
			return err
		}
		inv.DocumentHandle = h
		return nil
	})
	if err != nil {
		if handle != "" {
			if delErr := uc.store.Delete(context.WithoutCancel(ctx), handle); delErr != nil {
				uc.log.Error().Err(delErr).Str("handle", handle).Msg("no se pudo eliminar el documento de una factura revertida")
			}
		}
		uc.metrics.CreationFailed(failStage)
		uc.log.Error().Err(err).Str("stage", failStage).Int64("client_id", inv.ClientID).Msg("creación de factura revertida")
		if errors.Is(err, domain.ErrNoActiveCAI) || errors.Is(err, domain.ErrCAIExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("crear factura: %w", err)
	}

	uc.metrics.InvoiceCreated()
	uc.metrics.ObserveCreation(time.Since(started))
	uc.log.Info().Int64("invoice_id", inv.ID).Str("total", domainbilling.Money(inv.Total)).Msg("factura creada")

	return toInvoiceResponse(inv, uc.cfg.NumberPrefix, details, allocs), nil
}

// resolve valida la solicitud y resuelve todas las referencias antes de cualquier escritura.
// Los problemas de validación se devuelven juntos en un *domain.ValidationError.
func (uc *LedgerUseCase) resolve(ctx context.Context, session Session, in dto.CreateInvoiceRequest) (*resolvedRequest, error) {
	ve := domain.NewValidationError()
	req := &resolvedRequest{}

	// check registra ErrNotFound como error de campo; otros errores se propagan.
	check := func(field string, err error) error {
		if errors.Is(err, domain.ErrNotFound) {
			ve.Add(field, "no existe")
			return nil
		}
		return err
	}

	if in.Header.ClientID <= 0 {
		ve.Add("header.client_id", "requerido")
	} else {
		c, err := uc.resolver.ResolveClient(ctx, in.Header.ClientID)
		if err := check("header.client_id", err); err != nil {
			return nil, err
		}
		req.client = c
	}

	employeeID := in.Header.EmployeeID
	if employeeID <= 0 {
		employeeID = session.EmployeeID
	}
	if employeeID <= 0 {
		ve.Add("header.employee_id", "requerido")
	} else {
		e, err := uc.resolver.ResolveEmployee(ctx, employeeID)
		if err := check("header.employee_id", err); err != nil {
			return nil, err
		}
		req.employee = e
	}

	if in.Header.PaymentMethodID <= 0 {
		ve.Add("header.payment_method_id", "requerido")
	} else {
		pm, err := uc.resolver.ResolvePaymentMethod(ctx, in.Header.PaymentMethodID)
		if err := check("header.payment_method_id", err); err != nil {
			return nil, err
		}
		req.paymentMethod = pm
	}

	if len(in.LineItems) == 0 {
		ve.Add("line_items", "debe contener al menos una línea")
	}
	for i, item := range in.LineItems {
		field := fmt.Sprintf("line_items[%d]", i)
		if item.Quantity <= 0 {
			ve.Add(field+".quantity", "debe ser mayor que cero")
		}
		if item.ProductID <= 0 {
			ve.Add(field+".product_id", "requerido")
			continue
		}
		entry, err := uc.resolver.ResolveCatalogEntry(ctx, item.ProductID, item.AttributeID)
		if err := check(field+".product_id", err); err != nil {
			return nil, err
		}
		if entry != nil && item.Quantity > 0 {
			req.lines = append(req.lines, resolvedLine{entry: entry, quantity: item.Quantity})
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	subtotal := decimal.Zero
	for _, l := range req.lines {
		subtotal = subtotal.Add(domainbilling.LineTotal(l.quantity, l.entry.UnitPrice))
	}
	seen := make(map[int64]bool, len(in.Discounts))
	totalDiscounts := decimal.Zero
	for i, d := range in.Discounts {
		field := fmt.Sprintf("discounts[%d]", i)
		if d.DiscountID <= 0 {
			ve.Add(field+".discount_id", "requerido")
			continue
		}
		if seen[d.DiscountID] {
			ve.Add(field+".discount_id", "duplicado")
			continue
		}
		seen[d.DiscountID] = true
		disc, err := uc.resolver.ResolveDiscount(ctx, d.DiscountID)
		if err := check(field+".discount_id", err); err != nil {
			return nil, err
		}
		if disc == nil {
			continue
		}
		amount := domainbilling.DiscountAmount(subtotal, disc.Percentage)
		if d.Amount != nil {
			amount = *d.Amount
		}
		if amount.IsNegative() {
			ve.Add(field+".amount", "no puede ser negativo")
			continue
		}
		totalDiscounts = totalDiscounts.Add(amount)
		req.discounts = append(req.discounts, resolvedDiscount{discount: disc, amount: amount})
	}
	if totalDiscounts.GreaterThan(subtotal) {
		ve.Add("discounts", "los descuentos exceden el subtotal")
	}
	if ve.HasErrors() {
		return nil, ve
	}
	return req, nil
}

func discountLines(in []resolvedDiscount) []DiscountLine {
	out := make([]DiscountLine, 0, len(in))
	for _, d := range in {
		out = append(out, DiscountLine{Name: d.discount.Name, Percentage: d.discount.Percentage, Amount: d.amount})
	}
	return out
}

func documentFileName(number string) string {
	return "factura_" + number + ".pdf"
}

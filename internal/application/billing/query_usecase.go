package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	domainbilling "github.com/jhoicas/optica-api/internal/domain/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

// QueryUseCase lecturas del libro de facturas: listado, detalle y documento impreso.
type QueryUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	store        ArtifactStore
	numberPrefix string
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(invoiceRepo repository.InvoiceRepository, store ArtifactStore, numberPrefix string) *QueryUseCase {
	return &QueryUseCase{invoiceRepo: invoiceRepo, store: store, numberPrefix: numberPrefix}
}

// List lista facturas (más recientes primero) con filtros y paginación.
func (uc *QueryUseCase) List(ctx context.Context, q dto.ListInvoicesQuery) (*dto.InvoiceListResponse, error) {
	q.DefaultPage()
	ve := domain.NewValidationError()
	filter := repository.InvoiceFilter{
		Status:     q.Status,
		ClientID:   q.ClientID,
		EmployeeID: q.EmployeeID,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.Status != "" && q.Status != entity.InvoiceStatusActive && q.Status != entity.InvoiceStatusVoid {
		ve.Add("status", "debe ser active o void")
	}
	if q.From != "" {
		t, err := time.Parse(dateLayout, q.From)
		if err != nil {
			ve.Add("from", "formato esperado AAAA-MM-DD")
		} else {
			filter.IssuedFrom = &t
		}
	}
	if q.To != "" {
		t, err := time.Parse(dateLayout, q.To)
		if err != nil {
			ve.Add("to", "formato esperado AAAA-MM-DD")
		} else {
			// inclusivo: hasta el final del día
			end := t.AddDate(0, 0, 1)
			filter.IssuedTo = &end
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	list, total, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *toInvoiceResponse(inv, uc.numberPrefix, nil, nil))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// GetInvoice obtiene una factura con sus líneas y descuentos.
func (uc *QueryUseCase) GetInvoice(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener detalles: %w", err)
	}
	discounts, err := uc.invoiceRepo.GetDiscountsByInvoiceID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener descuentos: %w", err)
	}
	return toInvoiceResponse(inv, uc.numberPrefix, details, discounts), nil
}

// DownloadDocument devuelve el documento fiscal generado al crear la factura.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe o no tiene documento.
func (uc *QueryUseCase) DownloadDocument(ctx context.Context, id int64) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("documento: obtener factura: %w", err)
	}
	if inv == nil || inv.DocumentHandle == "" {
		return nil, "", domain.ErrNotFound
	}
	pdfBytes, err = uc.store.Open(ctx, inv.DocumentHandle)
	if err != nil {
		return nil, "", fmt.Errorf("documento: abrir %s: %w", inv.DocumentHandle, err)
	}
	return pdfBytes, documentFileName(domainbilling.FiscalNumber(uc.numberPrefix, inv.ID)), nil
}

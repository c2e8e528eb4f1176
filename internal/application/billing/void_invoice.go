package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/domain/entity"
)

// VoidInvoice anula una factura activa. Solo cambian status y voided_at.
//
// Retorna:
//   - domain.ErrNotFound     si la factura no existe.
//   - domain.ErrAlreadyVoid  si ya estaba anulada (no es idempotente).
func (uc *LedgerUseCase) VoidInvoice(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	var inv *entity.Invoice
	err := uc.txRunner.RunInTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		current, err := uow.Invoices().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if !current.CanTransitionTo(entity.InvoiceStatusVoid) {
			return domain.ErrAlreadyVoid
		}
		now := time.Now()
		if err := uow.Invoices().MarkVoid(ctx, id, now); err != nil {
			return err
		}
		current.Status = entity.InvoiceStatusVoid
		current.VoidedAt = &now
		inv = current
		return nil
	})
	if err != nil {
		if domainErr(err) {
			return nil, err
		}
		return nil, fmt.Errorf("anular factura %d: %w", id, err)
	}
	uc.metrics.InvoiceVoided()
	uc.log.Info().Int64("invoice_id", id).Msg("factura anulada")
	return toInvoiceResponse(inv, uc.cfg.NumberPrefix, nil, nil), nil
}

// EditInvoice siempre rechaza: las facturas no se modifican, se anulan.
// No lee ni escribe nada, sin importar la factura o el contenido.
func (uc *LedgerUseCase) EditInvoice(_ context.Context, id string) error {
	uc.log.Warn().Str("invoice_id", id).Msg("intento de modificar una factura")
	return domain.ErrInvoiceImmutable
}

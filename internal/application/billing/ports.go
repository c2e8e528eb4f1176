package billing

import (
	"context"
	"time"

	"github.com/jhoicas/optica-api/internal/domain/repository"
)

// UnitOfWork agrupa los repositorios atados a una misma transacción.
// Se recibe como argumento en cada operación de escritura; nunca es estado global.
type UnitOfWork interface {
	Invoices() repository.InvoiceRepository
	FiscalAuthorizations() repository.FiscalAuthorizationRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}

// Session datos de la sesión autenticada que consume la facturación.
type Session struct {
	EmployeeID int64
	Role       string
}

// LedgerMetrics instrumentación del libro de facturas.
type LedgerMetrics interface {
	InvoiceCreated()
	InvoiceVoided()
	CreationFailed(stage string)
	ObserveCreation(d time.Duration)
}

// NopMetrics implementación vacía de LedgerMetrics.
type NopMetrics struct{}

func (NopMetrics) InvoiceCreated() {}
func (NopMetrics) InvoiceVoided() {}
func (NopMetrics) CreationFailed(string) {}
func (NopMetrics) ObserveCreation(time.Duration) {}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// unitOfWork repositorios atados a la misma pgx.Tx.
type unitOfWork struct {
	invoices *InvoiceRepo
	cai      *FiscalAuthorizationRepo
}

func (u *unitOfWork) Invoices() repository.InvoiceRepository { return u.invoices }

func (u *unitOfWork) FiscalAuthorizations() repository.FiscalAuthorizationRepository {
	return u.cai
}

// RunInTx inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, uow billing.UnitOfWork) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	uow := &unitOfWork{
		invoices: NewInvoiceRepository(tx),
		cai:      NewFiscalAuthorizationRepository(tx),
	}
	if err := fn(ctx, uow); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

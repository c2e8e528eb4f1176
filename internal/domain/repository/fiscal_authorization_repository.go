package repository

import (
	"context"

	"github.com/jhoicas/optica-api/internal/domain/entity"
)

// FiscalAuthorizationRepository define el puerto de persistencia para el CAI.
type FiscalAuthorizationRepository interface {
	Create(ctx context.Context, fa *entity.FiscalAuthorization) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.FiscalAuthorization, error)
	// GetActive devuelve nil, nil si no hay registro activo.
	GetActive(ctx context.Context) (*entity.FiscalAuthorization, error)
	List(ctx context.Context) ([]*entity.FiscalAuthorization, error)
	// DeactivateAll desactiva todos los registros activos y devuelve cuántos cambió.
	DeactivateAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, fa *entity.FiscalAuthorization) error
}

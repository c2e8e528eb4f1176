package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
)

var _ repository.FiscalAuthorizationRepository = (*FiscalAuthorizationRepo)(nil)

// FiscalAuthorizationRepo implementa FiscalAuthorizationRepository sobre PostgreSQL.
// El índice único parcial fiscal_authorizations_one_active garantiza un solo CAI activo.
type FiscalAuthorizationRepo struct {
	q Querier
}

// NewFiscalAuthorizationRepository construye el repositorio. Pasar pool o tx (Querier).
func NewFiscalAuthorizationRepository(q Querier) *FiscalAuthorizationRepo {
	return &FiscalAuthorizationRepo{q: q}
}

const caiColumns = `id, code, range_from, range_to, emission_date, expiration_date, active, created_at, updated_at`

func (r *FiscalAuthorizationRepo) Create(ctx context.Context, fa *entity.FiscalAuthorization) error {
	const q = `
		INSERT INTO fiscal_authorizations
			(code, range_from, range_to, emission_date, expiration_date, active, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, q,
		fa.Code, fa.RangeFrom, fa.RangeTo, fa.EmissionDate, fa.ExpirationDate,
		fa.Active, fa.CreatedAt, fa.UpdatedAt,
	).Scan(&fa.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert fiscal_authorization: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert fiscal_authorization: %w", err)
	}
	return nil
}

func (r *FiscalAuthorizationRepo) GetByID(ctx context.Context, id int64) (*entity.FiscalAuthorization, error) {
	fa, err := scanCAI(r.q.QueryRow(ctx, `SELECT `+caiColumns+` FROM fiscal_authorizations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal_authorization by id: %w", err)
	}
	return fa, nil
}

// GetActive devuelve nil, nil si no hay CAI activo. No filtra por vencimiento:
// esa decisión es del caso de uso, que conoce la fecha de emisión.
func (r *FiscalAuthorizationRepo) GetActive(ctx context.Context) (*entity.FiscalAuthorization, error) {
	fa, err := scanCAI(r.q.QueryRow(ctx, `SELECT `+caiColumns+` FROM fiscal_authorizations WHERE active LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active fiscal_authorization: %w", err)
	}
	return fa, nil
}

func (r *FiscalAuthorizationRepo) List(ctx context.Context) ([]*entity.FiscalAuthorization, error) {
	rows, err := r.q.Query(ctx, `SELECT `+caiColumns+` FROM fiscal_authorizations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list fiscal_authorizations: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalAuthorization
	for rows.Next() {
		fa, err := scanCAI(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal_authorization: %w", err)
		}
		list = append(list, fa)
	}
	return list, rows.Err()
}

func (r *FiscalAuthorizationRepo) DeactivateAll(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE fiscal_authorizations SET active = false, updated_at = now() WHERE active`)
	if err != nil {
		return 0, fmt.Errorf("deactivate fiscal_authorizations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *FiscalAuthorizationRepo) Update(ctx context.Context, fa *entity.FiscalAuthorization) error {
	const q = `
		UPDATE fiscal_authorizations
		SET code = $2, range_from = $3, range_to = $4,
		    emission_date = $5, expiration_date = $6, active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q,
		fa.ID, fa.Code, fa.RangeFrom, fa.RangeTo,
		fa.EmissionDate, fa.ExpirationDate, fa.Active, fa.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update fiscal_authorization: %w", domain.ErrConflict)
		}
		return fmt.Errorf("update fiscal_authorization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCAI(row pgxScanner) (*entity.FiscalAuthorization, error) {
	var fa entity.FiscalAuthorization
	err := row.Scan(
		&fa.ID, &fa.Code, &fa.RangeFrom, &fa.RangeTo,
		&fa.EmissionDate, &fa.ExpirationDate,
		&fa.Active, &fa.CreatedAt, &fa.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fa, nil
}

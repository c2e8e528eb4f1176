package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/internal/domain/repository"
	"github.com/jhoicas/optica-api/pkg/logger"
)

// maxActivationAttempts reintentos del cambio de CAI activo ante un creador concurrente.
const maxActivationAttempts = 3

// CAIUseCase administra el registro de autorización fiscal (CAI).
// Invariante: como máximo un registro activo (índice único parcial + intercambio transaccional).
type CAIUseCase struct {
	txRunner TxRunner
	repo     repository.FiscalAuthorizationRepository
	log      *logger.Logger
}

// NewCAIUseCase construye el caso de uso. repo es el repositorio fuera de transacción (lecturas).
func NewCAIUseCase(txRunner TxRunner, repo repository.FiscalAuthorizationRepository, log *logger.Logger) *CAIUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CAIUseCase{txRunner: txRunner, repo: repo, log: log}
}

// GetActive devuelve el CAI activo o domain.ErrNotFound.
func (uc *CAIUseCase) GetActive(ctx context.Context) (*dto.CAIResponse, error) {
	fa, err := uc.repo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtener CAI activo: %w", err)
	}
	if fa == nil {
		return nil, domain.ErrNotFound
	}
	return toCAIResponse(fa), nil
}

// List lista todos los CAI, el más reciente primero.
func (uc *CAIUseCase) List(ctx context.Context) ([]*dto.CAIResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar CAI: %w", err)
	}
	out := make([]*dto.CAIResponse, 0, len(list))
	for _, fa := range list {
		out = append(out, toCAIResponse(fa))
	}
	return out, nil
}

// Create desactiva todos los CAI activos e inserta el nuevo como activo, en una sola transacción.
// Si otro creador concurrente gana la carrera (ErrConflict por el índice único), se reintenta.
func (uc *CAIUseCase) Create(ctx context.Context, in dto.CreateCAIRequest) (*dto.CAIResponse, error) {
	ve := domain.NewValidationError()
	code := strings.TrimSpace(in.Code)
	if code == "" {
		ve.Add("code", "requerido")
	}
	emission := parseDate(ve, "emission_date", in.EmissionDate)
	expiration := parseDate(ve, "expiration_date", in.ExpirationDate)
	validateCAI(ve, in.RangeFrom, in.RangeTo, emission, expiration)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var fa *entity.FiscalAuthorization
	var err error
	for attempt := 1; attempt <= maxActivationAttempts; attempt++ {
		now := time.Now()
		fa = &entity.FiscalAuthorization{
			Code:           code,
			RangeFrom:      in.RangeFrom,
			RangeTo:        in.RangeTo,
			EmissionDate:   emission,
			ExpirationDate: expiration,
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		err = uc.txRunner.RunInTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
			repo := uow.FiscalAuthorizations()
			n, err := repo.DeactivateAll(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				uc.log.Info().Int64("deactivated", n).Msg("CAI anteriores desactivados")
			}
			return repo.Create(ctx, fa)
		})
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			break
		}
		uc.log.Warn().Int("attempt", attempt).Msg("conflicto al activar CAI, reintentando")
	}
	if err != nil {
		if domainErr(err) {
			return nil, err
		}
		return nil, fmt.Errorf("crear CAI: %w", err)
	}
	uc.log.Info().Int64("cai_id", fa.ID).Str("code", fa.Code).Msg("CAI activado")
	return toCAIResponse(fa), nil
}

// Update actualiza solo los campos enviados. No desactiva otros registros: activar uno
// mientras otro está activo devuelve domain.ErrConflict.
func (uc *CAIUseCase) Update(ctx context.Context, id int64, in dto.UpdateCAIRequest) (*dto.CAIResponse, error) {
	var fa *entity.FiscalAuthorization
	err := uc.txRunner.RunInTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		repo := uow.FiscalAuthorizations()
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		ve := domain.NewValidationError()
		if in.Code != nil {
			current.Code = strings.TrimSpace(*in.Code)
			if current.Code == "" {
				ve.Add("code", "no puede quedar vacío")
			}
		}
		if in.RangeFrom != nil {
			current.RangeFrom = *in.RangeFrom
		}
		if in.RangeTo != nil {
			current.RangeTo = *in.RangeTo
		}
		if in.EmissionDate != nil {
			current.EmissionDate = parseDate(ve, "emission_date", *in.EmissionDate)
		}
		if in.ExpirationDate != nil {
			current.ExpirationDate = parseDate(ve, "expiration_date", *in.ExpirationDate)
		}
		if in.Active != nil {
			current.Active = *in.Active
		}
		validateCAI(ve, current.RangeFrom, current.RangeTo, current.EmissionDate, current.ExpirationDate)
		if err := ve.OrNil(); err != nil {
			return err
		}
		current.UpdatedAt = time.Now()
		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		fa = current
		return nil
	})
	if err != nil {
		if domainErr(err) {
			return nil, err
		}
		return nil, fmt.Errorf("actualizar CAI %d: %w", id, err)
	}
	return toCAIResponse(fa), nil
}

func parseDate(ve *domain.ValidationError, field, s string) time.Time {
	if strings.TrimSpace(s) == "" {
		ve.Add(field, "requerido")
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		ve.Add(field, "formato esperado AAAA-MM-DD")
		return time.Time{}
	}
	return t
}

func validateCAI(ve *domain.ValidationError, from, to int64, emission, expiration time.Time) {
	if from <= 0 {
		ve.Add("range_from", "debe ser mayor que cero")
	}
	if to < from {
		ve.Add("range_to", "debe ser mayor o igual que range_from")
	}
	if !emission.IsZero() && !expiration.IsZero() && expiration.Before(emission) {
		ve.Add("expiration_date", "no puede ser anterior a emission_date")
	}
}

package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/internal/infrastructure/memory"
)

func newCAIUseCase() (*billing.CAIUseCase, *memory.Store) {
	s := memory.NewStore()
	return billing.NewCAIUseCase(s, s.FiscalAuthorizations(), nil), s
}

func caiRequest(code string) dto.CreateCAIRequest {
	return dto.CreateCAIRequest{
		Code:           code,
		RangeFrom:      1,
		RangeTo:        5000,
		EmissionDate:   "2024-01-15",
		ExpirationDate: "2025-01-15",
	}
}

func TestCAI_CreateSwapsActiveRecord(t *testing.T) {
	uc, _ := newCAIUseCase()
	ctx := context.Background()

	_, err := uc.GetActive(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first, err := uc.Create(ctx, caiRequest("CAI-A"))
	require.NoError(t, err)
	assert.True(t, first.Active)
	assert.Equal(t, "2024-01-15", first.EmissionDate)

	second, err := uc.Create(ctx, caiRequest("CAI-B"))
	require.NoError(t, err)

	active, err := uc.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CAI-B", list[0].Code, "más reciente primero")
	assert.True(t, list[0].Active)
	assert.False(t, list[1].Active, "el anterior queda inactivo")
}

func TestCAI_CreateValidation(t *testing.T) {
	uc, _ := newCAIUseCase()
	_, err := uc.Create(context.Background(), dto.CreateCAIRequest{
		RangeFrom:      10,
		RangeTo:        5,
		EmissionDate:   "2025-01-15",
		ExpirationDate: "2024-01-15",
	})
	fs := fields(t, err)
	assert.Equal(t, "requerido", fs["code"])
	assert.Contains(t, fs, "range_to")
	assert.Contains(t, fs, "expiration_date")

	_, err = uc.Create(context.Background(), dto.CreateCAIRequest{Code: "X", RangeFrom: 1, RangeTo: 2, EmissionDate: "15/01/2024"})
	fs = fields(t, err)
	assert.Equal(t, "formato esperado AAAA-MM-DD", fs["emission_date"])
	assert.Equal(t, "requerido", fs["expiration_date"])
}

func TestCAI_Update(t *testing.T) {
	uc, _ := newCAIUseCase()
	ctx := context.Background()

	old, err := uc.Create(ctx, caiRequest("CAI-A"))
	require.NoError(t, err)
	current, err := uc.Create(ctx, caiRequest("CAI-B"))
	require.NoError(t, err)

	rangeTo := int64(9000)
	updated, err := uc.Update(ctx, current.ID, dto.UpdateCAIRequest{RangeTo: &rangeTo})
	require.NoError(t, err)
	assert.Equal(t, int64(9000), updated.RangeTo)
	assert.Equal(t, "CAI-B", updated.Code, "los campos no enviados no cambian")

	activate := true
	_, err = uc.Update(ctx, old.ID, dto.UpdateCAIRequest{Active: &activate})
	assert.ErrorIs(t, err, domain.ErrConflict, "no se activan dos CAI a la vez")

	active, err := uc.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, current.ID, active.ID)

	bad := int64(0)
	_, err = uc.Update(ctx, current.ID, dto.UpdateCAIRequest{RangeFrom: &bad})
	assert.Contains(t, fields(t, err), "range_from")

	_, err = uc.Update(ctx, 9999, dto.UpdateCAIRequest{RangeTo: &rangeTo})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

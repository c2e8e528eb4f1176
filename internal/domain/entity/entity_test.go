package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/optica-api/internal/domain/entity"
)

func TestInvoice_CanTransitionTo(t *testing.T) {
	active := &entity.Invoice{Status: entity.InvoiceStatusActive}
	void := &entity.Invoice{Status: entity.InvoiceStatusVoid}

	assert.True(t, active.CanTransitionTo(entity.InvoiceStatusVoid))
	assert.False(t, active.CanTransitionTo(entity.InvoiceStatusActive))
	assert.False(t, void.CanTransitionTo(entity.InvoiceStatusActive), "void es terminal")
	assert.False(t, void.CanTransitionTo(entity.InvoiceStatusVoid))
	assert.True(t, void.IsVoid())
}

func TestFiscalAuthorization_ExpiredAt(t *testing.T) {
	fa := &entity.FiscalAuthorization{
		ExpirationDate: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.False(t, fa.ExpiredAt(time.Date(2026, 12, 31, 18, 0, 0, 0, time.UTC)), "vigente todo el último día")
	assert.True(t, fa.ExpiredAt(time.Date(2027, 1, 1, 0, 0, 1, 0, time.UTC)))
}

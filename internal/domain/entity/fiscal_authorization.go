package entity

import "time"

// FiscalAuthorization representa el CAI (Código de Autorización de Impresión) vigente:
// rango de numeración autorizado, fecha de emisión y fecha límite.
// Solo un registro puede estar activo a la vez.
type FiscalAuthorization struct {
	ID             int64
	Code           string
	RangeFrom      int64
	RangeTo        int64
	EmissionDate   time.Time
	ExpirationDate time.Time
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExpiredAt indica si el CAI ya no es válido en la fecha t (se compara por día).
func (f *FiscalAuthorization) ExpiredAt(t time.Time) bool {
	y, m, d := f.ExpirationDate.Date()
	limit := time.Date(y, m, d, 23, 59, 59, 0, t.Location())
	return t.After(limit)
}

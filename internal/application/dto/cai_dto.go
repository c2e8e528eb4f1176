package dto

import "time"

// CreateCAIRequest body para POST /api/cai. Fechas en formato 2006-01-02.
// El nuevo registro queda como único CAI activo.
type CreateCAIRequest struct {
	Code           string `json:"code"`
	RangeFrom      int64  `json:"range_from"`
	RangeTo        int64  `json:"range_to"`
	EmissionDate   string `json:"emission_date"`
	ExpirationDate string `json:"expiration_date"`
}

// UpdateCAIRequest body para PUT /api/cai/:id. Solo se actualizan los campos enviados.
type UpdateCAIRequest struct {
	Code           *string `json:"code,omitempty"`
	RangeFrom      *int64  `json:"range_from,omitempty"`
	RangeTo        *int64  `json:"range_to,omitempty"`
	EmissionDate   *string `json:"emission_date,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
	Active         *bool   `json:"active,omitempty"`
}

// CAIResponse registro de autorización fiscal.
type CAIResponse struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	RangeFrom      int64     `json:"range_from"`
	RangeTo        int64     `json:"range_to"`
	EmissionDate   string    `json:"emission_date"`
	ExpirationDate string    `json:"expiration_date"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

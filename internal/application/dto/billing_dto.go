package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
// LineItems no puede ir vacío; Discounts es opcional.
type CreateInvoiceRequest struct {
	Header    InvoiceHeaderRequest     `json:"header"`
	LineItems []InvoiceLineItemRequest `json:"line_items"`
	Discounts []InvoiceDiscountRequest `json:"discounts,omitempty"`
}

// InvoiceHeaderRequest cabecera de la factura. EmployeeID vacío = empleado de la sesión.
type InvoiceHeaderRequest struct {
	ClientID          int64      `json:"client_id"`
	PaymentMethodID   int64      `json:"payment_method_id"`
	EmployeeID        int64      `json:"employee_id,omitempty"`
	DocumentType      string     `json:"document_type,omitempty"`
	IssuedAt          *time.Time `json:"issued_at,omitempty"`
	AdvertisingPeriod string     `json:"advertising_period,omitempty"`
	Agency            string     `json:"agency,omitempty"`
	OrderNumber       string     `json:"order_number,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// InvoiceLineItemRequest línea de factura. El precio siempre sale del catálogo.
type InvoiceLineItemRequest struct {
	ProductID   int64  `json:"product_id"`
	AttributeID *int64 `json:"attribute_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

// InvoiceDiscountRequest asignación de descuento. Sin Amount se calcula con el porcentaje del descuento.
type InvoiceDiscountRequest struct {
	DiscountID int64            `json:"discount_id"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

// InvoiceResponse factura persistida. Los montos van redondeados a 2 decimales.
type InvoiceResponse struct {
	ID                int64                     `json:"id"`
	Number            string                    `json:"number"`
	IssuedAt          time.Time                 `json:"issued_at"`
	DocumentType      string                    `json:"document_type"`
	ClientID          int64                     `json:"client_id"`
	EmployeeID        int64                     `json:"employee_id"`
	PaymentMethodID   int64                     `json:"payment_method_id"`
	AdvertisingPeriod string                    `json:"advertising_period,omitempty"`
	Agency            string                    `json:"agency,omitempty"`
	OrderNumber       string                    `json:"order_number,omitempty"`
	Notes             string                    `json:"notes,omitempty"`
	Subtotal          decimal.Decimal           `json:"subtotal"`
	DiscountTotal     decimal.Decimal           `json:"discount_total"`
	TaxTotal          decimal.Decimal           `json:"tax_total"`
	Total             decimal.Decimal           `json:"total"`
	DocumentHandle    string                    `json:"document_handle,omitempty"`
	Status            string                    `json:"status"`
	VoidedAt          *time.Time                `json:"voided_at,omitempty"`
	Details           []InvoiceDetailResponse   `json:"details,omitempty"`
	Discounts         []InvoiceDiscountResponse `json:"discounts,omitempty"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	AttributeID *int64          `json:"attribute_id,omitempty"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceDiscountResponse asignación de descuento en la respuesta.
type InvoiceDiscountResponse struct {
	DiscountID int64           `json:"discount_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// ListInvoicesQuery filtros de GET /api/invoices. Fechas en formato 2006-01-02.
type ListInvoicesQuery struct {
	Status     string `query:"status"`
	ClientID   int64  `query:"client_id"`
	EmployeeID int64  `query:"employee_id"`
	From       string `query:"from"`
	To         string `query:"to"`
	PageRequest
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

package billing

import (
	"errors"

	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	domainbilling "github.com/jhoicas/optica-api/internal/domain/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
)

// toInvoiceResponse arma la respuesta con montos redondeados para presentación.
func toInvoiceResponse(inv *entity.Invoice, prefix string, details []*entity.InvoiceDetail, discounts []*entity.InvoiceDiscount) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:                inv.ID,
		Number:            domainbilling.FiscalNumber(prefix, inv.ID),
		IssuedAt:          inv.IssuedAt,
		DocumentType:      inv.DocumentType,
		ClientID:          inv.ClientID,
		EmployeeID:        inv.EmployeeID,
		PaymentMethodID:   inv.PaymentMethodID,
		AdvertisingPeriod: inv.AdvertisingPeriod,
		Agency:            inv.Agency,
		OrderNumber:       inv.OrderNumber,
		Notes:             inv.Notes,
		Subtotal:          inv.Subtotal.Round(2),
		DiscountTotal:     inv.DiscountTotal.Round(2),
		TaxTotal:          inv.TaxTotal.Round(2),
		Total:             inv.Total.Round(2),
		DocumentHandle:    inv.DocumentHandle,
		Status:            inv.Status,
		VoidedAt:          inv.VoidedAt,
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.InvoiceDetailResponse{
			ID:          d.ID,
			ProductID:   d.ProductID,
			AttributeID: d.AttributeID,
			Code:        d.Code,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice.Round(2),
			LineTotal:   d.LineTotal.Round(2),
		})
	}
	for _, d := range discounts {
		resp.Discounts = append(resp.Discounts, dto.InvoiceDiscountResponse{
			DiscountID: d.DiscountID,
			Amount:     d.Amount.Round(2),
		})
	}
	return resp
}

func toCAIResponse(fa *entity.FiscalAuthorization) *dto.CAIResponse {
	return &dto.CAIResponse{
		ID:             fa.ID,
		Code:           fa.Code,
		RangeFrom:      fa.RangeFrom,
		RangeTo:        fa.RangeTo,
		EmissionDate:   fa.EmissionDate.Format(dateLayout),
		ExpirationDate: fa.ExpirationDate.Format(dateLayout),
		Active:         fa.Active,
		CreatedAt:      fa.CreatedAt,
		UpdatedAt:      fa.UpdatedAt,
	}
}

const dateLayout = "2006-01-02"

// domainErr indica si err es un error de dominio que debe llegar sin envolver al handler.
func domainErr(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrAlreadyVoid,
		domain.ErrConflict, domain.ErrInvoiceImmutable, domain.ErrNoActiveCAI, domain.ErrCAIExpired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

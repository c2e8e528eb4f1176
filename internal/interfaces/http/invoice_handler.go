package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/pkg/logger"
)

// InvoiceHandler maneja las peticiones HTTP del libro de facturas (protegido).
type InvoiceHandler struct {
	ledger *billing.LedgerUseCase
	query  *billing.QueryUseCase
	log    *logger.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(ledger *billing.LedgerUseCase, query *billing.QueryUseCase, log *logger.Logger) *InvoiceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceHandler{ledger: ledger, query: query, log: log}
}

// Create emite una factura: cabecera, líneas, descuentos, totales y documento en un solo paso.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	session := SessionFrom(c)
	if session.EmployeeID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	invoice, err := h.ledger.CreateInvoice(c.Context(), session, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Location(fmt.Sprintf("/api/invoices/%d", invoice.ID))
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List lista facturas con filtros de estado, cliente, empleado y rango de fechas.
// GET /api/invoices?status=&client_id=&employee_id=&from=&to=&limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.ListInvoicesQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros de consulta inválidos")
	}
	out, err := h.query.List(c.Context(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID obtiene la factura con sus líneas y descuentos.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	invoice, err := h.query.GetInvoice(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(invoice)
}

// Update rechaza cualquier modificación: una factura emitida solo puede anularse.
// PUT|PATCH /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	return respondError(c, h.log, h.ledger.EditInvoice(c.Context(), c.Params("id")))
}

// Void anula una factura activa.
// POST /api/invoices/:id/void
func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	invoice, err := h.ledger.VoidInvoice(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(invoice)
}

// Document devuelve el PDF generado al emitir la factura. Con ?download=true se envía como adjunto.
// GET /api/invoices/:id/document
func (h *InvoiceHandler) Document(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	pdfBytes, filename, err := h.query.DownloadDocument(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	disposition := "inline"
	if c.QueryBool("download") {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, filename))
	return c.Send(pdfBytes)
}

func pathID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/pkg/logger"
)

// CAIHandler administra el registro de autorización fiscal.
type CAIHandler struct {
	uc  *billing.CAIUseCase
	log *logger.Logger
}

// NewCAIHandler construye el handler.
func NewCAIHandler(uc *billing.CAIUseCase, log *logger.Logger) *CAIHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CAIHandler{uc: uc, log: log}
}

// Active GET /api/cai/active
func (h *CAIHandler) Active(c *fiber.Ctx) error {
	out, err := h.uc.GetActive(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List GET /api/cai
func (h *CAIHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"items": out})
}

// Create registra un CAI nuevo y lo deja como único activo.
// POST /api/cai
func (h *CAIHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCAIRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update PUT /api/cai/:id
func (h *CAIHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	var in dto.UpdateCAIRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

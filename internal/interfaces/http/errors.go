package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/domain"
	"github.com/jhoicas/optica-api/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: ValidationError se resuelve antes, y ErrInvalidInput es el caso genérico.
var errorMappings = []errorMapping{
	{domain.ErrInvoiceImmutable, fiber.StatusBadRequest, "INVOICE_IMMUTABLE", domain.ErrInvoiceImmutable.Error()},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrAlreadyVoid, fiber.StatusBadRequest, "ALREADY_VOID", domain.ErrAlreadyVoid.Error()},
	{domain.ErrNoActiveCAI, fiber.StatusUnprocessableEntity, "NO_ACTIVE_CAI", domain.ErrNoActiveCAI.Error()},
	{domain.ErrCAIExpired, fiber.StatusUnprocessableEntity, "CAI_EXPIRED", domain.ErrCAIExpired.Error()},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", domain.ErrConflict.Error()},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
}

// respondError traduce errores de dominio a dto.ErrorResponse. Los errores no reconocidos
// se registran completos y salen como 500 con un mensaje genérico.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "datos inválidos",
			Fields:  ve.Fields,
		})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("request_id", requestID(c)).
		Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno, intente más tarde"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

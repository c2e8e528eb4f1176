package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	"github.com/jhoicas/optica-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *billing.LedgerUseCase
	Query     *billing.QueryUseCase
	CAI       *billing.CAIUseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestLogger(deps.Log))
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	issuers := RequireRole(entity.RoleAdmin, entity.RoleCajero)

	// Facturas
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Ledger, deps.Query, deps.Log)
	invoices.Post("/", issuers, invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Patch("/:id", invoiceHandler.Update)
	invoices.Post("/:id/void", issuers, invoiceHandler.Void)
	invoices.Get("/:id/document", invoiceHandler.Document)

	// CAI: lectura para cualquier sesión, escritura solo admin
	cai := protected.Group("/cai")
	caiHandler := NewCAIHandler(deps.CAI, deps.Log)
	cai.Get("/active", caiHandler.Active)
	cai.Get("/", caiHandler.List)
	cai.Post("/", RequireRole(entity.RoleAdmin), caiHandler.Create)
	cai.Put("/:id", RequireRole(entity.RoleAdmin), caiHandler.Update)
}

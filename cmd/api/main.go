package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/domain/entity"
	inframetrics "github.com/jhoicas/optica-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/optica-api/internal/infrastructure/pdf"
	"github.com/jhoicas/optica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/optica-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/optica-api/internal/interfaces/http"
	"github.com/jhoicas/optica-api/pkg/config"
	"github.com/jhoicas/optica-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	if cfg.DB.AutoMigrate {
		version, err := postgres.Migrate(cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Uint("version", version).Msg("esquema actualizado")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	caiRepo := postgres.NewFiscalAuthorizationRepository(pool)
	catalog := postgres.NewCatalogRepository(pool)
	resolver := billing.NewCatalogResolver(
		catalog.Clients(), catalog.Employees(), catalog.PaymentMethods(), catalog.Products(), catalog.Discounts(),
	)

	documents, err := storage.NewFilesystemStore(cfg.Documents.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Documents.Dir).Msg("almacenamiento de documentos")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics, err := inframetrics.NewLedgerMetrics(registry, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("métricas")
	}

	ledgerCfg := billing.LedgerConfig{
		TaxRate:      cfg.Fiscal.TaxRate,
		NumberPrefix: cfg.Fiscal.NumberPrefix,
		Issuer: entity.Company{
			Name:      cfg.Fiscal.IssuerName,
			TradeName: cfg.Fiscal.IssuerTradeName,
			RTN:       cfg.Fiscal.IssuerRTN,
			Address:   cfg.Fiscal.IssuerAddress,
			Phone:     cfg.Fiscal.IssuerPhone,
			Email:     cfg.Fiscal.IssuerEmail,
		},
	}
	// PDF: representación impresa de la factura con datos del CAI
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	billingLog := log.Named("billing")
	ledgerUC := billing.NewLedgerUseCase(txRunner, resolver, pdfGenerator, documents, ledgerMetrics, billingLog, ledgerCfg)
	queryUC := billing.NewQueryUseCase(invoiceRepo, documents, cfg.Fiscal.NumberPrefix)
	caiUC := billing.NewCAIUseCase(txRunner, caiRepo, billingLog)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Óptica API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledgerUC,
		Query:     queryUC,
		CAI:       caiUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

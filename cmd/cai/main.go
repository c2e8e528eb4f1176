// Comando cai: administración del CAI y del esquema desde la terminal, sin pasar por la API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/optica-api/pkg/config"
	"github.com/jhoicas/optica-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cai",
	Short: "Administración del CAI (autorización fiscal) y del esquema de la base de datos",
	Long: `cai administra el registro de autorizaciones fiscales que usa la facturación.

Usa la misma configuración que la API (variables de entorno, .env o config.env):
DATABASE_URL o DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(migrateCmd, activeCmd, listCmd, createCmd, updateCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env carga configuración y logger para los subcomandos.
func env() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})
	return cfg, log.Named("cai"), nil
}

// withCAIUseCase abre el pool, construye el caso de uso y ejecuta fn.
func withCAIUseCase(ctx context.Context, fn func(ctx context.Context, uc *billing.CAIUseCase) error) error {
	cfg, log, err := env()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	uc := billing.NewCAIUseCase(postgres.NewTxRunner(pool), postgres.NewFiscalAuthorizationRepository(pool), log)
	return fn(ctx, uc)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

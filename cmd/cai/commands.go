package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/application/dto"
	"github.com/jhoicas/optica-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones embebidas pendientes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := env()
		if err != nil {
			return err
		}
		version, err := postgres.Migrate(cfg.DB)
		if err != nil {
			return err
		}
		log.Info().Uint("version", version).Msg("esquema actualizado")
		return nil
	},
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Muestra el CAI activo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCAIUseCase(cmd.Context(), func(ctx context.Context, uc *billing.CAIUseCase) error {
			out, err := uc.GetActive(ctx)
			if err != nil {
				return err
			}
			return printJSON(out)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista todos los CAI, el más reciente primero",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCAIUseCase(cmd.Context(), func(ctx context.Context, uc *billing.CAIUseCase) error {
			out, err := uc.List(ctx)
			if err != nil {
				return err
			}
			return printJSON(out)
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Registra un CAI nuevo y lo deja como único activo",
	Example: `  cai create --code 35B4C1-8A2F90-1C4E7D-55AA10-0B9E3F-12 \
    --from 1 --to 5000 --emission 2026-01-15 --expiration 2027-01-15`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in dto.CreateCAIRequest
		in.Code, _ = cmd.Flags().GetString("code")
		in.RangeFrom, _ = cmd.Flags().GetInt64("from")
		in.RangeTo, _ = cmd.Flags().GetInt64("to")
		in.EmissionDate, _ = cmd.Flags().GetString("emission")
		in.ExpirationDate, _ = cmd.Flags().GetString("expiration")
		return withCAIUseCase(cmd.Context(), func(ctx context.Context, uc *billing.CAIUseCase) error {
			out, err := uc.Create(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(out)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Actualiza los campos indicados de un CAI",
	Example: `  cai update 3 --expiration 2027-06-30
  cai update 2 --active=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("id inválido: %q", args[0])
		}
		in, err := updateRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		return withCAIUseCase(cmd.Context(), func(ctx context.Context, uc *billing.CAIUseCase) error {
			out, err := uc.Update(ctx, id, in)
			if err != nil {
				return err
			}
			return printJSON(out)
		})
	},
}

// updateRequestFromFlags solo incluye los flags que el usuario envió.
func updateRequestFromFlags(cmd *cobra.Command) (dto.UpdateCAIRequest, error) {
	var in dto.UpdateCAIRequest
	flags := cmd.Flags()
	if flags.NFlag() == 0 {
		return in, fmt.Errorf("indique al menos un campo a actualizar")
	}
	if flags.Changed("code") {
		v, _ := flags.GetString("code")
		in.Code = &v
	}
	if flags.Changed("from") {
		v, _ := flags.GetInt64("from")
		in.RangeFrom = &v
	}
	if flags.Changed("to") {
		v, _ := flags.GetInt64("to")
		in.RangeTo = &v
	}
	if flags.Changed("emission") {
		v, _ := flags.GetString("emission")
		in.EmissionDate = &v
	}
	if flags.Changed("expiration") {
		v, _ := flags.GetString("expiration")
		in.ExpirationDate = &v
	}
	if flags.Changed("active") {
		v, _ := flags.GetBool("active")
		in.Active = &v
	}
	return in, nil
}

func addCAIFlags(cmd *cobra.Command) {
	cmd.Flags().String("code", "", "código CAI")
	cmd.Flags().Int64("from", 0, "inicio del rango autorizado")
	cmd.Flags().Int64("to", 0, "fin del rango autorizado")
	cmd.Flags().String("emission", "", "fecha de emisión (AAAA-MM-DD)")
	cmd.Flags().String("expiration", "", "fecha límite de emisión (AAAA-MM-DD)")
}

func init() {
	addCAIFlags(createCmd)
	for _, name := range []string{"code", "from", "to", "emission", "expiration"} {
		_ = createCmd.MarkFlagRequired(name)
	}
	addCAIFlags(updateCmd)
	updateCmd.Flags().Bool("active", false, "activar o desactivar el registro")
}

package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"vet-registry/internal/adapters/storage/sqlstore"
	"vet-registry/internal/platform/config"
	"vet-registry/internal/platform/logger"
)

var flagConfig string

func main() {
	rootCmd := &cobra.Command{
		Use:          "vet-registry",
		Short:        "Registro municipal de castraciones, atención primaria y turnos",
		SilenceUsage: true,
		// sin subcomando: levanta el servidor
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./config.yaml if present)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSplitTutorsCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// bootstrap carga config y logger; lo comparten todos los subcomandos.
func bootstrap() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		// todavía no hay config: logger por env
		logger.NewFromEnv().Error("config load failed", map[string]any{"err": err.Error()})
		return nil, nil, err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	return cfg, log, nil
}

// openStore abre la base, aplica migraciones y devuelve el store listo.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*sqlstore.Store, *sql.DB, error) {
	db, dialect, err := sqlstore.Open(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database")
	}
	log.Info("database opened", map[string]any{"dialect": string(dialect)})

	if err := sqlstore.Migrate(ctx, db, dialect, log); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "migrate")
	}
	return sqlstore.New(db, dialect), db, nil
}

package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			_, db, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("migrate failed", map[string]any{"err": err.Error()})
				return err
			}
			return db.Close()
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"vet-registry/internal/domain/audit"
	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/domain/visits"
)

func newSplitTutorsCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "split-tutors",
		Short: "Give every visit its own tutor row (undo shared tutor mode)",
		Long: `Recorre las atenciones agrupadas por tutor. La primera atención de cada
tutor conserva la fila; el resto recibe una copia nueva. Es idempotente.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if actor == "" {
				actor = cfg.DefaultActor
			}

			store, db, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("storage init failed", map[string]any{"err": err.Error()})
				return err
			}
			defer db.Close()

			svc := visits.NewService(
				store,
				tutors.Resolver{Mode: tutors.ModeIndependent},
				audit.NewService(store.Audit(), log),
				log,
			)
			report, err := svc.SplitSharedTutors(cmd.Context(), actor)
			if err != nil {
				log.Error("split failed", map[string]any{"err": err.Error()})
				return err
			}

			log.Info("split done", map[string]any{
				"visits":         report.Visits,
				"shared_tutors":  report.SharedTutors,
				"created_tutors": report.CreatedTutors,
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "user recorded in the audit log (default DEFAULT_ACTOR)")
	return cmd
}

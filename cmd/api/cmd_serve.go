package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"vet-registry/internal/adapters/auth/static"
	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/router"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	mode, err := tutors.ParseMode(cfg.TutorMode)
	if err != nil {
		return err
	}

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", map[string]any{"err": err.Error()})
		return err
	}
	defer db.Close()

	opts := router.Options{
		Store:        store,
		Logger:       log,
		TutorMode:    mode,
		DefaultActor: cfg.DefaultActor,
		Location:     cfg.Location(),
	}
	if token := cfg.AuthToken.Value(); token != "" {
		opts.AuthVerifier = static.NewVerifier(cfg.AuthUser, token)
	} else {
		log.Warn("AUTH_TOKEN not set, API runs without authentication", nil)
		if cfg.AuthDebugHeader {
			opts.DebugUserHeader = true
			log.Warn("AUTH_DEBUG_HEADER enabled, X-Debug-User-ID sets the audit actor", nil)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "tutor_mode": string(mode)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server error", map[string]any{"err": err.Error()})
			return err
		}
		return nil
	case <-notify.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

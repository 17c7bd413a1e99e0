package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"

	"workforce-mgmt/internal/api"
	"workforce-mgmt/internal/config"
	"workforce-mgmt/internal/notify"
	"workforce-mgmt/internal/sweep"
	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/workforce"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, overdue sweeper and notification relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	if err := st.ensureTables(ctx); err != nil {
		return err
	}

	log := lgr.Default()
	bus := activity.NewBus(st.activity)
	svc := workforce.New(st.tasks, st.comments,
		workforce.WithPublisher(bus),
		workforce.WithLogger(log))

	if cfg.Sweep.Enabled {
		sweeper := sweep.New(svc, bus, cfg.Sweep.Schedule, log)
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}
	go notify.Relay(ctx, bus, notifier, cfg.Notify.Events, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           api.New(svc, bus, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lgr.Printf("[INFO] workforce listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lgr.Printf("[INFO] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newNotifier(cfg *config.Config, log lgr.L) (notify.Notifier, error) {
	tg := cfg.Notify.Telegram
	if !tg.Enabled {
		return notify.NewLogNotifier(log), nil
	}
	n, err := notify.NewTelegramNotifier(tg.Token, tg.ChatID, log)
	if err != nil {
		return nil, err
	}
	lgr.Printf("[INFO] telegram notifications enabled for chat %d", tg.ChatID)
	return n, nil
}

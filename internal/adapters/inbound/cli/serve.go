package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/liftlens/liftlens/internal/adapters/inbound/httpserver"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analyze server",
		Long:  "Serve POST /analyze and GET /health. Clients capture the page themselves and submit the snapshot as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			svc, store, err := buildAuditService(opts, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			limiter := httpserver.NewWindowLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
			srv := httpserver.New(svc, limiter, cfg.OpenAI.Model, slog.Default())

			httpSrv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpSrv.ListenAndServe()
			}()

			slog.Info("server listening", "addr", cfg.Server.Addr, "model", cfg.OpenAI.Model)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the configured server.addr)")

	return cmd
}

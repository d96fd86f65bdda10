package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/vigil/internal/apitest"
	"github.com/spf13/cobra"
)

func newMockServerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory user directory for local testing",
		Long: `Serve an in-memory user directory that speaks the same API as the
platform. Usage:

	MOCK_SERVER_PORT=8090 VIGIL_API_TOKEN=dev vigil mock-server
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fake := apitest.NewServer(apitest.Config{
				Token:             a.cfg.Mock.Token,
				RequestsPerMinute: a.cfg.Mock.RateLimitPerMin,
				Logger:            a.logger,
			})

			server := &http.Server{
				Addr:         ":" + a.cfg.Mock.Port,
				Handler:      fake.Handler(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting mock server", slog.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					a.logger.Error("server error", slog.Any("error", err))
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("server shutdown error", slog.Any("error", err))
				return err
			}

			a.logger.Info("mock server stopped gracefully")
			return nil
		},
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/crawl4ai-client/internal/mockserver"
)

// newMockServerCmd creates the 'mockserver' subcommand, a local
// Crawl4AI-compatible service for demoing the client.
func newMockServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mockserver",
		Short: "Runs a local Crawl4AI-compatible mock service",
		Long: `Serves POST /crawl and GET /task/{task_id} with fabricated results so
the crawl command can be exercised without a real crawler deployment.
Runs until SIGINT/SIGTERM.`,

		RunE: runMockServer,
	}
}

func runMockServer(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}

	srv := mockserver.New(mockserver.Config{
		TaskDelay:      rt.cfg.TaskDelay(),
		AsyncThreshold: rt.cfg.Mock.AsyncThreshold,
	}, rt.logger.Named("mockserver"))

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.Mock.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("mock crawl service started", zap.Int("port", rt.cfg.Mock.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	rt.logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	rt.logger.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/app"
)

func newServeCmd(c *cli) *cobra.Command {
	var skipWarmUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := c.logger
			logger.Info("Digital card server starting...",
				zap.String("addr", c.cfg.Server.Addr()),
				zap.String("log_level", c.cfg.Logging.Level),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			buildCtx, buildCancel := context.WithTimeout(ctx, 30*time.Second)
			container, err := app.Build(buildCtx, c.cfg, logger)
			buildCancel()
			if err != nil {
				logger.Error("Failed to assemble application services", zap.Error(err))
				return err
			}
			defer container.Close()

			srv, err := container.NewServer()
			if err != nil {
				return err
			}

			var wg sync.WaitGroup
			if !skipWarmUp {
				wg.Add(1)
				go func() {
					defer wg.Done()
					container.WarmUp(ctx)
				}()
			}

			err = srv.Start(ctx)
			stop()
			wg.Wait()

			if err != nil {
				logger.Error("Server error", zap.Error(err))
				return err
			}
			logger.Info("Shutdown complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipWarmUp, "no-warmup", false, "skip pre-rendering the QR code and share suggestions")
	return cmd
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/config"
	"github.com/kapu/digital-card-go/internal/util"
)

// cli carries state shared by subcommands after PersistentPreRunE.
type cli struct {
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "card",
		Short:         "Digital business card server",
		Long:          "Serves a bilingual digital business card with vCard download, share links and a QR code.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.envFile != "" {
				if err := godotenv.Load(c.envFile); err != nil {
					return fmt.Errorf("load env file %s: %w", c.envFile, err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(c.logLevel) != "" {
				cfg.Logging.Level = c.logLevel
			}

			logger, err := util.NewLogger(util.LoggerOptions{
				Level:  cfg.Logging.Level,
				File:   cfg.Logging.File,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}

			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "additional .env file to load before the environment")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	serve := newServeCmd(c)
	root.RunE = serve.RunE

	root.AddCommand(serve)
	root.AddCommand(newVCardCmd(c))
	root.AddCommand(newLinksCmd(c))
	root.AddCommand(newQRCmd(c))
	root.AddCommand(newLocalesCmd(c))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/notifykit/internal/inspect"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notify"
)

type globals struct {
	envFile   string
	logLevel  string
	logFormat string

	cfg notify.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "notifydemo",
		Short:         "Play notification scenarios through console renderers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.envFile, "env-file", "", "Load NOTIFY_* variables from this .env file first")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults NOTIFY_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: json|text (defaults NOTIFY_LOG_FORMAT)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return g.setup(cmd)
	}

	root.AddCommand(newRunCmd(g), newServeCmd(g))
	return root
}

func (g *globals) setup(cmd *cobra.Command) error {
	if g.envFile != "" {
		if err := config.LoadEnv(g.envFile); err != nil {
			return err
		}
	}
	if err := config.Parse(&g.cfg, ""); err != nil {
		return err
	}
	if g.logLevel != "" {
		g.cfg.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		g.cfg.LogFormat = g.logFormat
	}
	if _, ok := logger.ParseLevel(g.cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", g.cfg.LogLevel)
	}
	format := logger.Format(g.cfg.LogFormat)
	if format != logger.FormatJSON && format != logger.FormatText {
		return fmt.Errorf("unknown log format %q", g.cfg.LogFormat)
	}
	g.log = logger.New(
		logger.WithLevelName(g.cfg.LogLevel),
		logger.WithFormat(format),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithContextExtractors(inspect.RequestIDExtractor()),
	)
	return nil
}

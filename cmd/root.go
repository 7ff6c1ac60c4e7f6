// Package cmd holds the vibin-match command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vibin_match/config"
	"vibin_match/logger"
)

const serviceName = "vibin-match"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogPretty bool
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vibin-match",
		Short: "Swipe, match and chat backend",
		Long: `vibin-match records swipe decisions, opens a thread for every mutual
like and keeps connected clients in sync with their threads, messages and
notifications.

Configuration is read from VIBIN_ environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level, overrides VIBIN_LOG_LEVEL")
	cmd.PersistentFlags().BoolVar(&opts.LogPretty, "pretty", false, "human readable console logs")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCreateTablesCommand(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load parses the configuration and builds the logger, letting flags win
// over the environment.
func (o *RootOptions) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogPretty {
		cfg.LogPretty = true
	}
	return cfg, logger.New(serviceName, cfg.LogLevel, cfg.LogPretty), nil
}

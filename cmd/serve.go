package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	SeedProfiles string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and socket.io server",
		Long: `Run the REST API and the socket.io endpoint at /socket.io/.

Example:
  VIBIN_STORE_DRIVER=memory vibin-match serve --seed-profiles ./profiles.json
  VIBIN_CHANGE_FEED=redis VIBIN_REDIS_ADDR=redis:6379 vibin-match serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.SeedProfiles, "seed-profiles", "", "JSON array of profiles loaded into the memory store")
	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	seed, err := LoadProfiles(opts.SeedProfiles)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, seed, log)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

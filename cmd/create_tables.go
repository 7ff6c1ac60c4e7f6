package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vibin_match/store/dynamo"
)

// NewCreateTablesCommand creates the create-tables command.
func NewCreateTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Create the DynamoDB tables and enable notification TTL",
		Long: `Create the swipe, thread, message and notification tables when they do
not exist yet. The Users table is owned by the profile service and only
created here for local setups.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
			if err != nil {
				return err
			}
			if err := dynamo.CreateTables(ctx, client, tablesFrom(cfg), log); err != nil {
				return fmt.Errorf("create-tables: %w", err)
			}
			return nil
		},
	}
}

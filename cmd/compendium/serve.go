package main

import (
	"github.com/spf13/cobra"

	"github.com/ashita-ai/compendium"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port        int
		skipMigrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := compendium.New(ctx,
				compendium.WithLogger(a.logger),
				compendium.WithVersion(version),
				compendium.WithPort(port),
				compendium.WithSkipMigrations(skipMigrate),
			)
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides COMPENDIUM_PORT)")
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "serve without applying pending migrations")
	return cmd
}

// Command compendium serves the reference catalog over HTTP and MCP, applies
// schema migrations and loads seed data.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ashita-ai/compendium/internal/config"
	"github.com/ashita-ai/compendium/internal/storage"
	"github.com/ashita-ai/compendium/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "compendium",
		Short:         "Tabletop reference catalog",
		Long:          `Compendium serves classes, races, proficiencies, spells, schools and subclasses as a JSON REST API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level, _ := config.ParseLogLevel(cfg.LogLevel)
			a.cfg = cfg
			a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedCmd(a))
	return root
}

// openDB connects to DATABASE_URL and brings the schema up to date.
func (a *app) openDB(ctx context.Context) (*storage.DB, error) {
	db, err := storage.New(ctx, a.cfg.DatabaseURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close(ctx)
			a.logger.Info("migrations applied")
			return nil
		},
	}
}

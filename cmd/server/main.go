package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweetcrust/internal/config"
	"github.com/Skotchmaster/sweetcrust/internal/db"
	"github.com/Skotchmaster/sweetcrust/internal/hash"
	"github.com/Skotchmaster/sweetcrust/internal/logging"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sweetcrust",
		Short:         "Bakery order management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate, seed and start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, l *slog.Logger, gdb *gorm.DB) error {
					if err := db.Migrate(ctx, gdb); err != nil {
						return err
					}
					l.Info("migrate_success")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the default admin and staff accounts if missing",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, l *slog.Logger, gdb *gorm.DB) error {
					if err := db.Migrate(ctx, gdb); err != nil {
						return err
					}
					return db.SeedAccounts(ctx, gdb, hash.Hasher{}, l, db.DefaultAccounts)
				})
			},
		},
	)
	return root
}

// withDB loads config, opens the database, runs fn and closes the database.
func withDB(ctx context.Context, fn func(context.Context, *config.Config, *slog.Logger, *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	l := logging.New(cfg.LogLevel)
	ctx = logging.IntoContext(ctx, l)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			l.Error("db_close_failed", "error", err)
		}
	}()
	return fn(ctx, cfg, l, gdb)
}

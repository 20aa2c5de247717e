// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/onlyfringe/cliparse"
	"github.com/danielhkuo/onlyfringe/db"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "onlyfringe",
		Short:        "Fact-checked public debate API",
		SilenceUsage: true,
	}
	cliparse.BindFlags(root.PersistentFlags())

	root.AddCommand(serveCmd(), migrateCmd(), pruneCmd(), configCmd(), versionCmd())
	return root
}

// loadConfig resolves the configuration and installs the default logger
func loadConfig(cmd *cobra.Command) (cliparse.Config, error) {
	cfg, err := cliparse.Resolve(cmd.Flags())
	if err != nil {
		return cliparse.Config{}, err
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	var rollback int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			if rollback > 0 {
				if err := db.Rollback(conn, cfg.DatabaseType, rollback); err != nil {
					return err
				}
				slog.Info("migrations rolled back", "steps", rollback)
				return nil
			}

			if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
				return err
			}
			slog.Info("database schema ready", "type", cfg.DatabaseType)
			return nil
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "roll back this many migrations instead of applying")

	return cmd
}

func pruneCmd() *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete rejected arguments older than a cutoff",
		Long: `Delete rejected arguments created before now minus --older-than.
Their sources and rebuttals are removed with them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			st := store.New(conn, cfg.DatabaseType)
			n, err := prune(cmd.Context(), st, time.Now().Add(-olderThan), dryRun)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rejected arguments pruned\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum age of pruned arguments")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count without deleting")

	return cmd
}

func prune(ctx context.Context, st *store.Store, cutoff time.Time, dryRun bool) (int, error) {
	stale, err := st.ListArguments(ctx, store.ArgumentFilter{
		Status:        models.StatusRejected,
		CreatedBefore: cutoff,
	})
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(stale), nil
	}

	for i, a := range stale {
		if err := st.DeleteArgument(ctx, a.ID); err != nil {
			return i, fmt.Errorf("delete argument %s: %w", a.ID, err)
		}
		slog.Debug("argument pruned", "argument_id", a.ID, "created_at", a.CreatedAt)
	}
	return len(stale), nil
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Long: `Print the configuration after applying, highest priority first:
  1. CLI flags
  2. Environment variables
  3. Defaults
The API key comes from the key file first, then OPENAI_API_KEY, and is redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "onlyfringe %s\n", version)
		},
	}
}

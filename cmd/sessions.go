package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bistrobook/internal/config"
	"github.com/example/bistrobook/internal/migrate"
	"github.com/example/bistrobook/internal/session"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain the postgres session store (non-UI)",
	}
	cmd.AddCommand(newSessionsMigrateCmd())
	cmd.AddCommand(newSessionsSweepCmd())
	return cmd
}

func newSessionsMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			newLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			d, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}
			names, err := migrate.Files()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%d migrations)\n", len(names))
			return nil
		},
	}
}

func newSessionsSweepCmd() *cobra.Command {
	var olderThan time.Duration

	c := &cobra.Command{
		Use:   "sweep",
		Short: "Delete sessions idle longer than --older-than (default SESSION_TTL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			newLogger(cfg)
			if olderThan <= 0 {
				olderThan = cfg.SessionTTL
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			d, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			store := &session.Postgres{DB: d}
			n, err := store.Sweep(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d sessions\n", n)
			return nil
		},
	}

	c.Flags().DurationVar(&olderThan, "older-than", 0, "idle age to expire")
	return c
}

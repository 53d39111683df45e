package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/bistrobook/internal/config"
	"github.com/example/bistrobook/internal/migrate"
	"github.com/example/bistrobook/internal/session"
	"github.com/example/bistrobook/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the web reservation wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			hashKey, blockKey, err := cfg.CookieKeys()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var store session.Store
			if cfg.DatabaseURL != "" {
				d, err := openDB(ctx, cfg)
				if err != nil {
					return err
				}
				defer d.Close()

				if migrateUp {
					if err := migrate.Up(ctx, d); err != nil {
						return err
					}
				}
				store = &session.Postgres{DB: d, TTL: cfg.SessionTTL}
				log.Info("sessions stored in postgres")
			} else {
				store = session.NewMemory(cfg.SessionTTL)
				log.Info("sessions stored in memory")
			}

			sw := &session.Sweeper{
				Store:    store,
				TTL:      cfg.SessionTTL,
				Interval: cfg.SweepInterval,
				Log:      log,
			}
			go func() { _ = sw.Run(ctx) }()

			ws := &web.Server{
				Sessions:   store,
				Service:    newClient(cfg),
				Cookies:    web.NewCookies(hashKey, blockKey, cfg.SessionTTL),
				LandingURL: cfg.LandingURL,
				Log:        log,
			}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup (postgres sessions only)")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

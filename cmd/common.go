package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/bistrobook/internal/bistro"
	"github.com/example/bistrobook/internal/config"
	"github.com/example/bistrobook/internal/db"
	"github.com/example/bistrobook/internal/logging"
)

func newLogger(cfg config.Config) *slog.Logger {
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return log
}

func newClient(cfg config.Config) *bistro.Client {
	return bistro.New(cfg.ReservationAPIURL, bistro.Options{
		Timeout:     cfg.APITimeout,
		InsecureTLS: cfg.APIInsecureTLS,
	})
}

func openDB(ctx context.Context, cfg config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return d, nil
}

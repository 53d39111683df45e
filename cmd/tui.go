package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/bistrobook/internal/config"
	"github.com/example/bistrobook/internal/logging"
	"github.com/example/bistrobook/internal/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Book a table from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			// the terminal belongs to the wizard; logs go to LOG_FILE or nowhere
			log, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return tui.Run(ctx, newClient(cfg), cfg.LandingURL, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

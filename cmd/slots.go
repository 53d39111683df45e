package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bistrobook/internal/config"
	"github.com/example/bistrobook/internal/slots"
)

func newSlotsCmd() *cobra.Command {
	var (
		tableID int
		date    string
	)

	c := &cobra.Command{
		Use:   "slots",
		Short: "Show which start times are free on a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tableID <= 0 {
				return fmt.Errorf("--table is required")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", date)
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			newLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.APITimeout)
			defer cancel()

			rs, err := newClient(cfg).Reservations(ctx, tableID, date)
			if err != nil {
				return err
			}
			starts := make([]string, 0, len(rs))
			for _, r := range rs {
				starts = append(starts, r.StartTime)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "table %d on %s (%d reservations)\n", tableID, date, len(rs))
			for _, s := range slots.Availability(starts) {
				state := "open"
				if s.IsBooked {
					state = "booked"
				}
				fmt.Fprintf(out, "%s  %s\n", s.Time, state)
			}
			if len(rs) > 0 {
				fmt.Fprintf(out, "existing: %s\n", strings.Join(starts, ", "))
			}
			return nil
		},
	}

	c.Flags().IntVar(&tableID, "table", 0, "table id")
	c.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "reservation date YYYY-MM-DD")
	return c
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clubelocal/partners-cli/internal/sweep"
)

var sweepLimit int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Geocode stored establishments missing coordinates",
	Long:  "Runs the reconciliation pass on its own: every stored establishment without coordinates is re-geocoded sequentially under the sweep rate limit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit := sweepLimit
		if limit == 0 {
			limit = cfg.Sweep.Limit
		}

		s := sweep.New(st, initGeocodeClient(), limit, cfg.Sweep.Delay())
		s.Run(ctx)

		status := s.Status()
		fmt.Fprintf(os.Stdout, "Sweep: %d records, %d succeeded, %d failed\n",
			status.Total, status.Succeeded, status.Failed)
		return nil
	},
}

func init() {
	sweepCmd.Flags().IntVar(&sweepLimit, "limit", 0, "max records to sweep (default from config)")
	rootCmd.AddCommand(sweepCmd)
}

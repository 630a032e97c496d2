package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clubelocal/partners-cli/internal/fetcher"
	"github.com/clubelocal/partners-cli/internal/importer"
	"github.com/clubelocal/partners-cli/internal/sweep"
)

var (
	importErrorSheet string
	importBatchSize  int
	importNoSweep    bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import establishments from a spreadsheet",
	Long:  "Parses a CSV or XLSX spreadsheet, enriches each row with address, coordinate, and photo lookups, and upserts the records into the store. Rows that still lack coordinates afterwards are retried by a slower geocoding sweep.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		file := args[0]
		header, rows, err := fetcher.ReadFile(file)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		importCfg := cfg.Import
		if importBatchSize > 0 {
			importCfg.BatchSize = importBatchSize
		}

		geoClient := initGeocodeClient()

		var opts []importer.RunnerOption
		var sweeper *sweep.Sweeper
		if !importNoSweep {
			sweeper = sweep.New(st, geoClient, cfg.Sweep.Limit, cfg.Sweep.Delay())
			opts = append(opts, importer.WithSweeper(sweeper))
		}

		runner := importer.NewRunner(st, initCEPClient(), geoClient, initPlacesClient(), importCfg, opts...)

		report, err := runner.Run(ctx, file, header, rows)
		if report != nil {
			fmt.Print(importer.FormatReport(report))
		}
		if err != nil {
			return err
		}

		if importErrorSheet != "" && len(report.Failures) > 0 {
			if sheetErr := importer.WriteErrorSheet(report, importErrorSheet); sheetErr != nil {
				zap.L().Warn("could not write error sheet", zap.Error(sheetErr))
			} else {
				fmt.Fprintf(os.Stderr, "Error sheet written to %s\n", importErrorSheet)
			}
		}

		if sweeper != nil {
			fmt.Fprintln(os.Stderr, "Waiting for geocoding sweep...")
			<-sweeper.Done()
			status := sweeper.Status()
			fmt.Fprintf(os.Stderr, "Sweep: %d processed, %d succeeded, %d failed\n",
				status.Processed, status.Succeeded, status.Failed)
		}

		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importErrorSheet, "error-sheet", "", "write failed rows to this XLSX file")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "rows per batch (default from config)")
	importCmd.Flags().BoolVar(&importNoSweep, "no-sweep", false, "skip the post-import geocoding sweep")
	rootCmd.AddCommand(importCmd)
}

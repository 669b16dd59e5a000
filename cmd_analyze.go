package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"job-trend-analyzer/services"
	"job-trend-analyzer/storage"
)

var analyzeSource string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print top titles, top locations and postings per day for the stored dataset",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "csv", "dataset to analyze: csv or postgres")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	var (
		src   storage.DatasetReader
		label string
	)
	switch analyzeSource {
	case "csv":
		csvStore, err := storage.NewCSVStore(cfg.CSVOutputPath)
		if err != nil {
			return err
		}
		if !csvStore.Exists() {
			logger.Warn("[analyze] No dataset at %s", csvStore.Path())
			services.PrintReport(cmd.OutOrStdout(), services.Analysis{
				Err: &services.AnalysisError{Kind: services.NotFound, Err: storage.ErrNotFound},
			}, csvStore.Path())
			return nil
		}
		src, label = csvStore, csvStore.Path()
	case "postgres":
		if !cfg.PostgresEnabled {
			return fmt.Errorf("--source postgres requires POSTGRES_ENABLED=true")
		}
		_, pg, err := openStores(ctx)
		if err != nil {
			return err
		}
		if pg == nil {
			return fmt.Errorf("postgres mirror unavailable")
		}
		defer pg.Close()
		src, label = pg, "postgres:job_listings"
	default:
		return fmt.Errorf("unknown --source %q (want csv or postgres)", analyzeSource)
	}

	a := newAnalyzer().AnalyzeStore(src)
	services.PrintReport(cmd.OutOrStdout(), a, label)
	return nil
}

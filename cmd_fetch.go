package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"job-trend-analyzer/pipeline"
	"job-trend-analyzer/scraper/remotive"
	"job-trend-analyzer/services"
	"job-trend-analyzer/storage"
)

var fetchAnalyze bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the latest listings and overwrite the stored dataset",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchAnalyze, "analyze", true, "print the analysis after a successful fetch")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("=== Job Trend Analyzer: fetch ===")
	logger.Info("Config: keyword: %q | timeout: %v | csv: %s", cfg.SearchKeyword, cfg.FetchTimeout, cfg.CSVOutputPath)

	csvStore, pg, err := openStores(ctx)
	if err != nil {
		return err
	}
	var mirror storage.DatasetWriter
	if pg != nil {
		defer pg.Close()
		mirror = pg
	}

	p := pipeline.New(remotive.New(cfg, logger), csvStore, mirror, nil, logger)
	res, err := p.Run(ctx, cfg.SearchKeyword)
	if errors.Is(err, pipeline.ErrNoRecords) {
		logger.Warn("No jobs found or scraping failed. Keeping the previous dataset.")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Job data scraped and saved to %s (%d listings)", csvStore.Path(), res.Fetched)
	if fetchAnalyze {
		services.PrintReport(cmd.OutOrStdout(), newAnalyzer().AnalyzeStore(csvStore), csvStore.Path())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Done. Dataset → %s\n\n", csvStore.Path())
	return nil
}

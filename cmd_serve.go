package main

import (
	"github.com/spf13/cobra"

	"job-trend-analyzer/dashboard"
	"job-trend-analyzer/pipeline"
	"job-trend-analyzer/scraper/remotive"
	"job-trend-analyzer/services"
	"job-trend-analyzer/storage"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (default $LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	addr := cfg.ListenAddr
	if flagListen != "" {
		addr = flagListen
	}

	csvStore, pg, err := openStores(ctx)
	if err != nil {
		return err
	}
	var mirror storage.DatasetWriter
	if pg != nil {
		defer pg.Close()
		mirror = pg
	}

	cache := services.NewAnalysisCache(newAnalyzer(), csvStore)
	srv, err := dashboard.New(dashboard.Deps{
		Cache:    cache,
		Store:    csvStore,
		DataPath: csvStore.Path(),
		Runner:   pipeline.New(remotive.New(cfg, logger), csvStore, mirror, cache, logger),
		Keyword:  cfg.SearchKeyword,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.Info("=== Job Trend Analyzer: dashboard ===")
	return srv.ListenAndServe(ctx, addr)
}

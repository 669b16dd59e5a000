package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"job-trend-analyzer/config"
	"job-trend-analyzer/services"
	"job-trend-analyzer/storage"
	"job-trend-analyzer/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger

	flagKeyword string
	flagCSVPath string
)

var rootCmd = &cobra.Command{
	Use:   "job-trend-analyzer",
	Short: "Fetch remote-job listings and analyze title, location and posting-date trends",
	Long: "job-trend-analyzer fetches listings from the Remotive API, stores the latest fetch " +
		"as a CSV file and reports the top titles, top locations and postings per day.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if flagKeyword != "" {
			cfg.SearchKeyword = flagKeyword
		}
		if flagCSVPath != "" {
			cfg.CSVOutputPath = flagCSVPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger = utils.NewLoggerWithLevel(utils.ParseLevel(cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagKeyword, "keyword", "k", "", "job search keyword (default $SEARCH_KEYWORD)")
	rootCmd.PersistentFlags().StringVar(&flagCSVPath, "csv", "", "dataset CSV path (default $CSV_OUTPUT_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openStores returns the CSV dataset store and, when enabled, the PostgreSQL mirror.
// An unwritable output directory is fatal; an unreachable database only disables the mirror.
func openStores(ctx context.Context) (*storage.CSVStore, *storage.PostgresStore, error) {
	csvStore, err := storage.NewCSVStore(cfg.CSVOutputPath)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.PostgresEnabled {
		return csvStore, nil, nil
	}

	pg, err := storage.NewPostgresStore(ctx, cfg.DSN(), &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Warn("Continuing without the PostgreSQL mirror")
		return csvStore, nil, nil
	}
	return csvStore, pg, nil
}

func newAnalyzer() *services.Analyzer {
	return services.NewAnalyzer(logger, cfg.TopN)
}

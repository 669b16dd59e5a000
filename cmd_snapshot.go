package main

import (
	"github.com/spf13/cobra"

	"job-trend-analyzer/dashboard"
)

var (
	snapshotURL string
	snapshotOut string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a PNG screenshot of a running dashboard (needs Chrome/Chromium)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		out := cfg.SnapshotPath
		if snapshotOut != "" {
			out = snapshotOut
		}
		return dashboard.Snapshot(ctx, snapshotURL, out, cfg.ChromeBin, logger)
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotURL, "url", "http://localhost:8501/", "dashboard URL to capture")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "output PNG path (default $SNAPSHOT_PATH)")
	rootCmd.AddCommand(snapshotCmd)
}

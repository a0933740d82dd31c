package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "openqa",
	Short: "Score the openness of data portal resources",
	Long: `Openqa checks the resources catalogued by a data portal: it downloads each file,
works out its format from content, URL and metadata, and rates how open and
machine-readable it is on a 0-3 scale, with the reasoning behind every score.

Pipeline: add/import → fetch → score → list/show`,
}

var verbose bool

func init() {
	rootCmd.Version = "0.1.0"
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log scoring diagnostics to stderr")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctoc/internal/config"
	"github.com/dgallion1/doctoc/internal/parser"
)

var (
	rootCmd = &cobra.Command{
		Use:           "doctoc",
		Short:         "Build tables of contents for documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newOutlineCmd())
	rootCmd.AddCommand(newWatchCmd())
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parserOptions reads parser settings from the shared configuration.
func parserOptions() (parser.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return parser.Options{}, err
	}
	return parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, nil
}

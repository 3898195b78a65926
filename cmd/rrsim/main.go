// rrsim - Round-Robin process scheduling simulator
// Reads process catalogs from a dataset and animates their scheduling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// CLI flags
var (
	configURL string
	logFormat string
	logLevel  string

	datasetPath string
	kindFlag    string
	catalogID   int
	quantum     int
	unit        string
	watchFlag   bool
	traceFile   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rrsim",
		Short:         "rrsim - Round-Robin scheduling simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configURL, "config", "", "configuration file URL (yaml)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "db", "", "dataset file (.db, .sqlite, .duckdb, .yaml, .json)")
	rootCmd.PersistentFlags().StringVar(&kindFlag, "kind", "", "dataset kind: cpu or memoria")

	rootCmd.AddCommand(newCatalogsCmd(), newRunCmd(), newVersionCmd())
	return rootCmd
}

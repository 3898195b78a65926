package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/rrsim"
	"github.com/viant/rrsim/internal/logging"
	"github.com/viant/rrsim/service/catalog"
)

// loadConfig reads --config and applies flags that were set explicitly
func loadConfig(ctx context.Context, cmd *cobra.Command) (*rrsim.Config, error) {
	config := rrsim.DefaultConfig()
	if configURL != "" {
		loaded, err := rrsim.LoadConfig(ctx, nil, configURL)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		config.Catalog.Location = datasetPath
	}
	if flags.Changed("kind") {
		config.Catalog.Kind = kindFlag
	}
	if flags.Lookup("quantum") != nil && flags.Changed("quantum") {
		config.Scheduler.Quantum = quantum
	}
	if flags.Lookup("unit") != nil && flags.Changed("unit") {
		duration, err := time.ParseDuration(unit)
		if err != nil {
			return nil, fmt.Errorf("invalid --unit: %w", err)
		}
		config.Scheduler.UnitDuration = duration
	}
	if flags.Lookup("trace") != nil && flags.Changed("trace") {
		config.Tracing.Enabled = true
		config.Tracing.Output = traceFile
	}
	if config.Catalog.Location == "" {
		return nil, fmt.Errorf("dataset is required: use --db or catalog.location")
	}
	return config, config.Validate()
}

func newLogger() (*slog.Logger, error) {
	return logging.New(os.Stderr, logFormat, logLevel)
}

// openRuntime creates the service and opens the configured dataset
func openRuntime(ctx context.Context, config *rrsim.Config, logger *slog.Logger, options ...rrsim.Option) (*rrsim.Service, error) {
	options = append([]rrsim.Option{rrsim.WithConfig(config), rrsim.WithLogger(logger)}, options...)
	srv, err := rrsim.New(options...)
	if err != nil {
		return nil, err
	}
	if err = srv.Runtime().OpenDataset(ctx, config.Catalog.Location); err != nil {
		_ = srv.Close(ctx)
		return nil, err
	}
	kind, _ := catalog.ParseKind(config.Catalog.Kind)
	if err = srv.Runtime().SetKind(kind); err != nil {
		_ = srv.Close(ctx)
		return nil, err
	}
	return srv, nil
}

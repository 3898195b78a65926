package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/viant/rrsim"
	"github.com/viant/rrsim/render"
	"github.com/viant/rrsim/service/catalog/watch"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a catalog",
		Long: `Loads a catalog and runs it under Round-Robin scheduling.

While running, type p and Enter to pause or resume, q and Enter to quit.`,
		RunE: runSimulation,
	}
	cmd.Flags().IntVar(&catalogID, "catalog", 1, "catalog id to load")
	cmd.Flags().IntVar(&quantum, "quantum", 200, "time quantum in units")
	cmd.Flags().StringVar(&unit, "unit", "1ms", "wall time of one simulated unit, 0 disables pacing")
	cmd.Flags().BoolVar(&watchFlag, "watch", false, "reload the dataset and restart when it changes")
	cmd.Flags().StringVar(&traceFile, "trace", "", "write OpenTelemetry spans to this file")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	renderer := render.New(cmd.OutOrStdout())
	srv, err := openRuntime(ctx, config, logger, rrsim.WithListener(renderer.Listen))
	if err != nil {
		return err
	}
	defer srv.Close(context.WithoutCancel(ctx))
	runtime := srv.Runtime()

	start := func(ctx context.Context) error {
		if err := runtime.LoadCatalog(ctx, catalogID); err != nil {
			return err
		}
		runtime.Start(ctx)
		return nil
	}
	if err = start(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	commands := make(chan string)
	go readCommands(ctx, cmd.InOrStdin(), commands)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case command, ok := <-commands:
				if !ok {
					commands = nil
					continue
				}
				switch command {
				case "p", "pause", "resume", "":
					runtime.ToggleSimulation(ctx)
				case "q", "quit":
					quit()
					return nil
				}
			}
		}
	})

	if watchFlag {
		watcher, err := watch.New(config.Catalog.Location, func(ctx context.Context, path string) error {
			if err := runtime.OpenDataset(ctx, path); err != nil {
				return err
			}
			return start(ctx)
		}, watch.WithLogger(logger))
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		g.Go(func() error {
			if err := runtime.Wait(ctx); err != nil {
				return nil
			}
			quit()
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return err
	}
	if counters, ok := runtime.Progress(); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "slices %d, preemptions %d, clock %d, elapsed %s\n",
			counters.Slices, counters.Preemptions, counters.Clock, counters.Elapsed().Round(time.Millisecond))
	}
	return nil
}

// readCommands forwards trimmed input lines until r is exhausted or ctx is
// done. A read already blocked on r only returns with the next line.
func readCommands(ctx context.Context, r io.Reader, commands chan<- string) {
	defer close(commands)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case commands <- strings.ToLower(strings.TrimSpace(scanner.Text())):
		case <-ctx.Done():
			return
		}
	}
}

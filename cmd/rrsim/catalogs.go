package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/rrsim/render"
)

func newCatalogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List the catalogs of a dataset kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			config, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			srv, err := openRuntime(ctx, config, logger)
			if err != nil {
				return err
			}
			defer srv.Close(ctx)
			runtime := srv.Runtime()
			catalogs, err := runtime.Catalogs(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Catalogs(runtime.Kind(), catalogs, false))
			return nil
		},
	}
}

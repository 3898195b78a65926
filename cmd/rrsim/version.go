package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/rrsim"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the simulator version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rrsim %s\n", rrsim.Version)
		},
	}
}

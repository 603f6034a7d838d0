package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parludo",
		Short:         "Parludo - a memory matching game server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(newServeCmd(), newBoardsCmd(), newScoresCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

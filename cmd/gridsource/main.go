package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guileen/gridsource/logger"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "gridsource",
		Short:         "Block-paginated row source for infinite-scroll grids",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				logger.SetLogLevel(logger.ParseLevel(logLevel, logger.LoadConfig().Level))
			}
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.AddCommand(newServeCmd(), newImportCmd(), newQueryCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

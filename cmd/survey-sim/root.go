package main

import (
	"github.com/spf13/cobra"

	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
)

var log = logger.Logger("cmd/survey-sim")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "survey-sim",
		Short:         "拓扑调查模拟工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newKeygenCmd())
	cmd.AddCommand(newScenarioCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	survey "github.com/dep2p/go-dep2p-survey"
)

func newVersionCmd() *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"version": survey.Version,
					"commit":  survey.GitCommit,
					"date":    survey.BuildDate,
				})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), survey.VersionInfo())
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "以 JSON 输出")
	return cmd
}

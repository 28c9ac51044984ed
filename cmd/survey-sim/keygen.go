package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
)

func newKeygenCmd() *cobra.Command {
	var (
		out        string
		outputJSON bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "生成 Ed25519 节点身份",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.Generate()
			if err != nil {
				return err
			}
			if out != "" {
				if err := identity.Save(id, out); err != nil {
					return fmt.Errorf("保存私钥失败: %w", err)
				}
			}

			if outputJSON {
				view := map[string]string{"node_id": id.ID().String()}
				if out != "" {
					view["key_file"] = out
				}
				return writeJSON(cmd.OutOrStdout(), view)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "node_id: %s\n", id.ID())
			if out != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "key_file: %s\n", out)
				return nil
			}
			// 未指定文件时把私钥打印到标准输出
			_, _ = cmd.OutOrStdout().Write(identity.EncodePEM(id))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "私钥 PEM 输出文件（权限 0600）")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "以 JSON 输出")
	return cmd
}

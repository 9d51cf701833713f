package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JackaZhai/nano-banana/internal/pkg/apiclient"
)

func newKeysCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "管理 Api key",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "列出已保存的 Api key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := g.client().ListKeys(cmd.Context())
				if err != nil {
					return err
				}
				renderKeys(cmd.OutOrStdout(), store)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <value>",
			Short: "添加 Api key 并设为当前使用",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := g.client().AddKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				renderKeys(cmd.OutOrStdout(), store)
				return nil
			},
		},
		&cobra.Command{
			Use:   "use <id>",
			Short: "切换当前使用的 Api key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := g.client().UseKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				renderKeys(cmd.OutOrStdout(), store)
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "删除 Api key",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := g.client().DeleteKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				renderKeys(cmd.OutOrStdout(), store)
				return nil
			},
		},
		&cobra.Command{
			Use:   "test [value]",
			Short: "测试 Api key 是否可用，不指定时测试当前使用的 Key",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value := ""
				if len(args) > 0 {
					value = args[0]
				}
				result, err := g.client().TestKey(cmd.Context(), value)
				if err != nil {
					return err
				}
				if !result.Success {
					return fmt.Errorf("Api key 不可用: %s", result.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %s", result.Message))
				return nil
			},
		},
	)
	return cmd
}

func renderKeys(w io.Writer, store *apiclient.KeyStore) {
	if !store.HasKey || len(store.Keys) == 0 {
		fmt.Fprintln(w, color.YellowString("尚未配置 Api key，使用 banana keys add <value> 添加"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tKEY\tSOURCE")
	for _, k := range store.Keys {
		marker := ""
		if k.IsActive {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, k.ID, k.Mask, k.Source)
	}
	_ = tw.Flush()
}

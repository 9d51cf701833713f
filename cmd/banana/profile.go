package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newProfileCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "查看当前 Key 与调用统计",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := g.client().Profile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			if profile.HasKey {
				fmt.Fprintf(out, "%s %s\n", bold.Sprint("Api key:"), profile.ActiveKeyMask)
			} else {
				fmt.Fprintf(out, "%s %s\n", bold.Sprint("Api key:"), color.YellowString("未配置"))
			}
			fmt.Fprintf(out, "%s %d\n", bold.Sprint("调用次数:"), profile.Usage.TotalCalls)
			last := "-"
			if profile.Usage.LastUsedAt != nil {
				last = profile.Usage.LastUsedAt.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%s %s\n", bold.Sprint("最近使用:"), last)
			return nil
		},
	}
}

func newModelsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "列出可用模型与绘图参数",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := g.client().Models(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)

			fmt.Fprintln(out, bold.Sprint("图像模型"))
			for _, m := range catalog.ImageModels {
				fmt.Fprintf(out, "  %-24s %s\n", color.CyanString(m.ID), m.Description)
			}
			fmt.Fprintln(out, bold.Sprint("对话模型"))
			for _, m := range catalog.ChatModels {
				fmt.Fprintf(out, "  %-24s %s\n", color.CyanString(m.ID), m.Name)
			}
			fmt.Fprintf(out, "%s %s\n", bold.Sprint("宽高比:"), strings.Join(catalog.AspectRatios, " "))
			fmt.Fprintf(out, "%s %s\n", bold.Sprint("尺寸:"), strings.Join(catalog.ImageSizes, " "))
			return nil
		},
	}
}

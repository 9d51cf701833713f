package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/JackaZhai/nano-banana/config"
	"github.com/JackaZhai/nano-banana/internal/pkg/draw"
)

type drawOptions struct {
	model        string
	aspectRatio  string
	imageSize    string
	refs         []string
	interval     time.Duration
	maxAttempts  int
	shutProgress bool
}

func newDrawCmd(g *globalOptions) *cobra.Command {
	opts := &drawOptions{}

	cmd := &cobra.Command{
		Use:   "draw <prompt>",
		Short: "提交图像生成任务并等待结果",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := make([]string, 0, len(opts.refs))
			for _, ref := range opts.refs {
				u, err := referenceURL(ref)
				if err != nil {
					return err
				}
				urls = append(urls, u)
			}

			req := &draw.Request{
				Prompt:       strings.Join(args, " "),
				Model:        opts.model,
				AspectRatio:  opts.aspectRatio,
				ImageSize:    opts.imageSize,
				URLs:         urls,
				ShutProgress: opts.shutProgress,
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			session := draw.NewSession(g.client(), draw.Options{Interval: opts.interval, MaxAttempts: opts.maxAttempts})
			defer session.Stop()

			updates, err := session.Submit(ctx, req)
			if err != nil {
				return err
			}

			var last draw.Update
			for u := range updates {
				renderUpdate(cmd.OutOrStdout(), u)
				last = u
			}
			if ctx.Err() != nil {
				return fmt.Errorf("已取消，任务 ID: %s", session.TaskID())
			}
			if !last.Succeeded() {
				return fmt.Errorf("图像生成失败: %s", last.FailureMessage())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "图像模型，默认 nano-banana-fast")
	cmd.Flags().StringVarP(&opts.aspectRatio, "aspect-ratio", "a", "", "宽高比，如 16:9，默认 auto")
	cmd.Flags().StringVarP(&opts.imageSize, "image-size", "s", "", "图像尺寸：1K、2K 或 4K")
	cmd.Flags().StringArrayVarP(&opts.refs, "ref", "r", nil, "参考图，本地路径或 URL，可多次指定")
	poll := config.GetConfig().Poll
	cmd.Flags().DurationVar(&opts.interval, "interval", poll.Interval, "轮询间隔")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", poll.MaxAttempts, "最大轮询次数，0 表示默认值")
	cmd.Flags().BoolVar(&opts.shutProgress, "shut-progress", false, "不返回中间进度")
	return cmd
}

// referenceURL 将本地图片转为 data URL，http(s) 与 data URL 原样返回
func referenceURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
		return ref, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("读取参考图失败: %w", err)
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("参考图必须是图片，实际类型为 %s", mime.String())
	}
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// renderUpdate 输出一次轮询更新
func renderUpdate(w io.Writer, u draw.Update) {
	switch {
	case u.Err != nil:
		fmt.Fprintln(w, color.RedString("✗ %s", u.Err))
	case u.Task.Status == draw.StatusFailed:
		fmt.Fprintln(w, color.RedString("✗ 生成失败: %s", u.Task.FailureReason))
	case u.Task.Status == draw.StatusSucceeded:
		fmt.Fprintln(w, color.GreenString("✓ 生成完成 (%d 张)", len(u.Task.Results)))
		for i, r := range u.Task.Results {
			fmt.Fprintf(w, "  %d. %s\n", i+1, color.MagentaString(r.URL))
			if r.Content != "" {
				fmt.Fprintf(w, "     %s\n", r.Content)
			}
		}
	default:
		fmt.Fprintf(w, "%s %s\n", color.CyanString("[%3d%%]", u.Task.Progress), progressBar(u.Task.Progress, 30))
	}
}

func progressBar(progress, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

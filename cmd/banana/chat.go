package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JackaZhai/nano-banana/internal/pkg/chat"
)

type chatOptions struct {
	model  string
	system string
	stream bool
}

func newChatCmd(g *globalOptions) *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "与模型对话，不带参数时进入交互模式",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := chat.NewClient(g.client(), opts.model)
			conv := chat.NewConversation(opts.system)
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				return runTurn(cmd.Context(), out, client, conv, strings.Join(args, " "), opts.stream)
			}

			fmt.Fprintln(out, color.New(color.Faint).Sprintf("模型 %s，输入 /exit 退出", client.Model()))
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, color.GreenString("> "))
				if !scanner.Scan() {
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "/exit" || text == "/quit" {
					return nil
				}
				if err := runTurn(cmd.Context(), out, client, conv, text, opts.stream); err != nil {
					fmt.Fprintln(out, color.RedString("%v", err))
				}
			}
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", chat.DefaultModel, "对话模型")
	cmd.Flags().StringVar(&opts.system, "system", "", "系统提示词")
	cmd.Flags().BoolVar(&opts.stream, "stream", true, "流式输出")
	return cmd
}

// runTurn 单轮对话期间 Ctrl-C 只中断当前回复
func runTurn(parent context.Context, out io.Writer, client *chat.Client, conv *chat.Conversation, text string, stream bool) error {
	ctx, cancel := signalContext(parent)
	defer cancel()
	return sendTurn(ctx, out, client, conv, text, stream)
}

// sendTurn 发送一轮对话并输出回复，流式模式下增量打印
func sendTurn(ctx context.Context, out io.Writer, client *chat.Client, conv *chat.Conversation, text string, stream bool) error {
	if !stream {
		reply, err := client.SendSync(ctx, conv, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply)
		return nil
	}

	printed := 0
	_, err := client.Send(ctx, conv, text, func(content string) {
		fmt.Fprint(out, content[printed:])
		printed = len(content)
	})
	fmt.Fprintln(out)
	return err
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/JackaZhai/nano-banana/internal/pkg/apiclient"
)

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	server string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "banana",
		Short:         "nano-banana 图像生成与对话命令行工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("BANANA_SERVER")
	if server == "" {
		server = apiclient.DefaultBaseURL
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "代理服务地址")

	// klog 参数（-v 等）
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(
		newDrawCmd(opts),
		newChatCmd(opts),
		newKeysCmd(opts),
		newProfileCmd(opts),
		newModelsCmd(opts),
	)
	return cmd
}

func (o *globalOptions) client() *apiclient.Client {
	return apiclient.NewClient(apiclient.WithBaseURL(o.server))
}

// signalContext Ctrl-C 时取消
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"k8s.io/klog/v2"

	"github.com/JackaZhai/nano-banana/internal/pkg/apiclient"
)

func main() {
	defer klog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Details != "" {
			fmt.Fprintln(os.Stderr, color.RedString("%v", err))
			fmt.Fprintln(os.Stderr, color.New(color.Faint).Sprint(apiErr.Details))
		} else {
			fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		}
		os.Exit(1)
	}
}

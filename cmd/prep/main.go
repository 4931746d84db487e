package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := newApp()
	if err := application.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, pterm.Error.Sprint(err))
		stop()
		os.Exit(1)
	}
}

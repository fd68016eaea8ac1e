package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/malusev998/forex-scanner/cli/cmd"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signals
		cancel()
	}()

	if err := cmd.Execute(&cmd.Config{Ctx: ctx}); err != nil {
		os.Exit(1)
	}
}

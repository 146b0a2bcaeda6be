package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gregLibert/apdu/cmd/commands"
)

func main() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		s := <-signalChan
		fmt.Fprintf(os.Stderr, "Captured %v\n", s)
		cancel()
	}()

	rootCtx := commands.Context{
		Context: ctx,
		Connect: commands.ConnectPCSC,
	}
	if err := commands.NewRootCommand(&rootCtx, "smartcard").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

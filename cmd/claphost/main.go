package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dawg-ai/claphost/internal/interfaces/cli"
	"github.com/dawg-ai/claphost/internal/interfaces/di"
)

func main() {
	opts := di.Options{
		ConfigPath: os.Getenv("CLAPHOST_CONFIG_PATH"),
		Debug:      os.Getenv("CLAPHOST_DEBUG") != "",
	}

	container, err := di.NewContainer(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		container.Logger.Info("received shutdown signal, unloading plugins")
		cancel()

		if err := container.Shutdown(context.Background()); err != nil {
			container.Logger.Error("shutdown failed", "error", err)
		}
		os.Exit(0)
	}()

	cli.Execute(ctx, container)
}

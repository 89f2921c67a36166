// Package main is the entry point for the taskview CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskview/internal/backend/restapi"
	"taskview/internal/cli"
	"taskview/internal/commands"
	"taskview/internal/config"
	"taskview/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return restapi.New(ctx, restapi.Options{
			BaseURL: cfg.APIURL,
			Token:   cfg.BearerToken(),
			Timeout: cfg.Timeout,
			Logger:  cfg.Log(),
		})
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

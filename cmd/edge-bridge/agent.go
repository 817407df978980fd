package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nattery/edge-bridge/internal/bridge"
	"github.com/nattery/edge-bridge/internal/config"
)

func runAgent(args []string) {
	cfgPath := parseAgentFlags(args)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bridge.New(cfg)
	if err != nil {
		slog.Error("bridge setup", "err", err)
		os.Exit(1)
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := b.Run(ctx); err != nil {
			slog.Error("bridge run", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	<-runDone

	shutdownCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Shutdown(shutdownCtx)

	slog.Info("exiting")
}

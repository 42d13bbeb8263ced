package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/elrstools/crsflink/internal/observability"
	"github.com/elrstools/crsflink/internal/receiver"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config (built-in defaults when empty)")
	flag.Parse()

	cfg, logLevel, err := loadRuntimeConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "linkctl: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger("linkctl", logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := receiver.New(cfg, logger)
	if err := svc.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("linkctl stopped")
		os.Exit(1)
	}
}

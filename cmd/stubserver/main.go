package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/solvyn/widgetcore/internal/config"
	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/solvyn/widgetcore/internal/stub"
)

func main() {
	cfgFile := flag.String("config", "widgetcore.yaml", "config file")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logging.New(nil, *logLevel)

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := stub.NewServer(cfg.Stub, log).Run(ctx); err != nil {
		log.Error().Err(err).Msg("stub backend stopped")
		os.Exit(1)
	}
}

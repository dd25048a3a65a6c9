package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/carbuyer/internal/devserver"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

func main() {

	cfg := devserver.LoadConfig(os.Args[1:])

	logger, err := logging.New("info", os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := devserver.NewServer(cfg, logger).Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}

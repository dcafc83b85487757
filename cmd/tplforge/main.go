package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"

	"github.com/goliatone/go-tplforge/internal/cli"
)

func main() {
	log.SetHandler(clihandler.Default)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		log.WithError(err).Fatal("tplforge")
	}
}

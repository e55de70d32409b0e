package main

import (
	"context"
	"os"

	"github.com/emberly-app/emberly-stories/internal/app"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{})

	application := fx.New(
		fx.Logger(log),
		app.Module,
	)

	if err := application.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Blocks until the UI exits or an interrupt arrives.
	<-application.Done()

	if err := application.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}

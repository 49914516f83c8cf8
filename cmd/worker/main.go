package main

import (
	"context"
	"os/signal"
	"syscall"

	"parcel-service/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := app.MustBuildContainer(ctx)
	app.NewWorkerRunner().MustRun(container)
}

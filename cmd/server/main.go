package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"level-thumbnails/internal/app"
	"level-thumbnails/internal/config"
	"level-thumbnails/internal/logging"
	"level-thumbnails/pkg/db/postgres"
	"level-thumbnails/pkg/db/redis"
)

func main() {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.InitDB(); err != nil {
		log.Fatalf("Failed to postgres init: %v", err)
	}

	store, err := redis.InitRedis(ctx)
	if err != nil {
		log.Fatalf("Failed to redis init: %v", err)
	}
	defer store.Close()

	srv, err := app.New(ctx, cfg, postgres.GetDB(), store)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

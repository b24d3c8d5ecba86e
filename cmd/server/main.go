package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/emberapp/ember-backend/internal/app"
	"github.com/emberapp/ember-backend/internal/cache"
	"github.com/emberapp/ember-backend/internal/config"
	"github.com/emberapp/ember-backend/internal/db"
	"github.com/emberapp/ember-backend/internal/logger"
	"github.com/emberapp/ember-backend/internal/notify"
	"github.com/emberapp/ember-backend/internal/server"
	"github.com/emberapp/ember-backend/internal/service/discover"
	"github.com/emberapp/ember-backend/internal/service/inbox"
	"github.com/emberapp/ember-backend/internal/service/likes"
	"github.com/emberapp/ember-backend/internal/service/swipe"
)

func main() {
	_ = godotenv.Load()
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log, cfg)

	// Notification sink: best-effort row + pub/sub fan-out
	sink := notify.NewService(database, redisCache, log)

	registrars := []server.Registrar{
		swipe.NewRegistrar(appCtx, sink),
		discover.NewRegistrar(appCtx),
		likes.NewRegistrar(appCtx),
		inbox.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}

package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/logger"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	reservations := repository.NewReservationRepo(db)
	tables := repository.NewTableRepo(db)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.RateLimiter(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.Setup(e, log)
	router.RegisterRoutes(e,
		handler.NewReservationHandler(reservations, log),
		handler.NewTableHandler(tables, reservations, log),
		limiter,
	)

	// The consumer keeps its own reconnect loop; it only logs while
	// the broker is away.
	go func() {
		if err := queue.StartConsumer(log); err != nil {
			log.Warn("queue consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

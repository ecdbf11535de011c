package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/config"
	dbpkg "github.com/BruksfildServices01/schedmate/internal/db"
	"github.com/BruksfildServices01/schedmate/internal/logging"
	"github.com/BruksfildServices01/schedmate/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatal("redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancel()

	app, err := routes.Build(cfg, routes.Infra{DB: db, Redis: rdb}, log)
	if err != nil {
		log.Fatal("build app", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running",
			zap.String("addr", cfg.Addr()),
			zap.Bool("logos", cfg.LogosEnabled()),
			zap.String("timezone", cfg.Timezone),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	app.Close()
}

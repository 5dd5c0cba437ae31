package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileflow-backend/internal/bootstrap"
	"fileflow-backend/internal/config"
	"fileflow-backend/internal/logger"
	"fileflow-backend/internal/routes"
)

func main() {
	cfg, envLoaded, cfgErr := config.Load()

	env := "development"
	if cfg != nil {
		env = cfg.AppEnv
	}
	log, err := logger.New(env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if !envLoaded {
		log.Info("No .env file found, relying on system env")
	}
	if cfgErr != nil {
		log.Fatal("Config load failed", zap.Error(cfgErr))
	}

	ctx := context.Background()

	db, err := config.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	broker, err := bootstrap.NewBroker(ctx, cfg, log)
	if err != nil {
		log.Fatal("Broker init failed", zap.Error(err))
	}

	statsCache, closeCache := bootstrap.NewStatsCache(ctx, cfg, log)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, broker, routes.Options{
		SubmitQueue:   cfg.Queue.First,
		StatsCache:    statsCache,
		StatsCacheTTL: cfg.StatsCacheTTL,
	}, log)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("FileFlow API started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := broker.Close(); err != nil {
		log.Error("Broker close error", zap.Error(err))
	}
	if err := closeCache(); err != nil {
		log.Error("Cache close error", zap.Error(err))
	}
	if err := config.CloseDB(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}
	log.Info("FileFlow API stopped gracefully")
}

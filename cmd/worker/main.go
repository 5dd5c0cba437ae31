package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"fileflow-backend/internal/bootstrap"
	"fileflow-backend/internal/config"
	"fileflow-backend/internal/logger"
	"fileflow-backend/internal/pipeline"
	"fileflow-backend/internal/repository"
	"fileflow-backend/internal/services/processing"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	broker, err := bootstrap.NewBroker(ctx, cfg, log)
	if err != nil {
		log.Fatal("Broker init failed", zap.Error(err))
	}

	n, err := bootstrap.NewNotifier(ctx, cfg)
	if err != nil {
		log.Fatal("Notifier init failed", zap.Error(err))
	}

	fileRepo := repository.NewFileRepository(db)
	resultRepo := repository.NewResultRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	processor := processing.NewService(resultRepo, fileRepo, log)
	fileWorker := pipeline.NewFileWorker(processor, broker, cfg.Queue.Second, log)
	notificationWorker := pipeline.NewNotificationWorker(n, notificationRepo, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := fileWorker.Run(ctx, broker, cfg.Queue.First); err != nil {
			log.Error("file worker stopped", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := notificationWorker.Run(ctx, broker, cfg.Queue.Second); err != nil {
			log.Error("notification worker stopped", zap.Error(err))
		}
	}()

	log.Info("FileFlow workers started",
		zap.String("queue_driver", cfg.Queue.Driver),
		zap.String("notifier", n.Channel()),
		zap.String("file_queue", cfg.Queue.First),
		zap.String("notification_queue", cfg.Queue.Second),
	)

	<-ctx.Done()
	log.Info("Initiating graceful shutdown...")
	wg.Wait()

	if err := broker.Close(); err != nil {
		log.Error("Broker close error", zap.Error(err))
	}
	if err := config.CloseDB(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}
	log.Info("FileFlow workers stopped gracefully")
}

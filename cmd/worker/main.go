package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"venue-staff/internal/config"
	"venue-staff/internal/infrastructure/notify"
	"venue-staff/internal/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Queue.URL == "" {
		logger.Fatal("RABBITMQ_URL is required for the notification worker")
	}

	senders, err := notify.SendersFromConfig(cfg)
	if err != nil {
		logger.Fatal("failed to configure notification channels", zap.Error(err))
	}
	d := notify.NewDispatcher(logger, senders...)
	if len(d.Channels()) == 0 {
		logger.Warn("no notification channels configured, messages will be acknowledged and dropped")
	}

	consumer, err := notify.NewConsumer(cfg.Queue.URL, cfg.Queue.Exchange, d, logger)
	if err != nil {
		logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("consumer close", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notification worker started",
		zap.String("exchange", cfg.Queue.Exchange),
		zap.String("queue", notify.QueueName),
		zap.Strings("channels", d.Channels()),
	)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("notification worker stopped")
}

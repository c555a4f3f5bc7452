package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"inkpress/api/internal/cache"
	"inkpress/api/internal/config"
	"inkpress/api/internal/database"
	"inkpress/api/internal/log"
	"inkpress/api/internal/payments"
	"inkpress/api/internal/payments/paystack"
	"inkpress/api/internal/payments/sandbox"
	"inkpress/api/internal/queue"
	"inkpress/api/internal/repository"
	"inkpress/api/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	var gateway payments.Gateway
	switch cfg.Payments.Provider {
	case "paystack":
		gateway = paystack.New(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.PollInterval, logger)
	default:
		gateway = sandbox.New()
	}

	transactions := repository.NewTransactionRepository(dbPool)
	processor := tasks.NewProcessor(transactions, gateway, cfg.Payments.SweepAfter, logger)
	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Jobs.ClaimInterval,
		logger,
		processor,
	)

	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("consumer group setup failed")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}

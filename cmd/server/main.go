package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/analysis"
	"github.com/braindler/braindler-multimodal/internal/api"
	"github.com/braindler/braindler-multimodal/internal/config"
	"github.com/braindler/braindler-multimodal/internal/configs/env"
	"github.com/braindler/braindler-multimodal/internal/infra/mongo"
	redisInfra "github.com/braindler/braindler-multimodal/internal/infra/redis"
	"github.com/braindler/braindler-multimodal/internal/logger"
	"github.com/braindler/braindler-multimodal/internal/metrics"
	"github.com/braindler/braindler-multimodal/internal/narrator"
	"github.com/braindler/braindler-multimodal/internal/plagiarism"
	"github.com/braindler/braindler-multimodal/internal/repository"
	"github.com/braindler/braindler-multimodal/internal/stream"
	"github.com/braindler/braindler-multimodal/internal/textsource"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Starting copy detection server")

	metrics.InitPrometheus()
	metricsServer := api.StartServer("metrics", api.MetricsRouter(metrics.Handler()), cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	casesRepo := repository.NewCasesRepository(mongoRepo)
	reportsRepo := repository.NewReportsRepository(mongoRepo)
	if err := casesRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create case indexes")
	}
	if err := reportsRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create report indexes")
	}

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.Workers)
	defer workerPool.Close()

	detector, err := plagiarism.NewDetector(cfg.Analysis, workerPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid analysis options")
	}

	caseNarrator, err := narrator.NewNarrator(ctx, cfg.Narrator)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create narrator")
	}
	if closer, ok := caseNarrator.(io.Closer); ok {
		defer closer.Close()
	}

	deps := analysis.Deps{
		Detector:        detector,
		Narrator:        caseNarrator,
		Cases:           casesRepo,
		Reports:         reportsRepo,
		Status:          analysis.NewRedisStatusStore(redisClient.Client),
		Queue:           stream.NewProducer(redisClient.Client, cfg.RedisStreamKey),
		Timeout:         cfg.AnalysisTimeout,
		NarratorTimeout: cfg.Narrator.Timeout,
	}
	if cfg.TextSourceBaseURL != "" {
		deps.Fetcher = textsource.NewClient(cfg.TextSourceBaseURL, cfg.TextSourceAPIKey, cfg.TextSourceTimeout)
	}
	service := analysis.NewService(deps)

	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey, cfg.MaxRetries,
		func(err error) bool { return !analysis.IsPermanent(err) })

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		service,
		retryHandler,
		cfg.StreamRetentionDuration,
	)

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	router := api.SetupRoutes(cfg, service)
	srv := api.StartServer("api", router, cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}

	consumerCancel()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Consumer did not stop in time")
	}

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}

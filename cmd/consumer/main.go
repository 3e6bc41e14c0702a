package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/config"
	"github.com/avataa-hq/avataa-events/internal/consumer"
	"github.com/avataa-hq/avataa-events/internal/converter"
	"github.com/avataa-hq/avataa-events/internal/logger"
	"github.com/avataa-hq/avataa-events/internal/queue/sqs"
	"github.com/avataa-hq/avataa-events/internal/repository/elastic"
	"github.com/avataa-hq/avataa-events/internal/versioning"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting consumer service",
		zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()

	// Initialize Elasticsearch client and store
	esClient, err := elastic.NewClient(ctx, &cfg.Elasticsearch, log)
	if err != nil {
		log.Fatal("Failed to create Elasticsearch client", zap.Error(err))
	}
	defer func() {
		if err := esClient.Close(); err != nil {
			log.Error("Failed to close Elasticsearch client", zap.Error(err))
		}
	}()

	store := elastic.NewStore(esClient, log)

	// Create event indexes when missing
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to initialize event indexes", zap.Error(err))
	}
	log.Info("Event indexes initialized")

	// Initialize the versioning engine with its value converter
	valueConverter := converter.New(store, log)
	engine := versioning.NewEngine(store, valueConverter, cfg.Consumer.BulkBatchSize, log)

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize consumer
	c := consumer.NewConsumer(sqsClient, engine, log)

	// Start health check endpoint
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := store.Ping(r.Context()); err != nil {
				log.Warn("Health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})

		addr := ":" + cfg.Consumer.HealthCheckPort
		log.Info("Health check server starting", zap.String("address", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	// Start consumer
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("Consumer starting")

	go func() {
		if err := c.Start(consumerCtx); err != nil {
			log.Fatal("Consumer error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down consumer gracefully")
	cancel()
}

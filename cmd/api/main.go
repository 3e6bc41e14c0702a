package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/docs"
	"github.com/avataa-hq/avataa-events/internal/config"
	"github.com/avataa-hq/avataa-events/internal/handler"
	"github.com/avataa-hq/avataa-events/internal/identity"
	"github.com/avataa-hq/avataa-events/internal/logger"
	"github.com/avataa-hq/avataa-events/internal/repository/elastic"
	"github.com/avataa-hq/avataa-events/internal/service"
)

// @title Inventory Event Manager API
// @version 1.0
// @description Attribute-level versioned audit trail for inventory entities
// @host localhost:8080
// @BasePath /
// @schemes http https
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

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	// Initialize Elasticsearch client and store
	esClient, err := elastic.NewClient(ctx, &cfg.Elasticsearch, log)
	if err != nil {
		log.Fatal("Failed to create Elasticsearch client", zap.Error(err))
	}
	defer func(esClient *elastic.Client) {
		if err := esClient.Close(); err != nil {
			log.Error("Failed to close Elasticsearch client", zap.Error(err))
		}
	}(esClient)

	store := elastic.NewStore(esClient, log)

	// Initialize actor identity resolution
	resolver := identity.FromConfig(cfg.Security, log)

	// Initialize event query service
	eventService := service.NewEventService(store, resolver, log)

	// Initialize handler
	h := handler.NewHandler(eventService, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}

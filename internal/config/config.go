package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

type Elasticsearch struct {
	URL               string `envconfig:"ELASTICSEARCH_URL" required:"true"`
	User              string `envconfig:"ELASTICSEARCH_USER" default:""`
	Password          string `envconfig:"ELASTICSEARCH_PASSWORD" default:""`
	UseTLS            bool   `envconfig:"ELASTICSEARCH_USE_TLS" default:"false"`
	MaxRetries        int    `envconfig:"ELASTICSEARCH_MAX_RETRIES" default:"5"`
	RequestTimeoutSec int    `envconfig:"ELASTICSEARCH_REQUEST_TIMEOUT_SEC" default:"10"`
}

type Consumer struct {
	BulkBatchSize   int    `envconfig:"CONSUMER_BULK_BATCH_SIZE" default:"10000"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

type Security struct {
	Type          string `envconfig:"SECURITY_TYPE" default:""`
	KeycloakURL   string `envconfig:"KEYCLOAK_URL" default:""`
	KeycloakRealm string `envconfig:"KEYCLOAK_REALM" default:""`
}

type Config struct {
	Service       Service
	SQS           SQS
	Elasticsearch Elasticsearch
	Consumer      Consumer
	Security      Security
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

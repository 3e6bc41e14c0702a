package elastic

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/config"
)

// Client wraps the Elasticsearch connection
type Client struct {
	es     *elasticsearch.Client
	config *config.Elasticsearch
	log    *zap.Logger
}

// NewClient creates a new Elasticsearch client with the given configuration
func NewClient(ctx context.Context, cfg *config.Elasticsearch, log *zap.Logger) (*Client, error) {
	log.Info("Connecting to Elasticsearch",
		zap.String("url", cfg.URL),
		zap.Bool("useTLS", cfg.UseTLS))

	esConfig := elasticsearch.Config{
		Addresses:            []string{cfg.URL},
		Username:             cfg.User,
		Password:             cfg.Password,
		RetryOnStatus: []int{500, 502, 503, 504},
		MaxRetries:    cfg.MaxRetries,
	}

	if cfg.UseTLS {
		esConfig.Transport = &http.Transport{
			ResponseHeaderTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: false,
			},
		}
	}

	es, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		log.Error("Failed to create Elasticsearch client", zap.Error(err))
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{es: es, config: cfg, log: log}

	// Verify connection
	if err := client.ping(ctx); err != nil {
		log.Error("Failed to ping Elasticsearch", zap.Error(err))
		return nil, fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}

	log.Info("Elasticsearch connection established successfully")

	return client, nil
}

// ES returns the underlying Elasticsearch client
func (c *Client) ES() *elasticsearch.Client {
	return c.es
}

func (c *Client) ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping returned %s", res.Status())
	}
	return nil
}

// Close releases the client; the underlying HTTP transport keeps no
// long-lived connections that need explicit teardown.
func (c *Client) Close() error {
	c.log.Info("Closing Elasticsearch client")
	return nil
}

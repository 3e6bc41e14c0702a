package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/avataa-hq/avataa-events/internal/config"
)

// Resolver maps actor ids to display usernames for query responses. When
// resolution is unavailable the ids are left as-is.
type Resolver interface {
	Resolve(ctx context.Context, token string) (map[string]string, error)
}

// Noop performs no resolution; every id stays untouched.
type Noop struct{}

func (Noop) Resolve(context.Context, string) (map[string]string, error) {
	return nil, nil
}

// Keycloak resolves usernames through the Keycloak admin API using the
// caller's bearer token.
type Keycloak struct {
	baseURL string
	realm   string
	client  *http.Client
	log     *zap.Logger
}

// NewKeycloak creates a Keycloak-backed resolver
func NewKeycloak(baseURL, realm string, log *zap.Logger) *Keycloak {
	return &Keycloak{
		baseURL: baseURL,
		realm:   realm,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

type keycloakUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Resolve lists the realm's users and returns a username-by-id mapping.
func (k *Keycloak) Resolve(ctx context.Context, token string) (map[string]string, error) {
	url := fmt.Sprintf("%s/admin/realms/%s/users", k.baseURL, k.realm)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user lookup request: %w", err)
	}
	req.Header.Set("Authorization", token)

	res, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user lookup returned status %d", res.StatusCode)
	}

	var users []keycloakUser
	if err := json.NewDecoder(res.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode user lookup response: %w", err)
	}

	usernames := make(map[string]string, len(users))
	for _, user := range users {
		usernames[user.ID] = user.Username
	}

	return usernames, nil
}

// FromConfig selects the resolver matching the deployment's auth mode.
func FromConfig(cfg config.Security, log *zap.Logger) Resolver {
	if cfg.Type == "KEYCLOAK" {
		return NewKeycloak(cfg.KeycloakURL, cfg.KeycloakRealm, log)
	}
	return Noop{}
}

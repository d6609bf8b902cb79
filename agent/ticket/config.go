package ticket

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendUpstash  Backend = "upstash"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

type Config struct {
	Addr           string  `split_words:"true" default:"127.0.0.1:8001"`
	Backend        Backend `split_words:"true" default:"memory"`
	PostgresDSN    string  `envconfig:"POSTGRES_DSN"`
	RedisURL       string  `envconfig:"REDIS_URL"`
	KeyPrefix      string  `split_words:"true" default:"demo:ticket:"`
	NotifyWebhook  string  `split_words:"true"`
	StrictNotFound bool    `split_words:"true"`
}

// OpenStore builds the configured backend and seeds the default tickets.
func OpenStore(ctx context.Context, cfg Config, upstash UpstashConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend)))) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendUpstash:
		store, err = NewUpstashStore(upstash, WithKeyPrefix(cfg.KeyPrefix))
	case BackendRedis:
		store, err = NewRedisStore(cfg.RedisURL, cfg.KeyPrefix)
	case BackendPostgres:
		store, err = NewPostgresStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown ticket backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return prepareStore(ctx, store)
}

type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// prepareStore creates any schema the backend needs and seeds the default
// tickets. The store is closed when either step fails.
func prepareStore(ctx context.Context, store Store) (Store, error) {
	if se, ok := store.(schemaEnsurer); ok {
		if err := se.EnsureSchema(ctx); err != nil {
			closeStore(store)
			return nil, err
		}
	}
	if err := Seed(ctx, store); err != nil {
		closeStore(store)
		return nil, err
	}
	return store, nil
}

// closeStore releases backends that hold connections.
func closeStore(s Store) {
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close ticket store")
		}
	}
}

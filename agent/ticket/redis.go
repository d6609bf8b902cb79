package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps tickets in a plain Redis server.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rawURL string, keyPrefix string) (*RedisStore, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStoreFromClient(redis.NewClient(opts), keyPrefix), nil
}

func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Ticket, error) {
	status, err := s.client.Get(ctx, s.keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return Ticket{}, ErrTicketNotFound
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("redis get ticket %s: %w", id, err)
	}
	return Ticket{ID: id, Status: status}, nil
}

func (s *RedisStore) Upsert(ctx context.Context, t Ticket) (Ticket, error) {
	if err := t.validate(); err != nil {
		return Ticket{}, err
	}
	if err := s.client.Set(ctx, s.keyPrefix+t.ID, t.Status, 0).Err(); err != nil {
		return Ticket{}, fmt.Errorf("redis set ticket %s: %w", t.ID, err)
	}
	return t, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

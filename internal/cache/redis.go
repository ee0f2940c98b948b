package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/geange/nfasim/internal/record"
)

// Redis implements Store on a Redis server.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Redis)

// WithTTL sets the expiration of cached records. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Redis) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Redis) {
		s.prefix = prefix
	}
}

func NewRedis(address, password string, db int, opts ...Option) *Redis {
	return NewRedisFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

func NewRedisFromClient(client *backend.Client, opts ...Option) *Redis {
	s := &Redis{
		client: client,
		prefix: "nfasim:result:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Redis) key(k string) string {
	return s.prefix + k
}

func (s *Redis) Get(ctx context.Context, key string) (*record.Record, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	r := &record.Record{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, false, fmt.Errorf("decode cached record: %w", err)
	}
	return r, true, nil
}

func (s *Redis) Put(ctx context.Context, key string, r *record.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Close() error {
	return s.client.Close()
}

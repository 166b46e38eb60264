// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// RedisStore keeps the session under <prefix>:<session>:<key>
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	sessionID string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewRedisStore creates a Redis-backed store. A zero ttl keeps keys until removed.
func NewRedisStore(client redis.UniversalClient, prefix, sessionID string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		sessionID: sessionID,
		ttl:       ttl,
		logger:    logging.WithComponent(logger, constants.ComponentStore),
	}, nil
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: REDIS_URL: %w", constants.ErrInvalidConfig, err)
	}
	return redis.NewClient(opts), nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + s.sessionID + ":" + key
}

// Get implements contracts.SessionStore
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		logging.FromContext(ctx, s.logger).Error("redis get failed", "key", key, "error", err.Error())
		return "", false, fmt.Errorf("%s: %s: %w", constants.ErrReadStore, key, err)
	}
	return value, true, nil
}

// Set implements contracts.SessionStore
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		logging.FromContext(ctx, s.logger).Error("redis set failed", "key", key, "error", err.Error())
		return fmt.Errorf("%s: %s: %w", constants.ErrWriteStore, key, err)
	}
	return nil
}

// Remove implements contracts.SessionStore
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		logging.FromContext(ctx, s.logger).Error("redis delete failed", "key", key, "error", err.Error())
		return fmt.Errorf("%s: %s: %w", constants.ErrRemoveStore, key, err)
	}
	return nil
}

// HealthCheck pings the Redis server
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("%s: redis client is nil", constants.ErrHealthCheck)
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

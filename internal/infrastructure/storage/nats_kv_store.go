// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// healthCheckKey is read during health checks; it is never written
const healthCheckKey = "_health"

// KeyValue is the subset of nats.KeyValue used by the store
type KeyValue interface {
	Get(key string) (nats.KeyValueEntry, error)
	PutString(key string, value string) (uint64, error)
	Delete(key string, opts ...nats.DeleteOpt) error
}

// NATSKVStore keeps the session in a JetStream key/value bucket under <session>.<key>
type NATSKVStore struct {
	kv        KeyValue
	sessionID string
	logger    *slog.Logger
}

// NewNATSKVStore creates a store over an opened bucket
func NewNATSKVStore(kv KeyValue, sessionID string, logger *slog.Logger) (*NATSKVStore, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	return &NATSKVStore{
		kv:        kv,
		sessionID: sessionID,
		logger:    logging.WithComponent(logger, constants.ComponentStore),
	}, nil
}

// OpenKeyValue binds to bucket, creating it when it does not exist
func OpenKeyValue(conn *nats.Conn, bucket string, ttl time.Duration) (nats.KeyValue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("%s: jetstream: %w", constants.ErrStoreUnavailable, err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "vet-session client sessions",
			TTL:         ttl,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: bucket %s: %w", constants.ErrStoreUnavailable, bucket, err)
	}
	return kv, nil
}

func (s *NATSKVStore) key(key string) string {
	return s.sessionID + "." + key
}

// Get implements contracts.SessionStore
func (s *NATSKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	entry, err := s.kv.Get(s.key(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return "", false, nil
		}
		logging.FromContext(ctx, s.logger).Error("kv get failed", "key", key, "error", err.Error())
		return "", false, fmt.Errorf("%s: %s: %w", constants.ErrReadStore, key, err)
	}
	if entry.Operation() != nats.KeyValuePut {
		return "", false, nil
	}
	return string(entry.Value()), true, nil
}

// Set implements contracts.SessionStore
func (s *NATSKVStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	revision, err := s.kv.PutString(s.key(key), value)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("kv put failed", "key", key, "error", err.Error())
		return fmt.Errorf("%s: %s: %w", constants.ErrWriteStore, key, err)
	}
	logging.FromContext(ctx, s.logger).Debug("kv put", "key", key, "revision", revision)
	return nil
}

// Remove implements contracts.SessionStore
func (s *NATSKVStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.kv.Delete(s.key(key)); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		logging.FromContext(ctx, s.logger).Error("kv delete failed", "key", key, "error", err.Error())
		return fmt.Errorf("%s: %s: %w", constants.ErrRemoveStore, key, err)
	}
	return nil
}

// HealthCheck performs a read against the bucket
func (s *NATSKVStore) HealthCheck(_ context.Context) error {
	if s.kv == nil {
		return fmt.Errorf("%s: kv bucket is nil", constants.ErrHealthCheck)
	}
	if _, err := s.kv.Get(s.key(healthCheckKey)); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	return nil
}

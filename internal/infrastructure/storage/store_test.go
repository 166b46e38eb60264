// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/pkg/logging"
)

func setupTestLogger(t *testing.T) *slog.Logger {
	logger, _ := logging.TestLogger(t)
	return logger
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client, "vet-session", "default", 0, setupTestLogger(t))
	require.NoError(t, err)
	return store, mr
}

// storeBackends returns a fresh instance of every backend
func storeBackends(t *testing.T) map[string]contracts.SessionStore {
	redisStore, _ := newMiniredisStore(t)
	kvStore, err := NewNATSKVStore(newFakeKV(), "default", setupTestLogger(t))
	require.NoError(t, err)

	return map[string]contracts.SessionStore{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "session.json"), setupTestLogger(t)),
		"redis":  redisStore,
		"nats":   kvStore,
	}
}

func TestSessionStore_Contract(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("missing_key_not_found", func(t *testing.T) {
				v, found, err := store.Get(ctx, "jwt")
				require.NoError(t, err)
				assert.False(t, found)
				assert.Empty(t, v)
			})

			t.Run("set_then_get", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, "jwt", "dummy-jwt"))
				v, found, err := store.Get(ctx, "jwt")
				require.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, "dummy-jwt", v)
			})

			t.Run("set_overwrites", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, "jwt", "second-jwt"))
				v, _, err := store.Get(ctx, "jwt")
				require.NoError(t, err)
				assert.Equal(t, "second-jwt", v)
			})

			t.Run("empty_value_is_found", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, "avatar", ""))
				v, found, err := store.Get(ctx, "avatar")
				require.NoError(t, err)
				assert.True(t, found)
				assert.Empty(t, v)
			})

			t.Run("keys_are_independent", func(t *testing.T) {
				require.NoError(t, store.Set(ctx, "name", "Ana Pérez"))
				require.NoError(t, store.Remove(ctx, "name"))
				v, found, err := store.Get(ctx, "jwt")
				require.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, "second-jwt", v)
			})

			t.Run("remove", func(t *testing.T) {
				require.NoError(t, store.Remove(ctx, "jwt"))
				_, found, err := store.Get(ctx, "jwt")
				require.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("remove_missing_is_not_error", func(t *testing.T) {
				assert.NoError(t, store.Remove(ctx, "never-set"))
			})

			t.Run("health_check", func(t *testing.T) {
				assert.NoError(t, store.HealthCheck(ctx))
			})
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	for _, id := range []string{"default", "clinic-7", "a_b", NewSessionID()} {
		assert.NoError(t, ValidateSessionID(id), id)
	}
	for _, id := range []string{"", "a.b", "a:b", "a b", "sess*"} {
		err := ValidateSessionID(id)
		require.Error(t, err, id)
		assert.Contains(t, err.Error(), "invalid session id")
	}
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_KeyLayout(t *testing.T) {
	store, mr := newMiniredisStore(t)

	require.NoError(t, store.Set(context.Background(), "jwt", "dummy-jwt"))

	got, err := mr.Get("vet-session:default:jwt")
	require.NoError(t, err)
	assert.Equal(t, "dummy-jwt", got)
	assert.Equal(t, time.Duration(0), mr.TTL("vet-session:default:jwt"))
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store, err := NewRedisStore(client, "", "clinic-7", time.Hour, setupTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "jwt", "dummy-jwt"))
	assert.Equal(t, time.Hour, mr.TTL("vet-session:clinic-7:jwt"))

	mr.FastForward(2 * time.Hour)
	_, found, err := store.Get(context.Background(), "jwt")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_SessionsIsolated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	first, err := NewRedisStore(client, "p", "first", 0, setupTestLogger(t))
	require.NoError(t, err)
	second, err := NewRedisStore(client, "p", "second", 0, setupTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, first.Set(context.Background(), "jwt", "a"))
	_, found, err := second.Get(context.Background(), "jwt")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := newMiniredisStore(t)
	mr.Close()

	ctx := context.Background()

	_, _, err := store.Get(ctx, "jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read session store")

	err = store.Set(ctx, "jwt", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write session store")

	err = store.Remove(ctx, "jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to remove session key")

	err = store.HealthCheck(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check failed")
}

func TestRedisStore_NilClient(t *testing.T) {
	store, err := NewRedisStore(nil, "p", "default", 0, setupTestLogger(t))
	require.NoError(t, err)

	err = store.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis client is nil")
	assert.NoError(t, store.Close())
}

func TestRedisStore_InvalidSessionID(t *testing.T) {
	_, err := NewRedisStore(nil, "p", "bad:id", 0, setupTestLogger(t))
	require.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()

	_, err = NewRedisClient("http://nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package container

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/gatewaystub"
	"github.com/vetclinic/vet-session/internal/infrastructure/config"
	"github.com/vetclinic/vet-session/internal/infrastructure/storage"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

func startStub(t *testing.T) string {
	t.Helper()
	logger, _ := logging.TestLogger(t)
	stub, err := gatewaystub.New(gatewaystub.Config{}, logger)
	require.NoError(t, err)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func testConfig(gatewayURL string) *config.AppConfig {
	return &config.AppConfig{
		Gateway: config.GatewayConfig{
			Host:         gatewayURL,
			Timeout:      5 * time.Second,
			AuthPath:     constants.AuthorizerPathV1,
			EmployeePath: constants.EmployeePathV1,
			CustomerPath: constants.CustomerPathV1,
			PetPath:      constants.PetPathV1,
		},
		Avatar: config.AvatarConfig{NoProfilePicture: "/img/none.png"},
		Store: config.StoreConfig{
			Backend:     constants.StoreMemory,
			SessionID:   constants.DefaultSessionID,
			RedisURL:    constants.DefaultRedisURL,
			RedisPrefix: constants.DefaultRedisPrefix,
		},
		NATS: config.NATSConfig{
			URL:          constants.DefaultNATSURL,
			KVBucket:     constants.DefaultKVBucket,
			StateSubject: constants.DefaultStateSubject,
		},
		OpenSearch: config.OpenSearchConfig{
			URL:        constants.DefaultOpenSearchURL,
			Index:      constants.DefaultAuditIndex,
			BufferSize: constants.DefaultAuditBuffer,
		},
		Logging: config.LoggingConfig{Level: "debug", Format: "json"},
	}
}

func newTestContainer(t *testing.T, cfg *config.AppConfig) *Container {
	t.Helper()
	logger, _ := logging.TestLogger(t)
	c, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func signIn(t *testing.T, c *Container) {
	t.Helper()
	_, err := c.AuthService.SignIn(context.Background(), entities.Credentials{Email: "vet@clinic.test", Password: "vet"})
	require.NoError(t, err)
}

func TestNew_ClinicServices(t *testing.T) {
	c := newTestContainer(t, testConfig(startStub(t)))
	signIn(t, c)
	ctx := context.Background()

	customers, err := c.CustomerService.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, customers.Total)

	avatar, err := c.CustomerAvatarService.GetByID(ctx, "C-0002")
	require.NoError(t, err)
	assert.Equal(t, "/img/none.png", avatar.Path)

	pets, err := c.PetService.ListByCustomer(ctx, "C-0001")
	require.NoError(t, err)
	assert.Len(t, pets.Data, 2)
}

func TestNew_StoreBackends(t *testing.T) {
	gatewayURL := startStub(t)

	t.Run("memory", func(t *testing.T) {
		c := newTestContainer(t, testConfig(gatewayURL))
		assert.IsType(t, &storage.MemoryStore{}, c.Store)
		assert.Equal(t, []string{constants.ComponentGateway, constants.ComponentStore}, c.HealthService.Components())
		assert.Nil(t, c.Broadcaster)
		assert.Nil(t, c.Audit)

		signIn(t, c)
		assert.True(t, c.StateProvider.Current().User.IsAuthenticated())
	})

	t.Run("file", func(t *testing.T) {
		cfg := testConfig(gatewayURL)
		cfg.Store.Backend = constants.StoreFile
		cfg.Store.SessionFile = filepath.Join(t.TempDir(), "session.json")

		c := newTestContainer(t, cfg)
		assert.IsType(t, &storage.FileStore{}, c.Store)

		signIn(t, c)
		data, err := os.ReadFile(cfg.Store.SessionFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"jwt"`)

		// a second container sees the same session
		other := newTestContainer(t, cfg)
		state, err := other.StateProvider.GetAuthenticationState(context.Background())
		require.NoError(t, err)
		assert.True(t, state.User.IsAuthenticated())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(gatewayURL)
		cfg.Store.Backend = constants.StoreRedis
		cfg.Store.RedisURL = "redis://" + mr.Addr()
		cfg.Store.SessionID = "desk-1"

		c := newTestContainer(t, cfg)
		assert.IsType(t, &storage.RedisStore{}, c.Store)

		signIn(t, c)
		assert.True(t, mr.Exists(constants.DefaultRedisPrefix+":desk-1:jwt"))

		status := c.HealthService.CheckHealth(context.Background())
		assert.Equal(t, constants.StatusHealthy, status.Status)
	})
}

func TestNew_Errors(t *testing.T) {
	gatewayURL := startStub(t)
	logger, _ := logging.TestLogger(t)

	tests := []struct {
		name   string
		mutate func(cfg *config.AppConfig)
		errMsg string
	}{
		{
			name:   "unknown_backend",
			mutate: func(cfg *config.AppConfig) { cfg.Store.Backend = "floppy" },
			errMsg: constants.ErrInvalidConfig,
		},
		{
			name:   "bad_gateway_host",
			mutate: func(cfg *config.AppConfig) { cfg.Gateway.Host = "ftp://gateway" },
			errMsg: constants.ErrInvalidConfig,
		},
		{
			name: "unreachable_nats",
			mutate: func(cfg *config.AppConfig) {
				cfg.NATS.URL = "nats://127.0.0.1:1"
				cfg.NATS.BroadcastEnabled = true
			},
			errMsg: "failed to connect to NATS",
		},
		{
			name: "invalid_redis_session_id",
			mutate: func(cfg *config.AppConfig) {
				cfg.Store.Backend = constants.StoreRedis
				cfg.Store.SessionID = "has spaces"
			},
			errMsg: constants.ErrInvalidSessionID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(gatewayURL)
			tt.mutate(cfg)

			_, err := New(cfg, logger)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNew_AuditSubscriber(t *testing.T) {
	gatewayURL := startStub(t)

	var mu sync.Mutex
	var indexed []string
	openSearch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(`{"name":"node-1","version":{"distribution":"opensearch","number":"2.11.0"}}`))
			return
		}
		mu.Lock()
		indexed = append(indexed, r.URL.Path+" "+string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer openSearch.Close()

	cfg := testConfig(gatewayURL)
	cfg.OpenSearch.AuditEnabled = true
	cfg.OpenSearch.URL = openSearch.URL

	logger, _ := logging.TestLogger(t)
	c, err := New(cfg, logger)
	require.NoError(t, err)
	assert.Contains(t, c.HealthService.Components(), constants.ComponentAudit)

	signIn(t, c)
	require.NoError(t, c.AuthService.SignOut(context.Background()))
	require.NoError(t, c.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, indexed, 2)
	assert.True(t, strings.HasPrefix(indexed[0], "/"+constants.DefaultAuditIndex+"/_doc/"))
	assert.Contains(t, indexed[0], constants.EventSignedIn)
	assert.Contains(t, indexed[1], constants.EventSignedOut)
}

func TestNewContainer_AppliesCLIOverrides(t *testing.T) {
	gatewayURL := startStub(t)
	t.Setenv("GATEWAY_HOST", "http://ignored.invalid")
	t.Setenv("SESSION_STORE", constants.StoreFile)

	logger, _ := logging.TestLogger(t)
	c, err := NewContainer(logger, &config.CLIConfig{
		GatewayHost: gatewayURL,
		Store:       constants.StoreMemory,
	})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, gatewayURL, c.Gateway.BaseURL())
	assert.IsType(t, &storage.MemoryStore{}, c.Store)
}

func TestContainer_CloseIsIdempotent(t *testing.T) {
	c := newTestContainer(t, testConfig(startStub(t)))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

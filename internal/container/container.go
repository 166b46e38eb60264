// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package container wires the session client from configuration.
package container

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/vetclinic/vet-session/internal/application/usecases"
	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/services"
	"github.com/vetclinic/vet-session/internal/infrastructure/audit"
	"github.com/vetclinic/vet-session/internal/infrastructure/config"
	"github.com/vetclinic/vet-session/internal/infrastructure/gateway"
	"github.com/vetclinic/vet-session/internal/infrastructure/messaging"
	"github.com/vetclinic/vet-session/internal/infrastructure/storage"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// Container holds all dependencies
type Container struct {
	// Configuration
	Config *config.AppConfig
	Logger *slog.Logger

	// Infrastructure
	Gateway     *gateway.Client
	Store       contracts.SessionStore
	Broadcaster *messaging.StateBroadcaster // nil unless broadcast is enabled
	Audit       *audit.Dispatcher           // nil unless audit is enabled

	// Services
	StateProvider *services.AuthStateProvider
	HealthService *services.HealthService

	// Use Cases
	AuthService           *usecases.AuthService
	AvatarService         *usecases.AvatarService
	ProfileService        *usecases.ProfileService
	CustomerService       *usecases.CustomerService
	CustomerAvatarService *usecases.CustomerAvatarService
	PetService            *usecases.PetService

	natsConn    *nats.Conn
	redisStore  *storage.RedisStore
	unsubscribe []func()
}

// NewContainer loads the environment configuration, applies the CLI overrides and wires everything
func NewContainer(logger *slog.Logger, cliConfig *config.CLIConfig) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cliConfig.Apply(cfg)

	return New(cfg, logger)
}

// New wires a container from an explicit configuration
func New(cfg *config.AppConfig, logger *slog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrInvalidConfig, err)
	}

	c := &Container{
		Config: cfg,
		Logger: logging.WithComponent(logger, constants.ComponentContainer),
	}

	if err := c.initializeInfrastructure(logger); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	c.initializeServices(logger)

	if err := c.initializeSubscribers(logger); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize subscribers: %w", err)
	}

	c.initializeHealth()

	c.Logger.Debug("container ready",
		"store", cfg.Store.Backend,
		"broadcast", c.Broadcaster != nil,
		"audit", c.Audit != nil,
		"health_components", c.HealthService.Components())
	return c, nil
}

// initializeInfrastructure initializes the gateway client, the NATS connection and the session store
func (c *Container) initializeInfrastructure(logger *slog.Logger) error {
	client, err := gateway.NewClient(gateway.Config{
		BaseURL: c.Config.Gateway.Host,
		Timeout: c.Config.Gateway.Timeout,
	}, logger)
	if err != nil {
		return err
	}
	c.Gateway = client

	if c.Config.NeedsNATS() {
		conn, err := messaging.Connect(c.Config.NATS.URL, logger)
		if err != nil {
			return err
		}
		c.natsConn = conn
	}

	store, err := c.newStore(logger)
	if err != nil {
		return err
	}
	c.Store = store
	return nil
}

func (c *Container) newStore(logger *slog.Logger) (contracts.SessionStore, error) {
	cfg := c.Config.Store

	switch cfg.Backend {
	case constants.StoreMemory:
		return storage.NewMemoryStore(), nil

	case constants.StoreFile:
		path := cfg.SessionFile
		if path == "" {
			var err error
			if path, err = storage.DefaultSessionPath(constants.DefaultSessionFile); err != nil {
				return nil, err
			}
		}
		return storage.NewFileStore(path, logger), nil

	case constants.StoreRedis:
		client, err := storage.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		store, err := storage.NewRedisStore(client, cfg.RedisPrefix, cfg.SessionID, cfg.RedisTTL, logger)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		c.redisStore = store
		return store, nil

	case constants.StoreNATS:
		kv, err := storage.OpenKeyValue(c.natsConn, c.Config.NATS.KVBucket, 0)
		if err != nil {
			return nil, err
		}
		return storage.NewNATSKVStore(kv, cfg.SessionID, logger)

	default:
		return nil, fmt.Errorf("invalid session store: %s", cfg.Backend)
	}
}

// initializeServices initializes the state provider and the use cases
func (c *Container) initializeServices(logger *slog.Logger) {
	c.StateProvider = services.NewAuthStateProvider(c.Store, nil, logger)

	c.AuthService = usecases.NewAuthService(c.Gateway, c.Store, c.StateProvider, c.Config.Gateway.AuthPath, logger)
	c.AvatarService = usecases.NewAvatarService(
		c.Gateway,
		c.AuthService,
		c.AuthService,
		c.Config.Gateway.EmployeePath,
		c.Config.Avatar.NoProfilePicture,
		logger,
	)
	c.ProfileService = usecases.NewProfileService(
		c.Gateway,
		c.AuthService,
		c.AuthService,
		c.Config.Gateway.EmployeePath,
		logger,
	)

	c.CustomerService = usecases.NewCustomerService(c.Gateway, c.AuthService, c.Config.Gateway.CustomerPath, logger)
	c.CustomerAvatarService = usecases.NewCustomerAvatarService(
		c.Gateway,
		c.AuthService,
		c.Config.Gateway.CustomerPath,
		c.Config.Avatar.NoProfilePicture,
		logger,
	)
	c.PetService = usecases.NewPetService(c.Gateway, c.AuthService, c.Config.Gateway.PetPath, logger)
}

// initializeSubscribers attaches the optional broadcast and audit subscribers to the state provider
func (c *Container) initializeSubscribers(logger *slog.Logger) error {
	sessionID := c.Config.Store.SessionID

	if c.Config.NATS.BroadcastEnabled {
		c.Broadcaster = messaging.NewStateBroadcaster(c.natsConn, c.Config.NATS.StateSubject, sessionID, logger)
		c.unsubscribe = append(c.unsubscribe, c.StateProvider.Subscribe(c.Broadcaster))
	}

	if c.Config.OpenSearch.AuditEnabled {
		client, err := audit.NewOpenSearchClient(c.Config.OpenSearch.URL)
		if err != nil {
			return err
		}
		sink := audit.NewOpenSearchSink(client, c.Config.OpenSearch.Index, logger)
		c.Audit = audit.NewDispatcher(sink, c.Config.OpenSearch.BufferSize, sessionID, logger)
		c.unsubscribe = append(c.unsubscribe, c.StateProvider.Subscribe(c.Audit))
	}
	return nil
}

// initializeHealth registers only the enabled components
func (c *Container) initializeHealth() {
	checkers := map[string]services.HealthChecker{
		constants.ComponentGateway: c.Gateway,
		constants.ComponentStore:   c.Store,
	}
	if c.Broadcaster != nil {
		checkers[constants.ComponentNATS] = c.Broadcaster
	}
	if c.Audit != nil {
		checkers[constants.ComponentAudit] = c.Audit
	}
	c.HealthService = services.NewHealthService(checkers, constants.HealthCheckTimeout)
}

// Close detaches subscribers, flushes the audit queue and releases connections
func (c *Container) Close() error {
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil

	c.Audit.Close()

	var errs []error
	if c.Broadcaster != nil {
		if err := c.Broadcaster.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.natsConn != nil && !c.natsConn.IsClosed() {
		c.natsConn.Close()
	}
	if c.redisStore != nil {
		if err := c.redisStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package config loads the vet-session configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/env"
)

// AppConfig represents the client configuration
type AppConfig struct {
	Gateway    GatewayConfig    `json:"gateway"`
	Avatar     AvatarConfig     `json:"avatar"`
	Store      StoreConfig      `json:"store"`
	NATS       NATSConfig       `json:"nats"`
	OpenSearch OpenSearchConfig `json:"opensearch"`
	Logging    LoggingConfig    `json:"logging"`
}

// GatewayConfig contains the remote API location
type GatewayConfig struct {
	Host         string        `json:"host"`
	Timeout      time.Duration `json:"timeout"`
	AuthPath     string        `json:"auth_path"`
	EmployeePath string        `json:"employee_path"`
	CustomerPath string        `json:"customer_path"`
	PetPath      string        `json:"pet_path"`
}

// AvatarConfig contains the fallback picture used when an avatar cannot be resolved
type AvatarConfig struct {
	NoProfilePicture string `json:"no_profile_picture"`
}

// StoreConfig selects and configures the session store backend
type StoreConfig struct {
	Backend     string        `json:"backend"`
	SessionFile string        `json:"session_file"`
	SessionID   string        `json:"session_id"`
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	RedisTTL    time.Duration `json:"redis_ttl"`
}

// NATSConfig contains NATS configuration for the KV store and state broadcast
type NATSConfig struct {
	URL              string `json:"url"`
	KVBucket         string `json:"kv_bucket"`
	StateSubject     string `json:"state_subject"`
	BroadcastEnabled bool   `json:"broadcast_enabled"`
}

// OpenSearchConfig contains the audit index configuration
type OpenSearchConfig struct {
	AuditEnabled bool   `json:"audit_enabled"`
	URL          string `json:"url"`
	Index        string `json:"index"`
	BufferSize   int    `json:"buffer_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{
		Gateway: GatewayConfig{
			Host:         env.GetString("GATEWAY_HOST", constants.DefaultGatewayHost),
			Timeout:      env.GetDuration("GATEWAY_TIMEOUT", constants.DefaultGatewayTimeout),
			AuthPath:     env.GetString("AUTH_PATH", constants.AuthorizerPathV1),
			EmployeePath: env.GetString("EMPLOYEE_PATH", constants.EmployeePathV1),
			CustomerPath: env.GetString("CUSTOMER_PATH", constants.CustomerPathV1),
			PetPath:      env.GetString("PET_PATH", constants.PetPathV1),
		},
		Avatar: AvatarConfig{
			NoProfilePicture: env.GetString("NO_PROFILE_PICTURE", ""),
		},
		Store: StoreConfig{
			Backend:     env.GetString("SESSION_STORE", constants.DefaultStoreBackend),
			SessionFile: env.GetString("SESSION_FILE", ""),
			SessionID:   env.GetString("SESSION_ID", constants.DefaultSessionID),
			RedisURL:    env.GetString("REDIS_URL", constants.DefaultRedisURL),
			RedisPrefix: env.GetString("REDIS_PREFIX", constants.DefaultRedisPrefix),
			RedisTTL:    env.GetDuration("REDIS_TTL", 0),
		},
		NATS: NATSConfig{
			URL:              env.GetString("NATS_URL", constants.DefaultNATSURL),
			KVBucket:         env.GetString("NATS_KV_BUCKET", constants.DefaultKVBucket),
			StateSubject:     env.GetString("NATS_STATE_SUBJECT", constants.DefaultStateSubject),
			BroadcastEnabled: env.GetBool("BROADCAST_ENABLED", false),
		},
		OpenSearch: OpenSearchConfig{
			AuditEnabled: env.GetBool("AUDIT_ENABLED", false),
			URL:          env.GetString("OPENSEARCH_URL", constants.DefaultOpenSearchURL),
			Index:        env.GetString("OPENSEARCH_INDEX", constants.DefaultAuditIndex),
			BufferSize:   env.GetInt("AUDIT_BUFFER", constants.DefaultAuditBuffer),
		},
		Logging: LoggingConfig{
			Level:  env.GetString("LOG_LEVEL", constants.DefaultLogLevel),
			Format: env.GetString("LOG_FORMAT", constants.DefaultLogFormat),
		},
	}

	return config, nil
}

// NeedsNATS reports whether any enabled component talks to NATS
func (c *AppConfig) NeedsNATS() bool {
	return c.Store.Backend == constants.StoreNATS || c.NATS.BroadcastEnabled
}

// Validate validates the configuration
func (c *AppConfig) Validate() error {
	if err := validateURL("gateway host", c.Gateway.Host, "http", "https"); err != nil {
		return err
	}

	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive: %s", c.Gateway.Timeout)
	}

	if c.Gateway.AuthPath == "" || c.Gateway.EmployeePath == "" || c.Gateway.CustomerPath == "" || c.Gateway.PetPath == "" {
		return fmt.Errorf("gateway API paths are required")
	}

	validBackends := []string{constants.StoreMemory, constants.StoreFile, constants.StoreRedis, constants.StoreNATS}
	if !slices.Contains(validBackends, c.Store.Backend) {
		return fmt.Errorf("invalid session store: %s", c.Store.Backend)
	}

	if c.Store.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	if c.Store.Backend == constants.StoreRedis {
		if err := validateURL("redis URL", c.Store.RedisURL, "redis", "rediss"); err != nil {
			return err
		}
		if c.Store.RedisTTL < 0 {
			return fmt.Errorf("redis ttl must not be negative: %s", c.Store.RedisTTL)
		}
	}

	if c.NeedsNATS() {
		if c.NATS.URL == "" {
			return fmt.Errorf("NATS URL is required")
		}
		if c.Store.Backend == constants.StoreNATS && c.NATS.KVBucket == "" {
			return fmt.Errorf("NATS KV bucket is required")
		}
		if c.NATS.BroadcastEnabled && c.NATS.StateSubject == "" {
			return fmt.Errorf("NATS state subject is required")
		}
	}

	if c.OpenSearch.AuditEnabled {
		if err := validateURL("OpenSearch URL", c.OpenSearch.URL, "http", "https"); err != nil {
			return err
		}
		if c.OpenSearch.Index == "" {
			return fmt.Errorf("OpenSearch index is required")
		}
		if c.OpenSearch.BufferSize <= 0 {
			return fmt.Errorf("audit buffer must be positive: %d", c.OpenSearch.BufferSize)
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func validateURL(name, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if !slices.Contains(schemes, u.Scheme) || u.Host == "" {
		return fmt.Errorf("invalid %s: %s", name, raw)
	}
	return nil
}

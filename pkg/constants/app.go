// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package constants provides shared constants used throughout the vet-session client.
package constants

import "time"

// Client identity
const (
	ServiceName    = "vet-session"
	ServiceVersion = "1.0.0"
	UserAgent      = ServiceName + "/" + ServiceVersion
)

// API path prefixes on the gateway
const (
	AuthorizerPathV1 = "/api/veterinary-authorizer/v1"
	EmployeePathV1   = "/api/veterinary-employee/v1"
	CustomerPathV1   = "/api/veterinary-customer/v1"
	PetPathV1        = "/api/veterinary-pet/v1"
)

// Default configuration values
const (
	DefaultGatewayHost    = "http://localhost:9001"
	DefaultGatewayTimeout = 15 * time.Second
	DefaultStoreBackend   = "file"
	DefaultSessionFile    = "session.json"
	DefaultSessionID      = "default"
	DefaultRedisURL       = "redis://localhost:6379/0"
	DefaultRedisPrefix    = "vet-session"
	DefaultNATSURL        = "nats://localhost:4222"
	DefaultKVBucket       = "vet_sessions"
	DefaultOpenSearchURL  = "http://localhost:9200"
	DefaultAuditIndex     = "vet-session-events"
	DefaultAuditBuffer    = 64
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "text"
	DefaultStubAddr       = "127.0.0.1:9001"
)

// Session store backends
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreNATS   = "nats"
)

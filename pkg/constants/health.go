// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Components (logger fields and health reports)
const (
	ComponentGateway     = "gateway"
	ComponentStore       = "session_store"
	ComponentNATS        = "nats"
	ComponentOpenSearch  = "opensearch"
	ComponentAudit       = "audit"
	ComponentAuthState   = "auth_state"
	ComponentAuthService = "auth_service"
	ComponentAvatar      = "avatar_service"
	ComponentProfile     = "profile_service"
	ComponentCustomer    = "customer_service"
	ComponentPet         = "pet_service"
	ComponentContainer   = "container"
	ComponentStub        = "gateway_stub"
)

// HealthCheckTimeout bounds every dependency check
const HealthCheckTimeout = 5 * time.Second

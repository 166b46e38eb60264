// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package contracts defines the interfaces of the domain layer of the vet-session client.
package contracts

import (
	"context"

	"github.com/vetclinic/vet-session/internal/domain/entities"
)

// EventHandler handles a session event received from the broadcast channel
type EventHandler func(ctx context.Context, event entities.SessionEvent) error

// EventBroadcaster publishes and listens to session events across processes
type EventBroadcaster interface {
	// Publish sends a session event on the state subject
	Publish(ctx context.Context, event entities.SessionEvent) error

	// Listen delivers decoded events to handler until ctx is done
	Listen(ctx context.Context, handler EventHandler) error

	// HealthCheck checks the health of the broker connection
	HealthCheck(ctx context.Context) error

	// Close releases the broker connection
	Close() error
}

// EventSink persists session events for auditing
type EventSink interface {
	// Write stores one event
	Write(ctx context.Context, event entities.SessionEvent) error

	// HealthCheck checks the health of the sink backend
	HealthCheck(ctx context.Context) error
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package contracts

import (
	"context"

	"github.com/vetclinic/vet-session/internal/domain/entities"
)

// AuthStateNotifier is the capability the session coordinator needs from the state publisher
type AuthStateNotifier interface {
	// MarkAuthenticated publishes an authenticated state carrying a single name claim
	MarkAuthenticated(ctx context.Context, identifier string)

	// MarkLoggedOut publishes the anonymous state
	MarkLoggedOut(ctx context.Context)
}

// AuthStateReader is the pull side of the state publisher
type AuthStateReader interface {
	// GetAuthenticationState derives the state from the stored token
	GetAuthenticationState(ctx context.Context) (entities.AuthenticationState, error)

	// Current returns the held state without touching the store
	Current() entities.AuthenticationState
}

// StateSubscriber receives every published state change
type StateSubscriber interface {
	OnStateChanged(ctx context.Context, state entities.AuthenticationState)
}

// StateSubscriberFunc adapts a function to StateSubscriber
type StateSubscriberFunc func(ctx context.Context, state entities.AuthenticationState)

// OnStateChanged calls f
func (f StateSubscriberFunc) OnStateChanged(ctx context.Context, state entities.AuthenticationState) {
	f(ctx, state)
}

// TokenSource supplies the bearer credential for authenticated gateway calls
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ArtifactWriter records session artifacts (display name, avatar path)
type ArtifactWriter interface {
	SaveArtifact(ctx context.Context, key, value string) error
}

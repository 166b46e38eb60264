// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// AuthStateProvider holds the current principal and notifies subscribers when it changes.
// It is the single source of truth for the session identity.
type AuthStateProvider struct {
	store     contracts.SessionStore
	extractor *ClaimsExtractor
	logger    *slog.Logger

	mu    sync.RWMutex
	state entities.AuthenticationState

	subMu       sync.Mutex
	subscribers []*subscription
}

var (
	_ contracts.AuthStateNotifier = (*AuthStateProvider)(nil)
	_ contracts.AuthStateReader   = (*AuthStateProvider)(nil)
)

type subscription struct {
	subscriber contracts.StateSubscriber
}

// NewAuthStateProvider creates a provider holding the anonymous state
func NewAuthStateProvider(store contracts.SessionStore, extractor *ClaimsExtractor, logger *slog.Logger) *AuthStateProvider {
	if extractor == nil {
		extractor = NewClaimsExtractor()
	}
	return &AuthStateProvider{
		store:     store,
		extractor: extractor,
		logger:    logging.WithComponent(logger, constants.ComponentAuthState),
		state:     entities.AnonymousState(),
	}
}

// GetAuthenticationState derives the state from the stored token and makes it the held state.
// A malformed token is returned as an error, never downgraded to anonymous. Subscribers are not notified.
func (p *AuthStateProvider) GetAuthenticationState(ctx context.Context) (entities.AuthenticationState, error) {
	token, found, err := p.store.Get(ctx, constants.StoreKeyToken)
	if err != nil {
		return entities.AuthenticationState{}, fmt.Errorf("%s: %w", constants.ErrReadStore, err)
	}

	if !found || token == "" {
		state := entities.AnonymousState()
		p.swap(state)
		return state, nil
	}

	claims, err := p.extractor.Extract(token)
	if err != nil {
		logging.FromContext(ctx, p.logger).Debug("stored token could not be parsed",
			"token", logging.SafeTokenLog(token),
			"error", err.Error())
		return entities.AuthenticationState{}, err
	}

	state := entities.NewAuthenticationState(entities.NewPrincipal(claims, constants.AuthTypeJWT))
	p.swap(state)
	return state, nil
}

// Current returns the held state
func (p *AuthStateProvider) Current() entities.AuthenticationState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// MarkAuthenticated publishes a principal with a single name claim. The store is not touched.
func (p *AuthStateProvider) MarkAuthenticated(ctx context.Context, identifier string) {
	principal := entities.NewPrincipal(
		[]entities.Claim{{Type: constants.ClaimTypeName, Value: identifier}},
		constants.AuthTypeAPI,
	)
	p.publish(ctx, entities.NewAuthenticationState(principal))
}

// MarkLoggedOut publishes the anonymous state. The store is not touched.
func (p *AuthStateProvider) MarkLoggedOut(ctx context.Context) {
	p.publish(ctx, entities.AnonymousState())
}

// Subscribe registers a subscriber and returns a function removing it
func (p *AuthStateProvider) Subscribe(subscriber contracts.StateSubscriber) func() {
	sub := &subscription{subscriber: subscriber}

	p.subMu.Lock()
	p.subscribers = append(p.subscribers, sub)
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			defer p.subMu.Unlock()
			for i, s := range p.subscribers {
				if s == sub {
					p.subscribers = append(p.subscribers[:i:i], p.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscriberCount returns the number of registered subscribers
func (p *AuthStateProvider) SubscriberCount() int {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	return len(p.subscribers)
}

func (p *AuthStateProvider) swap(state entities.AuthenticationState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// publish swaps the state, then runs every subscriber in registration order before returning
func (p *AuthStateProvider) publish(ctx context.Context, state entities.AuthenticationState) {
	p.swap(state)

	p.subMu.Lock()
	snapshot := make([]*subscription, len(p.subscribers))
	copy(snapshot, p.subscribers)
	p.subMu.Unlock()

	logger := logging.FromContext(ctx, p.logger)
	logger.Debug("authentication state changed",
		"authenticated", state.User.IsAuthenticated(),
		"authentication_type", state.User.AuthenticationType(),
		"subscribers", len(snapshot))

	for i, sub := range snapshot {
		p.notify(ctx, logger, i, sub.subscriber, state)
	}
}

func (p *AuthStateProvider) notify(ctx context.Context, logger *slog.Logger, index int, subscriber contracts.StateSubscriber, state entities.AuthenticationState) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("state subscriber panicked",
				"subscriber_index", index,
				"panic", fmt.Sprint(r))
		}
	}()
	subscriber.OnStateChanged(ctx, state)
}

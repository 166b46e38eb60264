// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package mocks provides test doubles for the domain contracts.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
)

var (
	_ contracts.SessionStore      = (*MockSessionStore)(nil)
	_ contracts.AuthStateNotifier = (*MockStateNotifier)(nil)
	_ contracts.TokenSource       = (*MockTokenSource)(nil)
	_ contracts.ArtifactWriter    = (*MockArtifactWriter)(nil)
	_ contracts.EventSink         = (*MockEventSink)(nil)
)

// MockSessionStore implements contracts.SessionStore with an in-memory map and injectable errors
type MockSessionStore struct {
	mu sync.RWMutex

	// Mock state
	Values map[string]string

	// Mock responses
	GetError    error
	SetError    error
	HealthError error
	// RemoveErrors fails Remove for specific keys only
	RemoveErrors map[string]error

	// Call tracking
	GetCalls    []string
	SetCalls    []SetCall
	RemoveCalls []string
}

// SetCall records one Set invocation
type SetCall struct {
	Key   string
	Value string
}

// NewMockSessionStore creates an empty mock store
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		Values:       make(map[string]string),
		RemoveErrors: make(map[string]error),
	}
}

// Get implements contracts.SessionStore
func (m *MockSessionStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetError != nil {
		return "", false, m.GetError
	}
	v, ok := m.Values[key]
	return v, ok, nil
}

// Set implements contracts.SessionStore
func (m *MockSessionStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value})
	if m.SetError != nil {
		return m.SetError
	}
	m.Values[key] = value
	return nil
}

// Remove implements contracts.SessionStore
func (m *MockSessionStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RemoveCalls = append(m.RemoveCalls, key)
	if err := m.RemoveErrors[key]; err != nil {
		return err
	}
	delete(m.Values, key)
	return nil
}

// HealthCheck implements contracts.SessionStore
func (m *MockSessionStore) HealthCheck(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.HealthError
}

// Has reports whether key is currently stored
func (m *MockSessionStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.Values[key]
	return ok
}

// GetSetCalls returns a copy of the recorded Set calls
func (m *MockSessionStore) GetSetCalls() []SetCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]SetCall, len(m.SetCalls))
	copy(calls, m.SetCalls)
	return calls
}

// GetRemoveCalls returns a copy of the recorded Remove calls
func (m *MockSessionStore) GetRemoveCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]string, len(m.RemoveCalls))
	copy(calls, m.RemoveCalls)
	return calls
}

// MockStateNotifier implements contracts.AuthStateNotifier using testify mock
type MockStateNotifier struct {
	mock.Mock
}

// MarkAuthenticated implements contracts.AuthStateNotifier
func (m *MockStateNotifier) MarkAuthenticated(ctx context.Context, identifier string) {
	m.Called(ctx, identifier)
}

// MarkLoggedOut implements contracts.AuthStateNotifier
func (m *MockStateNotifier) MarkLoggedOut(ctx context.Context) {
	m.Called(ctx)
}

// MockTokenSource implements contracts.TokenSource
type MockTokenSource struct {
	TokenValue string
	Err        error
}

// Token implements contracts.TokenSource
func (m *MockTokenSource) Token(_ context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.TokenValue == "" {
		return "", entities.ErrNoSession
	}
	return m.TokenValue, nil
}

// MockArtifactWriter implements contracts.ArtifactWriter using testify mock
type MockArtifactWriter struct {
	mock.Mock
}

// SaveArtifact implements contracts.ArtifactWriter
func (m *MockArtifactWriter) SaveArtifact(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockEventSink implements contracts.EventSink and records written events
type MockEventSink struct {
	mu sync.Mutex

	Events      []entities.SessionEvent
	WriteError  error
	HealthError error

	// Block, when set, is received from before each write completes
	Block chan struct{}
}

// Write implements contracts.EventSink
func (m *MockEventSink) Write(ctx context.Context, event entities.SessionEvent) error {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Events = append(m.Events, event)
	return nil
}

// HealthCheck implements contracts.EventSink
func (m *MockEventSink) HealthCheck(_ context.Context) error {
	return m.HealthError
}

// GetEvents returns a copy of the written events
func (m *MockEventSink) GetEvents() []entities.SessionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]entities.SessionEvent, len(m.Events))
	copy(events, m.Events)
	return events
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package usecases orchestrates session operations against the remote gateway.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/infrastructure/gateway"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// AuthService coordinates sign-in, sign-up and sign-out with the session store and the state publisher.
// It is the only writer of the token and the session artifacts.
type AuthService struct {
	client   *gateway.Client
	store    contracts.SessionStore
	notifier contracts.AuthStateNotifier
	authPath string
	logger   *slog.Logger

	mu     sync.RWMutex
	bearer string
}

// NewAuthService creates a coordinator using authPath as the authorizer API prefix
func NewAuthService(
	client *gateway.Client,
	store contracts.SessionStore,
	notifier contracts.AuthStateNotifier,
	authPath string,
	logger *slog.Logger,
) *AuthService {
	if authPath == "" {
		authPath = constants.AuthorizerPathV1
	}
	return &AuthService{
		client:   client,
		store:    store,
		notifier: notifier,
		authPath: strings.TrimSuffix(authPath, "/"),
		logger:   logging.WithComponent(logger, constants.ComponentAuthService),
	}
}

// SignIn exchanges credentials for a token. On a non-success status nothing is stored.
// A successful sign-in replaces the token and drops the name and avatar
// artifacts left by the previous session.
func (s *AuthService) SignIn(ctx context.Context, creds entities.Credentials) (*entities.MessageResponse, error) {
	logger := logging.WithOperation(logging.FromContext(ctx, s.logger), "sign_in")
	identity := logging.SafePrincipalLog(creds.Identifier())

	req, err := s.client.NewJSONRequest(ctx, http.MethodPost, s.authPath+constants.SignInEndpoint, creds, "")
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if !gateway.IsSuccess(resp.StatusCode) {
		err := gateway.StatusError(resp, "sign-in")
		logger.Warn("sign-in rejected", "identity", identity, "status", resp.StatusCode)
		return nil, err
	}

	var out entities.MessageResponse
	if err := gateway.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(out.Message)
	if token == "" {
		return nil, errors.New(constants.ErrEmptyToken)
	}

	if err := s.store.Set(ctx, constants.StoreKeyToken, token); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrWriteStore, err)
	}
	s.dropArtifacts(ctx, logger)

	s.notifier.MarkAuthenticated(ctx, creds.Identifier())
	s.setBearer(token)

	logger.Info("signed in", "identity", identity, "token", logging.SafeTokenLog(token))
	return &out, nil
}

// dropArtifacts clears name and avatar. Failures are logged only: the new
// token is already stored.
func (s *AuthService) dropArtifacts(ctx context.Context, logger *slog.Logger) {
	for _, key := range []string{constants.StoreKeyName, constants.StoreKeyAvatar} {
		if err := s.store.Remove(ctx, key); err != nil {
			logger.Warn("stale session artifact not removed", "key", key, "error", err.Error())
		}
	}
}

// SignUpEmployee creates an employee account on behalf of the signed-in actor.
// Local session state is left unchanged.
func (s *AuthService) SignUpEmployee(ctx context.Context, creds entities.Credentials) (*entities.MessageResponse, error) {
	logger := logging.WithOperation(logging.FromContext(ctx, s.logger), "sign_up")

	token, err := s.storedToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.client.NewJSONRequest(ctx, http.MethodPost, s.authPath+constants.SignUpEmployeeEndpoint, creds, token)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if !gateway.IsSuccess(resp.StatusCode) {
		err := gateway.StatusError(resp, "sign-up")
		logger.Warn("sign-up rejected", "identity", logging.SafePrincipalLog(creds.Identifier()), "status", resp.StatusCode)
		return nil, err
	}

	var out entities.MessageResponse
	if err := gateway.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut clears the local session and then tells the gateway with the removed token.
// Local logout always completes; the gateway outcome is only logged.
// Store failures are returned joined after the local logout.
func (s *AuthService) SignOut(ctx context.Context) error {
	logger := logging.WithOperation(logging.FromContext(ctx, s.logger), "sign_out")

	var errs []error

	token, _, err := s.store.Get(ctx, constants.StoreKeyToken)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", constants.ErrReadStore, err))
	}
	if token == "" {
		token = s.heldBearer()
	}

	for _, key := range constants.SessionKeys {
		if err := s.store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", constants.ErrRemoveStore, key, err))
		}
	}

	s.setBearer("")
	s.notifier.MarkLoggedOut(ctx)

	s.notifySignOut(ctx, logger, token)

	if len(errs) > 0 {
		logger.Error("local session not fully cleared", "errors", len(errs))
	}
	return errors.Join(errs...)
}

func (s *AuthService) notifySignOut(ctx context.Context, logger *slog.Logger, token string) {
	req, err := s.client.NewJSONRequest(ctx, http.MethodPost, s.authPath+constants.SignOutEndpoint, nil, token)
	if err != nil {
		logger.Warn("sign-out request not built", "error", err.Error())
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn("gateway sign-out failed", "error", err.Error())
		return
	}
	defer gateway.Drain(resp)

	if !gateway.IsSuccess(resp.StatusCode) {
		logger.Warn("gateway sign-out rejected", "status", resp.StatusCode)
		return
	}
	logger.Info("signed out", "token", logging.SafeTokenLog(token))
}

// Token implements contracts.TokenSource: the held credential, else the stored token.
// The held credential wins over the store, so a sign-out by another process
// sharing a redis or nats store is not seen until this instance signs out.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	if token := s.heldBearer(); token != "" {
		return token, nil
	}
	return s.storedToken(ctx)
}

// SaveArtifact implements contracts.ArtifactWriter for the name and avatar keys
func (s *AuthService) SaveArtifact(ctx context.Context, key, value string) error {
	if key != constants.StoreKeyName && key != constants.StoreKeyAvatar {
		return fmt.Errorf("%w: %s", entities.ErrUnknownArtifact, key)
	}
	if err := s.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("%s: %s: %w", constants.ErrWriteStore, key, err)
	}
	return nil
}

// Artifacts returns the stored session artifacts that are present
func (s *AuthService) Artifacts(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, 2)
	for _, key := range []string{constants.StoreKeyName, constants.StoreKeyAvatar} {
		v, found, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", constants.ErrReadStore, key, err)
		}
		if found {
			out[key] = v
		}
	}
	return out, nil
}

func (s *AuthService) storedToken(ctx context.Context) (string, error) {
	token, found, err := s.store.Get(ctx, constants.StoreKeyToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", constants.ErrReadStore, err)
	}
	if !found || token == "" {
		return "", entities.ErrNoSession
	}
	return token, nil
}

func (s *AuthService) setBearer(token string) {
	s.mu.Lock()
	s.bearer = token
	s.mu.Unlock()
}

func (s *AuthService) heldBearer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bearer
}

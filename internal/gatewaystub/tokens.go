// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package gatewaystub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

var (
	errTokenRevoked = errors.New("token revoked")
	errEmptyBearer  = errors.New("empty bearer token")
)

// roleList accepts a role claim encoded either as one string or as an array
type roleList []string

func (r *roleList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = roleList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("role claim: %w", err)
	}
	*r = many
	return nil
}

// StubClaims are the custom claims the stub puts in every token
type StubClaims struct {
	Name string   `json:"name"`
	Role roleList `json:"role"`
}

// Validate rejects tokens without a name claim
func (c *StubClaims) Validate(_ context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("token has no name claim")
	}
	return nil
}

// Identity is the validated caller of a stub request
type Identity struct {
	EmployeeID string
	Name       string
	Roles      []string
	TokenID    string
}

// HasRole reports whether the identity carries role
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenAuthority mints HS256 tokens and validates bearer tokens presented back to the stub
type TokenAuthority struct {
	secret    []byte
	issuer    string
	audience  string
	ttl       time.Duration
	validator *validator.Validator
	logger    *slog.Logger

	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewTokenAuthority creates the authority with a shared HMAC secret
func NewTokenAuthority(secret []byte, issuer, audience string, ttl time.Duration, logger *slog.Logger) (*TokenAuthority, error) {
	authLogger := logging.WithComponent(logger, constants.ComponentStub)

	if len(secret) == 0 {
		return nil, errors.New("token secret required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	keyFunc := func(context.Context) (interface{}, error) {
		return secret, nil
	}

	customClaims := func() validator.CustomClaims {
		return &StubClaims{}
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(customClaims),
		validator.WithAllowedClockSkew(30*time.Second),
	)
	if err != nil {
		authLogger.Error("Failed to create JWT validator", "error", err.Error())
		return nil, fmt.Errorf("failed to create JWT validator: %w", err)
	}

	return &TokenAuthority{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		validator: jwtValidator,
		logger:    authLogger,
		revoked:   make(map[string]time.Time),
	}, nil
}

// Mint issues a token for an employee. A single role is encoded as a string, several as an array.
func (a *TokenAuthority) Mint(employeeID, name string, roles []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  a.issuer,
		"aud":  []string{a.audience},
		"sub":  employeeID,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(a.ttl).Unix(),
		"name": name,
	}
	switch len(roles) {
	case 0:
	case 1:
		claims[constants.ClaimTypeRole] = roles[0]
	default:
		claims[constants.ClaimTypeRole] = roles
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks an Authorization header value and returns the caller
func (a *TokenAuthority) Validate(ctx context.Context, bearer string) (*Identity, error) {
	token := strings.TrimSpace(bearer)
	if len(token) > len(constants.BearerPrefix) && strings.ToLower(token[:len(constants.BearerPrefix)]) == constants.BearerPrefix {
		token = strings.TrimSpace(token[len(constants.BearerPrefix):])
	}
	if token == "" {
		return nil, errEmptyBearer
	}

	validated, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		a.logger.Debug("Token validation failed", "token", logging.SafeTokenLog(token), "error", err.Error())
		return nil, err
	}

	claims, ok := validated.(*validator.ValidatedClaims)
	if !ok {
		return nil, errors.New("unexpected validated claims type")
	}
	custom, ok := claims.CustomClaims.(*StubClaims)
	if !ok {
		return nil, errors.New("unexpected custom claims type")
	}

	if a.isRevoked(claims.RegisteredClaims.ID) {
		return nil, errTokenRevoked
	}

	return &Identity{
		EmployeeID: claims.RegisteredClaims.Subject,
		Name:       custom.Name,
		Roles:      []string(custom.Role),
		TokenID:    claims.RegisteredClaims.ID,
	}, nil
}

// Revoke invalidates a token id until its natural expiry
func (a *TokenAuthority) Revoke(tokenID string) {
	if tokenID == "" {
		return
	}
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()
	for id, expiry := range a.revoked {
		if now.After(expiry) {
			delete(a.revoked, id)
		}
	}
	a.revoked[tokenID] = now.Add(a.ttl)
}

func (a *TokenAuthority) isRevoked(tokenID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.revoked[tokenID]
	return ok
}

// HealthCheck mints and validates a throwaway token
func (a *TokenAuthority) HealthCheck(ctx context.Context) error {
	token, err := a.Mint("health", "health", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	if _, err := a.Validate(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	return nil
}

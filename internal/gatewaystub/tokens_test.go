// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package gatewaystub

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/domain/services"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

func newTestAuthority(t *testing.T, secret string) *TokenAuthority {
	t.Helper()
	logger, _ := logging.TestLogger(t)
	authority, err := NewTokenAuthority([]byte(secret), "test-issuer", "test-audience", time.Hour, logger)
	require.NoError(t, err)
	return authority
}

func TestNewTokenAuthority_RequiresSecret(t *testing.T) {
	logger, _ := logging.TestLogger(t)
	_, err := NewTokenAuthority(nil, "iss", "aud", time.Hour, logger)
	assert.Error(t, err)
}

func TestTokenAuthority_MintAndValidate(t *testing.T) {
	authority := newTestAuthority(t, "secret")
	ctx := context.Background()

	t.Run("multiple_roles", func(t *testing.T) {
		token, err := authority.Mint("E-1", "Ana Pérez", []string{"admin", "vet"})
		require.NoError(t, err)

		identity, err := authority.Validate(ctx, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "E-1", identity.EmployeeID)
		assert.Equal(t, "Ana Pérez", identity.Name)
		assert.Equal(t, []string{"admin", "vet"}, identity.Roles)
		assert.NotEmpty(t, identity.TokenID)
		assert.True(t, identity.HasRole("admin"))
	})

	t.Run("single_role_is_a_string_claim", func(t *testing.T) {
		token, err := authority.Mint("E-2", "Luis", []string{"vet"})
		require.NoError(t, err)

		parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
		require.NoError(t, err)
		assert.Equal(t, "vet", parsed.Claims.(jwt.MapClaims)["role"])

		identity, err := authority.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, []string{"vet"}, identity.Roles)
	})

	t.Run("foreign_secret_is_rejected", func(t *testing.T) {
		token, err := newTestAuthority(t, "other").Mint("E-1", "Ana", nil)
		require.NoError(t, err)

		_, err = authority.Validate(ctx, token)
		assert.Error(t, err)
	})

	t.Run("empty_bearer_is_rejected", func(t *testing.T) {
		_, err := authority.Validate(ctx, "Bearer ")
		assert.ErrorIs(t, err, errEmptyBearer)
	})

	t.Run("nameless_token_is_rejected", func(t *testing.T) {
		token, err := authority.Mint("E-1", "", nil)
		require.NoError(t, err)

		_, err = authority.Validate(ctx, token)
		assert.Error(t, err)
	})

	t.Run("revoked_token_is_rejected", func(t *testing.T) {
		token, err := authority.Mint("E-1", "Ana", nil)
		require.NoError(t, err)
		identity, err := authority.Validate(ctx, token)
		require.NoError(t, err)

		authority.Revoke(identity.TokenID)

		_, err = authority.Validate(ctx, token)
		assert.ErrorIs(t, err, errTokenRevoked)
	})
}

func TestTokenAuthority_TokensReadBackThroughClaimsExtractor(t *testing.T) {
	authority := newTestAuthority(t, "secret")
	token, err := authority.Mint("E-1", "Ana", []string{"admin", "vet"})
	require.NoError(t, err)

	claims, err := services.NewClaimsExtractor().Extract(token)
	require.NoError(t, err)

	principal := entities.NewPrincipal(claims, constants.AuthTypeJWT)
	assert.Equal(t, []string{"admin", "vet"}, principal.Roles())
	assert.Equal(t, "Ana", principal.Name())
}

func TestTokenAuthority_HealthCheck(t *testing.T) {
	assert.NoError(t, newTestAuthority(t, "secret").HealthCheck(context.Background()))
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/domain/entities"
)

func TestNewSessionEvent(t *testing.T) {
	t.Run("signed_in_masks_identity", func(t *testing.T) {
		principal := entities.NewPrincipal([]entities.Claim{
			{Type: "name", Value: "dummy@example.com"},
			{Type: "role", Value: "vet"},
		}, "apiauth")

		event := NewSessionEvent(entities.NewAuthenticationState(principal), "default")

		_, err := uuid.Parse(event.ID)
		require.NoError(t, err)
		assert.Equal(t, "signed_in", event.Type)
		assert.Equal(t, "default", event.SessionID)
		assert.True(t, event.Authenticated)
		assert.Equal(t, "apiauth", event.AuthenticationType)
		assert.Equal(t, "dummy@***", event.Identity)
		assert.Equal(t, []string{"vet"}, event.Roles)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("signed_out", func(t *testing.T) {
		event := NewSessionEvent(entities.AnonymousState(), "default")
		assert.Equal(t, "signed_out", event.Type)
		assert.False(t, event.Authenticated)
		assert.Empty(t, event.Identity)
		assert.Empty(t, event.Roles)
	})

	t.Run("unique_ids", func(t *testing.T) {
		a := NewSessionEvent(entities.AnonymousState(), "")
		b := NewSessionEvent(entities.AnonymousState(), "")
		assert.NotEqual(t, a.ID, b.ID)
	})
}

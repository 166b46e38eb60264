// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// NewSessionEvent describes a published state change. The identity is masked.
func NewSessionEvent(state entities.AuthenticationState, sessionID string) entities.SessionEvent {
	event := entities.SessionEvent{
		ID:                 uuid.NewString(),
		Type:               constants.EventSignedOut,
		SessionID:          sessionID,
		Authenticated:      state.User.IsAuthenticated(),
		AuthenticationType: state.User.AuthenticationType(),
		Timestamp:          time.Now().UTC(),
	}
	if event.Authenticated {
		event.Type = constants.EventSignedIn
		event.Identity = logging.SafePrincipalLog(state.User.Name())
		event.Roles = state.User.Roles()
	}
	return event
}

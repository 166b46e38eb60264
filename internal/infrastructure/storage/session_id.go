// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package storage

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/vetclinic/vet-session/pkg/constants"
)

// session IDs must be valid inside Redis keys and NATS KV keys
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateSessionID rejects IDs that cannot be embedded in backend keys
func ValidateSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%s: %q", constants.ErrInvalidSessionID, id)
	}
	return nil
}

// NewSessionID returns a random session ID
func NewSessionID() string {
	return uuid.NewString()
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package services contains the token-derived authentication state engine.
package services

import (
	"encoding/base64"

	"github.com/vetclinic/vet-session/internal/domain/entities"
)

// DecodeSegment decodes an unpadded base64url token segment.
// Remainder 2 gets "==", remainder 3 gets "=", remainders 0 and 1 are decoded as given.
func DecodeSegment(segment string) ([]byte, error) {
	switch len(segment) % 4 {
	case 2:
		segment += "=="
	case 3:
		segment += "="
	}

	decoded, err := base64.URLEncoding.DecodeString(segment)
	if err != nil {
		return nil, &entities.DecodeError{Err: err}
	}
	return decoded, nil
}

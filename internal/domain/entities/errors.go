// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package entities

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vetclinic/vet-session/pkg/constants"
)

// ErrNoSession is returned when an operation needs a stored token and none exists
var ErrNoSession = errors.New(constants.ErrNoSession)

// ErrUnknownArtifact is returned when writing a store key that is not a session artifact
var ErrUnknownArtifact = errors.New(constants.ErrUnknownArtifact)

// AuthFailureError represents a non-success HTTP status from the gateway
type AuthFailureError struct {
	StatusCode int
	Operation  string
	Message    string
}

func (e *AuthFailureError) Error() string {
	msg := fmt.Sprintf("%s: %s returned status %d (%s)", constants.ErrAuthFailure, e.Operation, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsAuthFailure reports whether err is an AuthFailureError, returning it
func IsAuthFailure(err error) (*AuthFailureError, bool) {
	var failure *AuthFailureError
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}

// DecodeError is returned when a base64url segment cannot be decoded
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", constants.ErrDecodeSegment, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MalformedTokenError is returned when a token cannot be turned into claims
type MalformedTokenError struct {
	Reason string
	Err    error
}

func (e *MalformedTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", constants.ErrMalformedToken, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", constants.ErrMalformedToken, e.Reason)
}

func (e *MalformedTokenError) Unwrap() error {
	return e.Err
}

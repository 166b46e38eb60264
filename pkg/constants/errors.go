// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Error messages (centralized from scattered string literals)
const (
	ErrMalformedToken   = "malformed token"
	ErrDecodeSegment    = "failed to decode base64url segment"
	ErrAuthFailure      = "authentication request failed"
	ErrNoSession        = "no active session"
	ErrUnknownArtifact  = "unknown session artifact"
	ErrEmptyToken       = "gateway returned an empty token"
	ErrReadStore        = "failed to read session store"
	ErrWriteStore       = "failed to write session store"
	ErrRemoveStore      = "failed to remove session key"
	ErrBuildRequest     = "failed to build gateway request"
	ErrSendRequest      = "gateway request failed"
	ErrDecodeResponse   = "failed to decode gateway response"
	ErrMarshalPayload   = "failed to marshal request payload"
	ErrHealthCheck      = "health check failed"
	ErrStoreUnavailable = "session store unavailable"
	ErrPublishEvent     = "failed to publish session event"
	ErrIndexEvent       = "failed to index session event"
	ErrInvalidSessionID = "invalid session id"
	ErrInvalidConfig    = "invalid configuration"
)

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package contracts

import (
	"context"
)

// SessionStore is the persistent key/value medium holding the token and session artifacts.
// Set on an existing key overwrites it; Remove of a missing key is not an error.
type SessionStore interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key
	Set(ctx context.Context, key, value string) error

	// Remove deletes key
	Remove(ctx context.Context, key string) error

	// HealthCheck verifies the backing medium is reachable
	HealthCheck(ctx context.Context) error
}

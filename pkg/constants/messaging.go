// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

import "time"

// NATS subjects
const (
	StateSubjectPrefix  = "vet.session.state."
	DefaultStateSubject = StateSubjectPrefix + "changed"
)

// Session event types
const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// Messaging timeouts
const (
	NATSConnectTimeout = 5 * time.Second
	NATSDrainTimeout   = 5 * time.Second
	NATSMaxReconnects  = 5
	NATSReconnectWait  = 2 * time.Second
)

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package entities holds the value types shared by the session layer.
package entities

import (
	"fmt"

	"github.com/vetclinic/vet-session/pkg/constants"
)

// Claim is a named attribute asserted about the principal
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// String returns the claim as type=value
func (c Claim) String() string {
	return fmt.Sprintf("%s=%s", c.Type, c.Value)
}

// Principal is the identity derived from one token payload, or the anonymous identity.
// A Principal is immutable once constructed.
type Principal struct {
	claims   []Claim
	authType string
}

// NewPrincipal builds an authenticated principal. An empty authType yields an anonymous principal
// regardless of claims, so anonymous principals always carry an empty claim set.
func NewPrincipal(claims []Claim, authType string) Principal {
	if authType == constants.AuthTypeAnonymous {
		return AnonymousPrincipal()
	}
	copied := make([]Claim, len(claims))
	copy(copied, claims)
	return Principal{claims: copied, authType: authType}
}

// AnonymousPrincipal returns the unauthenticated principal
func AnonymousPrincipal() Principal {
	return Principal{}
}

// IsAuthenticated reports whether the principal carries an identity label
func (p Principal) IsAuthenticated() bool {
	return p.authType != constants.AuthTypeAnonymous
}

// AuthenticationType returns "jwt", "apiauth" or "" for anonymous
func (p Principal) AuthenticationType() string {
	return p.authType
}

// Claims returns a copy of the ordered claim set
func (p Principal) Claims() []Claim {
	out := make([]Claim, len(p.claims))
	copy(out, p.claims)
	return out
}

// FindFirst returns the first claim value of the given type
func (p Principal) FindFirst(claimType string) (string, bool) {
	for _, c := range p.claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// FindAll returns every claim value of the given type in claim order
func (p Principal) FindAll(claimType string) []string {
	var values []string
	for _, c := range p.claims {
		if c.Type == claimType {
			values = append(values, c.Value)
		}
	}
	return values
}

// Name returns the name claim, if any
func (p Principal) Name() string {
	name, _ := p.FindFirst(constants.ClaimTypeName)
	return name
}

// Roles returns the role claim values in claim order
func (p Principal) Roles() []string {
	return p.FindAll(constants.ClaimTypeRole)
}

// HasRole reports whether a role claim with the given value exists
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// AuthenticationState wraps exactly one principal
type AuthenticationState struct {
	User Principal
}

// AnonymousState returns the state used before sign-in and after sign-out
func AnonymousState() AuthenticationState {
	return AuthenticationState{User: AnonymousPrincipal()}
}

// NewAuthenticationState wraps a principal
func NewAuthenticationState(user Principal) AuthenticationState {
	return AuthenticationState{User: user}
}

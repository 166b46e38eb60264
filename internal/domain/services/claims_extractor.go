// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package services

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/pkg/constants"
)

// ClaimsExtractor turns the unverified payload of a compact token into claims
type ClaimsExtractor struct {
	roleClaimType string
}

// ExtractorOption configures a ClaimsExtractor
type ExtractorOption func(*ClaimsExtractor)

// WithRoleClaimType sets the payload key holding roles
func WithRoleClaimType(claimType string) ExtractorOption {
	return func(e *ClaimsExtractor) {
		if claimType != "" {
			e.roleClaimType = claimType
		}
	}
}

// NewClaimsExtractor creates an extractor reading roles from the "role" key unless overridden
func NewClaimsExtractor(opts ...ExtractorOption) *ClaimsExtractor {
	e := &ClaimsExtractor{roleClaimType: constants.ClaimTypeRole}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RoleClaimType returns the configured role key
func (e *ClaimsExtractor) RoleClaimType() string {
	return e.roleClaimType
}

// Extract returns role claims first, in array order, followed by the remaining keys sorted ascending.
// The signature is never verified.
func (e *ClaimsExtractor) Extract(token string) ([]entities.Claim, error) {
	segments := strings.Split(token, ".")
	if len(segments) < 2 {
		return nil, &entities.MalformedTokenError{Reason: "token has fewer than two segments"}
	}

	payload, err := DecodeSegment(segments[1])
	if err != nil {
		return nil, &entities.MalformedTokenError{Reason: "payload segment is not base64url", Err: err}
	}

	fields, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}

	claims := make([]entities.Claim, 0, len(fields))

	if raw, ok := fields[e.roleClaimType]; ok {
		delete(fields, e.roleClaimType)
		roles, err := parseRoles(raw)
		if err != nil {
			return nil, err
		}
		for _, role := range roles {
			claims = append(claims, entities.Claim{Type: e.roleClaimType, Value: role})
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		claims = append(claims, entities.Claim{Type: k, Value: stringify(fields[k])})
	}

	return claims, nil
}

func decodeObject(payload []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &entities.MalformedTokenError{Reason: "payload is not a JSON object"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, &entities.MalformedTokenError{Reason: "payload is not valid JSON", Err: err}
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

// parseRoles handles a scalar role, a JSON array of strings, or a string holding such an array
func parseRoles(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}

	value := stringify(raw)
	if !strings.HasPrefix(strings.TrimSpace(value), "[") {
		return []string{value}, nil
	}

	var roles []string
	if err := json.Unmarshal([]byte(value), &roles); err != nil {
		return nil, &entities.MalformedTokenError{Reason: "role claim is not an array of strings", Err: err}
	}
	return roles, nil
}

// stringify renders a JSON value as a claim value
func stringify(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case '[', '{':
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			return compact.String()
		}
	}

	// numbers and booleans keep their literal JSON text, so booleans are
	// lowercase true and false
	return string(trimmed)
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

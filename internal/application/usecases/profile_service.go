// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package usecases

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/infrastructure/gateway"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// ProfileService reads and updates employee profiles
type ProfileService struct {
	client       *gateway.Client
	tokens       contracts.TokenSource
	artifacts    contracts.ArtifactWriter
	employeePath string
	logger       *slog.Logger
}

// NewProfileService creates a profile service using employeePath as the employee API prefix
func NewProfileService(
	client *gateway.Client,
	tokens contracts.TokenSource,
	artifacts contracts.ArtifactWriter,
	employeePath string,
	logger *slog.Logger,
) *ProfileService {
	if employeePath == "" {
		employeePath = constants.EmployeePathV1
	}
	return &ProfileService{
		client:       client,
		tokens:       tokens,
		artifacts:    artifacts,
		employeePath: strings.TrimSuffix(employeePath, "/"),
		logger:       logging.WithComponent(logger, constants.ComponentProfile),
	}
}

// List returns one page of profiles. A rejected request yields an empty page.
func (s *ProfileService) List(ctx context.Context, offset, limit int) (*entities.ListResponse[entities.EmployeeProfile], error) {
	logger := logging.FromContext(ctx, s.logger).With("offset", offset, "limit", limit)
	return lenientPage[entities.EmployeeProfile](ctx, s.client, s.tokens, logger, s.employeePath+constants.ProfilesEndpoint+pageQuery(offset, limit), "profile")
}

// GetByID returns one profile
func (s *ProfileService) GetByID(ctx context.Context, id string) (*entities.EmployeeProfile, error) {
	resp, err := s.send(ctx, http.MethodGet, s.employeePath+constants.ProfilesEndpoint+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if !gateway.IsSuccess(resp.StatusCode) {
		return nil, gateway.StatusError(resp, "get profile")
	}

	var profile entities.EmployeeProfile
	if err := gateway.DecodeJSON(resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMine updates the signed-in employee's profile and records the new display name
func (s *ProfileService) UpdateMine(ctx context.Context, profile entities.EmployeeProfile) (*entities.EmployeeProfile, error) {
	resp, err := s.send(ctx, http.MethodPatch, s.employeePath+constants.ProfileMeEndpoint, profile)
	if err != nil {
		return nil, err
	}
	if !gateway.IsSuccess(resp.StatusCode) {
		return nil, gateway.StatusError(resp, "update profile")
	}

	var updated entities.EmployeeProfile
	if err := gateway.DecodeJSON(resp, &updated); err != nil {
		return nil, err
	}

	if name := updated.DisplayName(); name != "" {
		if err := s.artifacts.SaveArtifact(ctx, constants.StoreKeyName, name); err != nil {
			return nil, err
		}
	}
	return &updated, nil
}

func (s *ProfileService) send(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	return authorizedCall(ctx, s.client, s.tokens, method, path, payload)
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package usecases

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/infrastructure/gateway"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// AvatarService resolves and uploads employee profile pictures.
// Unresolvable avatars fall back to the configured placeholder picture.
type AvatarService struct {
	client       *gateway.Client
	tokens       contracts.TokenSource
	artifacts    contracts.ArtifactWriter
	employeePath string
	fallback     string
	logger       *slog.Logger
}

// NewAvatarService creates an avatar service using employeePath as the employee API prefix
func NewAvatarService(
	client *gateway.Client,
	tokens contracts.TokenSource,
	artifacts contracts.ArtifactWriter,
	employeePath string,
	fallback string,
	logger *slog.Logger,
) *AvatarService {
	if employeePath == "" {
		employeePath = constants.EmployeePathV1
	}
	return &AvatarService{
		client:       client,
		tokens:       tokens,
		artifacts:    artifacts,
		employeePath: strings.TrimSuffix(employeePath, "/"),
		fallback:     fallback,
		logger:       logging.WithComponent(logger, constants.ComponentAvatar),
	}
}

// GetMine returns the avatar of the signed-in employee
func (s *AvatarService) GetMine(ctx context.Context) (*entities.Avatar, error) {
	return s.get(ctx, s.employeePath+constants.AvatarMeEndpoint, "me")
}

// GetByID returns the avatar of the given employee
func (s *AvatarService) GetByID(ctx context.Context, id string) (*entities.Avatar, error) {
	return s.get(ctx, s.employeePath+constants.AvatarByIDEndpoint+url.PathEscape(id), id)
}

func (s *AvatarService) get(ctx context.Context, path, subject string) (*entities.Avatar, error) {
	logger := logging.FromContext(ctx, s.logger).With("employee", subject)

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.client.NewJSONRequest(ctx, http.MethodGet, path, nil, token)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if !gateway.IsSuccess(resp.StatusCode) {
		gateway.Drain(resp)
		logger.Warn("avatar lookup failed, using placeholder", "status", resp.StatusCode)
		return &entities.Avatar{Path: s.fallback}, nil
	}

	var avatar entities.Avatar
	if err := gateway.DecodeJSON(resp, &avatar); err != nil {
		return nil, err
	}

	if !pictureExists(ctx, s.client, logger, avatar.Path, token) {
		avatar.Path = s.fallback
	}
	return &avatar, nil
}

// Upload sends a new picture for the signed-in employee and records its path as the avatar artifact
func (s *AvatarService) Upload(ctx context.Context, filename string, content io.Reader) (*entities.Avatar, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(constants.AvatarUploadFormField, filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrBuildRequest, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrBuildRequest, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrBuildRequest, err)
	}

	req, err := s.client.NewRequest(ctx, http.MethodPost, s.employeePath+constants.AvatarMeEndpoint, &body, form.FormDataContentType(), token)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if !gateway.IsSuccess(resp.StatusCode) {
		return nil, gateway.StatusError(resp, "avatar upload")
	}

	var avatar entities.Avatar
	if err := gateway.DecodeJSON(resp, &avatar); err != nil {
		return nil, err
	}

	if err := s.artifacts.SaveArtifact(ctx, constants.StoreKeyAvatar, avatar.Path); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("avatar uploaded", "path", avatar.Path, "bytes", body.Len())
	return &avatar, nil
}

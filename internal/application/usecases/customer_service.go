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

// CustomerService reads clinic customers. Rejected lookups degrade to
// empty results instead of errors.
type CustomerService struct {
	client       *gateway.Client
	tokens       contracts.TokenSource
	customerPath string
	logger       *slog.Logger
}

// NewCustomerService creates a customer service using customerPath as the customer API prefix
func NewCustomerService(client *gateway.Client, tokens contracts.TokenSource, customerPath string, logger *slog.Logger) *CustomerService {
	if customerPath == "" {
		customerPath = constants.CustomerPathV1
	}
	return &CustomerService{
		client:       client,
		tokens:       tokens,
		customerPath: strings.TrimSuffix(customerPath, "/"),
		logger:       logging.WithComponent(logger, constants.ComponentCustomer),
	}
}

// List returns one page of customers
func (s *CustomerService) List(ctx context.Context, offset, limit int) (*entities.ListResponse[entities.CustomerProfile], error) {
	logger := logging.FromContext(ctx, s.logger).With("offset", offset, "limit", limit)
	return lenientPage[entities.CustomerProfile](ctx, s.client, s.tokens, logger, s.customerPath+constants.ProfilesEndpoint+pageQuery(offset, limit), "customer")
}

// GetByID returns one customer, or an empty profile when the gateway refuses
func (s *CustomerService) GetByID(ctx context.Context, id string) (*entities.CustomerProfile, error) {
	logger := logging.FromContext(ctx, s.logger).With("customer", id)

	var profile entities.CustomerProfile
	path := s.customerPath + constants.ProfilesEndpoint + "/" + url.PathEscape(id)
	if err := lenientGet(ctx, s.client, s.tokens, logger, path, "customer", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CustomerAvatarService resolves customer pictures with the same
// placeholder fallback as employee avatars.
type CustomerAvatarService struct {
	client       *gateway.Client
	tokens       contracts.TokenSource
	customerPath string
	fallback     string
	logger       *slog.Logger
}

// NewCustomerAvatarService creates a customer avatar service
func NewCustomerAvatarService(client *gateway.Client, tokens contracts.TokenSource, customerPath, fallback string, logger *slog.Logger) *CustomerAvatarService {
	if customerPath == "" {
		customerPath = constants.CustomerPathV1
	}
	return &CustomerAvatarService{
		client:       client,
		tokens:       tokens,
		customerPath: strings.TrimSuffix(customerPath, "/"),
		fallback:     fallback,
		logger:       logging.WithComponent(logger, constants.ComponentCustomer),
	}
}

// GetByID returns the customer's avatar, or the placeholder when the
// lookup is rejected or the picture is missing
func (s *CustomerAvatarService) GetByID(ctx context.Context, id string) (*entities.CustomerAvatar, error) {
	logger := logging.FromContext(ctx, s.logger).With("customer", id)

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.client.NewJSONRequest(ctx, http.MethodGet, s.customerPath+constants.AvatarByIDEndpoint+url.PathEscape(id), nil, token)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if !gateway.IsSuccess(resp.StatusCode) {
		gateway.Drain(resp)
		logger.Warn("customer avatar lookup failed, using placeholder", "status", resp.StatusCode)
		return &entities.CustomerAvatar{CustomerID: id, Path: s.fallback}, nil
	}

	var avatar entities.CustomerAvatar
	if err := gateway.DecodeJSON(resp, &avatar); err != nil {
		return nil, err
	}
	if !pictureExists(ctx, s.client, logger, avatar.Path, token) {
		avatar.Path = s.fallback
	}
	return &avatar, nil
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package usecases

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/infrastructure/gateway"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// PetService reads pet profiles. Like CustomerService, a rejected request
// yields an empty result.
type PetService struct {
	client  *gateway.Client
	tokens  contracts.TokenSource
	petPath string
	logger  *slog.Logger
}

// NewPetService creates a pet service using petPath as the pet API prefix
func NewPetService(client *gateway.Client, tokens contracts.TokenSource, petPath string, logger *slog.Logger) *PetService {
	if petPath == "" {
		petPath = constants.PetPathV1
	}
	return &PetService{
		client:  client,
		tokens:  tokens,
		petPath: strings.TrimSuffix(petPath, "/"),
		logger:  logging.WithComponent(logger, constants.ComponentPet),
	}
}

// ListByCustomer returns the pets owned by a customer
func (s *PetService) ListByCustomer(ctx context.Context, customerID string) (*entities.ListResponse[entities.PetProfile], error) {
	logger := logging.FromContext(ctx, s.logger).With("customer", customerID)
	path := s.petPath + constants.ProfilesEndpoint + "/" + url.PathEscape(customerID) + constants.PetsByCustomerSuffix
	return lenientPage[entities.PetProfile](ctx, s.client, s.tokens, logger, path, "pet")
}

// List returns every pet
func (s *PetService) List(ctx context.Context) (*entities.ListResponse[entities.PetProfile], error) {
	return lenientPage[entities.PetProfile](ctx, s.client, s.tokens, logging.FromContext(ctx, s.logger), s.petPath+constants.ProfilesEndpoint, "pet")
}

// GetByID returns one pet, or an empty profile when the gateway refuses
func (s *PetService) GetByID(ctx context.Context, id string) (*entities.PetProfile, error) {
	logger := logging.FromContext(ctx, s.logger).With("pet", id)

	var pet entities.PetProfile
	if err := lenientGet(ctx, s.client, s.tokens, logger, s.petPath+constants.ProfilesEndpoint+"/"+url.PathEscape(id), "pet", &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

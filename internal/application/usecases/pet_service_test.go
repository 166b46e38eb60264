// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package usecases

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/mocks"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

const petProfilesPath = constants.PetPathV1 + constants.ProfilesEndpoint

func newPetFixture(t *testing.T, token string) (*fakeGateway, *PetService) {
	t.Helper()
	logger, _ := logging.TestLogger(t)
	gw := newFakeGateway(t)
	return gw, NewPetService(gw.Client(t), &mocks.MockTokenSource{TokenValue: token}, constants.PetPathV1+"/", logger)
}

func TestPetService_ListByCustomer(t *testing.T) {
	t.Run("returns_customer_pets", func(t *testing.T) {
		gw, service := newPetFixture(t, "tok")
		gw.Handle("GET "+petProfilesPath+"/C-1/customer", respondJSON(http.StatusOK, entities.ListResponse[entities.PetProfile]{
			Total: 2,
			Data: []entities.PetProfile{
				{ID: "P-1", CustomerID: "C-1", Name: "Toby"},
				{ID: "P-2", CustomerID: "C-1", Name: "Misha"},
			},
		}))

		page, err := service.ListByCustomer(context.Background(), "C-1")
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "Misha", page.Data[1].Name)

		reqs := gw.RequestsTo(petProfilesPath + "/C-1/customer")
		require.Len(t, reqs, 1)
		assert.Equal(t, "Bearer tok", reqs[0].Authorization)
	})

	t.Run("rejection_is_empty_page", func(t *testing.T) {
		gw, service := newPetFixture(t, "tok")
		gw.Handle("GET "+petProfilesPath+"/C-1/customer", respondStatus(http.StatusUnauthorized))

		page, err := service.ListByCustomer(context.Background(), "C-1")
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})
}

func TestPetService_List(t *testing.T) {
	t.Run("null_data_becomes_empty", func(t *testing.T) {
		gw, service := newPetFixture(t, "tok")
		gw.Handle("GET "+petProfilesPath, respondJSON(http.StatusOK, map[string]any{"total": 0, "data": nil}))

		page, err := service.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})

	t.Run("no_session", func(t *testing.T) {
		gw, service := newPetFixture(t, "")

		_, err := service.List(context.Background())
		assert.ErrorIs(t, err, entities.ErrNoSession)
		assert.Empty(t, gw.Requests())
	})
}

func TestPetService_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		gw, service := newPetFixture(t, "tok")
		gw.Handle("GET "+petProfilesPath+"/P-1", respondJSON(http.StatusOK, entities.PetProfile{ID: "P-1", Color: "black"}))

		pet, err := service.GetByID(context.Background(), "P-1")
		require.NoError(t, err)
		assert.Equal(t, "black", pet.Color)
	})

	t.Run("rejection_is_empty_profile", func(t *testing.T) {
		_, service := newPetFixture(t, "tok")

		pet, err := service.GetByID(context.Background(), "P-404")
		require.NoError(t, err)
		assert.Equal(t, entities.PetProfile{}, *pet)
	})
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package gatewaystub

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vetclinic/vet-session/internal/domain/entities"
)

var (
	errNoCustomer = errors.New("customer not found")
	errNoPet      = errors.New("pet not found")
)

// pngHeader is enough for http.DetectContentType to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n")

// Customer is one seeded clinic customer. Picture, when set, is served
// under /files and referenced by the customer's avatar.
type Customer struct {
	Profile entities.CustomerProfile
	Picture []byte
}

// DefaultCustomers seeds two customers, only the first with a picture
func DefaultCustomers() []Customer {
	since := time.Date(2023, time.June, 1, 9, 0, 0, 0, time.UTC)
	return []Customer{
		{
			Profile: entities.CustomerProfile{
				CustomerID:  "C-0001",
				Email:       "marta@mail.test",
				Name:        "Marta",
				LastName:    "Ruiz",
				Gender:      "female",
				PhoneNumber: "+34 600 000 001",
				Address:     "Calle Mayor 1",
				CreatedAt:   since,
				UpdatedAt:   since,
			},
			Picture: pngHeader,
		},
		{
			Profile: entities.CustomerProfile{
				CustomerID: "C-0002",
				Email:      "jorge@mail.test",
				Name:       "Jorge",
				LastName:   "Silva",
				Gender:     "male",
				CreatedAt:  since,
				UpdatedAt:  since,
			},
		},
	}
}

// DefaultPets seeds two pets for C-0001 and one for C-0002
func DefaultPets() []entities.PetProfile {
	born := time.Date(2020, time.February, 2, 0, 0, 0, 0, time.UTC)
	return []entities.PetProfile{
		{ID: "P-0001", CustomerID: "C-0001", Name: "Toby", Color: "brown", Gender: "male", RaceID: "beagle", ClassificationID: "dog", Birthday: born},
		{ID: "P-0002", CustomerID: "C-0001", Name: "Misha", Color: "grey", Gender: "female", RaceID: "siamese", ClassificationID: "cat", Birthday: born.AddDate(1, 0, 0)},
		{ID: "P-0003", CustomerID: "C-0002", Name: "Rex", Color: "black", Gender: "male", RaceID: "labrador", ClassificationID: "dog", Birthday: born.AddDate(-2, 0, 0)},
	}
}

// clinic holds customers and pets, read-only after construction
type clinic struct {
	mu        sync.RWMutex
	customers map[string]Customer
	avatars   map[string]string // customer id -> file path
	pets      []entities.PetProfile
}

// newClinic indexes the seed and publishes customer pictures through files
func newClinic(customers []Customer, pets []entities.PetProfile, files *directory) *clinic {
	c := &clinic{
		customers: make(map[string]Customer, len(customers)),
		avatars:   make(map[string]string),
		pets:      append([]entities.PetProfile(nil), pets...),
	}
	for _, cust := range customers {
		id := cust.Profile.CustomerID
		c.customers[id] = cust
		if len(cust.Picture) > 0 {
			c.avatars[id] = files.putFile(filesPrefix+"/"+id+"/avatar.png", cust.Picture)
		}
	}
	sort.Slice(c.pets, func(i, j int) bool { return c.pets[i].ID < c.pets[j].ID })
	return c
}

func (c *clinic) customerPage(offset, limit int) entities.ListResponse[entities.CustomerProfile] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.customers))
	for id := range c.customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := len(ids)
	offset = max(0, min(offset, total))
	end := min(total, offset+limit)

	out := entities.ListResponse[entities.CustomerProfile]{Total: total, Data: make([]entities.CustomerProfile, 0, end-offset)}
	for _, id := range ids[offset:end] {
		out.Data = append(out.Data, c.customers[id].Profile)
	}
	if end < total {
		out.Next = end
	}
	out.Previous = max(0, offset-limit)
	return out
}

func (c *clinic) customer(id string) (entities.CustomerProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cust, ok := c.customers[id]
	if !ok {
		return entities.CustomerProfile{}, errNoCustomer
	}
	return cust.Profile, nil
}

func (c *clinic) customerAvatar(id string) (entities.CustomerAvatar, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.customers[id]; !ok {
		return entities.CustomerAvatar{}, errNoCustomer
	}
	return entities.CustomerAvatar{CustomerID: id, Path: c.avatars[id]}, nil
}

// petsOf returns the pets of one customer, or every pet for an empty id
func (c *clinic) petsOf(customerID string) entities.ListResponse[entities.PetProfile] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := entities.ListResponse[entities.PetProfile]{Data: []entities.PetProfile{}}
	for _, pet := range c.pets {
		if customerID == "" || pet.CustomerID == customerID {
			out.Data = append(out.Data, pet)
		}
	}
	out.Total = len(out.Data)
	return out
}

func (c *clinic) pet(id string) (entities.PetProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, pet := range c.pets {
		if pet.ID == id {
			return pet, nil
		}
	}
	return entities.PetProfile{}, errNoPet
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package gatewaystub

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/vet-session/internal/domain/entities"
)

var (
	errAccountExists = errors.New("account already exists")
	errNotFound      = errors.New("employee not found")
)

// Account is one seeded or signed-up employee
type Account struct {
	Email          string
	EmployeeNumber string
	Password       string
	Profile        entities.EmployeeProfile
	AvatarPath     string
}

// DefaultAccounts seeds an admin and a vet for local development
func DefaultAccounts() []Account {
	birthday := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	return []Account{
		{
			Email:          "admin@clinic.test",
			EmployeeNumber: "E-0001",
			Password:       "admin",
			Profile: entities.EmployeeProfile{
				EmployeeID: "E-0001",
				Email:      "admin@clinic.test",
				Name:       "Ana",
				LastName:   "Pérez",
				Gender:     "female",
				Birthday:   birthday,
				Roles:      []string{"admin", "vet"},
			},
		},
		{
			Email:          "vet@clinic.test",
			EmployeeNumber: "E-0002",
			Password:       "vet",
			Profile: entities.EmployeeProfile{
				EmployeeID: "E-0002",
				Email:      "vet@clinic.test",
				Name:       "Luis",
				LastName:   "Gómez",
				Gender:     "male",
				Birthday:   birthday.AddDate(2, 0, 0),
				Roles:      []string{"vet"},
			},
		},
	}
}

// directory is the stub's in-memory employee and file store
type directory struct {
	mu       sync.RWMutex
	accounts map[string]*Account // by employee id
	files    map[string][]byte   // by path
}

func newDirectory(seed []Account) *directory {
	d := &directory{
		accounts: make(map[string]*Account, len(seed)),
		files:    make(map[string][]byte),
	}
	now := time.Now().UTC()
	for i := range seed {
		acct := seed[i]
		if acct.Profile.EmployeeID == "" {
			acct.Profile.EmployeeID = acct.EmployeeNumber
		}
		if acct.Profile.CreatedAt.IsZero() {
			acct.Profile.CreatedAt = now
			acct.Profile.UpdatedAt = now
		}
		d.accounts[acct.Profile.EmployeeID] = &acct
	}
	return d
}

// authenticate returns the account matching the identifier and password
func (d *directory) authenticate(creds entities.Credentials) (*Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	acct := d.findLocked(creds)
	if acct == nil || acct.Password != creds.Password {
		return nil, false
	}
	copied := *acct
	return &copied, true
}

func (d *directory) findLocked(creds entities.Credentials) *Account {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	number := strings.TrimSpace(creds.EmployeeNumber)
	for _, acct := range d.accounts {
		if email != "" && strings.ToLower(acct.Email) == email {
			return acct
		}
		if email == "" && number != "" && acct.EmployeeNumber == number {
			return acct
		}
	}
	return nil
}

// create adds an employee with the given roles
func (d *directory) create(creds entities.Credentials, roles []string) (*Account, error) {
	if creds.Identifier() == "" || creds.Password == "" {
		return nil, errors.New("identifier and password required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.findLocked(creds) != nil {
		return nil, errAccountExists
	}

	id := strings.TrimSpace(creds.EmployeeNumber)
	if id == "" {
		id = "E-" + uuid.NewString()[:8]
	}
	if _, taken := d.accounts[id]; taken {
		return nil, errAccountExists
	}

	now := time.Now().UTC()
	acct := &Account{
		Email:          strings.TrimSpace(creds.Email),
		EmployeeNumber: id,
		Password:       creds.Password,
		Profile: entities.EmployeeProfile{
			EmployeeID: id,
			Email:      strings.TrimSpace(creds.Email),
			Roles:      slices.Clone(roles),
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	d.accounts[id] = acct
	copied := *acct
	return &copied, nil
}

func (d *directory) profile(id string) (entities.EmployeeProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[id]
	if !ok {
		return entities.EmployeeProfile{}, errNotFound
	}
	return acct.Profile, nil
}

// page returns profiles ordered by employee id
func (d *directory) page(offset, limit int) entities.ListResponse[entities.EmployeeProfile] {
	d.mu.RLock()
	ids := make([]string, 0, len(d.accounts))
	for id := range d.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := len(ids)
	offset = max(0, min(offset, total))
	end := min(total, offset+limit)

	data := make([]entities.EmployeeProfile, 0, end-offset)
	for _, id := range ids[offset:end] {
		data = append(data, d.accounts[id].Profile)
	}
	d.mu.RUnlock()

	out := entities.ListResponse[entities.EmployeeProfile]{Total: total, Data: data}
	if end < total {
		out.Next = end
	}
	out.Previous = max(0, offset-limit)
	return out
}

// update applies the non-empty editable fields of patch
func (d *directory) update(id string, patch entities.EmployeeProfile) (entities.EmployeeProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.accounts[id]
	if !ok {
		return entities.EmployeeProfile{}, errNotFound
	}
	p := &acct.Profile
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.LastName != "" {
		p.LastName = patch.LastName
	}
	if patch.Gender != "" {
		p.Gender = patch.Gender
	}
	if patch.PhoneNumber != "" {
		p.PhoneNumber = patch.PhoneNumber
	}
	if !patch.Birthday.IsZero() {
		p.Birthday = patch.Birthday
	}
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

func (d *directory) avatar(id string) (entities.Avatar, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[id]
	if !ok {
		return entities.Avatar{}, errNotFound
	}
	return entities.Avatar{EmployeeID: id, Path: acct.AvatarPath}, nil
}

// storeAvatar saves picture bytes and points the employee's avatar at them
func (d *directory) storeAvatar(id, filename string, data []byte) (entities.Avatar, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.accounts[id]
	if !ok {
		return entities.Avatar{}, errNotFound
	}

	name := sanitizeFilename(filename)
	if name == "" {
		name = "avatar"
	}
	path := fmt.Sprintf("%s/%s/%s-%s", filesPrefix, id, uuid.NewString()[:8], name)

	if acct.AvatarPath != "" {
		delete(d.files, acct.AvatarPath)
	}
	d.files[path] = slices.Clone(data)
	acct.AvatarPath = path
	return entities.Avatar{EmployeeID: id, Path: path}, nil
}

// putFile stores data at path and returns the path
func (d *directory) putFile(path string, data []byte) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[path] = slices.Clone(data)
	return path
}

func (d *directory) file(path string) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.files[path]
	return data, ok
}

// sanitizeFilename keeps the name usable as a URL path segment
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
}

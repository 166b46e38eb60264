// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package entities

import (
	"strings"
	"time"
)

// Credentials are sent as the sign-in or sign-up body and never persisted.
// Deployments identify users either by email or by employee number.
type Credentials struct {
	Email          string `json:"email,omitempty"`
	EmployeeNumber string `json:"employee_number,omitempty"`
	Password       string `json:"password"`
}

// Identifier returns the email, or the employee number when no email is set
func (c Credentials) Identifier() string {
	if email := strings.TrimSpace(c.Email); email != "" {
		return email
	}
	return strings.TrimSpace(c.EmployeeNumber)
}

// String never includes the password
func (c Credentials) String() string {
	return "Credentials{" + c.Identifier() + "}"
}

// MessageResponse is the {message: ...} envelope used by the authorizer API
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse is the paginated envelope used by list endpoints
type ListResponse[T any] struct {
	Next     int `json:"next"`
	Previous int `json:"previous"`
	Total    int `json:"total"`
	Data     []T `json:"data"`
}

// Avatar points at the stored profile picture of an employee
type Avatar struct {
	EmployeeID string `json:"employee_id"`
	Path       string `json:"path"`
}

// EmployeeProfile is the employee record exposed by the employee API
type EmployeeProfile struct {
	EmployeeID  string    `json:"employee_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	LastName    string    `json:"last_name"`
	Gender      string    `json:"gender"`
	PhoneNumber string    `json:"phone_number"`
	Birthday    time.Time `json:"birthday"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName joins name and last name
func (p EmployeeProfile) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(p.Name) + " " + strings.TrimSpace(p.LastName))
}

// CustomerProfile is a clinic customer as exposed by the customer API
type CustomerProfile struct {
	CustomerID  string    `json:"customer_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	LastName    string    `json:"last_name"`
	Gender      string    `json:"gender"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	Birthday    time.Time `json:"birthday"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerAvatar points at the stored picture of a customer
type CustomerAvatar struct {
	CustomerID string `json:"customer_id"`
	Path       string `json:"path"`
}

// PetProfile is a patient record owned by a customer
type PetProfile struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customer_id"`
	Color            string    `json:"color"`
	Name             string    `json:"name"`
	Birthday         time.Time `json:"birthday"`
	RaceID           string    `json:"race_id"`
	ClassificationID string    `json:"classification_id"`
	Gender           string    `json:"gender"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SessionEvent describes one published authentication state change
type SessionEvent struct {
	ID                 string    `json:"id"`
	Type               string    `json:"type"`
	SessionID          string    `json:"session_id,omitempty"`
	Authenticated      bool      `json:"authenticated"`
	AuthenticationType string    `json:"authentication_type,omitempty"`
	Identity           string    `json:"identity,omitempty"`
	Roles              []string  `json:"roles,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

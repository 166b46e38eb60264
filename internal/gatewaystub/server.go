// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package gatewaystub is a local stand-in for the remote veterinary API gateway.
// It serves the authorizer, employee, customer and pet routes the session
// client calls.
package gatewaystub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/domain/services"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

const (
	filesPrefix      = "/files"
	maxAvatarBytes   = 2 << 20
	defaultPageLimit = 20
	roleAdmin        = "admin"
	roleEmployee     = "employee"
)

// Config configures the stub
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TokenTTL  time.Duration
	Accounts  []Account
	Customers []Customer
	Pets      []entities.PetProfile
}

// Server implements the gateway routes
type Server struct {
	tokens    *TokenAuthority
	directory *directory
	clinic    *clinic
	health    *services.HealthService
	logger    *slog.Logger
}

// New creates a stub. Empty fields in cfg get development defaults.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.Secret == "" {
		cfg.Secret = "vet-session-dev-secret"
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "vet-gateway-stub"
	}
	if cfg.Audience == "" {
		cfg.Audience = constants.ServiceName
	}
	if cfg.Accounts == nil {
		cfg.Accounts = DefaultAccounts()
	}
	if cfg.Customers == nil {
		cfg.Customers = DefaultCustomers()
	}
	if cfg.Pets == nil {
		cfg.Pets = DefaultPets()
	}

	tokens, err := NewTokenAuthority([]byte(cfg.Secret), cfg.Issuer, cfg.Audience, cfg.TokenTTL, logger)
	if err != nil {
		return nil, err
	}

	dir := newDirectory(cfg.Accounts)
	return &Server{
		tokens:    tokens,
		directory: dir,
		clinic:    newClinic(cfg.Customers, cfg.Pets, dir),
		health:    services.NewHealthService(map[string]services.HealthChecker{"token_authority": tokens}, 0),
		logger:    logging.WithComponent(logger, constants.ComponentStub),
	}, nil
}

// Tokens exposes the authority so tests can mint tokens directly
func (s *Server) Tokens() *TokenAuthority {
	return s.tokens
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	auth := constants.AuthorizerPathV1
	emp := constants.EmployeePathV1
	cust := constants.CustomerPathV1
	pet := constants.PetPathV1

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+auth+constants.SignInEndpoint, s.handleSignIn)
	mux.HandleFunc("POST "+auth+constants.SignUpEmployeeEndpoint, s.authenticated(s.handleSignUp))
	mux.HandleFunc("POST "+auth+constants.SignOutEndpoint, s.authenticated(s.handleSignOut))

	mux.HandleFunc("GET "+emp+constants.AvatarMeEndpoint, s.authenticated(s.handleAvatarMine))
	mux.HandleFunc("POST "+emp+constants.AvatarMeEndpoint, s.authenticated(s.handleAvatarUpload))
	mux.HandleFunc("GET "+emp+constants.AvatarByIDEndpoint+"{id}", s.authenticated(s.handleAvatarByID))

	mux.HandleFunc("GET "+emp+constants.ProfilesEndpoint, s.authenticated(s.handleProfileList))
	mux.HandleFunc("GET "+emp+constants.ProfilesEndpoint+"/{id}", s.authenticated(s.handleProfileByID))
	mux.HandleFunc("PATCH "+emp+constants.ProfileMeEndpoint, s.authenticated(s.handleProfileUpdate))

	mux.HandleFunc("GET "+cust+constants.ProfilesEndpoint, s.authenticated(s.handleCustomerList))
	mux.HandleFunc("GET "+cust+constants.ProfilesEndpoint+"/{id}", s.authenticated(s.handleCustomerByID))
	mux.HandleFunc("GET "+cust+constants.AvatarByIDEndpoint+"{id}", s.authenticated(s.handleCustomerAvatar))

	mux.HandleFunc("GET "+pet+constants.ProfilesEndpoint, s.authenticated(s.handlePetList))
	mux.HandleFunc("GET "+pet+constants.ProfilesEndpoint+"/{id}", s.authenticated(s.handlePetByID))
	mux.HandleFunc("GET "+pet+constants.ProfilesEndpoint+"/{id}"+constants.PetsByCustomerSuffix, s.authenticated(s.handlePetsOfCustomer))

	mux.HandleFunc("GET "+filesPrefix+"/{path...}", s.handleFile)

	mux.HandleFunc("GET /livez", s.handleLiveness)
	mux.HandleFunc("GET /readyz", s.handleReadiness)

	return s.withRequestLogging(mux)
}

type identityKey struct{}

func identityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, logger := logging.WithRequestID(r.Context(), s.logger)
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Debug("stub request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// authenticated rejects requests without a valid bearer token
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.tokens.Validate(r.Context(), r.Header.Get(constants.AuthorizationHeader))
		if err != nil {
			logging.FromContext(r.Context(), s.logger).Info("bearer rejected", "path", r.URL.Path, "error", err.Error())
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, identity)))
	}
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var creds entities.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, ok := s.directory.authenticate(creds)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Mint(acct.Profile.EmployeeID, displayOrIdentifier(acct), acct.Profile.Roles)
	if err != nil {
		logging.LogError(s.logger, "token mint failed", err)
		writeMessage(w, http.StatusInternalServerError, "token unavailable")
		return
	}
	writeMessage(w, http.StatusOK, token)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if !identityFrom(r.Context()).HasRole(roleAdmin) {
		writeMessage(w, http.StatusForbidden, "admin role required")
		return
	}

	var creds entities.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := s.directory.create(creds, []string{roleEmployee})
	switch {
	case errors.Is(err, errAccountExists):
		writeMessage(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeMessage(w, http.StatusCreated, "employee "+acct.Profile.EmployeeID+" created")
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.tokens.Revoke(identityFrom(r.Context()).TokenID)
	writeMessage(w, http.StatusOK, "signed out")
}

func (s *Server) handleAvatarMine(w http.ResponseWriter, r *http.Request) {
	s.writeAvatar(w, identityFrom(r.Context()).EmployeeID)
}

func (s *Server) handleAvatarByID(w http.ResponseWriter, r *http.Request) {
	s.writeAvatar(w, r.PathValue("id"))
}

func (s *Server) writeAvatar(w http.ResponseWriter, id string) {
	avatar, err := s.directory.avatar(id)
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, avatar)
}

func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	file, header, err := r.FormFile(constants.AvatarUploadFormField)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "missing "+constants.AvatarUploadFormField+" field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusRequestEntityTooLarge, "picture too large")
		return
	}

	avatar, err := s.directory.storeAvatar(identityFrom(r.Context()).EmployeeID, header.Filename, data)
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, avatar)
}

func (s *Server) handleProfileList(w http.ResponseWriter, r *http.Request) {
	if offset, limit, ok := paging(w, r); ok {
		writeJSON(w, http.StatusOK, s.directory.page(offset, limit))
	}
}

func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request) {
	profile, err := s.directory.profile(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var patch entities.EmployeeProfile
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.directory.update(identityFrom(r.Context()).EmployeeID, patch)
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCustomerList(w http.ResponseWriter, r *http.Request) {
	if offset, limit, ok := paging(w, r); ok {
		writeJSON(w, http.StatusOK, s.clinic.customerPage(offset, limit))
	}
}

func (s *Server) handleCustomerByID(w http.ResponseWriter, r *http.Request) {
	profile, err := s.clinic.customer(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleCustomerAvatar(w http.ResponseWriter, r *http.Request) {
	avatar, err := s.clinic.customerAvatar(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, avatar)
}

func (s *Server) handlePetList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.clinic.petsOf(""))
}

func (s *Server) handlePetsOfCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.clinic.customer(id); err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.clinic.petsOf(id))
}

func (s *Server) handlePetByID(w http.ResponseWriter, r *http.Request) {
	pet, err := s.clinic.pet(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	data, ok := s.directory.file(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set(constants.ContentTypeHeader, http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "OK")
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	status := s.health.CheckHealth(r.Context())
	code := http.StatusOK
	if status.Status != constants.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func displayOrIdentifier(acct *Account) string {
	if name := acct.Profile.DisplayName(); name != "" {
		return name
	}
	if acct.Email != "" {
		return acct.Email
	}
	return acct.EmployeeNumber
}

// paging reads offset and limit, answering 400 itself when they are invalid
func paging(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeMessage(w, http.StatusBadRequest, "invalid offset")
		return 0, 0, false
	}
	limit, err = queryInt(r, "limit", defaultPageLimit)
	if err != nil || limit <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid limit")
		return 0, 0, false
	}
	return offset, limit, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, entities.MessageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

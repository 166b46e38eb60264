// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package usecases

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/infrastructure/gateway"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// recordedRequest captures what reached the fake gateway
type recordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

// fakeGateway is an httptest server with per-route handlers and request capture
type fakeGateway struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{routes: make(map[string]http.HandlerFunc)}
	g.server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.server.Close)
	return g
}

func (g *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	g.mu.Lock()
	g.requests = append(g.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	handler, ok := g.routes[r.Method+" "+r.URL.Path]
	g.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// Handle registers a handler for "METHOD /path"
func (g *fakeGateway) Handle(route string, handler http.HandlerFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.routes[route] = handler
}

// Requests returns a copy of the captured requests
func (g *fakeGateway) Requests() []recordedRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]recordedRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// RequestsTo returns the captured requests for one path
func (g *fakeGateway) RequestsTo(path string) []recordedRequest {
	var out []recordedRequest
	for _, r := range g.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (g *fakeGateway) Client(t *testing.T) *gateway.Client {
	t.Helper()
	logger, _ := logging.TestLogger(t)
	client, err := gateway.NewClient(gateway.Config{BaseURL: g.server.URL, Timeout: 5 * time.Second}, logger)
	require.NoError(t, err)
	return client
}

func respondJSON(status int, payload any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondStatus(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}

// signedToken mints an HS256 token with the given claims
func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

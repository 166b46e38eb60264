// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package gateway provides the HTTP transport to the remote veterinary API gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// maxErrorBody bounds how much of a failed response body is kept in the error message
const maxErrorBody = 512

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the transport settings
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient Doer
}

// Client builds and sends gateway requests. It holds no credentials: callers pass the bearer per request.
type Client struct {
	baseURL   string
	userAgent string
	http      Doer
	logger    *slog.Logger
}

// NewClient validates the configuration and returns a ready-to-use Client
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultGatewayTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = constants.UserAgent
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      httpClient,
		logger:    logging.WithComponent(logger, constants.ComponentGateway),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("gateway base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid gateway base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("gateway base URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("gateway base URL missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

// BaseURL returns the normalized gateway base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves path against the base URL. Absolute http(s) URLs are returned unchanged.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// NewJSONRequest builds a request with an optional JSON body. An empty bearer sends no Authorization header.
func (c *Client) NewJSONRequest(ctx context.Context, method, path string, payload any, bearer string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", constants.ErrMarshalPayload, err)
		}
		body = bytes.NewReader(encoded)
	}

	contentType := ""
	if payload != nil {
		contentType = constants.ContentTypeJSON
	}
	return c.NewRequest(ctx, method, path, body, contentType, bearer)
}

// NewRequest builds a request with an arbitrary body such as a multipart form
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader, contentType, bearer string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrBuildRequest, err)
	}

	if contentType != "" {
		req.Header.Set(constants.ContentTypeHeader, contentType)
	}
	req.Header.Set(constants.AcceptHeader, constants.ContentTypeJSON)
	req.Header.Set(constants.UserAgentHeader, c.userAgent)
	SetBearer(req, bearer)
	return req, nil
}

// SetBearer sets "Authorization: Bearer <token>", or removes the header when token is empty
func SetBearer(req *http.Request, token string) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(token), constants.BearerPrefix) {
		token = strings.TrimSpace(token[len(constants.BearerPrefix):])
	}
	if token == "" {
		req.Header.Del(constants.AuthorizationHeader)
		return
	}
	req.Header.Set(constants.AuthorizationHeader, constants.BearerScheme+" "+token)
}

// Do sends the request. Non-success statuses are returned as responses, not errors.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	logger := logging.FromContext(req.Context(), c.logger)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("gateway request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start),
			"error", err.Error())
		return nil, fmt.Errorf("%s: %s %s: %w", constants.ErrSendRequest, req.Method, req.URL.Path, err)
	}

	logger.Debug("gateway request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return resp, nil
}

// IsSuccess reports whether status is 2xx
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// DecodeJSON decodes the response body into v and closes it
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: %w", constants.ErrDecodeResponse, err)
	}
	return nil
}

// Drain discards and closes the response body so the connection can be reused
func Drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// StatusError converts a non-success response into an AuthFailureError and closes the body.
// A {"message": ...} body is used as the error message when present.
func StatusError(resp *http.Response, operation string) error {
	defer Drain(resp)

	failure := &entities.AuthFailureError{StatusCode: resp.StatusCode, Operation: operation}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(bytes.TrimSpace(data)) == 0 {
		return failure
	}

	var payload entities.MessageResponse
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		failure.Message = payload.Message
	} else {
		failure.Message = strings.TrimSpace(string(data))
	}
	return failure
}

// HealthCheck verifies the gateway answers HTTP at all. Any status counts as reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.HealthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	req.Header.Set(constants.UserAgentHeader, c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	Drain(resp)
	return nil
}

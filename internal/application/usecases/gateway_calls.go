// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package usecases

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/infrastructure/gateway"
)

// authorizedCall sends a JSON request carrying the session bearer
func authorizedCall(ctx context.Context, client *gateway.Client, tokens contracts.TokenSource, method, path string, payload any) (*http.Response, error) {
	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := client.NewJSONRequest(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

func pageQuery(offset, limit int) string {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	return "?" + query.Encode()
}

// lenientPage GETs a list endpoint. A rejected request is logged and
// yields an empty page rather than an error.
func lenientPage[T any](ctx context.Context, client *gateway.Client, tokens contracts.TokenSource, logger *slog.Logger, path, what string) (*entities.ListResponse[T], error) {
	resp, err := authorizedCall(ctx, client, tokens, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	if !gateway.IsSuccess(resp.StatusCode) {
		gateway.Drain(resp)
		logger.Warn(what+" list rejected", "status", resp.StatusCode)
		return &entities.ListResponse[T]{Data: []T{}}, nil
	}

	var page entities.ListResponse[T]
	if err := gateway.DecodeJSON(resp, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return &page, nil
}

// lenientGet GETs a single record. A rejected request is logged and
// leaves out at its zero value.
func lenientGet[T any](ctx context.Context, client *gateway.Client, tokens contracts.TokenSource, logger *slog.Logger, path, what string, out *T) error {
	resp, err := authorizedCall(ctx, client, tokens, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if !gateway.IsSuccess(resp.StatusCode) {
		gateway.Drain(resp)
		logger.Warn(what+" lookup rejected", "status", resp.StatusCode)
		return nil
	}
	return gateway.DecodeJSON(resp, out)
}

// pictureExists checks the picture location with its own request. The
// bearer is only sent when the picture lives on the gateway.
func pictureExists(ctx context.Context, client *gateway.Client, logger *slog.Logger, path, token string) bool {
	if strings.TrimSpace(path) == "" {
		logger.Warn("avatar has no path, using placeholder")
		return false
	}

	target := client.URL(path)

	bearer := ""
	if strings.HasPrefix(target, client.BaseURL()+"/") {
		bearer = token
	}

	req, err := client.NewJSONRequest(ctx, http.MethodGet, target, nil, bearer)
	if err != nil {
		logger.Warn("avatar check not built, using placeholder", "error", err.Error())
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("avatar check failed, using placeholder", "error", err.Error())
		return false
	}
	defer gateway.Drain(resp)

	if !gateway.IsSuccess(resp.StatusCode) {
		logger.Warn("avatar not found, using placeholder", "status", resp.StatusCode)
		return false
	}
	return true
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// OpenSearchSink indexes session events, one document per event ID
type OpenSearchSink struct {
	client *opensearch.Client
	index  string
	logger *slog.Logger
}

// NewOpenSearchClient creates a client for a single node URL
func NewOpenSearchClient(url string) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
	}
	return client, nil
}

// NewOpenSearchSink creates a sink writing into index
func NewOpenSearchSink(client *opensearch.Client, index string, logger *slog.Logger) *OpenSearchSink {
	if index == "" {
		index = constants.DefaultAuditIndex
	}
	return &OpenSearchSink{
		client: client,
		index:  index,
		logger: logging.WithComponent(logger, constants.ComponentOpenSearch),
	}
}

// Write implements contracts.EventSink
func (s *OpenSearchSink) Write(ctx context.Context, event entities.SessionEvent) error {
	logger := logging.FromContext(ctx, s.logger)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrIndexEvent, err)
	}

	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: event.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		logger.Error("failed to index session event", "event_id", event.ID, "error", err.Error())
		return fmt.Errorf("%s: %w", constants.ErrIndexEvent, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		logger.Error("index request failed", "event_id", event.ID, "status", res.Status())
		return fmt.Errorf("%s: %s", constants.ErrIndexEvent, res.Status())
	}

	logger.Debug("session event indexed", "event_id", event.ID, "index", s.index, "status", res.Status())
	return nil
}

// HealthCheck checks the health of the OpenSearch connection
func (s *OpenSearchSink) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("%s: OpenSearch client is nil", constants.ErrHealthCheck)
	}

	res, err := opensearchapi.InfoRequest{}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s: %s", constants.ErrHealthCheck, res.Status())
	}
	return nil
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package messaging broadcasts session state changes over NATS.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/domain/services"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// Conn is the subset of *nats.Conn used by the broadcaster
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	IsConnected() bool
	IsClosed() bool
	Drain() error
}

var (
	_ contracts.EventBroadcaster = (*StateBroadcaster)(nil)
	_ contracts.StateSubscriber  = (*StateBroadcaster)(nil)
)

// StateBroadcaster publishes session events for other processes sharing the session
type StateBroadcaster struct {
	conn         Conn
	subject      string
	sessionID    string
	drainTimeout time.Duration
	logger       *slog.Logger
}

// NewStateBroadcaster creates a broadcaster publishing on subject
func NewStateBroadcaster(conn Conn, subject, sessionID string, logger *slog.Logger) *StateBroadcaster {
	if subject == "" {
		subject = constants.DefaultStateSubject
	}
	return &StateBroadcaster{
		conn:         conn,
		subject:      subject,
		sessionID:    sessionID,
		drainTimeout: constants.NATSDrainTimeout,
		logger:       logging.WithComponent(logger, constants.ComponentNATS),
	}
}

// Connect dials NATS with the client reconnect policy
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	logger = logging.WithComponent(logger, constants.ComponentNATS)
	conn, err := nats.Connect(url,
		nats.Name(constants.ServiceName),
		nats.Timeout(constants.NATSConnectTimeout),
		nats.MaxReconnects(constants.NATSMaxReconnects),
		nats.ReconnectWait(constants.NATSReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return conn, nil
}

// Subject returns the state subject
func (b *StateBroadcaster) Subject() string {
	return b.subject
}

// OnStateChanged implements contracts.StateSubscriber. Publish failures are logged.
func (b *StateBroadcaster) OnStateChanged(ctx context.Context, state entities.AuthenticationState) {
	event := services.NewSessionEvent(state, b.sessionID)
	if err := b.Publish(ctx, event); err != nil {
		logging.FromContext(ctx, b.logger).Warn("session event not broadcast",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err.Error())
	}
}

// Publish implements contracts.EventBroadcaster
func (b *StateBroadcaster) Publish(ctx context.Context, event entities.SessionEvent) error {
	logger := logging.FromContext(ctx, b.logger)

	if b.conn == nil || !b.conn.IsConnected() {
		return fmt.Errorf("%s: NATS connection not available for subject %s", constants.ErrPublishEvent, b.subject)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrPublishEvent, err)
	}

	if err := b.conn.Publish(b.subject, data); err != nil {
		logger.Error("failed to publish session event", "subject", b.subject, "error", err.Error())
		return fmt.Errorf("%s: %w", constants.ErrPublishEvent, err)
	}

	logger.Debug("session event published", "subject", b.subject, "event_type", event.Type, "size", len(data))
	return nil
}

// Listen delivers events from the state subject until ctx is done.
// Undecodable messages and handler errors are logged and skipped.
func (b *StateBroadcaster) Listen(ctx context.Context, handler contracts.EventHandler) error {
	if b.conn == nil {
		return fmt.Errorf("NATS connection is nil")
	}

	sub, err := b.conn.Subscribe(b.subject, func(msg *nats.Msg) {
		msgCtx, logger := logging.WithRequestID(ctx, b.logger)

		var event entities.SessionEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("discarding undecodable session event", "subject", msg.Subject, "error", err.Error())
			return
		}
		if err := handler(msgCtx, event); err != nil {
			logger.Error("session event handler failed", "event_id", event.ID, "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", b.subject, err)
	}

	b.logger.Info("listening for session events", "subject", b.subject)
	<-ctx.Done()

	if sub != nil {
		if err := sub.Unsubscribe(); err != nil {
			b.logger.Debug("unsubscribe after listen", "error", err.Error())
		}
	}
	return nil
}

// HealthCheck checks the health of the NATS connection
func (b *StateBroadcaster) HealthCheck(_ context.Context) error {
	if b.conn == nil {
		return fmt.Errorf("%s: NATS connection is nil", constants.ErrHealthCheck)
	}
	if !b.conn.IsConnected() {
		return fmt.Errorf("%s: NATS connection is not connected", constants.ErrHealthCheck)
	}
	return nil
}

// Close drains the connection, waiting at most the drain timeout
func (b *StateBroadcaster) Close() error {
	if b.conn == nil || b.conn.IsClosed() {
		return nil
	}

	if err := b.conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	deadline := time.Now().Add(b.drainTimeout)
	for !b.conn.IsClosed() {
		if time.Now().After(deadline) {
			b.logger.Warn("NATS drain timeout reached", "timeout", b.drainTimeout)
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

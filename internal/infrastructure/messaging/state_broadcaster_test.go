// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// fakeConn records publishes and loops them back to subscribers
type fakeConn struct {
	mu         sync.Mutex
	connected  bool
	closed     bool
	publishErr error
	published  map[string][][]byte
	handlers   map[string][]nats.MsgHandler
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		connected: true,
		published: make(map[string][][]byte),
		handlers:  make(map[string][]nats.MsgHandler),
	}
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	if c.publishErr != nil {
		c.mu.Unlock()
		return c.publishErr
	}
	c.published[subject] = append(c.published[subject], data)
	handlers := append([]nats.MsgHandler(nil), c.handlers[subject]...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(&nats.Msg{Subject: subject, Data: data})
	}
	return nil
}

func (c *fakeConn) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[subject] = append(c.handlers[subject], cb)
	return nil, nil
}

func (c *fakeConn) subscriberCount(subject string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[subject])
}

func (c *fakeConn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Drain() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.connected = false
	return nil
}

func (c *fakeConn) messages(subject string) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published[subject]
}

func TestStateBroadcaster_OnStateChanged(t *testing.T) {
	logger, _ := logging.TestLogger(t)
	conn := newFakeConn()
	b := NewStateBroadcaster(conn, "", "default", logger)
	assert.Equal(t, "vet.session.state.changed", b.Subject())

	principal := entities.NewPrincipal([]entities.Claim{{Type: "name", Value: "dummy@example.com"}}, "apiauth")
	b.OnStateChanged(context.Background(), entities.NewAuthenticationState(principal))
	b.OnStateChanged(context.Background(), entities.AnonymousState())

	msgs := conn.messages("vet.session.state.changed")
	require.Len(t, msgs, 2)

	var first, second entities.SessionEvent
	require.NoError(t, json.Unmarshal(msgs[0], &first))
	require.NoError(t, json.Unmarshal(msgs[1], &second))
	assert.Equal(t, "signed_in", first.Type)
	assert.Equal(t, "dummy@***", first.Identity)
	assert.Equal(t, "default", first.SessionID)
	assert.Equal(t, "signed_out", second.Type)
	assert.NotContains(t, string(msgs[0]), "example.com")
}

func TestStateBroadcaster_PublishFailures(t *testing.T) {
	logger, buf := logging.TestLogger(t)

	t.Run("disconnected", func(t *testing.T) {
		conn := newFakeConn()
		conn.connected = false
		b := NewStateBroadcaster(conn, "s", "default", logger)

		err := b.Publish(context.Background(), entities.SessionEvent{ID: "1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NATS connection not available")
	})

	t.Run("nil_connection", func(t *testing.T) {
		b := NewStateBroadcaster(nil, "s", "default", logger)
		require.Error(t, b.Publish(context.Background(), entities.SessionEvent{}))
		require.Error(t, b.HealthCheck(context.Background()))
		require.Error(t, b.Listen(context.Background(), nil))
		assert.NoError(t, b.Close())
	})

	t.Run("subscriber_logs_instead_of_failing", func(t *testing.T) {
		conn := newFakeConn()
		conn.publishErr = errors.New("nats: connection closed")
		b := NewStateBroadcaster(conn, "s", "default", logger)

		assert.NotPanics(t, func() { b.OnStateChanged(context.Background(), entities.AnonymousState()) })
		logging.AssertLogContains(t, buf, "session event not broadcast")
	})
}

func TestStateBroadcaster_Listen(t *testing.T) {
	logger, buf := logging.TestLogger(t)
	conn := newFakeConn()
	b := NewStateBroadcaster(conn, "state", "default", logger)

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan entities.SessionEvent, 4)
	done := make(chan error, 1)

	go func() {
		done <- b.Listen(ctx, func(_ context.Context, event entities.SessionEvent) error {
			received <- event
			if event.ID == "fail" {
				return errors.New("handler rejected")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool { return conn.subscriberCount("state") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Publish(context.Background(), entities.SessionEvent{ID: "a", Type: "signed_in"}))
	require.NoError(t, conn.Publish("state", []byte("not json")))
	require.NoError(t, b.Publish(context.Background(), entities.SessionEvent{ID: "fail", Type: "signed_out"}))

	assert.Equal(t, "a", (<-received).ID)
	assert.Equal(t, "fail", (<-received).ID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}

	logging.AssertLogContains(t, buf, "discarding undecodable session event")
	logging.AssertLogContains(t, buf, "session event handler failed")
}

func TestStateBroadcaster_HealthAndClose(t *testing.T) {
	logger, _ := logging.TestLogger(t)
	conn := newFakeConn()
	b := NewStateBroadcaster(conn, "state", "default", logger)

	assert.NoError(t, b.HealthCheck(context.Background()))
	assert.NoError(t, b.Close())
	assert.True(t, conn.IsClosed())

	err := b.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
	assert.NoError(t, b.Close())
}

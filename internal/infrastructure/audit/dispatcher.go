// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package audit records session state changes asynchronously.
package audit

import (
	"context"
	"expvar"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vetclinic/vet-session/internal/domain/contracts"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/internal/domain/services"
	"github.com/vetclinic/vet-session/pkg/constants"
	"github.com/vetclinic/vet-session/pkg/logging"
)

// writeTimeout bounds a single sink write
const writeTimeout = 10 * time.Second

var auditDropped *expvar.Int

func init() {
	auditDropped = expvar.NewInt("vet_session_audit_dropped")
}

// Dispatcher forwards session events to a sink from a background worker.
// Enqueueing never blocks: when the buffer is full the event is dropped and counted.
type Dispatcher struct {
	sink      contracts.EventSink
	sessionID string
	logger    *slog.Logger

	ch      chan entities.SessionEvent
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	failed  atomic.Uint64

	// sends hold mu.RLock; Close takes mu.Lock before closed flips, so no
	// event lands in the buffer after the worker has drained it
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the worker. A non-positive buffer size becomes 1.
func NewDispatcher(sink contracts.EventSink, bufferSize int, sessionID string, logger *slog.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	d := &Dispatcher{
		sink:      sink,
		sessionID: sessionID,
		logger:    logging.WithComponent(logger, constants.ComponentAudit),
		ch:        make(chan entities.SessionEvent, bufferSize),
		done:      make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.write(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.write(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) write(event entities.SessionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.sink.Write(ctx, event); err != nil {
		d.failed.Add(1)
		d.logger.Warn("audit event not written",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err.Error())
	}
}

// OnStateChanged implements contracts.StateSubscriber
func (d *Dispatcher) OnStateChanged(_ context.Context, state entities.AuthenticationState) {
	d.Enqueue(services.NewSessionEvent(state, d.sessionID))
}

// Enqueue queues an event without blocking. It reports whether the event was accepted.
func (d *Dispatcher) Enqueue(event entities.SessionEvent) bool {
	if d == nil {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.ch <- event:
		return true
	default:
		d.dropped.Add(1)
		auditDropped.Add(1)
		d.logger.Warn("audit buffer full, event dropped", "event_id", event.ID, "event_type", event.Type)
		return false
	}
}

// HealthCheck delegates to the sink
func (d *Dispatcher) HealthCheck(ctx context.Context) error {
	return d.sink.HealthCheck(ctx)
}

// Close stops accepting events and waits for the queued ones to be written
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
}

// Dropped returns the number of events dropped because the buffer was full
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed returns the number of events the sink rejected
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}

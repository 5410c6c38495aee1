// Package notify delivers fire-and-forget events raised by the import
// engine: entity-created notices, credential-delivery requests for newly
// imported employees, and tenant dashboard summary pushes.
//
// Delivery is at-most-once and best-effort by design. Events cross a
// bounded queue to a background worker; a full queue or a failing sender is
// logged and dropped. Nothing in this package may block or fail an import
// row.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// EventType names the notification categories the engine raises.
type EventType string

const (
	EventEntityCreated    EventType = "entity_created"
	EventEmployeeImported EventType = "employee_imported"
)

// Event is one queued notification.
type Event struct {
	TenantID uuid.UUID
	Type     EventType
	// Fields carries type-specific detail (entity kind and name, or the
	// employee email credentials go to).
	Fields map[string]string
}

// Sender delivers a single event to its channel (email, SMS, webhook).
// Errors are logged by the dispatcher and the event is dropped.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// LogSender is the default sender: it logs events instead of delivering
// them. Real email/SMS delivery is a deployment concern behind the same
// interface.
type LogSender struct{}

func (LogSender) Send(_ context.Context, ev Event) error {
	slog.Info("notification",
		"type", ev.Type,
		"tenant_id", ev.TenantID,
		"fields", ev.Fields,
	)
	return nil
}

// Dispatcher is the queue handoff between the synchronous import engine and
// the background delivery worker. It also forwards summary-changed events
// to the WebSocket hub.
type Dispatcher struct {
	queue  chan Event
	sender Sender
	hub    *SummaryHub

	stopOnce sync.Once
	done     chan struct{}
}

// NewDispatcher creates a dispatcher with the given queue capacity and
// starts its worker.
func NewDispatcher(sender Sender, hub *SummaryHub, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{
		queue:  make(chan Event, queueSize),
		sender: sender,
		hub:    hub,
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	for {
		ev, ok := <-d.queue
		if !ok {
			close(d.done)
			return
		}
		if err := d.sender.Send(context.Background(), ev); err != nil {
			slog.Warn("notification dropped",
				"type", ev.Type,
				"tenant_id", ev.TenantID,
				"error", err,
			)
		}
	}
}

// Stop closes the queue and waits for the worker to drain it.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
		<-d.done
	})
}

// enqueue hands an event to the worker without blocking. A full queue drops
// the event.
func (d *Dispatcher) enqueue(ev Event) {
	select {
	case d.queue <- ev:
	default:
		slog.Warn("notification queue full, dropping event",
			"type", ev.Type,
			"tenant_id", ev.TenantID,
		)
	}
}

// EntityCreated implements the engine's Notifier contract.
func (d *Dispatcher) EntityCreated(tenantID uuid.UUID, kind, name string) {
	d.enqueue(Event{
		TenantID: tenantID,
		Type:     EventEntityCreated,
		Fields:   map[string]string{"kind": kind, "name": name},
	})
}

// EmployeeImported enqueues credential delivery for a newly imported
// employee.
func (d *Dispatcher) EmployeeImported(tenantID uuid.UUID, email string) {
	d.enqueue(Event{
		TenantID: tenantID,
		Type:     EventEmployeeImported,
		Fields:   map[string]string{"email": email},
	})
}

// SummaryChanged pushes a dashboard refresh to the tenant's WebSocket
// subscribers.
func (d *Dispatcher) SummaryChanged(tenantID uuid.UUID) {
	if d.hub != nil {
		d.hub.Publish(tenantID)
	}
}

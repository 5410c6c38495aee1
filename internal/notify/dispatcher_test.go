package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type captureSender struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSender) Send(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSender) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestDispatcherDelivers(t *testing.T) {
	sender := &captureSender{}
	d := NewDispatcher(sender, nil, 16)

	tenant := uuid.New()
	d.EntityCreated(tenant, "department", "Finance")
	d.EmployeeImported(tenant, "ama@acme.test")
	d.Stop()

	events := sender.all()
	if len(events) != 2 {
		t.Fatalf("delivered = %d, want 2", len(events))
	}
	if events[0].Type != EventEntityCreated || events[0].Fields["name"] != "Finance" {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[1].Type != EventEmployeeImported || events[1].Fields["email"] != "ama@acme.test" {
		t.Errorf("event[1] = %+v", events[1])
	}
}

func TestDispatcherStopIdempotent(t *testing.T) {
	d := NewDispatcher(&captureSender{}, nil, 4)
	d.Stop()
	d.Stop() // must not panic or hang
}

type failingSender struct{}

func (failingSender) Send(context.Context, Event) error { return errors.New("smtp down") }

// A failing sender drops events; it must not wedge the worker.
func TestDispatcherToleratesSenderFailure(t *testing.T) {
	d := NewDispatcher(failingSender{}, nil, 4)
	d.EmployeeImported(uuid.New(), "ama@acme.test")
	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung on a failing sender")
	}
}

type blockingSender struct {
	started chan struct{}
	release chan struct{}
	capture captureSender
}

func (s *blockingSender) Send(ctx context.Context, ev Event) error {
	select {
	case s.started <- struct{}{}:
	default:
	}
	<-s.release
	return s.capture.Send(ctx, ev)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sender := &blockingSender{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	d := NewDispatcher(sender, nil, 1)

	tenant := uuid.New()
	d.EntityCreated(tenant, "department", "one")
	<-sender.started // worker is inside Send; the queue is empty again
	d.EntityCreated(tenant, "department", "two")   // fills the queue
	d.EntityCreated(tenant, "department", "three") // dropped

	close(sender.release)
	d.Stop()

	events := sender.capture.all()
	if len(events) != 2 {
		t.Fatalf("delivered = %d, want 2 (third dropped)", len(events))
	}
	if events[0].Fields["name"] != "one" || events[1].Fields["name"] != "two" {
		t.Errorf("events = %+v", events)
	}
}

func TestSummaryChangedWithoutHub(t *testing.T) {
	d := NewDispatcher(&captureSender{}, nil, 4)
	defer d.Stop()
	d.SummaryChanged(uuid.New()) // nil hub must be a no-op
}

// Publish runs from whatever goroutine finished an import; writes to one
// socket must serialize. Run with -race.
func TestSummaryHubConcurrentPublish(t *testing.T) {
	hub := NewSummaryHub()
	tenant := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.Subscribe(w, r, tenant); err != nil {
			t.Errorf("Subscribe: %v", err)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	resp.Body.Close()

	const publishers = 8
	const perPublisher = 50

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				hub.Publish(tenant)
			}
		}()
	}

	received := 0
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for received < publishers*perPublisher {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read after %d frames: %v", received, err)
		}
		received++
	}
	wg.Wait()

	if n := hub.SubscriberCount(tenant); n != 1 {
		t.Errorf("subscribers = %d after concurrent publish, want 1", n)
	}
}

func TestSummaryHubPublish(t *testing.T) {
	hub := NewSummaryHub()
	tenant := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.Subscribe(w, r, tenant); err != nil {
			t.Errorf("Subscribe: %v", err)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	resp.Body.Close()

	if n := hub.SubscriberCount(tenant); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}

	hub.Publish(tenant)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event    string `json:"event"`
		TenantID string `json:"tenantId"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Event != "summary_changed" || msg.TenantID != tenant.String() {
		t.Errorf("message = %+v", msg)
	}

	// Publishing for a different tenant reaches nobody; the socket stays
	// silent.
	hub.Publish(uuid.New())
	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := conn.ReadJSON(&msg); err == nil {
		t.Error("received a frame for another tenant")
	}
}

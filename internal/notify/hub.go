package notify

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// writeWait bounds how long a summary push may block on one socket.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard clients are same-origin; the surrounding auth layer is out
	// of scope here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// summaryMessage is the frame pushed to dashboard subscribers.
type summaryMessage struct {
	Event    string `json:"event"`
	TenantID string `json:"tenantId"`
}

// subscriber wraps one socket with a write lock. gorilla/websocket allows a
// single concurrent writer per connection, and Publish may run from any
// number of import goroutines at once.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(msg summaryMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// SummaryHub fans tenant summary-changed events out to dashboard WebSocket
// subscribers. Slow or dead clients are dropped, never waited on.
type SummaryHub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*subscriber]bool
}

// NewSummaryHub creates an empty hub.
func NewSummaryHub() *SummaryHub {
	return &SummaryHub{
		subs: make(map[uuid.UUID]map[*subscriber]bool),
	}
}

// Subscribe upgrades the request to a WebSocket and registers it under the
// tenant. The connection is held open until the client goes away.
func (h *SummaryHub) Subscribe(w http.ResponseWriter, r *http.Request, tenantID uuid.UUID) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	if h.subs[tenantID] == nil {
		h.subs[tenantID] = make(map[*subscriber]bool)
	}
	h.subs[tenantID][sub] = true
	h.mu.Unlock()

	slog.Debug("summary subscriber connected", "tenant_id", tenantID)

	// Reader loop: we never expect client frames, but reading is how we
	// notice the peer closing.
	go func() {
		defer h.drop(tenantID, sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Publish notifies every subscriber of the tenant that its dashboard
// summary changed.
func (h *SummaryHub) Publish(tenantID uuid.UUID) {
	msg := summaryMessage{Event: "summary_changed", TenantID: tenantID.String()}

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs[tenantID]))
	for sub := range h.subs[tenantID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.write(msg); err != nil {
			slog.Debug("dropping summary subscriber", "tenant_id", tenantID, "error", err)
			h.drop(tenantID, sub)
		}
	}
}

// SubscriberCount returns how many sockets are registered for a tenant.
func (h *SummaryHub) SubscriberCount(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[tenantID])
}

func (h *SummaryHub) drop(tenantID uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[tenantID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, tenantID)
		}
	}
	h.mu.Unlock()
	sub.conn.Close()
}

// Package stream pushes run state transitions to websocket subscribers.
package stream

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/logger"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/models"
)

// Hub fans run updates out to the clients subscribed to each trace id
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Client]struct{}
	upgrader    websocket.Upgrader
	log         *logrus.Entry
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewHub creates a hub. allowedOrigins of nil or containing "*" accepts any origin.
func NewHub(baseLogger *logrus.Logger, allowedOrigins []string) *Hub {
	if baseLogger == nil {
		baseLogger = logger.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		subscribers: make(map[string]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log:    baseLogger.WithField("component", "stream"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Serve upgrades the request, sends the current run as a snapshot and keeps
// the subscriber attached until either side closes
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, run *models.Run) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newClient(uuid.NewString(), run.TraceID, conn, h)
	h.Subscribe(c)
	c.trySend(newMessage(MessageTypeSnapshot, run))

	go c.writePump(h.ctx)
	go c.readPump()

	c.log.Debug("Subscriber attached")
	return nil
}

// Subscribe registers c for updates to its trace id
func (h *Hub) Subscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscribers[c.TraceID]
	if !ok {
		set = make(map[*Client]struct{})
		h.subscribers[c.TraceID] = set
	}
	set[c] = struct{}{}
}

// Unsubscribe removes c and closes its send channel; repeated calls are no-ops
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.subscribers[c.TraceID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.subscribers, c.TraceID)
	}
}

// Publish sends run to every subscriber of its trace id. Slow subscribers
// whose buffer is full are disconnected rather than blocking the caller.
func (h *Hub) Publish(run *models.Run) {
	if run == nil {
		return
	}
	msg := newMessage(MessageTypeRunUpdate, run)

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.subscribers[run.TraceID] {
		if !c.trySend(msg) {
			c.log.Warn("Subscriber buffer full, disconnecting")
			h.removeLocked(c)
		}
	}
}

// SubscriberCount returns the number of clients watching traceID
func (h *Hub) SubscriberCount(traceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[traceID])
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subscribers {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

package notifications

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
	writeWait       = 10 * time.Second
)

// Hub maps user UIDs to their open websocket connections and fans incoming
// notification payloads out to them.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*websocket.Conn]struct{}
	totalConns int
	log        *logrus.Entry
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
		log:   logrus.WithField("component", "ws-hub"),
	}
}

// Register adds a connection for uid. Returns an error when a connection
// limit is reached.
func (h *Hub) Register(uid string, conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return errors.New("server connection limit reached")
	}
	m, ok := h.conns[uid]
	if !ok {
		m = make(map[*websocket.Conn]struct{})
		h.conns[uid] = m
	}
	if len(m) >= maxConnsPerUser {
		return errors.New("user connection limit reached")
	}
	m[conn] = struct{}{}
	h.totalConns++
	return nil
}

// Unregister removes a connection for uid
func (h *Hub) Unregister(uid string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.conns[uid]; ok {
		if _, exists := m[conn]; exists {
			delete(m, conn)
			h.totalConns--
		}
		if len(m) == 0 {
			delete(h.conns, uid)
		}
	}
}

// Broadcast writes payload to every connection registered for uid. Write
// failures only drop the individual connection's delivery; the connection
// is reaped by its own read loop.
func (h *Hub) Broadcast(uid string, payload []byte) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns[uid]))
	for conn := range h.conns[uid] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.WithField("uid", uid).WithError(err).Debug("websocket write failed")
		}
	}
}

// ConnectionCount returns the number of open connections for uid
func (h *Hub) ConnectionCount(uid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[uid])
}

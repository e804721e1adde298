// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/game"
	"github.com/sirupsen/logrus"
)

// outBuffer is the number of encoded frames queued per connection before
// further events are dropped.
const outBuffer = 64

// Connection is a single player's WebSocket presence.
type Connection struct {
	PlayerID uuid.UUID
	Username string
	Cancel   func()
	OutChan  chan []byte
}

// Hub maps player ids to their connections. Deliver is handed to the game
// registry and may be called while game locks are held, so it never blocks.
type Hub struct {
	mu     sync.Mutex
	conns  map[uuid.UUID]*Connection
	logger *logrus.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		conns:  make(map[uuid.UUID]*Connection),
		logger: logger,
	}
}

// Register adds a connection. A previous connection with the same id is
// cancelled and replaced.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.conns[conn.PlayerID]; ok && old != conn {
		h.closeLocked(old)
	}
	h.conns[conn.PlayerID] = conn
}

// Unregister removes the connection and closes its out channel. It is a
// no-op if conn has already been replaced.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[conn.PlayerID]; ok && cur == conn {
		h.closeLocked(conn)
		delete(h.conns, conn.PlayerID)
	}
}

// closeLocked assumes h.mu is held.
func (h *Hub) closeLocked(conn *Connection) {
	if conn.Cancel != nil {
		conn.Cancel()
	}
	close(conn.OutChan)
}

// Deliver encodes ev and queues it for playerID without blocking.
func (h *Hub) Deliver(playerID uuid.UUID, ev game.GameEvent) {
	data := game.EncodeEvent(ev)

	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[playerID]
	if !ok {
		return
	}
	select {
	case conn.OutChan <- data:
	default:
		h.logger.WithFields(logrus.Fields{"player": playerID, "type": ev.Type}).Warn("out channel full, dropped event")
	}
}

// Len reports the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

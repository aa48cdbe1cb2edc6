// Package live streams run progress over a websocket, for an optional
// live-monitor UI watching a long batch run. This is ambient tooling, not
// part of the core per §1 ("no user interface" is a core non-goal, but
// the teacher ships exactly this kind of progress surface around its own
// engine) — adapted from the teacher's internal/ws package: same
// Hub/Client broadcast shape, generalised from an interactive
// replay-control channel to a one-way progress feed.
package live

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hemcore/internal/hemlog"
)

// Client is one connected progress-feed websocket, identified by a
// per-connection ID for disconnect/drop log correlation across a run
// that may have many simultaneous viewers.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out progress envelopes to every connected Client, exactly the
// teacher's internal/ws.Hub broadcast pattern.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast sends msg to every connected client, dropping it for any
// client whose send buffer is full rather than blocking the run loop.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			hemlog.Default.Warn().Str("client_id", c.ID).Msg("live: client buffer full, dropping progress message")
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

package live

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hemcore/internal/hemlog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP connections to the progress-feed websocket. Unlike
// the teacher's interactive handler (which routed client->server replay
// controls), this feed is one-way: the run drives it, clients only
// observe, so the read pump exists solely to notice disconnects.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hemlog.Default.Warn().Err(err).Msg("live: websocket upgrade failed")
		return
	}

	client := &Client{ID: uuid.NewString(), hub: h.hub, conn: conn, send: make(chan []byte, 256)}
	h.hub.Register(client)
	hemlog.Default.Debug().Str("client_id", client.ID).Msg("live: client connected")
	go client.writePump()
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		hemlog.Default.Debug().Str("client_id", c.ID).Msg("live: client disconnected")
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

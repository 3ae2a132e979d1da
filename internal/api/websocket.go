// Package api - WebSocket feed for live match updates.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oddsworks/pointbook/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsClient is one subscriber of the match feed.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// MatchFeed fans match updates out to every connected WebSocket
// client. It implements the sports service's broadcast hook and never
// blocks settlement: slow clients just drop messages.
type MatchFeed struct {
	log *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewMatchFeed creates the live match broadcaster.
func NewMatchFeed(log *zap.Logger) *MatchFeed {
	return &MatchFeed{
		log:     log,
		clients: make(map[*wsClient]struct{}),
	}
}

// BroadcastMatch sends a match update to all connected clients.
func (f *MatchFeed) BroadcastMatch(m *domain.Match) {
	payload, err := json.Marshal(m)
	if err != nil {
		return
	}
	msg, err := json.Marshal(WSMessage{Type: "match_update", Payload: payload})
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer, drop this update for it.
		}
	}
}

func (f *MatchFeed) register(c *wsClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[c] = struct{}{}
}

func (f *MatchFeed) unregister(c *wsClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

// HandleMatchFeed handles GET /api/v1/ws/matches.
func (h *Handler) HandleMatchFeed(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		respondError(w, http.StatusServiceUnavailable, "FEED_DISABLED", "Live feed is not enabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.feed.register(client)

	go client.writePump()
	go h.feed.readPump(client)
}

// writePump pumps broadcast messages to the connection and keeps it
// alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection until it closes. The feed is
// one-directional; inbound frames only matter for pong handling and
// close detection.
func (f *MatchFeed) readPump(c *wsClient) {
	defer func() {
		f.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				f.log.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

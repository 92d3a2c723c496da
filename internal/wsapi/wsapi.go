// Package wsapi upgrades /ws connections and pumps assignment events to
// each subscriber as JSON. Every connection holds its own independent
// broadcast.Subscription; a client that reads slowly only loses events for
// itself (see internal/broadcast), it never slows the assignment engine.
package wsapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dispatch-router/internal/broadcast"
	"dispatch-router/internal/registry"
	"dispatch-router/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler upgrades HTTP connections and fans out assignment events.
type Handler struct {
	reg *registry.Registry
}

// New constructs a Handler.
func New(reg *registry.Registry) *Handler {
	return &Handler{reg: reg}
}

// ServeHTTP implements http.Handler for GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := h.reg.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go drainClient(conn, done)
	pumpEvents(conn, sub, done)
}

// drainClient discards anything the client sends (this is a one-way feed)
// and closes done once the connection goes away, so pumpEvents can stop.
func drainClient(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pumpEvents writes assignment events (and periodic pings) until the client
// disconnects or the subscription's channel closes.
func pumpEvents(conn *websocket.Conn, sub *broadcast.Subscription, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Warn("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

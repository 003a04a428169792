package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin UI is served from the same origin as this API in every
	// deployment this module targets; cross-origin WebSocket clients are
	// not a supported use case.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsFrame is the JSON frame relayed to every connected client for each bus
// event: {"type": "boost", "data": {...}}.
type wsFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const wsWriteTimeout = 10 * time.Second

// handleWebSocket upgrades the connection then relays every subsequent
// eventbus.Event as a JSON frame until the client disconnects or the bus
// subscription is torn down.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("httpapi: websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	// Drain and discard anything the client sends (pings, close frames);
	// this also detects disconnects so the write loop below can exit.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			frame := wsFrame{Type: evt.Kind, Data: evt.Payload}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

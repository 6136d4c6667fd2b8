package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"seabattle/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler upgrades session subscriptions to WebSocket. While a socket is
// open it also runs the client-scoped background loops: heartbeats for the
// client's own slot, the turn clock, and the opponent presence monitor.
type Handler struct {
	hub      *Hub
	authSvc  *service.AuthService
	sessions *service.SessionService
	presence *service.PresenceService
	clock    *service.TurnClock
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, authSvc *service.AuthService, sessions *service.SessionService, presence *service.PresenceService, clock *service.TurnClock) *Handler {
	return &Handler{
		hub:      hub,
		authSvc:  authSvc,
		sessions: sessions,
		presence: presence,
		clock:    clock,
	}
}

// SessionWS handles GET /v1/ws/sessions/{code}
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateSlotToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.GameCode != code {
		http.Error(w, "token not valid for this game", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		GameCode: code,
		SlotID:   claims.SlotID,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(conn)
	log.Printf("Slot %s subscribed to game %s via WebSocket", claims.SlotID, code)

	// Deliver the current snapshot immediately; the feed only carries
	// changes committed after this point.
	if session, err := h.sessions.GetSession(r.Context(), code); err == nil {
		if data, err := EncodeSnapshot(session); err == nil {
			conn.Send <- data
		}
	}

	// Loops scoped to this connection's lifetime.
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := h.presence.Heartbeat(ctx, code, claims.SlotID); err != nil {
		log.Printf("Initial heartbeat failed for game %s: %v", code, err)
	}
	go h.presence.RunHeartbeat(ctx, code, claims.SlotID)
	go h.presence.RunMonitor(ctx, code, claims.SlotID)
	go h.clock.Run(ctx, code, claims.SlotID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, cancel)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, cancel context.CancelFunc) {
	defer func() {
		cancel()
		h.hub.Unregister(conn)
		wsConn.Close()

		// Closing the socket is the client's disconnect signal.
		ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if _, err := h.presence.MarkDisconnected(ctx, conn.GameCode, conn.SlotID); err != nil {
			log.Printf("Failed to mark slot %s disconnected in game %s: %v", conn.SlotID, conn.GameCode, err)
		}
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		// Incoming messages are ignored; all mutations go through REST.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"seabattle/internal/cache"
	"seabattle/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgSessionUpdate MessageType = "session_update"
	MsgError         MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one client's WebSocket connection to a session.
type Connection struct {
	GameCode string
	SlotID   string
	Send     chan []byte
}

// Hub fans session snapshots out to connected clients. A bridge goroutine
// per game code subscribes to the realtime feed and forwards every
// committed snapshot to the code's local connections; the bridge lives as
// long as at least one connection does.
type Hub struct {
	feed cache.SessionFeed

	mu      sync.RWMutex
	conns   map[string]map[*Connection]struct{}
	bridges map[string]context.CancelFunc

	register   chan *Connection
	unregister chan *Connection
	snapshots  chan *model.Session
}

// NewHub creates a new WebSocket hub wired to the session feed.
func NewHub(feed cache.SessionFeed) *Hub {
	h := &Hub{
		feed:       feed,
		conns:      make(map[string]map[*Connection]struct{}),
		bridges:    make(map[string]context.CancelFunc),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		snapshots:  make(chan *model.Session, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.GameCode] == nil {
				h.conns[conn.GameCode] = make(map[*Connection]struct{})
				h.startBridge(conn.GameCode)
			}
			h.conns[conn.GameCode][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("Slot %s connected to game %s", conn.SlotID, conn.GameCode)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.GameCode]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Slot %s disconnected from game %s", conn.SlotID, conn.GameCode)
				}
				if len(conns) == 0 {
					delete(h.conns, conn.GameCode)
					if cancel, ok := h.bridges[conn.GameCode]; ok {
						cancel()
						delete(h.bridges, conn.GameCode)
					}
				}
			}
			h.mu.Unlock()

		case session := <-h.snapshots:
			data, err := EncodeSnapshot(session)
			if err != nil {
				log.Printf("Failed to encode snapshot for game %s: %v", session.Code, err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[session.Code] {
				select {
				case conn.Send <- data:
				default:
					// Drop if the buffer is full; the next snapshot is a
					// full replacement anyway.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// startBridge subscribes the feed for a game code and pumps its snapshots
// into the hub. Caller holds h.mu.
func (h *Hub) startBridge(code string) {
	ctx, cancel := context.WithCancel(context.Background())
	h.bridges[code] = cancel

	sub := h.feed.Subscribe(ctx, code)
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case session, ok := <-sub.C:
				if !ok {
					return
				}
				h.snapshots <- session
			}
		}
	}()
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// EncodeSnapshot wraps a session snapshot in the wire envelope.
func EncodeSnapshot(session *model.Session) ([]byte, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: MsgSessionUpdate, Payload: payload})
}

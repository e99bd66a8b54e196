package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types pushed over the websocket.
const (
	EventNewOrder    = "new_order"
	EventOrderUpdate = "order_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans lifecycle events out to two kinds of audiences: the admin
// broadcast group and per-owner groups keyed by owner id. A connection
// belongs to no audience until it declares one (JoinAdmin/JoinUser);
// delivery is best-effort and events with no registered audience are
// silently dropped.
type Hub struct {
	mu     sync.Mutex
	admins map[*websocket.Conn]struct{}
	users  map[uint]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		admins: make(map[*websocket.Conn]struct{}),
		users:  make(map[uint]map[*websocket.Conn]struct{}),
	}
}

// JoinAdmin registers conn into the admin broadcast group.
func (h *Hub) JoinAdmin(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.admins[conn] = struct{}{}
}

// JoinUser registers conn into the owner group for userID.
func (h *Hub) JoinUser(conn *websocket.Conn, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.users[userID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.users[userID] = conns
	}
	conns[conn] = struct{}{}
}

// Leave removes conn from every audience and closes it.
func (h *Hub) Leave(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.admins, conn)
	for userID, conns := range h.users {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
	conn.Close()
}

// EmitToAdmin pushes an event to every registered admin session.
func (h *Hub) EmitToAdmin(event string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.send(h.admins, Message{Event: event, Data: data})
}

// EmitToUser pushes an event to every session registered as userID.
func (h *Hub) EmitToUser(userID uint, event string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.send(h.users[userID], Message{Event: event, Data: data})
}

// send writes msg to each connection, holding h.mu. A write failure is
// logged and skipped; the order mutation already persisted, so a dead
// socket never fails the request that triggered the event.
func (h *Hub) send(conns map[*websocket.Conn]struct{}, msg Message) {
	if len(conns) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("realtime: error marshaling %s event: %v", msg.Event, err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("realtime: delivery failure for %s event: %v", msg.Event, err)
		}
	}
}

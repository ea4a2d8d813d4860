package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

// Event types pushed to kitchen display clients.
const (
	EventOrderInsert = "order_insert"
	EventOrderUpdate = "order_update"
	EventEventUpdate = "event_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	restaurantID string
	role         string
}

// Hub fans realtime messages out to the websocket clients of a restaurant
// (kitchen displays, admin dashboards). Constructed once per process and
// injected; there is no package-level hub.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]client)}
}

// Register adds a connection subscribed to one restaurant's events.
func (h *Hub) Register(conn *websocket.Conn, restaurantID, role string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = client{restaurantID: restaurantID, role: role}
}

// Unregister drops the connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// BroadcastOrderEvent pushes an order insert/update to the restaurant's
// clients.
func (h *Hub) BroadcastOrderEvent(ev OrderEvent) {
	event := EventOrderUpdate
	if ev.Type == OrderInserted {
		event = EventOrderInsert
	}
	h.broadcast(ev.Order.RestaurantID, Message{Event: event, Data: ev.Order})
}

// BroadcastEventUpdate pushes a promo/event change to the restaurant's
// clients.
func (h *Hub) BroadcastEventUpdate(ev models.RestaurantEvent) {
	h.broadcast(ev.RestaurantID, Message{Event: EventEventUpdate, Data: ev})
}

// ClientCount reports connected clients for one restaurant.
func (h *Hub) ClientCount(restaurantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, cl := range h.clients {
		if cl.restaurantID == restaurantID {
			n++
		}
	}
	return n
}

func (h *Hub) broadcast(restaurantID string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, cl := range h.clients {
		if cl.restaurantID != restaurantID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// A dead client would otherwise stall silently; drop it.
			utils.ErrorLogger.Printf("Error sending message to client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

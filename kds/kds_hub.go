package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dinehub/restaurant-backend/monitoring"
	"github.com/dinehub/restaurant-backend/utils"
)

// Socket event names, shared with the frontend displays.
const (
	EventNewOrder                = "new_order"
	EventOrderReady              = "order_ready"
	EventOrderStatusChanged      = "order_status_changed"
	EventOrderItemStatusChanged  = "order_item_status_changed"
	EventOrderBumped             = "order_bumped"
	EventOrderItemReassigned     = "order_item_reassigned"
	EventInventoryLow            = "inventory_low"
	EventKitchenPerformanceAlert = "kitchen_performance_alert"
	EventTableUpdated            = "table_updated"
	EventReservationCreated      = "reservation_created"
)

// Role-based rooms. Admins receive the manager feed.
const (
	RoomChef    = "chef_room"
	RoomStaff   = "staff_room"
	RoomManager = "manager_room"
)

func RoomForRole(role string) string {
	switch role {
	case "chef":
		return RoomChef
	case "staff":
		return RoomStaff
	case "manager", "admin":
		return RoomManager
	}
	return ""
}

type Message struct {
	Event string      `json:"event"`
	Room  string      `json:"-"`
	Data  interface{} `json:"data"`
}

type client struct {
	role   string
	userID uint
}

// Hub owns every live KDS connection. Writes to the sockets happen on a
// single notifier goroutine fed by a bounded queue, so a slow display can
// never block the request path; when the queue is full the event is
// dropped, since displays re-fetch current state over REST anyway.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
	queue   chan Message
}

var hub = &Hub{
	clients: make(map[*websocket.Conn]client),
	queue:   make(chan Message, 256),
}

func init() {
	go hub.run()
}

// RegisterClient adds a connection to its role room.
func RegisterClient(conn *websocket.Conn, role string, userID uint) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = client{role: role, userID: userID}
	monitoring.WebsocketConnections.Inc()
}

// UnregisterClient removes and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if _, ok := hub.clients[conn]; ok {
		delete(hub.clients, conn)
		monitoring.WebsocketConnections.Dec()
	}
	conn.Close()
}

func (h *Hub) run() {
	for msg := range h.queue {
		h.deliver(msg)
	}
}

func (h *Hub) deliver(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("kds: error marshaling %s event: %v", msg.Event, err)
		}
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, cl := range h.clients {
		if msg.Room != "" && RoomForRole(cl.role) != msg.Room {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Delivery is best effort; the read loop will reap the conn.
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("kds: error sending %s to %s client: %v", msg.Event, cl.role, err)
			}
		}
	}
}

// enqueue never blocks the caller.
func enqueue(msg Message) {
	select {
	case hub.queue <- msg:
		monitoring.EventsBroadcast.WithLabelValues(msg.Event).Inc()
	default:
		monitoring.EventsDropped.WithLabelValues(msg.Event).Inc()
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("kds: queue full, dropping %s event", msg.Event)
		}
	}
}

func envelope(event, message string, data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":      event,
		"message":   message,
		"payload":   data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

// BroadcastNewOrder tells the chef room a ticket just landed.
func BroadcastNewOrder(message string, data interface{}) {
	enqueue(Message{Event: EventNewOrder, Room: RoomChef, Data: envelope(EventNewOrder, message, data)})
}

// BroadcastOrderReady tells the staff room an order can be run.
func BroadcastOrderReady(message string, data interface{}) {
	enqueue(Message{Event: EventOrderReady, Room: RoomStaff, Data: envelope(EventOrderReady, message, data)})
}

func BroadcastOrderStatusChanged(data interface{}) {
	enqueue(Message{Event: EventOrderStatusChanged, Data: envelope(EventOrderStatusChanged, "Order status changed", data)})
}

func BroadcastOrderItemStatusChanged(data interface{}) {
	enqueue(Message{Event: EventOrderItemStatusChanged, Data: envelope(EventOrderItemStatusChanged, "Order item status changed", data)})
}

func BroadcastOrderBumped(data interface{}) {
	enqueue(Message{Event: EventOrderBumped, Data: envelope(EventOrderBumped, "Order bumped", data)})
}

func BroadcastOrderItemReassigned(data interface{}, oldStation, newStation string) {
	payload := map[string]interface{}{
		"item":        data,
		"old_station": oldStation,
		"new_station": newStation,
	}
	enqueue(Message{Event: EventOrderItemReassigned, Room: RoomChef, Data: envelope(EventOrderItemReassigned, "Order item reassigned", payload)})
}

// BroadcastInventoryLow alerts managers and chefs about low stock.
func BroadcastInventoryLow(message string, data interface{}) {
	env := envelope(EventInventoryLow, message, data)
	enqueue(Message{Event: EventInventoryLow, Room: RoomManager, Data: env})
	enqueue(Message{Event: EventInventoryLow, Room: RoomChef, Data: env})
}

func BroadcastKitchenPerformanceAlert(message string, data interface{}) {
	env := envelope(EventKitchenPerformanceAlert, message, data)
	enqueue(Message{Event: EventKitchenPerformanceAlert, Room: RoomManager, Data: env})
	enqueue(Message{Event: EventKitchenPerformanceAlert, Room: RoomChef, Data: env})
}

func BroadcastTableUpdated(data interface{}) {
	enqueue(Message{Event: EventTableUpdated, Room: RoomStaff, Data: envelope(EventTableUpdated, "Table updated", data)})
}

func BroadcastReservationCreated(data interface{}) {
	enqueue(Message{Event: EventReservationCreated, Room: RoomStaff, Data: envelope(EventReservationCreated, "Reservation created", data)})
}

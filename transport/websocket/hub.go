package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raidstone/wgevents/guard/entry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts before new ones are dropped.
	broadcastBuffer = 256
)

// AllActors subscribes a client to the events of every actor
const AllActors = "*"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	Actor string      `json:"actor"`
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	actor string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by actor ID
	actors map[string]map[*Client]bool
	mu     sync.RWMutex

	// Outbound messages for clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		actors:     make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients following an actor
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, actorID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		actor: normalizeActor(actorID),
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastEvent queues an event for the clients following an actor. The
// event is dropped if the hub is backed up.
func (h *Hub) BroadcastEvent(actorID string, event string, data interface{}) {
	message := &Message{
		Actor: normalizeActor(actorID),
		Event: event,
		Data:  data,
	}

	select {
	case h.broadcast <- message:
	default:
		log.Printf("Warning: WebSocket broadcast queue full, dropping %s for %s", event, message.Actor)
	}
}

// OnRegionEvent forwards region events to subscribed clients. It never
// cancels an event, so it can be subscribed to an entry.Handler directly.
func (h *Hub) OnRegionEvent(ev entry.Event) bool {
	h.BroadcastEvent(ev.Actor.String(), string(ev.Kind), ev)
	return true
}

// ClientCount returns the number of clients following an actor
func (h *Hub) ClientCount(actorID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.actors[normalizeActor(actorID)])
}

// registerClient adds a client to an actor
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.actors[client.actor] == nil {
		h.actors[client.actor] = make(map[*Client]bool)
	}
	h.actors[client.actor][client] = true

	log.Printf("Client registered for actor %s (total clients: %d)",
		client.actor, len(h.actors[client.actor]))
}

// unregisterClient removes a client from an actor
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(client)
}

func (h *Hub) unregisterLocked(client *Client) {
	if clients, ok := h.actors[client.actor]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up actors nobody follows
			if len(clients) == 0 {
				delete(h.actors, client.actor)
			}

			log.Printf("Client unregistered from actor %s (remaining clients: %d)",
				client.actor, len(clients))
		}
	}
}

// broadcastMessage sends a message to the clients of its actor and to the
// clients following every actor
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	targets := []string{message.Actor}
	if message.Actor != AllActors {
		targets = append(targets, AllActors)
	}
	for _, key := range targets {
		for client := range h.actors[key] {
			select {
			case client.send <- data:
			default:
				h.unregisterLocked(client)
			}
		}
	}
}

func normalizeActor(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming messages are ignored; reading keeps the connection alive
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

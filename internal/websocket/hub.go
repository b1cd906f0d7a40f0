package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"pharmaledger/internal/auth"
	"pharmaledger/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a single connected WebSocket client. unitID is nil for
// super_admin clients, which receive events from every unit.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	unitID *string
}

// event is the wire format pushed to dashboard clients
type event struct {
	Event       string `json:"event"`
	ID          string `json:"id"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	UnitID      string `json:"unit_id"`
	Description string `json:"description"`
}

type broadcastMsg struct {
	unitID  string
	payload []byte
}

// Hub maintains the set of active clients and pushes transaction events to
// the clients allowed to see them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMsg
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

// NewHub initializes a new WS Hub instance
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan broadcastMsg),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// TransactionChanged implements service.TransactionEvents: it fans a mutation
// out to super_admin clients and to clients of the transaction's unit.
func (h *Hub) TransactionChanged(eventName string, t *model.Transaction) {
	payload, err := json.Marshal(event{
		Event:       eventName,
		ID:          t.ID.String(),
		Category:    t.Category,
		Amount:      t.Amount.String(),
		UnitID:      t.UnitID.String(),
		Description: t.Description,
	})
	if err != nil {
		return
	}
	h.broadcast <- broadcastMsg{unitID: t.UnitID.String(), payload: payload}
}

// Run starts the core dispatch loop for WebSocket events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Println("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Println("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.unitID != nil && *client.unitID != message.unitID {
					continue
				}
				select {
				case client.Send <- message.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(message)

		// Fast track writing queued messages
		n := len(c.Send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		// Just reading to keep connection alive or handle client messages if necessary
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
	}
}

// ServeWs handles websocket requests from the peer. The credential comes via
// the token query param because browsers cannot set headers on WS upgrades.
func ServeWs(hub *Hub, c *gin.Context, gate *auth.Gate) {
	tokenString := c.Query("token")
	if tokenString == "" {
		log.Println("WebSocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	principal, err := gate.Resolve(c.Request.Context(), tokenString)
	if err != nil {
		log.Println("WebSocket connection rejected:", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// The feed is for unit dashboards: super_admin sees all units, unit
	// staff see their own. Stakeholder roles have no unit feed.
	var unitID *string
	switch principal.Role {
	case model.RoleSuperAdmin:
		unitID = nil
	case model.RoleAdmin, model.RoleOperator:
		if principal.UnitID == nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		id := principal.UnitID.String()
		unitID = &id
	default:
		log.Println("WebSocket connection rejected: inadequate permissions")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), unitID: unitID}
	client.Hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

package websocket

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/armyroster/internal/logger"
	"github.com/abrezinsky/armyroster/internal/models"
)

// Message types pushed to clients
const (
	TypeConnected       = "connected"
	TypeDraftUpdated    = "draft_updated"
	TypeDraftDeleted    = "draft_deleted"
	TypeCatalogReloaded = "catalog_reloaded"
	TypeSubscribe       = "subscribe"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// envelope routes a message. Draft 0 reaches every client.
type envelope struct {
	draftID int64
	msg     models.WSMessage
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub.
// A client subscribed to a draft only receives that draft's updates.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan models.WSMessage
	mu      sync.Mutex
	draftID int64
}

func (c *Client) subscription() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftID
}

func (c *Client) subscribe(draftID int64) {
	c.mu.Lock()
	c.draftID = draftID
	c.mu.Unlock()
}

// New creates a new Hub instance
func New(log logger.Logger) *Hub {
	return &Hub{
		log:        log.With("component", "websocket"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total, "draft_id", client.subscription())

			client.send <- models.WSMessage{
				Type:    TypeConnected,
				Payload: map[string]any{"draftId": client.subscription()},
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if sub := client.subscription(); env.draftID != 0 && sub != 0 && sub != env.draftID {
					continue
				}
				select {
				case client.send <- env.msg:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload any) {
	h.broadcast <- envelope{msg: models.WSMessage{Type: msgType, Payload: payload}}
}

// BroadcastDraft sends a message to clients following the draft and to
// clients that follow every draft
func (h *Hub) BroadcastDraft(draftID int64, msgType string, payload any) {
	h.broadcast <- envelope{draftID: draftID, msg: models.WSMessage{Type: msgType, Payload: payload}}
}

// DraftUpdated implements services.Broadcaster
func (h *Hub) DraftUpdated(draftID int64, payload any) {
	h.BroadcastDraft(draftID, TypeDraftUpdated, payload)
}

// DraftDeleted implements services.Broadcaster
func (h *Hub) DraftDeleted(draftID int64) {
	h.BroadcastDraft(draftID, TypeDraftDeleted, map[string]any{"draftId": draftID})
}

// CatalogReloaded tells every client to refetch catalog data
func (h *Hub) CatalogReloaded() {
	h.BroadcastMessage(TypeCatalogReloaded, nil)
}

// subscribeRequest is the payload of a client "subscribe" message
type subscribeRequest struct {
	DraftID int64 `json:"draftId"`
}

// handleMessage processes a message sent by the client
func (c *Client) handleMessage(data []byte) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		c.hub.log.Debug("Ignoring malformed message", "error", err)
		return
	}

	switch msg.Type {
	case TypeSubscribe:
		var req subscribeRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.DraftID < 0 {
			c.hub.log.Debug("Ignoring malformed subscription")
			return
		}
		c.subscribe(req.DraftID)
		c.hub.log.Debug("Client subscribed", "draft_id", req.DraftID)
	default:
		c.hub.log.Debug("Received message", "type", msg.Type)
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
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
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
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

// ServeWs handles websocket requests from clients. The optional "draft"
// query parameter subscribes the client to one draft.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	var draftID int64
	if v := r.URL.Query().Get("draft"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			http.Error(w, "invalid draft parameter", http.StatusBadRequest)
			return
		}
		draftID = id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan models.WSMessage, sendBuffer),
		draftID: draftID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

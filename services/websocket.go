package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only ever send pings, so inbound frames stay small.
	maxMessageSize = 4 * 1024

	sendBuffer = 16
)

// Message types pushed to subscribers.
const (
	MessageInvalidate = "invalidate"
	MessagePing       = "ping"
	MessagePong       = "pong"
)

// Message is the frame exchanged over the websocket.
type Message struct {
	Type  string `json:"type"`
	Owner string `json:"owner,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Client is one websocket subscriber. It only hears about its owner's tree.
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Owner string
}

func NewClient(hub *Hub, conn *websocket.Conn, owner string) *Client {
	return &Client{Hub: hub, Conn: conn, Send: make(chan []byte, sendBuffer), Owner: owner}
}

// ReadPump reads from the connection until it closes, answering pings.
// Anything else a client sends is ignored: mutations go through HTTP.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", "owner", c.Owner, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.Hub.logger.Debug("ignoring malformed websocket message", "owner", c.Owner, "error", err)
			continue
		}
		if msg.Type != MessagePing {
			continue
		}

		pong, err := json.Marshal(Message{
			Type: MessagePong,
			Data: map[string]string{"timestamp": time.Now().Format(time.RFC3339)},
		})
		if err != nil {
			continue
		}
		select {
		case c.Send <- pong:
		default:
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub tracks connected clients by owner and tells them when their tree has
// changed. It implements the mutator's invalidation hook.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	invalidate chan string
	done       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		invalidate: make(chan string, invalidateQueue),
		done:       make(chan struct{}),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// invalidateQueue is how many invalidations may wait for Run.
const invalidateQueue = 64

// Invalidate queues a push to every client of ownerID. It never blocks: when
// the queue is full, as it soon is if Run is not draining it, the
// invalidation is dropped with a warning.
func (h *Hub) Invalidate(ownerID string) {
	select {
	case h.invalidate <- ownerID:
	case <-h.done:
	default:
		h.logger.Warn("invalidation dropped, hub queue full", "owner", ownerID)
	}
}

// Count reports how many clients are connected for ownerID.
func (h *Hub) Count(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[ownerID])
}

// Run serves registrations and pushes until ctx is done, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for owner, set := range h.clients {
			for c := range set {
				close(c.Send)
			}
			delete(h.clients, owner)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.add(client)
			h.logger.Debug("client connected", "owner", client.Owner)
		case client := <-h.unregister:
			if h.drop(client) {
				h.logger.Debug("client disconnected", "owner", client.Owner)
			}
		case owner := <-h.invalidate:
			h.push(owner)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.Owner]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[c.Owner] = set
	}
	set[c] = true
}

func (h *Hub) drop(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropLocked(c)
}

func (h *Hub) dropLocked(c *Client) bool {
	set := h.clients[c.Owner]
	if !set[c] {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.Owner)
	}
	close(c.Send)
	return true
}

func (h *Hub) push(owner string) {
	msg, err := json.Marshal(Message{Type: MessageInvalidate, Owner: owner})
	if err != nil {
		h.logger.Error("marshal invalidation", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[owner] {
		select {
		case c.Send <- msg:
		default:
			// Send buffer full: the client is stuck, drop it.
			h.logger.Warn("client send buffer full, removing client", "owner", owner)
			h.dropLocked(c)
		}
	}
}

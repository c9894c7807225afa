// Package notify fans "something changed" events out to connected
// point-of-sale screens over websockets.
package notify

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/metrics"
)

const (
	broadcastQueue = 256
	clientQueue    = 32
)

// Event is the structured payload pushed after a write.
type Event struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	ID     string `json:"id"`
	Data   any    `json:"data,omitempty"`

	// Set on conversions.
	OrderID     string `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
}

// Client is one open notification channel. Messages queued on it are
// delivered by its write pump.
type Client struct {
	send chan []byte
}

func NewClient() *Client {
	return &Client{send: make(chan []byte, clientQueue)}
}

// Messages is closed when the hub drops the client.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Hub owns the client set. Only the Run goroutine reads or mutates it.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	clients    map[*Client]struct{}
	connected  atomic.Int64
	log        zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		log:        log.With().Str("component", "notify").Logger(),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.updateCount()
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// fanOut offers msg to every client. Clients whose queue is full are
// removed once the pass is over.
func (h *Hub) fanOut(msg []byte) {
	var failed []*Client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		h.log.Warn().Msg("client queue full, dropping client")
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.connected.Store(int64(len(h.clients)))
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

// Register adds c to the set. After the hub stopped, c is closed instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues payload for every connected client. Strings and byte
// slices are sent as is, anything else is JSON encoded. It never blocks and
// never fails the caller: an unencodable payload or a full queue is logged
// and dropped.
func (h *Hub) Broadcast(payload any) {
	var msg []byte
	switch p := payload.(type) {
	case string:
		msg = []byte(p)
	case []byte:
		msg = p
	default:
		encoded, err := json.Marshal(p)
		if err != nil {
			h.log.Warn().Err(err).Msg("broadcast payload not encodable")
			return
		}
		msg = encoded
	}

	select {
	case h.broadcast <- msg:
	default:
		metrics.BroadcastsDropped.Inc()
		h.log.Warn().Msg("broadcast queue full, event dropped")
	}
}

// ConnectedClients reports the size of the client set.
func (h *Hub) ConnectedClients() int {
	return int(h.connected.Load())
}

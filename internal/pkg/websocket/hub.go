package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Envelope is the JSON frame pushed to connected accounts
type Envelope struct {
	Type      string      `json:"type"`
	AccountID int64       `json:"accountId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub tracks live connections per account and fans out pushes to them.
// One account may hold several connections (tabs, devices).
type Hub struct {
	clients map[int64]map[*Client]struct{}

	deliver    chan *Envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		deliver:    make(chan *Envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case env := <-h.deliver:
			h.deliverEnvelope(env)
		}
	}
}

// Push queues a frame for every connection of accountID.
// It never blocks; frames are dropped when the queue is full.
func (h *Hub) Push(accountID int64, kind string, data interface{}) {
	env := &Envelope{Type: kind, AccountID: accountID, Data: data, Timestamp: time.Now().UTC()}
	select {
	case h.deliver <- env:
	default:
		h.logger.Warn().Int64("accountID", accountID).Str("type", kind).Msg("Push queue full, dropping frame")
	}
}

// attach hands a client to the running hub; false once the hub has stopped
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ConnectedCount returns the number of live connections for an account
func (h *Hub) ConnectedCount(accountID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.accountID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.accountID] = set
	}
	set[client] = struct{}{}

	h.logger.Info().
		Int64("accountID", client.accountID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

// dropLocked removes a client and closes its send channel; h.mu must be held
func (h *Hub) dropLocked(client *Client) {
	set, ok := h.clients[client.accountID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.accountID)
	}

	h.logger.Info().
		Int64("accountID", client.accountID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) deliverEnvelope(env *Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Int64("accountID", env.AccountID).Msg("Failed to marshal push frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[env.AccountID]
	if !ok {
		h.logger.Debug().Int64("accountID", env.AccountID).Msg("No live connection for push")
		return
	}

	for client := range set {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.dropLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.dropLocked(client)
		}
	}
}

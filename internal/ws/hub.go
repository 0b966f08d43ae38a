package ws

import (
	"sync"

	"mypetsvoice/backend/internal/session"
	"mypetsvoice/backend/pkg/logger"
)

// Hub tracks live connections and hands each one the shared session store
// and generation pool
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	store      session.Store
	pool       *Pool
	log        *logger.Logger
	mu         sync.Mutex
}

func NewHub(store session.Store, pool *Pool, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		store:      store,
		pool:       pool,
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("client registered", "session_id", client.SessionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Cancel only; send stays open because resultLoop may
				// still produce into it. writePump exits on the context.
				client.cancel()
			}
			h.mu.Unlock()
			h.log.Debug("client unregistered", "session_id", client.SessionID)
		}
	}
}

// ClientCount reports the number of live connections, for health reporting
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

package server

import (
	"context"
	"sync"

	"hideseek-arcade/internal/game"
	"hideseek-arcade/internal/store"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Store is everything the server persists
type Store interface {
	StatsStore
	AuthStore
	TopStats(ctx context.Context, limit int) ([]game.Stats, error)
}

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	teardown   sync.WaitGroup // session removals running off the loop
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	db        Store
	auth      *Auth
	analytics *store.Analytics
}

// NewHub creates a new Hub backed by db
func NewHub(ctx context.Context, cfg game.Config, db Store, analytics *store.Analytics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		sessions:   NewSessionManager(cfg, db, analytics),
		ipConns:    make(map[string]int),
		db:         db,
		auth:       NewAuth(ctx, db),
		analytics:  analytics,
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until ctx is cancelled,
// then stops every session.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.detach(ctx, client)

		case <-ctx.Done():
			h.teardown.Wait()
			h.sessions.StopAll(context.WithoutCancel(ctx))
			return nil
		}
	}
}

// detach removes a closed client from whatever session it was part of.
// An owner's session is stopped and saved on its own goroutine.
func (h *Hub) detach(ctx context.Context, client *Client) {
	if client.sessionID == "" {
		return
	}
	sess := h.sessions.GetSession(client.sessionID)
	if sess == nil {
		return
	}
	if client.isController {
		sess.RemoveController(client)
		return
	}
	id := client.sessionID
	h.teardown.Add(1)
	go func() {
		defer h.teardown.Done()
		h.sessions.RemoveSession(context.WithoutCancel(ctx), id)
	}()
}

// Sessions returns the session manager
func (h *Hub) Sessions() *SessionManager {
	return h.sessions
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

package hub

import (
	"log/slog"
	"sync"

	"github.com/saif-programmer/together/domain"
)

// Registry tracks the connections currently able to receive broadcasts.
type Registry struct {
	clients map[string]domain.Connection
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]domain.Connection),
	}
}

// Register adds conn and returns its id. An id that is already present is left untouched.
func (r *Registry) Register(conn domain.Connection) string {
	id := conn.ID()

	r.mu.Lock()
	if _, exists := r.clients[id]; exists {
		r.mu.Unlock()
		return id
	}
	r.clients[id] = conn
	count := len(r.clients)
	r.mu.Unlock()

	slog.Info("client connected", "clientId", id, "clients", count)
	return id
}

// Unregister removes id and reports whether it was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	_, exists := r.clients[id]
	if exists {
		delete(r.clients, id)
	}
	count := len(r.clients)
	r.mu.Unlock()

	if exists {
		slog.Info("client disconnected", "clientId", id, "clients", count)
	}
	return exists
}

func (r *Registry) Get(id string) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.clients[id]
	return conn, ok
}

// ForEach calls fn for every connection registered at the time of the call.
// fn runs without the registry lock held, so it may register or unregister.
func (r *Registry) ForEach(fn func(domain.Connection)) {
	for _, conn := range r.snapshot() {
		fn(conn)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Registry) snapshot() []domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]domain.Connection, 0, len(r.clients))
	for _, conn := range r.clients {
		conns = append(conns, conn)
	}
	return conns
}

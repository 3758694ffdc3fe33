package hub

import (
	"log/slog"
	"sync"

	"github.com/saif-programmer/together/domain"
)

// Hub fans frames out to the connections of a Registry.
type Hub struct {
	registry *Registry
}

func New(registry *Registry) *Hub {
	return &Hub{registry: registry}
}

func (h *Hub) Registry() *Registry { return h.registry }

// Broadcast queues data on every registered connection except exclude (empty
// excludes nobody) and returns how many accepted it. Connections that reject
// the frame are unregistered before Broadcast returns.
func (h *Hub) Broadcast(data []byte, exclude string) int {
	var (
		delivered int
		failed    []domain.Connection
	)

	h.registry.ForEach(func(conn domain.Connection) {
		if exclude != "" && conn.ID() == exclude {
			return
		}
		if err := conn.Send(data); err != nil {
			slog.Warn("dropping client", "clientId", conn.ID(), "error", err)
			failed = append(failed, conn)
			return
		}
		delivered++
	})

	for _, conn := range failed {
		h.Evict(conn)
	}
	return delivered
}

// Evict unregisters conn now and closes it in the background.
func (h *Hub) Evict(conn domain.Connection) {
	if !h.registry.Unregister(conn.ID()) {
		return
	}
	go func(c domain.Connection) {
		if err := c.Close(); err != nil {
			slog.Debug("close after eviction", "clientId", c.ID(), "error", err)
		}
	}(conn)
}

func (h *Hub) Stats() (clients int) {
	return h.registry.Len()
}

// CloseAll closes every registered connection and waits for them. Used on shutdown.
func (h *Hub) CloseAll() {
	var wg sync.WaitGroup
	h.registry.ForEach(func(conn domain.Connection) {
		h.registry.Unregister(conn.ID())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := conn.Close(); err != nil {
				slog.Debug("close on shutdown", "clientId", conn.ID(), "error", err)
			}
		}()
	})
	wg.Wait()
}

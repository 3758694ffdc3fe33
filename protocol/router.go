package protocol

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/saif-programmer/together/domain"
)

// Router decodes client frames and dispatches them.
type Router struct {
	store       domain.MessageStore
	broadcaster domain.Broadcaster
	canvas      *CanvasRelay

	// publishMu keeps append+broadcast and snapshot+reply each in one step so
	// every peer sees history in sequence order with no gaps.
	publishMu sync.Mutex
}

func NewRouter(store domain.MessageStore, b domain.Broadcaster) *Router {
	return &Router{
		store:       store,
		broadcaster: b,
		canvas:      NewCanvasRelay(b),
	}
}

func (r *Router) Handle(conn domain.Connection, data []byte) error {
	cmd, err := Decode(data)
	if err != nil {
		slog.Warn("invalid frame", "clientId", conn.ID(), "error", err)
		return err
	}

	switch c := cmd.(type) {
	case FetchMessages:
		return r.fetchMessages(conn)
	case NewMessage:
		return r.newMessage(c)
	case NewCanvasCoords:
		return r.canvas.Relay(conn.ID(), c.OffsetX, c.OffsetY)
	default:
		return fmt.Errorf("%w: unhandled command %s", domain.ErrMalformed, cmd.Name())
	}
}

// fetchMessages holds publishMu so no new_message frame can reach conn
// ahead of a replay that does not contain it.
func (r *Router) fetchMessages(conn domain.Connection) error {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	frame, err := EncodeMessages(r.store.Snapshot())
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	if err := conn.Send(frame); err != nil {
		if !errors.Is(err, domain.ErrClosed) {
			r.broadcaster.Evict(conn)
		}
		return fmt.Errorf("reply %s: %w", CmdMessages, err)
	}
	return nil
}

func (r *Router) newMessage(c NewMessage) error {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	msg := r.store.Append(c.From, c.Content)
	frame, err := EncodeNewMessage(msg)
	if err != nil {
		return fmt.Errorf("encode message %d: %w", msg.ID, err)
	}
	n := r.broadcaster.Broadcast(frame, "")
	slog.Debug("message broadcast", "messageId", msg.ID, "from", msg.Sender, "recipients", n)
	return nil
}

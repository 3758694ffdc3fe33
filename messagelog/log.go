package messagelog

import (
	"sync"
	"time"

	"github.com/saif-programmer/together/domain"
)

// Log is the append-only, in-memory history of chat messages.
type Log struct {
	mu       sync.RWMutex
	messages []domain.Message
	nextID   uint64
	now      func() time.Time
}

type Option func(*Log)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func New(opts ...Option) *Log {
	l := &Log{
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append stores a message under the next sequence number.
func (l *Log) Append(sender, content string) domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := domain.Message{
		ID:        l.nextID,
		Sender:    sender,
		Content:   content,
		CreatedAt: l.now(),
	}
	l.nextID++
	l.messages = append(l.messages, msg)
	return msg
}

// Snapshot returns a copy of the log in append order. Never nil.
func (l *Log) Snapshot() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

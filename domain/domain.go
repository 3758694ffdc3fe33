package domain

import (
	"errors"
	"time"
)

var (
	// ErrMalformed marks an inbound frame that could not be decoded into a known command.
	ErrMalformed = errors.New("malformed frame")
	// ErrSendFailed marks a peer whose outbound buffer is full or unreachable.
	ErrSendFailed = errors.New("send failed")
	// ErrClosed marks a connection that is no longer open.
	ErrClosed = errors.New("connection closed")
)

// Message is one entry of the shared message log. Immutable once appended.
type Message struct {
	ID        uint64
	Sender    string
	Content   string
	CreatedAt time.Time
}

type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

type Registry interface {
	Register(conn Connection) string
	Unregister(id string) bool
}

type Broadcaster interface {
	Broadcast(data []byte, exclude string) int
	Evict(conn Connection)
}

type MessageStore interface {
	Append(sender, content string) Message
	Snapshot() []Message
}

type MessageHandler interface {
	Handle(conn Connection, data []byte) error
}

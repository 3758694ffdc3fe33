package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saif-programmer/together/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	DefaultSendBuffer     = 256
	DefaultMaxMessageSize = 4096
)

type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type Options struct {
	SendBuffer     int
	MaxMessageSize int64
}

// Session owns one client socket: a read pump feeding the handler and a
// write pump draining the send buffer.
type Session struct {
	id       string
	ws       *websocket.Conn
	send     chan []byte
	done     chan struct{}
	registry domain.Registry
	handler  domain.MessageHandler
	maxSize  int64

	mu    sync.RWMutex
	state State
}

func NewSession(id string, ws *websocket.Conn, r domain.Registry, h domain.MessageHandler, opts Options) *Session {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}
	return &Session{
		id:       id,
		ws:       ws,
		send:     make(chan []byte, opts.SendBuffer),
		done:     make(chan struct{}),
		registry: r,
		handler:  h,
		maxSize:  opts.MaxMessageSize,
		state:    StateConnecting,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Send queues data without blocking.
func (s *Session) Send(data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateOpen {
		return domain.ErrClosed
	}
	select {
	case s.send <- data:
		return nil
	default:
		return domain.ErrSendFailed
	}
}

// Start registers the session and launches its pumps.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return
	}
	s.state = StateOpen
	s.mu.Unlock()

	s.registry.Register(s)
	go s.writePump()
	go s.readPump()
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosing || s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosing
	close(s.done)
	s.mu.Unlock()

	s.registry.Unregister(s.id)
	discarded := s.drain()

	var err error
	if s.ws != nil {
		deadline := time.Now().Add(writeWait)
		_ = s.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.ws.Close()
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()

	slog.Debug("session closed", "clientId", s.id, "discarded", discarded)
	return err
}

func (s *Session) drain() int {
	n := 0
	for {
		select {
		case <-s.send:
			n++
		default:
			return n
		}
	}
}

func (s *Session) readPump() {
	defer s.Close()

	s.ws.SetReadLimit(s.maxSize)
	s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		s.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "clientId", s.id, "error", err)
			}
			return
		}

		if err := s.handler.Handle(s, data); err != nil {
			slog.Debug("frame not handled", "clientId", s.id, "error", err)
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case message := <-s.send:
			s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("write error", "clientId", s.id, "error", err)
				return
			}
		case <-ticker.C:
			s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/saif-programmer/together/hub"
	"github.com/saif-programmer/together/messagelog"
	"github.com/saif-programmer/together/protocol"
	ws "github.com/saif-programmer/together/websocket"
)

type Options struct {
	AllowedOrigins []string
	Session        ws.Options
}

// Server exposes the websocket endpoint plus health and stats.
type Server struct {
	hub      *hub.Hub
	log      *messagelog.Log
	router   *protocol.Router
	upgrader websocket.Upgrader
	opts     Options
}

func New(h *hub.Hub, log *messagelog.Log, opts Options) *Server {
	s := &Server{
		hub:    h,
		log:    log,
		router: protocol.NewRouter(log, h),
		opts:   opts,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.serveWS)
	r.Get("/ws/room/", s.serveWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger)
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/health", healthHandler)
		r.Get("/stats", s.statsHandler)
	})
	return r
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.opts.AllowedOrigins, origin)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade error", "error", err)
		return
	}

	session := ws.NewSession(uuid.New().String(), conn, s.hub.Registry(), s.router, s.opts.Session)
	session.Start()
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"clients":  s.hub.Stats(),
		"messages": s.log.Len(),
	})
}

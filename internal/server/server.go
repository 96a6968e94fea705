package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/runner"
)

// Server bridges remote presentation hosts to a running match over
// WebSocket. Hosts send pointer events and receive a snapshot per frame.
type Server struct {
	runner      *runner.Runner
	formatter   *game.EventFormatter
	upgrader    websocket.Upgrader
	logger      *log.Logger
	httpServer  *http.Server
	mu          sync.RWMutex
	connections map[*Connection]bool
	nextConnID  int64
}

// NewServer creates a bridge for r
func NewServer(r *runner.Runner, logger *log.Logger) *Server {
	s := &Server{
		runner:    r,
		formatter: game.NewEventFormatter(game.FormattingOptions{ShowFrame: true, ShowForce: true}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Hosts are typically served from a different origin (file:// or a dev server)
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	r.OnEvent(game.EventSubscriberFunc(s.onGameEvent))
	return s
}

// Handler returns the HTTP routes served by the bridge
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	return mux
}

// Serve accepts connections on l until Shutdown is called. Snapshots are
// broadcast until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	snaps, unsubscribe := s.runner.Subscribe()
	go s.broadcastSnapshots(ctx, snaps, unsubscribe)

	s.logger.Info("Starting WebSocket server", "addr", l.Addr().String())
	err := s.httpServer.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and closes every host. A Serve
// call made after Shutdown returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	return s.httpServer.Shutdown(ctx)
}

// ConnectionCount returns the number of connected hosts
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	s.mu.Lock()
	s.nextConnID++
	client := NewConnection(s.nextConnID, conn, s.runner, s.logger)
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()

	s.logger.Info("Host connected", "conn", client.ID(), "total", total)
	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Host disconnected", "conn", client.ID(), "total", total)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.runner.Snapshot()); err != nil {
		s.logger.Error("Failed to encode state", "error", err)
	}
}

// broadcastSnapshots forwards every frame to all hosts
func (s *Server) broadcastSnapshots(ctx context.Context, snaps <-chan game.Snapshot, unsubscribe func()) {
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			msg, err := NewMessage(MessageTypeSnapshot, snap)
			if err != nil {
				s.logger.Error("Failed to create snapshot message", "error", err)
				continue
			}
			s.broadcast(msg)
		}
	}
}

// onGameEvent runs inside the frame; it only queues messages
func (s *Server) onGameEvent(event game.GameEvent) {
	s.logger.Debug("Match event", "event", s.formatter.Format(event))

	goal, ok := event.(game.GoalEvent)
	if !ok {
		return
	}
	msg, err := NewMessage(MessageTypeGoal, GoalDataFromEvent(goal))
	if err != nil {
		s.logger.Error("Failed to create goal message", "error", err)
		return
	}
	s.broadcast(msg)
}

func (s *Server) broadcast(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Debug("Failed to queue message", "error", err, "conn", conn.ID())
		}
	}
}

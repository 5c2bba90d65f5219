// Package server exposes the table registry over WebSockets. Each connection
// is a client session identified by the id sent in its welcome message.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokey/internal/gameid"
	"github.com/lox/pokey/internal/registry"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server
type Options struct {
	Addr        string
	TurnTimeout time.Duration
	// Seed makes table shuffles reproducible when set
	Seed *int64
	// Clock drives turn timers, defaulting to the real clock
	Clock quartz.Clock
	// AllowedOrigins for CORS, empty allows all
	AllowedOrigins []string
	// AccessLog disables the HTTP access log when false
	AccessLog bool
}

// Server represents the WebSocket server
type Server struct {
	addr      string
	opts      Options
	upgrader  websocket.Upgrader
	registry  *registry.Registry
	logger    *log.Logger
	ids       *gameid.Generator
	mu        sync.RWMutex
	clients   map[string]*Connection
	closing   bool
	clientsWG sync.WaitGroup
}

// NewServer creates a new WebSocket server with an empty registry
func NewServer(opts Options, logger *log.Logger) *Server {
	s := &Server{
		addr: opts.Addr,
		opts: opts,
		upgrader: websocket.Upgrader{
			// browsers are filtered by the CORS policy
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.WithPrefix("server"),
		ids:     gameid.NewGenerator(nil),
		clients: make(map[string]*Connection),
	}

	regOpts := []registry.Option{
		registry.WithTurnTimeout(opts.TurnTimeout),
		registry.WithIDGenerator(s.ids),
	}
	if opts.Clock != nil {
		regOpts = append(regOpts, registry.WithClock(opts.Clock))
	}
	if opts.Seed != nil {
		regOpts = append(regOpts, registry.WithSeed(*opts.Seed))
	}
	s.registry = registry.New(s, logger, regOpts...)
	return s
}

// Registry returns the tables served
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Handler returns the HTTP routes wrapped with CORS and access logging
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Methods(http.MethodGet).Path("/ws").HandlerFunc(s.handleWebSocket)
	r.Methods(http.MethodGet).Path("/health").HandlerFunc(s.handleHealth)
	r.Methods(http.MethodGet).Path("/tables").HandlerFunc(s.handleListTables)
	r.Methods(http.MethodGet).Path("/tables/{id}").HandlerFunc(s.handleGetTable)

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
	})
	h := c.Handler(r)

	if !s.opts.AccessLog {
		return h
	}
	access := s.logger.WithPrefix("http").StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
	return handlers.CombinedLoggingHandler(access.Writer(), h)
}

// ListenAndServe serves until ctx is cancelled, then closes every client
// connection and shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Stop()
		return err
	})
	return g.Wait()
}

// Stop closes every client connection and stops turn timers
func (s *Server) Stop() {
	s.mu.Lock()
	s.closing = true
	conns := make([]*Connection, 0, len(s.clients))
	for _, conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	s.clientsWG.Wait()
	s.registry.Close()
}

// Publish delivers a registry event to a connected client. Events for
// clients that already went away are dropped.
func (s *Server) Publish(clientID string, ev registry.Event) {
	s.mu.RLock()
	conn, ok := s.clients[clientID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	msg, err := eventMessage(ev)
	if err != nil {
		s.logger.Error("Failed to encode event", "type", ev.EventType(), "error", err)
		return
	}
	if err := conn.SendMessage(msg); err != nil {
		s.logger.Debug("Dropped event for client", "client", clientID, "type", msg.Type, "error", err)
	}
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) register(conn *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.clients[conn.ID()] = conn
	s.clientsWG.Add(1)
	s.logger.Info("Client connected", "client", conn.ID(), "total", len(s.clients))
	return true
}

// unregister removes a closed connection and leaves its table
func (s *Server) unregister(conn *Connection) {
	defer s.clientsWG.Done()

	s.mu.Lock()
	delete(s.clients, conn.ID())
	total := len(s.clients)
	s.mu.Unlock()

	s.registry.Disconnect(conn.ID())
	s.logger.Info("Client disconnected", "client", conn.ID(), "total", total)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(s.ids.New(), ws, s.registry, s.logger)
	if !s.register(client) {
		_ = client.Close()
		return
	}
	client.sendData(MessageTypeWelcome, WelcomeData{ClientID: client.ID()})
	client.Start(s.unregister)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TableListData{Tables: s.registry.ListTables()})
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	snap, err := s.registry.TableView(mux.Vars(r)["id"])
	if errors.Is(err, registry.ErrTableNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorData{Code: CodeTableNotFound, Message: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorData{Code: CodeInternal, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

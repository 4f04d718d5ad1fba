// Package ws serves Link-Up over websockets with a small JSON protocol.
// Every connection plays its own single-player session.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/linkup/internal/config"
	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
	"github.com/vovakirdan/linkup/internal/storage"
)

const maxPlayerName = 24

// ServerConfig holds configuration for the websocket server.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// Store receives won games. Nil disables persistence. The server does
	// not close it.
	Store *storage.Store

	// Linkup supplies the tile catalog, timings and difficulties.
	Linkup config.LinkupConfig

	// TickInterval is how often pending matches are committed.
	TickInterval time.Duration

	// Clock is shared by every session. Nil means the wall clock.
	Clock engine.Clock

	// Logger receives connection events. Defaults to a prefixed stderr logger.
	Logger *log.Logger
}

// DefaultServerConfig returns a config with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:      ":8080",
		Linkup:       config.DefaultLinkupConfig(),
		TickInterval: 50 * time.Millisecond,
	}
}

// Server accepts websocket connections on /ws.
type Server struct {
	config   ServerConfig
	store    *storage.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
	http     *http.Server

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewServer creates a websocket server.
func NewServer(cfg ServerConfig) *Server {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultServerConfig().TickInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "linkup-ws",
		})
	}

	s := &Server{
		config:  cfg,
		store:   cfg.Store,
		logger:  logger,
		closing: make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes: /ws for play and /healthz for probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// ServeWS upgrades the request and starts the connection's goroutines.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.closing:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := newClient(s, conn)
	s.logger.Info("client connected", "remote", conn.RemoteAddr().String())

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		c.WritePump()
	}()
	go func() {
		defer s.wg.Done()
		c.ReadPump()
	}()
	go func() {
		defer s.wg.Done()
		c.run()
		s.logger.Info("client disconnected", "remote", conn.RemoteAddr().String())
	}()
}

// Serve runs the server until ctx is cancelled, then shuts it down.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("ws: cannot listen on %s: %w", s.config.Address, err)
	}
	s.logger.Info("starting websocket server", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("server error", "error", err)
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown()
	}
}

// Shutdown stops accepting connections and closes the open ones.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.closeOnce.Do(func() { close(s.closing) })
	err := s.http.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("connections still open after shutdown timeout")
	}
	return err
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

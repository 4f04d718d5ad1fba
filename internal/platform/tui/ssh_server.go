package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/linkup/internal/config"
	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/registry"
	"github.com/vovakirdan/linkup/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.arcade/host_key.
	HostKeyPath string

	// DBPath is the path to the results database. Ignored when Store is set.
	DBPath string

	// Store is a shared results store. The server does not close it.
	Store *storage.Store

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate for each session.
	TickRate int

	// Linkup supplies difficulty summaries for the menu.
	Linkup config.LinkupConfig

	// Logger receives session events. Defaults to a prefixed stderr logger.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.arcade/linkup.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
		Linkup:      config.DefaultLinkupConfig(),
	}
}

// SSHServer wraps a Wish SSH server serving Link-Up sessions.
type SSHServer struct {
	config    SSHServerConfig
	server    *ssh.Server
	store     *storage.Store
	ownsStore bool
	logger    *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "linkup-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		store:  cfg.Store,
		logger: logger,
	}

	if srv.store == nil {
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("could not open results database", "error", err)
			// Continue without storage
		} else {
			srv.store = store
			srv.ownsStore = true
		}
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			srv.closeStore()
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".arcade", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		srv.closeStore()
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		srv.closeStore()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

func (s *SSHServer) closeStore() {
	if s.ownsStore && s.store != nil {
		s.store.Close()
	}
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	player := Player{Name: sshSession.User(), SessionID: sessionID(sshSession)}
	model := NewSessionModel(s.store, s.config.Linkup, cfg, player).WithLogger(s.logger)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// sessionID returns the id assigned by the logging middleware, or a fresh one.
func sessionID(sshSession ssh.Session) string {
	if id, ok := sshSession.Context().Value(sessionIDKey{}).(string); ok {
		return id
	}
	return uuid.NewString()
}

type sessionIDKey struct{}

// loggingMiddleware assigns a session id and logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		id := uuid.NewString()
		sshSession.Context().SetValue(sessionIDKey{}, id)

		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"session", id,
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"session", id,
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// Serve runs the server until ctx is cancelled, then shuts it down.
func (s *SSHServer) Serve(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("server error", "error", err)
			s.closeStore()
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown()
	}
}

// ListenAndServe starts the SSH server and blocks until interrupted.
func (s *SSHServer) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.closeStore()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionScreen is the screen a SessionModel is showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenScores
)

// SessionModel manages the full session flow: menu -> game -> menu, with
// the leaderboard reachable from the menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	store      *storage.Store
	linkup     config.LinkupConfig
	config     core.RuntimeConfig
	player     Player
	logger     *log.Logger
	screen     sessionScreen
	menu       MenuModel
	gameModel  *GameModel
	scoreboard ScoreboardModel
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(store *storage.Store, lcfg config.LinkupConfig, cfg core.RuntimeConfig, player Player) SessionModel {
	return SessionModel{
		store:  store,
		linkup: lcfg,
		config: cfg,
		player: player,
		logger: log.Default(),
		menu:   NewMenuModel(store, lcfg, cfg),
	}
}

// WithLogger sets the logger passed to games.
func (m SessionModel) WithLogger(l *log.Logger) SessionModel {
	if l != nil {
		m.logger = l
	}
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.gameModel = nil
	m.menu = NewMenuModel(m.store, m.linkup, m.config)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode. The menu's own quit
// command is dropped unless the player really quit.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsScoreboard() {
		m.screen = screenScores
		m.scoreboard = NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
		return m, m.scoreboard.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		game, err := registry.Create(selected.GameID)
		if err != nil {
			// Shouldn't happen since menu only shows registered games
			return m.toMenu()
		}

		m.config = m.menu.Config()
		m.config.Seed = time.Now().UnixNano()

		gameModel := NewGameModel(game, m.store, m.config, m.player).WithLogger(m.logger)
		m.gameModel = &gameModel
		m.screen = screenGame

		m.logger.Info("game started", "user", m.player.Name, "game", selected.GameID)
		return m, m.gameModel.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.gameModel.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.gameModel = &gameModel
	}

	if m.gameModel.BackToMenu() {
		return m.toMenu()
	}

	if m.gameModel.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateScores handles updates when the leaderboard is open.
func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scoreboard.Update(msg)
	if sb, ok := newModel.(ScoreboardModel); ok {
		m.scoreboard = sb
	}

	if m.scoreboard.IsGoingBack() {
		return m.toMenu()
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.gameModel.View()
	case screenScores:
		return m.scoreboard.View()
	default:
		return m.menu.View()
	}
}

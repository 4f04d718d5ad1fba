package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/registry"
	"github.com/vovakirdan/linkup/internal/storage"
)

var (
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// Player identifies who is at the keyboard for the leaderboard.
type Player struct {
	Name      string
	SessionID string
}

// LocalPlayer returns the player for a local terminal session.
func LocalPlayer() Player {
	name := os.Getenv("USER")
	if name == "" {
		name = "player"
	}
	return Player{Name: name, SessionID: uuid.NewString()}
}

// GameModel runs one game with restart and back-to-menu support.
// The bottom terminal row is reserved for key help.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	player     Player
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	help       help.Model

	quitting   bool
	backToMenu bool
	exitOnBack bool // Standalone programs quit instead of returning to a menu

	resultSaved  bool
	personalBest bool
	rank         int
}

// NewGameModel creates a new game model.
func NewGameModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, player Player) GameModel {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	h := help.New()
	h.Width = cfg.ScreenW

	return GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, gameHeight(cfg.ScreenH)),
		store:      store,
		logger:     log.Default(),
		config:     cfg,
		player:     player,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		help:       h,
	}
}

// WithLogger sets the logger used for storage problems.
func (m GameModel) WithLogger(l *log.Logger) GameModel {
	if l != nil {
		m.logger = l
	}
	return m
}

func gameHeight(screenH int) int {
	return core.Max(screenH-1, 1)
}

// gameConfig is the runtime config the game sees: the screen minus the help row.
func (m GameModel) gameConfig() core.RuntimeConfig {
	cfg := m.config
	cfg.ScreenH = gameHeight(cfg.ScreenH)
	return cfg
}

// Init initializes the game and starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.gameConfig())
	// Note: gameState will be set on first tick (value receiver limitation)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.inputFrame.AddClick(msg.X, msg.Y)
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	if action == core.ActionBack {
		if m.gameState.GameOver || m.gameState.Paused {
			m.backToMenu = true
			if m.exitOnBack {
				return m, tea.Quit
			}
		}
		return m, nil
	}

	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleResize follows the terminal size. Games that can relayout keep
// their board; others are restarted.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, gameHeight(msg.Height))
	m.help.Width = msg.Width

	if r, ok := m.game.(registry.Resizer); ok {
		r.Resize(msg.Width, gameHeight(msg.Height))
	} else if !m.gameState.GameOver {
		m.game.Reset(m.gameConfig())
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && (m.gameState.GameOver || m.gameState.Paused) {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.gameConfig())
		m.gameState = m.game.State()
		m.resultSaved = false
		m.personalBest = false
		m.rank = 0
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	// Save on a win (once)
	if m.gameState.Won && !m.resultSaved {
		m.saveResult()
		m.resultSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveResult records a won game and checks it against the player's best.
func (m *GameModel) saveResult() {
	if m.store == nil {
		return
	}

	rep := core.GameReport{GameID: m.game.ID(), Score: m.gameState.Score, Won: true}
	if r, ok := m.game.(registry.Reporter); ok {
		rep = r.Report()
	}

	best, played, err := m.store.PersonalBest(rep.GameID, m.player.Name)
	if err != nil {
		m.logger.Warn("could not read personal best", "game", rep.GameID, "error", err)
	}
	m.personalBest = err == nil && played && rep.Score > best

	if rank, err := m.store.Rank(rep.GameID, rep.Score); err == nil {
		m.rank = rank
	}

	if _, err := m.store.SaveResult(storage.Result{
		GameID:       rep.GameID,
		Difficulty:   rep.Difficulty,
		Player:       m.player.Name,
		SessionID:    m.player.SessionID,
		Score:        rep.Score,
		ElapsedSecs:  rep.ElapsedSecs,
		Bonus:        rep.Bonus,
		Reshuffles:   rep.Reshuffles,
		MatchedPairs: rep.MatchedPairs,
	}); err != nil {
		m.logger.Error("could not save result", "game", rep.GameID, "error", err)
		return
	}

	m.logger.Debug("result saved",
		"game", rep.GameID,
		"player", m.player.Name,
		"score", rep.Score,
		"elapsed", rep.ElapsedSecs,
		"personal_best", m.personalBest,
	)
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".arcade", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// banner is the line shown above the win overlay.
func (m GameModel) banner() string {
	if !m.gameState.Won || !m.resultSaved {
		return ""
	}
	var parts []string
	if m.personalBest {
		parts = append(parts, "New personal best!")
	}
	if m.rank > 0 {
		parts = append(parts, fmt.Sprintf("Leaderboard rank #%d", m.rank))
	}
	return strings.Join(parts, "  ")
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	if b := m.banner(); b != "" {
		m.screen.DrawTextCenteredColored(1, b, core.ColorBrightGreen)
	}

	var sb strings.Builder
	sb.WriteString(RenderScreen(m.screen))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.help.View(m.keyMapper.Keys())))
	return sb.String()
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// PersonalBest reports whether the last saved win beat the player's record.
func (m GameModel) PersonalBest() bool {
	return m.personalBest
}

// Run plays a single game in the local terminal. It returns true when the
// player asked to go back to a menu rather than quit.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, player Player) (backToMenu bool, err error) {
	model := NewGameModel(game, store, cfg, player)
	model.exitOnBack = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(GameModel)
	if !ok {
		return false, nil
	}
	return m.BackToMenu(), nil
}

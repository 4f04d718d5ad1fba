package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/linkup/internal/config"
	"github.com/vovakirdan/linkup/internal/core"
	"github.com/vovakirdan/linkup/internal/games/linkup"
	"github.com/vovakirdan/linkup/internal/registry"
	"github.com/vovakirdan/linkup/internal/storage"
)

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	menuDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// MenuItem represents a selectable difficulty in the menu.
type MenuItem struct {
	GameID     string
	Title      string
	Difficulty string
	Summary    string // Board size and scoring, e.g. "6x4, x1.0"
	Best       int    // Leaderboard high score, 0 if none
}

// MenuModel is the Bubble Tea model for the difficulty picker.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	config         core.RuntimeConfig
	keyMapper      *KeyMapper
	quitting       bool
	selected       *MenuItem // Set when user selects a difficulty
	openScoreboard bool      // True if user pressed Tab for scoreboard
}

// NewMenuModel creates a new menu model. Difficulty summaries come from
// lcfg; best scores from store when it is available.
func NewMenuModel(store *storage.Store, lcfg config.LinkupConfig, cfg core.RuntimeConfig) MenuModel {
	games := registry.List()
	items := make([]MenuItem, 0, len(games))

	for _, g := range games {
		item := MenuItem{GameID: g.ID, Title: g.Title}
		if d, ok := linkup.DifficultyFromID(g.ID); ok {
			item.Difficulty = d
			if dc, err := lcfg.Difficulty(d); err == nil {
				item.Summary = dc.Summary()
			}
		}
		if store != nil {
			if best, err := store.HighScore(g.ID); err == nil {
				item.Best = best
			}
		}
		items = append(items, item)
	}

	m := MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}

	// Start on the configured default difficulty
	for i, item := range items {
		if item.Difficulty == lcfg.DefaultDifficulty {
			m.cursor = i
			break
		}
	}

	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start game
		}

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, tea.Quit // Exit menu to show scoreboard
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("  L I N K - U P  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Connect matching tiles with at most two turns", m.width))
	b.WriteString("\n\n")

	// Size the columns once so rows line up
	titleW, summaryW := 0, 0
	for _, item := range m.items {
		titleW = core.Max(titleW, len(item.Title))
		summaryW = core.Max(summaryW, len(item.Summary))
	}

	for i, item := range m.items {
		best := "-"
		if item.Best > 0 {
			best = fmt.Sprintf("%d", item.Best)
		}
		line := fmt.Sprintf("%-*s  %-*s  best %s", titleW, item.Title, summaryW, item.Summary, best)

		if i == m.cursor {
			line = menuSelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(menuDimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width. Width is measured on the
// rendered cells so styled strings center correctly.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	GameID          string
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(store *storage.Store, lcfg config.LinkupConfig, cfg core.RuntimeConfig) (MenuResult, error) {
	model := NewMenuModel(store, lcfg, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{
		Config: m.Config(),
	}

	if m.WantsScoreboard() {
		result.WantsScoreboard = true
		return result, nil
	}

	if m.IsQuitting() {
		result.Quit = true
		return result, nil
	}

	if m.Selected() != nil {
		result.GameID = m.Selected().GameID
	} else {
		result.Quit = true
	}

	return result, nil
}

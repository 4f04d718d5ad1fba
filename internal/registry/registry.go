// Package registry provides a global registry for game factories.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/linkup/internal/core"
)

// Game is what the terminal platform drives: a fixed-tick simulation that
// renders into a character screen. Implementations stay free of Bubble Tea.
type Game interface {
	// ID is the registry and leaderboard key, e.g. "linkup_easy".
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset deals a fresh game for the given screen and seed.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into dst.
	Render(dst *core.Screen)

	// State returns score, win and pause flags.
	State() core.GameState
}

// Reporter is implemented by games that describe their outcome in more
// detail than a bare score.
type Reporter interface {
	Report() core.GameReport
}

// Resizer is implemented by games that can follow a terminal resize
// without restarting.
type Resizer interface {
	Resize(width, height int)
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

type entry struct {
	info    GameInfo
	factory Factory
}

// entries keeps registration order; index maps an id to its position.
var (
	mu      sync.RWMutex
	entries []entry
	index   = make(map[string]int)
)

// Register adds a game factory to the registry, typically from init().
// The factory is called once to read the title. Registering an id twice
// panics.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := index[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	index[id] = len(entries)
	entries = append(entries, entry{
		info:    GameInfo{ID: id, Title: f().Title()},
		factory: f,
	})
}

// List returns all registered games in registration order.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, len(entries))
	for i, e := range entries {
		result[i] = e.info
	}
	return result
}

// Create instantiates a new game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	i, ok := index[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return entries[i].factory(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := index[id]
	return ok
}

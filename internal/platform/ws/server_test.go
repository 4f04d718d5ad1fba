package ws

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/linkup/internal/config"
	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
	"github.com/vovakirdan/linkup/internal/storage"
)

// tinyConfig deals a 2x2 board of one tile type, so every pair connects.
func tinyConfig() config.LinkupConfig {
	return config.LinkupConfig{
		Tiles:             []config.TileFace{{Glyph: "♠", Color: "blue"}},
		MatchDelayMS:      0,
		MaxReshuffles:     10,
		DefaultDifficulty: "tiny",
		Difficulties: []config.DifficultyConfig{
			{ID: "tiny", Title: "Tiny", Rows: 2, Cols: 2, Multiplier: 1.0},
		},
	}
}

// setupTestServer starts a server backed by a temporary store.
func setupTestServer(t *testing.T) (*httptest.Server, *storage.Store) {
	t.Helper()
	return setupLoggedServer(t, log.New(io.Discard))
}

func setupLoggedServer(t *testing.T, logger *log.Logger) (*httptest.Server, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "linkup.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}

	srv := NewServer(ServerConfig{
		Store:        store,
		Linkup:       tinyConfig(),
		TickInterval: 5 * time.Millisecond,
		Clock:        engine.NewManualClock(time.Unix(1_700_000_000, 0)),
		Logger:       logger,
	})
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		//nolint:errcheck // Test teardown
		srv.Shutdown()
		ts.Close()
		store.Close()
	})
	return ts, store
}

// connectWS creates a WebSocket connection to the test server.
func connectWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMsg reads a JSON message from the WebSocket and returns it as a map.
func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	//nolint:errcheck // Read reports the failure
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal: %v\ndata: %s", err, string(data))
	}
	return msg
}

// readUntil skips messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	for range 50 {
		msg := readMsg(t, conn)
		if msg["type"] == msgType {
			return msg
		}
		if msg["type"] == TypeError && msgType != TypeError {
			t.Fatalf("waiting for %s, got error: %v", msgType, msg["message"])
		}
	}
	t.Fatalf("no %s message arrived", msgType)
	return nil
}

// sendMsg sends a JSON message over the WebSocket.
func sendMsg(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
}

func sendSelect(t *testing.T, conn *websocket.Conn, row, col int) {
	t.Helper()
	sendMsg(t, conn, map[string]any{"type": TypeSelect, "row": row, "col": col})
}

func startGame(t *testing.T, conn *websocket.Conn, player string) map[string]any {
	t.Helper()
	sendMsg(t, conn, map[string]any{"type": TypeNewGame, "difficulty": "tiny", "player": player, "seed": 7})
	return readUntil(t, conn, TypeSessionStarted)
}

// playTinyBoard clears the 2x2 board row by row and returns the win message.
func playTinyBoard(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	sendSelect(t, conn, 1, 1)
	if sel := readUntil(t, conn, TypeSelection); sel["outcome"] != "selected" {
		t.Fatalf("first pick outcome = %v, expected selected", sel["outcome"])
	}

	sendSelect(t, conn, 1, 2)
	anim := readUntil(t, conn, TypeMatchAnimate)
	if path := anim["path"].([]any); len(path) != 2 {
		t.Errorf("adjacent pair path has %d cells, expected 2", len(path))
	}
	if sel := readUntil(t, conn, TypeSelection); sel["outcome"] != "matched" {
		t.Fatalf("second pick outcome = %v, expected matched", sel["outcome"])
	}
	committed := readUntil(t, conn, TypeMatchCommitted)
	if committed["matchedPairs"].(float64) != 1 {
		t.Errorf("matchedPairs = %v, expected 1", committed["matchedPairs"])
	}

	sendSelect(t, conn, 2, 1)
	readUntil(t, conn, TypeSelection)
	sendSelect(t, conn, 2, 2)
	return readUntil(t, conn, TypeWin)
}

func TestFullGame(t *testing.T) {
	server, store := setupTestServer(t)
	conn := connectWS(t, server)

	started := startGame(t, conn, "ann")
	if started["sessionId"] == "" {
		t.Error("session id missing")
	}
	if started["rows"].(float64) != 2 || started["cols"].(float64) != 2 {
		t.Errorf("board = %vx%v, expected 2x2", started["rows"], started["cols"])
	}
	tiles := started["tiles"].([]any)
	if len(tiles) != 4 {
		t.Fatalf("expected 4 tiles, got %d", len(tiles))
	}
	for _, raw := range tiles {
		tile := raw.(map[string]any)
		if tile["type"].(float64) != 0 || tile["matched"] == true {
			t.Errorf("unexpected starting tile %v", tile)
		}
	}

	win := playTinyBoard(t, conn)
	// 2 pairs in the minimum one second at x1.0
	if win["score"].(float64) != 2000 {
		t.Errorf("score = %v, expected 2000", win["score"])
	}
	if win["elapsed"].(float64) != 1 {
		t.Errorf("elapsed = %v, expected 1", win["elapsed"])
	}
	if win["personalBest"] == true {
		t.Error("first win has no previous record to beat")
	}
	if win["rank"].(float64) != 1 {
		t.Errorf("rank = %v, expected 1", win["rank"])
	}

	results, err := store.TopScores("linkup_tiny", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one saved result, got %d", len(results))
	}
	if r := results[0]; r.Player != "ann" || r.Score != 2000 || r.SessionID != started["sessionId"] {
		t.Errorf("saved result = %+v", r)
	}

	// The won session takes no more input
	sendSelect(t, conn, 1, 1)
	if msg := readUntil(t, conn, TypeError); msg["message"] != "No game in progress." {
		t.Errorf("select after win: %v", msg["message"])
	}
}

func TestPersonalBest(t *testing.T) {
	server, store := setupTestServer(t)
	conn := connectWS(t, server)

	if _, err := store.SaveResult(storage.Result{GameID: "linkup_tiny", Player: "bob", Score: 500}); err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}

	startGame(t, conn, "bob")
	if win := playTinyBoard(t, conn); win["personalBest"] != true {
		t.Error("beating the stored best should be a personal best")
	}

	startGame(t, conn, "bob")
	if win := playTinyBoard(t, conn); win["personalBest"] == true {
		t.Error("equal score reported as personal best")
	}

	results, err := store.PlayerHistory("bob", 10)
	if err != nil {
		t.Fatalf("PlayerHistory() failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 saved games, got %d", len(results))
	}
}

func TestProtocolErrors(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := connectWS(t, server)

	tests := []struct {
		name    string
		payload string
		message string
	}{
		{"invalid json", "not json", "Invalid message format."},
		{"unknown type", `{"type":"flip_card"}`, "Unknown message type: flip_card"},
		{"select before game", `{"type":"select","row":1,"col":1}`, "No game in progress."},
		{"hint before game", `{"type":"hint"}`, "No game in progress."},
		{"end before game", `{"type":"end"}`, "No game in progress."},
		{"bad new_game", `{"type":"new_game","seed":"x"}`, "Invalid new_game message."},
		{"long name", `{"type":"new_game","player":"` + strings.Repeat("a", maxPlayerName+1) + `"}`, "Player name is too long."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tc.payload)); err != nil {
				t.Fatalf("failed to write: %v", err)
			}
			msg := readMsg(t, conn)
			if msg["type"] != TypeError || msg["message"] != tc.message {
				t.Errorf("got %v, expected error %q", msg, tc.message)
			}
		})
	}
}

func TestHintAndEnd(t *testing.T) {
	server, store := setupTestServer(t)
	conn := connectWS(t, server)

	startGame(t, conn, "cy")

	sendMsg(t, conn, map[string]string{"type": TypeHint})
	hint := readUntil(t, conn, TypeHintResult)
	a := hint["a"].(map[string]any)
	b := hint["b"].(map[string]any)
	if a["row"] == b["row"] && a["col"] == b["col"] {
		t.Errorf("hint pairs a tile with itself: %v", hint)
	}

	sendMsg(t, conn, map[string]string{"type": TypeEnd})
	ended := readUntil(t, conn, TypeEnded)
	if ended["matchedPairs"].(float64) != 0 || ended["totalPairs"].(float64) != 2 {
		t.Errorf("ended = %v", ended)
	}

	sendSelect(t, conn, 1, 1)
	readUntil(t, conn, TypeError)

	if n, err := store.HighScore("linkup_tiny"); err != nil || n != 0 {
		t.Errorf("abandoned game was saved: %d, %v", n, err)
	}
}

func TestUnknownDifficultyFallsBack(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := connectWS(t, server)

	sendMsg(t, conn, map[string]any{"type": TypeNewGame, "difficulty": "nightmare"})
	started := readUntil(t, conn, TypeSessionStarted)
	if started["difficulty"] != "tiny" {
		t.Errorf("difficulty = %v, expected the default", started["difficulty"])
	}
}

// syncBuffer is written by the session goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSessionEventsAreLogged(t *testing.T) {
	var out syncBuffer
	logger := log.NewWithOptions(&out, log.Options{Level: log.DebugLevel})
	server, _ := setupLoggedServer(t, logger)
	conn := connectWS(t, server)

	started := startGame(t, conn, "dee")
	playTinyBoard(t, conn)

	logged := out.String()
	for _, want := range []string{"game started", "match accepted", "match committed", "session won", "board cleared"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log misses %q:\n%s", want, logged)
		}
	}
	if id, _ := started["sessionId"].(string); !strings.Contains(logged, id) {
		t.Errorf("log does not carry session id %q", id)
	}
}

func TestHealthz(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, expected 200", resp.StatusCode)
	}
}

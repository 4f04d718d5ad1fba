package ws

import (
	"encoding/json"

	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
)

// Inbound message types.
const (
	TypeNewGame = "new_game"
	TypeSelect  = "select"
	TypeHint    = "hint"
	TypeEnd     = "end"
)

// Outbound message types.
const (
	TypeSessionStarted = "session_started"
	TypeSelection      = "selection"
	TypeMatchAnimate   = "match_animate"
	TypeMatchCommitted = "match_committed"
	TypeReshuffle      = "reshuffle"
	TypeWin            = "win"
	TypeEnded          = "ended"
	TypeHintResult     = "hint"
	TypeError          = "error"
)

// InboundEnvelope is the generic envelope for all client-to-server messages.
// Type routes the message; Raw keeps the full payload for the handler.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the raw payload alongside the type.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = append(e.Raw[:0], data...)
	return nil
}

// --- Client -> Server ---

// NewGameMsg starts a session. Unknown or empty difficulties fall back to
// the configured default; a zero seed picks one from the clock.
type NewGameMsg struct {
	Difficulty string `json:"difficulty"`
	Player     string `json:"player"`
	Seed       int64  `json:"seed"`
}

// SelectMsg picks the tile at a 1-based board position.
type SelectMsg struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// --- Server -> Client ---

// PosJSON is a board position on the wire.
type PosJSON struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// TileJSON is one board cell as the client sees it.
type TileJSON struct {
	ID       string `json:"id"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Type     int    `json:"type"` // -1 once matched
	Selected bool   `json:"selected"`
	Matched  bool   `json:"matched"`
	OnPath   bool   `json:"onPath"`
}

// SessionStartedMsg is sent once a board has been dealt.
type SessionStartedMsg struct {
	Type       string     `json:"type"`
	SessionID  string     `json:"sessionId"`
	Difficulty string     `json:"difficulty"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	TotalPairs int        `json:"totalPairs"`
	BonusScore int        `json:"bonusScore"`
	Tiles      []TileJSON `json:"tiles"`
}

// SelectionMsg reports what a select did and the current selection.
type SelectionMsg struct {
	Type      string   `json:"type"`
	Outcome   string   `json:"outcome"`
	Selected  *PosJSON `json:"selected,omitempty"`
	Requested PosJSON  `json:"requested"`
}

// MatchAnimateMsg carries the connecting path of an accepted pair.
type MatchAnimateMsg struct {
	Type string    `json:"type"`
	Path []PosJSON `json:"path"`
}

// MatchCommittedMsg is sent after a pair has left the board.
type MatchCommittedMsg struct {
	Type         string `json:"type"`
	MatchedPairs int    `json:"matchedPairs"`
	TotalPairs   int    `json:"totalPairs"`
	Score        int    `json:"score"`
	Elapsed      int    `json:"elapsed"`
}

// ReshuffleMsg is sent after an automatic redistribution, with the new board.
type ReshuffleMsg struct {
	Type       string     `json:"type"`
	Bonus      int        `json:"bonus"`
	BonusScore int        `json:"bonusScore"`
	Tiles      []TileJSON `json:"tiles"`
}

// WinMsg closes a cleared board.
type WinMsg struct {
	Type         string `json:"type"`
	Score        int    `json:"score"`
	Elapsed      int    `json:"elapsed"`
	Bonus        int    `json:"bonus"`
	PersonalBest bool   `json:"personalBest"`
	Rank         int    `json:"rank,omitempty"`
}

// EndedMsg is sent when the player abandons a session.
type EndedMsg struct {
	Type         string `json:"type"`
	Score        int    `json:"score"`
	MatchedPairs int    `json:"matchedPairs"`
	TotalPairs   int    `json:"totalPairs"`
}

// HintMsg names one connectable pair.
type HintMsg struct {
	Type string  `json:"type"`
	A    PosJSON `json:"a"`
	B    PosJSON `json:"b"`
}

// ErrorMsg reports a rejected request.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func toPos(p engine.Pos) PosJSON {
	return PosJSON{Row: p.Row, Col: p.Col}
}

func toPath(path engine.Path) []PosJSON {
	out := make([]PosJSON, len(path))
	for i, p := range path {
		out[i] = toPos(p)
	}
	return out
}

func toTiles(views []engine.TileView) []TileJSON {
	out := make([]TileJSON, len(views))
	for i, v := range views {
		out[i] = TileJSON{
			ID:       v.ID,
			Row:      v.Row,
			Col:      v.Col,
			Type:     int(v.Type),
			Selected: v.Selected,
			Matched:  v.Matched,
			OnPath:   v.OnActivePath,
		}
	}
	return out
}

func outcomeName(o engine.Outcome) string {
	switch o {
	case engine.OutcomeSelected:
		return "selected"
	case engine.OutcomeDeselected:
		return "deselected"
	case engine.OutcomeSwitched:
		return "switched"
	case engine.OutcomeMatched:
		return "matched"
	default:
		return "ignored"
	}
}

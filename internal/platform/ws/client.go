package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/linkup/internal/games/linkup"
	"github.com/vovakirdan/linkup/internal/games/linkup/engine"
	"github.com/vovakirdan/linkup/internal/storage"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound messages buffered per connection before new ones are dropped.
	sendBuffer = 64
)

// Client is one websocket connection and the session it plays.
//
// Three goroutines serve a client: ReadPump feeds inbound frames, WritePump
// drains Send, and run owns the session. Only run touches the session.
type Client struct {
	server  *Server
	conn    *websocket.Conn
	send    chan []byte
	inbound chan []byte
	done    chan struct{} // closed when ReadPump exits
	logger  *log.Logger

	player    string
	sessionID string
	session   *engine.Session
	live      bool // events are forwarded once session_started went out
	saved     bool
}

func newClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		server:  s,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
		logger:  s.logger,
	}
}

// ReadPump pumps messages from the websocket connection to run.
func (c *Client) ReadPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	//nolint:errcheck // A failed deadline surfaces on the next read
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		select {
		case c.inbound <- message:
		case <-c.server.closing:
			return
		}
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			//nolint:errcheck // Write errors below end the pump
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//nolint:errcheck // Peer may already be gone
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			//nolint:errcheck // Close reports the error
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			//nolint:errcheck // Write errors below end the pump
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// run drives the session: inbound messages and the commit ticker.
func (c *Client) run() {
	ticker := time.NewTicker(c.server.config.TickInterval)
	defer func() {
		ticker.Stop()
		c.endSession()
		close(c.send)
	}()

	for {
		select {
		case data := <-c.inbound:
			c.handleMessage(data)
		case <-ticker.C:
			c.advance()
		case <-c.done:
			return
		case <-c.server.closing:
			return
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case TypeNewGame:
		c.handleNewGame(envelope.Raw)
	case TypeSelect:
		c.handleSelect(envelope.Raw)
	case TypeHint:
		c.handleHint()
	case TypeEnd:
		c.handleEnd()
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleNewGame(raw json.RawMessage) {
	var msg NewGameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid new_game message.")
		return
	}
	if len(msg.Player) > maxPlayerName {
		c.sendError("Player name is too long.")
		return
	}

	c.endSession()

	lcfg := c.server.config.Linkup
	d := lcfg.DifficultyOrDefault(msg.Difficulty)
	seed := msg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sessionID := uuid.NewString()
	session, err := engine.NewSession(engine.Options{
		Difficulty:    d.Engine(),
		TypeCount:     len(lcfg.Tiles),
		MatchDelay:    lcfg.MatchDelay(),
		MaxReshuffles: lcfg.MaxReshuffles,
		Seed:          seed,
		Clock:         c.server.config.Clock,
		Sink:          engine.MultiSink{c, sessionLog{logger: c.logger, session: sessionID}},
	})
	if err != nil {
		c.logger.Error("cannot deal board", "difficulty", d.ID, "error", err)
		c.sendError("Cannot deal a board for " + d.ID + ".")
		return
	}

	c.player = msg.Player
	if c.player == "" {
		c.player = "anonymous"
	}
	c.session = session
	c.sessionID = sessionID
	c.saved = false
	c.live = true

	c.logger.Info("game started", "session", c.sessionID, "player", c.player, "difficulty", d.ID)

	c.sendJSON(SessionStartedMsg{
		Type:       TypeSessionStarted,
		SessionID:  c.sessionID,
		Difficulty: d.ID,
		Rows:       d.Rows,
		Cols:       d.Cols,
		TotalPairs: session.TotalPairs(),
		BonusScore: session.BonusScore(),
		Tiles:      toTiles(session.Tiles()),
	})
}

func (c *Client) handleSelect(raw json.RawMessage) {
	if !c.playing() {
		c.sendError("No game in progress.")
		return
	}

	var msg SelectMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid select message.")
		return
	}

	outcome := c.session.Select(engine.Pos{Row: msg.Row, Col: msg.Col})
	reply := SelectionMsg{
		Type:      TypeSelection,
		Outcome:   outcomeName(outcome),
		Requested: PosJSON{Row: msg.Row, Col: msg.Col},
	}
	if p, ok := c.session.Selection(); ok {
		pos := toPos(p)
		reply.Selected = &pos
	}
	c.sendJSON(reply)
}

func (c *Client) handleHint() {
	if !c.playing() {
		c.sendError("No game in progress.")
		return
	}
	move, ok := c.session.Hint()
	if !ok {
		c.sendError("No moves available.")
		return
	}
	c.sendJSON(HintMsg{Type: TypeHintResult, A: toPos(move.A), B: toPos(move.B)})
}

func (c *Client) handleEnd() {
	if !c.playing() {
		c.sendError("No game in progress.")
		return
	}
	res := c.session.Result()
	c.endSession()
	c.sendJSON(EndedMsg{
		Type:         TypeEnded,
		Score:        res.Score,
		MatchedPairs: res.MatchedPairs,
		TotalPairs:   res.TotalPairs,
	})
}

// advance commits due matches and finishes a cleared board.
func (c *Client) advance() {
	if c.session == nil || c.session.IsEnded() {
		return
	}
	if err := c.session.Advance(); err != nil {
		if errors.Is(err, engine.ErrUnsolvable) {
			c.logger.Error("board stayed deadlocked", "session", c.sessionID, "error", err)
		}
		c.sendError("Board could not be resolved; game over.")
		return
	}
	if c.session.IsWon() && !c.saved {
		c.finish()
	}
}

// finish records a win and tells the client how it placed.
func (c *Client) finish() {
	c.saved = true
	res := c.session.Result()
	win := WinMsg{
		Type:    TypeWin,
		Score:   res.Score,
		Elapsed: res.ElapsedSeconds,
		Bonus:   res.BonusScore,
	}

	if store := c.server.store; store != nil {
		gameID := linkup.GameID(res.Difficulty)
		best, played, err := store.PersonalBest(gameID, c.player)
		if err != nil {
			c.logger.Warn("could not read personal best", "game", gameID, "error", err)
		}
		win.PersonalBest = err == nil && played && res.Score > best

		if rank, err := store.Rank(gameID, res.Score); err == nil {
			win.Rank = rank
		}

		if _, err := store.SaveResult(storage.Result{
			GameID:       gameID,
			Difficulty:   res.Difficulty,
			Player:       c.player,
			SessionID:    c.sessionID,
			Score:        res.Score,
			ElapsedSecs:  res.ElapsedSeconds,
			Bonus:        res.BonusScore,
			Reshuffles:   res.Reshuffles,
			MatchedPairs: res.MatchedPairs,
		}); err != nil {
			c.logger.Error("could not save result", "game", gameID, "error", err)
		}
	}

	c.logger.Info("board cleared",
		"session", c.sessionID,
		"player", c.player,
		"score", res.Score,
		"elapsed", res.ElapsedSeconds,
		"personal_best", win.PersonalBest,
	)
	c.sendJSON(win)
}

func (c *Client) playing() bool {
	return c.session != nil && !c.session.IsEnded() && !c.session.IsWon()
}

func (c *Client) endSession() {
	if c.session == nil {
		return
	}
	if !c.session.IsWon() && !c.session.IsEnded() {
		c.logger.Info("game abandoned", "session", c.sessionID, "player", c.player)
	}
	c.session.End()
	c.session = nil
	c.live = false
}

// OnMatchAnimate forwards the connecting path.
func (c *Client) OnMatchAnimate(path engine.Path) {
	if !c.live {
		return
	}
	c.sendJSON(MatchAnimateMsg{Type: TypeMatchAnimate, Path: toPath(path)})
}

// OnMatchCommitted reports progress with the live score.
func (c *Client) OnMatchCommitted(matchedPairs, totalPairs int) {
	if !c.live {
		return
	}
	msg := MatchCommittedMsg{
		Type:         TypeMatchCommitted,
		MatchedPairs: matchedPairs,
		TotalPairs:   totalPairs,
	}
	if c.session != nil {
		msg.Score = c.session.LiveScore()
		msg.Elapsed = c.session.ElapsedSeconds()
	}
	c.sendJSON(msg)
}

// OnReshuffle sends the redistributed board.
func (c *Client) OnReshuffle(bonusAwarded int) {
	if !c.live || c.session == nil {
		return
	}
	c.sendJSON(ReshuffleMsg{
		Type:       TypeReshuffle,
		Bonus:      bonusAwarded,
		BonusScore: c.session.BonusScore(),
		Tiles:      toTiles(c.session.Tiles()),
	})
}

// OnWin is handled by finish once Advance returns.
func (c *Client) OnWin(int, int) {}

// sessionLog traces a session's engine events.
type sessionLog struct {
	logger  *log.Logger
	session string
}

func (l sessionLog) OnMatchAnimate(path engine.Path) {
	l.logger.Debug("match accepted", "session", l.session, "turns", path.Turns())
}

func (l sessionLog) OnMatchCommitted(matchedPairs, totalPairs int) {
	l.logger.Debug("match committed", "session", l.session, "pairs", matchedPairs, "total", totalPairs)
}

func (l sessionLog) OnReshuffle(bonusAwarded int) {
	l.logger.Info("board reshuffled", "session", l.session, "bonus", bonusAwarded)
}

func (l sessionLog) OnWin(finalScore, elapsedSeconds int) {
	l.logger.Debug("session won", "session", l.session, "score", finalScore, "elapsed", elapsedSeconds)
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("cannot encode message", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping message", "session", c.sessionID)
	}
}

func (c *Client) sendError(message string) {
	c.sendJSON(ErrorMsg{Type: TypeError, Message: message})
}

// Package storage provides SQLite-based persistence for finished games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteTime = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// Result is one finished game on the leaderboard.
type Result struct {
	ID           int64
	GameID       string // Registry id, e.g. "linkup_easy"
	Difficulty   string
	Player       string
	SessionID    string
	Score        int
	ElapsedSecs  int
	Bonus        int
	Reshuffles   int
	MatchedPairs int
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	// SQLite allows one writer; SSH and websocket sessions share this handle
	db.SetMaxOpenConns(1)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			elapsed_secs INTEGER NOT NULL DEFAULT 0,
			bonus INTEGER NOT NULL DEFAULT 0,
			reshuffles INTEGER NOT NULL DEFAULT 0,
			matched_pairs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_game_id ON results(game_id);
		CREATE INDEX IF NOT EXISTS idx_results_top ON results(game_id, score DESC);
		CREATE INDEX IF NOT EXISTS idx_results_player ON results(game_id, player);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records a finished game.
// Returns the ID of the inserted record.
func (s *Store) SaveResult(r Result) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO results
		 (game_id, difficulty, player, session_id, score, elapsed_secs, bonus, reshuffles, matched_pairs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID,
		r.Difficulty,
		r.Player,
		r.SessionID,
		r.Score,
		r.ElapsedSecs,
		r.Bonus,
		r.Reshuffles,
		r.MatchedPairs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const resultColumns = `id, game_id, difficulty, player, session_id, score,
	elapsed_secs, bonus, reshuffles, matched_pairs, created_at`

// TopScores retrieves the top N results for the given game.
// Results are ordered by score descending; ties go to the faster game.
func (s *Store) TopScores(gameID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE game_id = ?
		 ORDER BY score DESC, elapsed_secs ASC, id ASC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	return scanResults(rows)
}

// AllScores retrieves all results for the given game (no limit).
func (s *Store) AllScores(gameID string) ([]Result, error) {
	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE game_id = ?
		 ORDER BY score DESC, elapsed_secs ASC, id ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	return scanResults(rows)
}

// PlayerHistory retrieves a player's most recent results across all games.
func (s *Store) PlayerHistory(player string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE player = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query player history: %w", err)
	}
	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var createdAt any
		if err := rows.Scan(
			&r.ID,
			&r.GameID,
			&r.Difficulty,
			&r.Player,
			&r.SessionID,
			&r.Score,
			&r.ElapsedSecs,
			&r.Bonus,
			&r.Reshuffles,
			&r.MatchedPairs,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTime, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// HighScore returns the highest score for the given game.
// Returns 0 if no results exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM results WHERE game_id = ?",
		gameID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// PersonalBest returns a player's best score for the given game and
// whether they have played it before.
func (s *Store) PersonalBest(gameID, player string) (int, bool, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM results WHERE game_id = ? AND player = ?",
		gameID, player,
	).Scan(&score)

	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query personal best: %w", err)
	}

	if !score.Valid {
		return 0, false, nil
	}

	return int(score.Int64), true, nil
}

// Rank returns the 1-based leaderboard position a score would take.
func (s *Store) Rank(gameID string, score int) (int, error) {
	var better int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM results WHERE game_id = ? AND score > ?",
		gameID, score,
	).Scan(&better)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query rank: %w", err)
	}
	return better + 1, nil
}

// ClearScores deletes all results for the given game.
func (s *Store) ClearScores(gameID string) error {
	_, err := s.db.Exec("DELETE FROM results WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	BestTime   int // Fastest game in seconds
	LastPlayed time.Time
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(score), 0), COALESCE(MIN(elapsed_secs), 0)
		 FROM results WHERE game_id = ?`,
		gameID,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &stats.BestTime)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM results WHERE game_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		gameID,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// GetAllGamesStats retrieves statistics for all games that have been played.
func (s *Store) GetAllGamesStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_id, COUNT(*), MAX(score), AVG(score), SUM(score), MIN(elapsed_secs), MAX(created_at)
		 FROM results
		 GROUP BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var gs GameStats
		var lastPlayed any
		if err := rows.Scan(&gs.GameID, &gs.GamesCount, &gs.HighScore, &gs.AvgScore, &gs.TotalScore, &gs.BestTime, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		gs.LastPlayed = parseTime(lastPlayed)
		stats[gs.GameID] = &gs
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

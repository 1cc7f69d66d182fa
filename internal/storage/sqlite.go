// Package storage provides SQLite-based persistence for viewing-session
// summaries. Simulation state is never stored.
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

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Session is the summary of one viewer run.
type Session struct {
	ID           int64
	Source       string // feed source id
	Preset       string
	Mode         string // "local" or "ssh"
	Viewer       string // ssh user, empty for local runs
	StartedAt    time.Time
	Duration     time.Duration
	Frames       int64
	Events       int64
	Dropped      int64
	Pulses       int64
	Connections  int64
	MaxMagnitude float64
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
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			preset TEXT NOT NULL,
			mode TEXT NOT NULL DEFAULT 'local',
			viewer TEXT NOT NULL DEFAULT '',
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			events INTEGER NOT NULL DEFAULT 0,
			dropped INTEGER NOT NULL DEFAULT 0,
			pulses INTEGER NOT NULL DEFAULT 0,
			connections INTEGER NOT NULL DEFAULT 0,
			max_magnitude REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_source ON sessions(source);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
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

// SaveSession records a finished session.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(sess Session) (int64, error) {
	if sess.Source == "" {
		return 0, errors.New("storage: session source is required")
	}
	if sess.Mode == "" {
		sess.Mode = "local"
	}

	result, err := s.db.Exec(
		`INSERT INTO sessions (source, preset, mode, viewer, started_at, duration_ms,
			frames, events, dropped, pulses, connections, max_magnitude)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.Source, sess.Preset, sess.Mode, sess.Viewer,
		sess.StartedAt.UnixMilli(), sess.Duration.Milliseconds(),
		sess.Frames, sess.Events, sess.Dropped, sess.Pulses, sess.Connections, sess.MaxMagnitude,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, source, preset, mode, viewer, started_at, duration_ms,
			frames, events, dropped, pulses, connections, max_magnitude, created_at
		 FROM sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess       Session
			startedMs  int64
			durationMs int64
			createdAt  any
		)
		if err := rows.Scan(&sess.ID, &sess.Source, &sess.Preset, &sess.Mode, &sess.Viewer,
			&startedMs, &durationMs, &sess.Frames, &sess.Events, &sess.Dropped,
			&sess.Pulses, &sess.Connections, &sess.MaxMagnitude, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sess.StartedAt = time.UnixMilli(startedMs)
		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sess.CreatedAt = parseTime(createdAt)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// SourceStats contains aggregated statistics for one feed source.
type SourceStats struct {
	Source       string
	Sessions     int
	Watched      time.Duration
	Events       int64
	Pulses       int64
	Connections  int64
	MaxMagnitude float64
	LastWatched  time.Time
}

// EventsPerMinute is the average event rate over the watched time.
func (s SourceStats) EventsPerMinute() float64 {
	if s.Watched <= 0 {
		return 0
	}
	return float64(s.Events) / s.Watched.Minutes()
}

// AllSourceStats retrieves statistics for every source that has been watched.
func (s *Store) AllSourceStats() (map[string]*SourceStats, error) {
	rows, err := s.db.Query(
		`SELECT source, COUNT(*), SUM(duration_ms), SUM(events), SUM(pulses),
			SUM(connections), MAX(max_magnitude), MAX(started_at)
		 FROM sessions
		 GROUP BY source`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get source stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*SourceStats)
	for rows.Next() {
		var st SourceStats
		var watchedMs, lastMs int64
		if err := rows.Scan(&st.Source, &st.Sessions, &watchedMs, &st.Events, &st.Pulses,
			&st.Connections, &st.MaxMagnitude, &lastMs); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.Watched = time.Duration(watchedMs) * time.Millisecond
		st.LastWatched = time.UnixMilli(lastMs)
		stats[st.Source] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// ClearSessions deletes every stored session.
func (s *Store) ClearSessions() error {
	if _, err := s.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and the string form SQLite may return.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

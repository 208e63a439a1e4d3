// Package storage persists stream history, usage stats and settings in a
// local SQLite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/streamlens/streamlens/internal/models"
)

const (
	defaultCacheSize  = -20000    // 20MB
	mmapSize          = 268435456 // 256MB
	busyTimeout       = 5000      // milliseconds
	walAutoCheckpoint = 1000      // pages
	maxOpenConns      = 5
	maxIdleConns      = 2

	// historyCap keeps the history table from growing unbounded
	historyCap = 500
)

// HistoryEntry is one saved stream detection
type HistoryEntry struct {
	models.StreamRecord
	Timestamp time.Time `json:"timestamp"`
}

// Stats aggregates saved detections
type Stats struct {
	Total        int            `json:"total"`
	ByType       map[string]int `json:"byType"`
	ByDomain     map[string]int `json:"byDomain"`
	SessionCount int            `json:"sessionCount"`
}

// Store is the SQLite-backed persistence layer. It also implements the
// key-value store the speed estimator persists through.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at dbPath and ensures the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}

	db, err := sql.Open("sqlite3", buildDSN(dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// buildDSN assembles the sqlite3 DSN with WAL pragmas. Windows paths need
// forward slashes in URI form.
func buildDSN(dbPath string) string {
	if runtime.GOOS == "windows" {
		escaped := strings.ReplaceAll(dbPath, "\\", "/")
		return fmt.Sprintf(
			"file:%s?_journal_mode=WAL&_synchronous=NORMAL&_wal_autocheckpoint=%d&"+
				"_busy_timeout=%d&_cache_size=%d&_mmap_size=%d&_mode=rwc",
			escaped, walAutoCheckpoint, busyTimeout, defaultCacheSize, mmapSize,
		)
	}
	return fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_synchronous=NORMAL&_wal_autocheckpoint=%d&"+
			"_busy_timeout=%d&_cache_size=%d&_mmap_size=%d",
		dbPath, walAutoCheckpoint, busyTimeout, defaultCacheSize, mmapSize,
	)
}

func initializeSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS stream_history (
			url        TEXT NOT NULL,
			type       TEXT NOT NULL,
			domain     TEXT NOT NULL,
			page_url   TEXT NOT NULL DEFAULT '',
			page_title TEXT NOT NULL DEFAULT '',
			quality    TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			PRIMARY KEY (url, page_url)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created
			ON stream_history(created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			url        TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			domain     TEXT NOT NULL,
			page_url   TEXT NOT NULL DEFAULT '',
			page_title TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "schema creation failed")
		}
	}

	if _, err := db.Exec(`PRAGMA optimize`); err != nil {
		return errors.Wrap(err, "initial optimization failed")
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveStream records a detection in history, skipping exact url+page
// duplicates and trimming the table to the newest entries.
func (s *Store) SaveStream(rec models.StreamRecord) error {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO stream_history
			(url, type, domain, page_url, page_title, quality, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.URL, string(rec.Type), rec.Domain, rec.PageURL, rec.PageTitle, rec.Quality,
		time.Now().Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "save stream")
	}

	inserted, _ := res.RowsAffected()
	if inserted == 0 {
		return nil
	}

	_, err = s.db.Exec(
		`DELETE FROM stream_history WHERE rowid NOT IN (
			SELECT rowid FROM stream_history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, historyCap,
	)
	if err != nil {
		return errors.Wrap(err, "trim history")
	}

	return nil
}

// History returns the newest entries, up to limit (0 means all).
func (s *Store) History(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = historyCap
	}
	rows, err := s.db.Query(
		`SELECT url, type, domain, page_url, page_title, quality, created_at
		 FROM stream_history ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer func() { _ = rows.Close() }()

	return scanHistory(rows)
}

// SearchHistory matches the query case-insensitively against URL, domain
// and type.
func (s *Store) SearchHistory(query string) ([]HistoryEntry, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(
		`SELECT url, type, domain, page_url, page_title, quality, created_at
		 FROM stream_history
		 WHERE lower(url) LIKE ? OR lower(domain) LIKE ? OR lower(type) LIKE ?
		 ORDER BY created_at DESC, rowid DESC`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, errors.Wrap(err, "search history")
	}
	defer func() { _ = rows.Close() }()

	return scanHistory(rows)
}

func scanHistory(rows *sql.Rows) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var streamType string
		var createdAt int64
		if err := rows.Scan(&e.URL, &streamType, &e.Domain, &e.PageURL, &e.PageTitle,
			&e.Quality, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan history row")
		}
		e.Type = models.StreamType(streamType)
		e.Timestamp = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearHistory removes all history entries.
func (s *Store) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM stream_history`)
	return errors.Wrap(err, "clear history")
}

// AddFavorite marks a stream as a favorite.
func (s *Store) AddFavorite(rec models.StreamRecord) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO favorites (url, type, domain, page_url, page_title, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.URL, string(rec.Type), rec.Domain, rec.PageURL, rec.PageTitle, time.Now().Unix(),
	)
	return errors.Wrap(err, "add favorite")
}

// RemoveFavorite drops a favorite by URL.
func (s *Store) RemoveFavorite(url string) error {
	_, err := s.db.Exec(`DELETE FROM favorites WHERE url = ?`, url)
	return errors.Wrap(err, "remove favorite")
}

// Favorites lists all favorites, newest first.
func (s *Store) Favorites() ([]models.StreamRecord, error) {
	rows, err := s.db.Query(
		`SELECT url, type, domain, page_url, page_title FROM favorites
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query favorites")
	}
	defer func() { _ = rows.Close() }()

	var favorites []models.StreamRecord
	for rows.Next() {
		var rec models.StreamRecord
		var streamType string
		if err := rows.Scan(&rec.URL, &streamType, &rec.Domain, &rec.PageURL, &rec.PageTitle); err != nil {
			return nil, errors.Wrap(err, "scan favorite row")
		}
		rec.Type = models.StreamType(streamType)
		favorites = append(favorites, rec)
	}
	return favorites, rows.Err()
}

// GetJSON reads a JSON-encoded setting. Returns false when the key is absent.
func (s *Store) GetJSON(key string, out interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "get setting")
	}
	return true, errors.Wrap(json.Unmarshal([]byte(raw), out), "decode setting")
}

// SetJSON writes a JSON-encoded setting.
func (s *Store) SetJSON(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encode setting")
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, string(raw),
	)
	return errors.Wrap(err, "set setting")
}

// IncrementCounter bumps a named counter and returns the new value.
func (s *Store) IncrementCounter(name string) (int, error) {
	_, err := s.db.Exec(
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1`, name,
	)
	if err != nil {
		return 0, errors.Wrap(err, "increment counter")
	}
	return s.Counter(name)
}

// Counter reads a named counter, 0 when absent.
func (s *Store) Counter(name string) (int, error) {
	var value int
	err := s.db.QueryRow(`SELECT value FROM counters WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return value, errors.Wrap(err, "read counter")
}

// StreamStats aggregates the saved history.
func (s *Store) StreamStats() (*Stats, error) {
	stats := &Stats{
		ByType:   make(map[string]int),
		ByDomain: make(map[string]int),
	}

	rows, err := s.db.Query(`SELECT type, domain FROM stream_history`)
	if err != nil {
		return nil, errors.Wrap(err, "query stats")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var streamType, domain string
		if err := rows.Scan(&streamType, &domain); err != nil {
			return nil, errors.Wrap(err, "scan stats row")
		}
		stats.Total++
		stats.ByType[streamType]++
		stats.ByDomain[domain]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions, err := s.Counter("sessions")
	if err != nil {
		return nil, err
	}
	stats.SessionCount = sessions

	return stats, nil
}

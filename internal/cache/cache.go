// Package cache is the on-device persisted history store. It mirrors
// the mobile client's AsyncStorage layout: one key holding a
// JSON-serialized array of recent entries, newest first, capped at 100.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	storageKey = "vibelearner.chat_history.v1"
	// MaxEntries bounds the history list; the oldest entries are dropped first
	MaxEntries = 100
)

// Entry is one row of the user-facing history list: either a raw prompt
// or a pointer to a generated course
type Entry struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	Time            string `json:"time,omitempty"`
	CourseGenerated bool   `json:"isApiResponse,omitempty"`
	CourseID        string `json:"courseId,omitempty"`
	UserID          string `json:"userId,omitempty"`
}

// Cache defines the local history operations used by the services
type Cache interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
	Close() error
}

// SQLiteCache implements Cache with a single key/value row in a local
// SQLite file
type SQLiteCache struct {
	db *sql.DB
}

func Open(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err = c.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS kv (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );`
	_, err := c.db.Exec(schema)
	return err
}

// Load returns the cached history, newest first. A missing key or an
// unreadable payload yields an empty list rather than an error, matching
// the tolerant read behavior the client always had.
func (c *SQLiteCache) Load() ([]Entry, error) {
	var raw string
	err := c.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, storageKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history cache: %w", err)
	}

	var parsed []Entry
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []Entry{}, nil
	}

	entries := make([]Entry, 0, len(parsed))
	for _, e := range parsed {
		if e.ID == "" || e.Text == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Save overwrites the cached history, trimming to MaxEntries
func (c *SQLiteCache) Save(entries []Entry) error {
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode history cache: %w", err)
	}

	_, err = c.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value`, storageKey, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write history cache: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed store.
// dbPath is the path to the SQLite database file; use ":memory:" for testing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}

	// Verify the connection works.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping database: %w", err)
	}

	// Create the responses table if it does not exist.
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS responses (
			id          TEXT PRIMARY KEY,
			method      TEXT NOT NULL,
			url         TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			entry_json  TEXT NOT NULL,
			body_size   INTEGER DEFAULT 0,
			stored_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (method, url)
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create table: %w", err)
	}

	// Create an index on url for fast lookups.
	createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_responses_url ON responses(url);
	`
	if _, err := db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put stores an entry, replacing any previous one for the same method+url.
// If the entry's ID is empty, a new UUID is generated and assigned.
func (s *SQLiteStore) Put(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: marshal entry: %w", err)
	}

	query := `
		INSERT INTO responses (id, method, url, status_code, entry_json, body_size, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(method, url) DO UPDATE SET
			id          = excluded.id,
			status_code = excluded.status_code,
			entry_json  = excluded.entry_json,
			body_size   = excluded.body_size,
			stored_at   = excluded.stored_at
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Method,
		entry.URL,
		entry.StatusCode,
		string(entryJSON),
		int64(len(entry.Body)),
		entry.StoredAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cache: put entry: %w", err)
	}

	return nil
}

// Get retrieves the entry for method+url.
// Returns (nil, nil) if nothing is cached.
func (s *SQLiteStore) Get(ctx context.Context, method, url string) (*Entry, error) {
	query := `SELECT entry_json FROM responses WHERE method = ? AND url = ?`
	row := s.db.QueryRowContext(ctx, query, method, url)

	var entryJSON string
	if err := row.Scan(&entryJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: scan row: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
		return nil, fmt.Errorf("cache: unmarshal entry: %w", err)
	}

	return &entry, nil
}

// List returns a lightweight summary of all cached responses.
func (s *SQLiteStore) List(ctx context.Context) ([]*Summary, error) {
	query := `SELECT id, method, url, status_code, body_size, stored_at FROM responses ORDER BY stored_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("cache: list entries: %w", err)
	}
	defer rows.Close()

	var summaries []*Summary
	for rows.Next() {
		var (
			summary  Summary
			storedAt string
		)
		if err := rows.Scan(&summary.ID, &summary.Method, &summary.URL, &summary.StatusCode, &summary.Size, &storedAt); err != nil {
			return nil, fmt.Errorf("cache: scan summary row: %w", err)
		}
		t, err := time.Parse(time.RFC3339, storedAt)
		if err != nil {
			// Fall back to SQLite default format if RFC3339 fails.
			t, err = time.Parse("2006-01-02 15:04:05", storedAt)
			if err != nil {
				return nil, fmt.Errorf("cache: parse stored_at %q: %w", storedAt, err)
			}
		}
		summary.StoredAt = t
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: iterate rows: %w", err)
	}

	return summaries, nil
}

// Delete removes an entry by its ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM responses WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("cache: delete entry: %w", err)
	}
	return nil
}

// Cleanup removes entries whose stored_at is older than maxAge from now.
// It returns the number of deleted entries.
func (s *SQLiteStore) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)

	query := `DELETE FROM responses WHERE stored_at < ?`
	result, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache: cleanup entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache: rows affected: %w", err)
	}

	return deleted, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

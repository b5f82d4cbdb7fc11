package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// sqlite driver registration
	_ "github.com/mattn/go-sqlite3"
)

// schema creates the polling-state tables. Times are stored as RFC3339
// strings; the ETag and Last-Modified values are opaque server tokens.
const schema = `
CREATE TABLE IF NOT EXISTS feed_state (
	feed_url       TEXT PRIMARY KEY,
	etag           TEXT,
	last_modified  TEXT,
	last_polled_at TEXT,
	last_error     TEXT
);

CREATE TABLE IF NOT EXISTS seen_items (
	feed_url TEXT NOT NULL,
	item_url TEXT NOT NULL,
	seen_at  TEXT NOT NULL,
	PRIMARY KEY (feed_url, item_url)
);
`

// State is the persisted polling state of one feed.
type State struct {
	FeedURL      string  `db:"feed_url"`
	ETag         *string `db:"etag"`
	LastModified *string `db:"last_modified"`
	LastPolledAt *string `db:"last_polled_at"`
	LastError    *string `db:"last_error"`
}

// Store persists feed polling state and seen item URLs in SQLite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenStore opens (creating if needed) the state database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open feed store %s: %w", path, err)
	}

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate feed store: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrCreate returns the state row for a feed, inserting an empty one
// on first sight.
func (s *Store) GetOrCreate(ctx context.Context, feedURL string) (*State, error) {
	var state State
	err := s.db.GetContext(ctx, &state,
		`SELECT feed_url, etag, last_modified, last_polled_at, last_error
		 FROM feed_state WHERE feed_url = ?`, feedURL)
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get feed state: %w", err)
	}

	if _, err = s.db.ExecContext(ctx,
		`INSERT INTO feed_state (feed_url) VALUES (?)`, feedURL); err != nil {
		return nil, fmt.Errorf("create feed state: %w", err)
	}
	return &State{FeedURL: feedURL}, nil
}

// UpdateSuccess records a successful poll with the response's caching
// tokens and clears any previous error.
func (s *Store) UpdateSuccess(ctx context.Context, feedURL string, etag, lastModified *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE feed_state
		 SET etag = ?, last_modified = ?, last_polled_at = ?, last_error = NULL
		 WHERE feed_url = ?`,
		etag, lastModified, s.now().UTC().Format(time.RFC3339), feedURL)
	if err != nil {
		return fmt.Errorf("update feed state: %w", err)
	}
	return nil
}

// UpdateError records a failed poll, keeping the caching tokens so the
// next attempt can still use conditional GET.
func (s *Store) UpdateError(ctx context.Context, feedURL, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE feed_state SET last_polled_at = ?, last_error = ? WHERE feed_url = ?`,
		s.now().UTC().Format(time.RFC3339), errMsg, feedURL)
	if err != nil {
		return fmt.Errorf("update feed error: %w", err)
	}
	return nil
}

// MarkSeen records an item URL for a feed. Returns true when the URL was
// not seen before.
func (s *Store) MarkSeen(ctx context.Context, feedURL, itemURL string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_items (feed_url, item_url, seen_at) VALUES (?, ?, ?)`,
		feedURL, itemURL, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("mark seen: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark seen rows: %w", err)
	}
	return rows > 0, nil
}

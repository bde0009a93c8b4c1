// Package cache persists slow-to-fetch nordvpn data in a local SQLite
// database: the country and group lists, and a connection history.
//
// Listing countries shells out to the nordvpn client and takes a
// noticeable fraction of a second; caching lets the UI populate
// immediately and refresh in the background.
package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yllada/nordvpn-gui/common"
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the cache database in the config
// directory.
func Open() (*Store, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, common.CacheFileName))
}

// OpenPath opens a cache database at an explicit path. Used by tests.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "failed to open cache database")
	}

	// The GUI is the only writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS lists (
	kind       TEXT NOT NULL,
	name       TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (kind, name)
);
CREATE TABLE IF NOT EXISTS history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	target       TEXT NOT NULL,
	server_id    TEXT NOT NULL,
	country      TEXT NOT NULL,
	connected_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_connected_at ON history(connected_at DESC);
`
	if _, err := s.db.Exec(schema); err != nil {
		return common.WrapError(err, "failed to migrate cache schema")
	}
	return nil
}

// List kinds stored in the cache.
const (
	KindCountries = "countries"
	KindGroups    = "groups"
)

// KindCities returns the list kind holding one country's cities.
func KindCities(country string) string {
	return "cities:" + strings.ToLower(country)
}

// PutList replaces the cached entries of one kind.
func (s *Store) PutList(ctx context.Context, kind string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "failed to begin cache transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE kind = ?`, kind); err != nil {
		return common.WrapError(err, "failed to clear cached list")
	}

	now := time.Now().Unix()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lists (kind, name, fetched_at) VALUES (?, ?, ?)`)
	if err != nil {
		return common.WrapError(err, "failed to prepare cache insert")
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, kind, name, now); err != nil {
			return common.WrapError(err, "failed to insert cached name")
		}
	}

	return tx.Commit()
}

// GetList returns the cached entries of one kind, sorted by name.
// An empty result just means nothing has been cached yet.
func (s *Store) GetList(ctx context.Context, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM lists WHERE kind = ? ORDER BY name`, kind)
	if err != nil {
		return nil, common.WrapError(err, "failed to query cached list")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, common.WrapError(err, "failed to scan cached name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// HistoryEntry is one past connection.
type HistoryEntry struct {
	Target      string
	ServerID    string
	Country     string
	ConnectedAt time.Time
}

// RecordConnection appends a history entry.
func (s *Store) RecordConnection(ctx context.Context, target, serverID, country string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (target, server_id, country, connected_at) VALUES (?, ?, ?, ?)`,
		target, serverID, country, time.Now().Unix())
	if err != nil {
		return common.WrapError(err, "failed to record connection")
	}
	return nil
}

// RecentConnections returns the most recent history entries, newest
// first.
func (s *Store) RecentConnections(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT target, server_id, country, connected_at FROM history ORDER BY connected_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, common.WrapError(err, "failed to query history")
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var ts int64
		if err := rows.Scan(&e.Target, &e.ServerID, &e.Country, &ts); err != nil {
			return nil, common.WrapError(err, "failed to scan history entry")
		}
		e.ConnectedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentTargets returns the distinct connect targets in the history,
// most recently used first. Quick connects are recorded with an empty
// target and are skipped.
func (s *Store) RecentTargets(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT target FROM history WHERE target != ''
		 GROUP BY target
		 ORDER BY MAX(connected_at) DESC, MAX(id) DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, common.WrapError(err, "failed to query recent targets")
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, common.WrapError(err, "failed to scan recent target")
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// PruneHistory deletes history entries older than the retention
// period, keeping the database small.
func (s *Store) PruneHistory(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention).Unix()
	_, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE connected_at < ?`, cutoff)
	if err != nil {
		return common.WrapError(err, "failed to prune history")
	}
	return nil
}

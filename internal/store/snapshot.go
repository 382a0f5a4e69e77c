package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

// SnapshotStore caches fetched entity collections in a local SQLite file
// so repeat invocations within the TTL skip the network. Only the raw
// collections are persisted; filter and ranking state never are.
type SnapshotStore struct {
	db *sql.DB
}

// Open opens (and creates if needed) the snapshot database at path and
// configures WAL mode.
func Open(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open snapshot db")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}

	s := &SnapshotStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const snapshotMigration = `
CREATE TABLE IF NOT EXISTS collection_snapshots (
	kind       TEXT PRIMARY KEY,
	entities   TEXT NOT NULL,
	fetched_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_collection_snapshots_expires_at ON collection_snapshots(expires_at);
`

func (s *SnapshotStore) migrate() error {
	_, err := s.db.Exec(snapshotMigration)
	return eris.Wrap(err, "store: migrate")
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Get returns the cached collection for a kind, or ok=false when absent
// or expired.
func (s *SnapshotStore) Get(ctx context.Context, kind model.Kind) ([]model.Entity, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT entities FROM collection_snapshots WHERE kind = ? AND expires_at > ?`,
		string(kind), time.Now().UTC(),
	)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrapf(err, "store: get snapshot %s", kind)
	}

	var entities []model.Entity
	if err := json.Unmarshal([]byte(raw), &entities); err != nil {
		// A corrupt snapshot is treated as a miss, not a failure.
		return nil, false, nil
	}
	return entities, true, nil
}

// Put stores a collection snapshot with the given TTL, replacing any
// previous snapshot for the kind.
func (s *SnapshotStore) Put(ctx context.Context, kind model.Kind, entities []model.Entity, ttl time.Duration) error {
	raw, err := json.Marshal(entities)
	if err != nil {
		return eris.Wrap(err, "store: marshal snapshot")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collection_snapshots (kind, entities, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(kind) DO UPDATE SET
			entities = excluded.entities,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at`,
		string(kind), string(raw), now, now.Add(ttl),
	)
	return eris.Wrapf(err, "store: put snapshot %s", kind)
}

// DeleteExpired removes expired snapshots and returns how many were dropped.
func (s *SnapshotStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM collection_snapshots WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "store: delete expired snapshots")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "store: rows affected")
	}
	return int(n), nil
}

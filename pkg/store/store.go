// Package store persists normalized observations in a local SQLite
// database keyed by (timestamp, name). Upserts are atomic
// insert-or-update: the latest observation for an identity fully
// replaces the previous byte counts, never accumulates them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bernardjech/mtkidcon/pkg/parser"
)

// TimeLayout is how timestamps are stored. Second precision, and
// lexicographic order equals chronological order, so ORDER BY on the
// text column sorts by time.
const TimeLayout = "2006-01-02 15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS mtkidcon(
	timestamp  DATETIME,
	name       TEXT,
	bytes_up   NUMERIC,
	bytes_down NUMERIC,
	PRIMARY KEY(timestamp, name))
`

const upsertSQL = `
INSERT INTO mtkidcon(timestamp, name, bytes_up, bytes_down)
VALUES(?, ?, ?, ?)
ON CONFLICT(timestamp, name) DO
UPDATE SET bytes_up = excluded.bytes_up, bytes_down = excluded.bytes_down
`

// Store is a handle to the observation database. One process opens it
// exclusively for the duration of a run; there are no concurrent
// writers, so no locking beyond SQLite's own.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database at path and ensures
// the schema exists.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database %s unavailable: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema in %s: %w", path, err)
	}

	log.Debug("database opened", "path", path)
	return &Store{db: db, log: log}, nil
}

// Upsert inserts or replaces the row for obs's (timestamp, name)
// identity in a single atomic statement. Timestamp and name never
// change on conflict; only the byte counts do.
func (s *Store) Upsert(ctx context.Context, obs parser.Observation) error {
	_, err := s.db.ExecContext(ctx, upsertSQL,
		obs.Timestamp.Format(TimeLayout), obs.Name, obs.BytesUp, obs.BytesDown)
	if err != nil {
		return fmt.Errorf("upserting %s@%s: %w", obs.Name, obs.Timestamp.Format(TimeLayout), err)
	}
	return nil
}

// Begin starts a batch covering one ingestion run. Rows upserted
// through the batch become visible together on Commit; each upsert is
// still individually atomic, so a crash mid-run can never leave a
// duplicate identity behind.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch: %w", err)
	}
	return &Batch{tx: tx, log: s.log}, nil
}

// Query returns all observations for the named device, ascending by
// timestamp. Read-only.
func (s *Store) Query(ctx context.Context, name string) ([]parser.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, bytes_up, bytes_down
		FROM mtkidcon WHERE name = ? ORDER BY 1
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	defer rows.Close()

	var result []parser.Observation
	for rows.Next() {
		var ts time.Time
		obs := parser.Observation{Name: name}
		if err := rows.Scan(&ts, &obs.BytesUp, &obs.BytesDown); err != nil {
			return nil, fmt.Errorf("scanning row for %s: %w", name, err)
		}
		obs.Timestamp = localWallClock(ts)
		result = append(result, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows for %s: %w", name, err)
	}

	return result, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Batch is one ingestion run's transaction.
type Batch struct {
	tx       *sql.Tx
	log      *slog.Logger
	upserted int
}

// Upsert inserts or replaces one row within the batch.
func (b *Batch) Upsert(ctx context.Context, obs parser.Observation) error {
	_, err := b.tx.ExecContext(ctx, upsertSQL,
		obs.Timestamp.Format(TimeLayout), obs.Name, obs.BytesUp, obs.BytesDown)
	if err != nil {
		return fmt.Errorf("upserting %s@%s: %w", obs.Name, obs.Timestamp.Format(TimeLayout), err)
	}
	b.upserted++
	return nil
}

// Upserted returns how many rows this batch has written so far.
func (b *Batch) Upserted() int {
	return b.upserted
}

// Commit makes the batch's rows durable.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	b.log.Debug("batch committed", "rows", b.upserted)
	return nil
}

// Rollback discards the batch. Safe to call after Commit; the
// resulting ErrTxDone is ignored.
func (b *Batch) Rollback() {
	if err := b.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		b.log.Warn("batch rollback failed", "error", err)
	}
}

// localWallClock rebuilds a scanned timestamp in the local zone.
// Stored values carry no zone marker, so the driver reads the column
// as a UTC wall clock; the wall clock itself is the row identity and
// must come back out in the zone it was written from.
func localWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/juststeveking/lookout/internal/monitor"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Archive keeps every poll cycle's results in a SQLite file. Unlike the
// in-memory history it is never downsampled.
type Archive struct {
	db  *sql.DB
	log *zap.Logger
}

// Row is one archived result
type Row struct {
	Time       time.Time
	ObserverID string
	Status     monitor.Status
	Value      int32
}

// Count summarises the archived rows of one observer
type Count struct {
	ObserverID string
	Samples    int
	First      time.Time
	Last       time.Time
}

// Open opens (or creates) the archive at path and applies the schema.
// The caller must call Close when done.
func Open(path string, log *zap.Logger) (*Archive, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Pure Go driver, no cgo
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	a := &Archive{db: db, log: log}
	if err := a.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migration: %w", err)
	}
	return a, nil
}

func (a *Archive) migrate() error {
	const stmt = `
CREATE TABLE IF NOT EXISTS results (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    ts          INTEGER NOT NULL,
    observer_id TEXT NOT NULL,
    status      TEXT NOT NULL,
    value       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_observer_ts ON results(observer_id, ts);
`
	if _, err := a.db.Exec(stmt); err != nil {
		return fmt.Errorf("create results table: %w", err)
	}
	a.log.Debug("archive migration applied")
	return nil
}

// Record stores one snapshot in a single transaction. Snapshots that
// predate the first update are ignored.
func (a *Archive) Record(ctx context.Context, snap monitor.Snapshot) error {
	if snap.Updated.IsZero() || len(snap.Observers) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (ts, observer_id, status, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := snap.Updated.UnixMilli()
	for _, e := range snap.Observers {
		if _, err := stmt.ExecContext(ctx, ts, e.ID, string(e.Status), e.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec insert for %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	a.log.Debug("snapshot archived", zap.Time("ts", snap.Updated), zap.Int("observers", len(snap.Observers)))
	return nil
}

// Recent returns up to limit rows for observerID, newest first
func (a *Archive) Recent(ctx context.Context, observerID string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT ts, observer_id, status, value FROM results WHERE observer_id = ? ORDER BY ts DESC, id DESC LIMIT ?`,
		observerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r      Row
			ts     int64
			status string
		)
		if err := rows.Scan(&ts, &r.ObserverID, &status, &r.Value); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Time = time.UnixMilli(ts)
		r.Status = monitor.Status(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// Counts returns the number of archived rows per observer, ordered by ID
func (a *Archive) Counts(ctx context.Context) ([]Count, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT observer_id, COUNT(*), MIN(ts), MAX(ts) FROM results GROUP BY observer_id ORDER BY observer_id`)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var (
			c           Count
			first, last int64
		)
		if err := rows.Scan(&c.ObserverID, &c.Samples, &first, &last); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		c.First = time.UnixMilli(first)
		c.Last = time.UnixMilli(last)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return out, nil
}

// Close shuts down the database connection
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

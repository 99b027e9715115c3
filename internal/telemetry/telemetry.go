// Package telemetry periodically snapshots process-level operational
// counters into a local SQLite database, backing the `metrics_report`
// outbound event (spec §6 names the wire event; this package supplies
// its payload). It never stores individual triggers or events — per
// spec.md's non-goals, only aggregate counts are persisted.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// retention bounds how much history the store keeps (SPEC_FULL: "bounded
// to the last 24h by a pruning pass on each write").
const retention = 24 * time.Hour

// Counters are the live, concurrently-updated process counters the
// Store snapshots on each tick. Safe for concurrent use from the
// dispatcher, admission gate, and brain.
type Counters struct {
	triggersFired    atomic.Int64
	triggersDropped  atomic.Int64
	brainInvocations atomic.Int64
	batchCollapses   atomic.Int64
	peerConnected    atomic.Bool
}

func (c *Counters) IncTriggersFired()    { c.triggersFired.Add(1) }
func (c *Counters) IncTriggersDropped()  { c.triggersDropped.Add(1) }
func (c *Counters) IncBrainInvocations() { c.brainInvocations.Add(1) }
func (c *Counters) IncBatchCollapses()   { c.batchCollapses.Add(1) }
func (c *Counters) SetPeerConnected(v bool) { c.peerConnected.Store(v) }

// Snapshot is one point-in-time reading of Counters.
type Snapshot struct {
	Timestamp        time.Time
	TriggersFired    int64
	TriggersDropped  int64
	BrainInvocations int64
	BatchCollapses   int64
	PeerConnected    bool
}

// Snapshot returns a point-in-time reading of the counters, for callers
// that broadcast metrics_report without going through the Store (e.g.
// the channel's periodic peer notification).
func (c *Counters) Snapshot(now time.Time) Snapshot {
	return c.snapshot(now)
}

func (c *Counters) snapshot(now time.Time) Snapshot {
	return Snapshot{
		Timestamp:        now,
		TriggersFired:    c.triggersFired.Load(),
		TriggersDropped:  c.triggersDropped.Load(),
		BrainInvocations: c.brainInvocations.Load(),
		BatchCollapses:   c.batchCollapses.Load(),
		PeerConnected:    c.peerConnected.Load(),
	}
}

// Store persists Snapshots to a SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates (or reuses) the SQLite database at path and ensures its
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	ts                INTEGER PRIMARY KEY,
	triggers_fired    INTEGER NOT NULL,
	triggers_dropped  INTEGER NOT NULL,
	brain_invocations INTEGER NOT NULL,
	batch_collapses   INTEGER NOT NULL,
	peer_connected    INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a snapshot and prunes rows older than the retention
// window.
func (s *Store) Record(ctx context.Context, snap Snapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (ts, triggers_fired, triggers_dropped, brain_invocations, batch_collapses, peer_connected)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.Timestamp.Unix(), snap.TriggersFired, snap.TriggersDropped, snap.BrainInvocations, snap.BatchCollapses, boolToInt(snap.PeerConnected))
	if err != nil {
		return fmt.Errorf("telemetry: insert snapshot: %w", err)
	}

	cutoff := snap.Timestamp.Add(-retention).Unix()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE ts < ?`, cutoff); err != nil {
		return fmt.Errorf("telemetry: prune snapshots: %w", err)
	}
	return nil
}

// Latest returns the most recently recorded snapshot. ok is false if
// the store is empty.
func (s *Store) Latest(ctx context.Context) (snap Snapshot, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ts, triggers_fired, triggers_dropped, brain_invocations, batch_collapses, peer_connected
		 FROM snapshots ORDER BY ts DESC LIMIT 1`)

	var ts int64
	var peerConnected int
	if scanErr := row.Scan(&ts, &snap.TriggersFired, &snap.TriggersDropped, &snap.BrainInvocations, &snap.BatchCollapses, &peerConnected); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("telemetry: query latest: %w", scanErr)
	}
	snap.Timestamp = time.Unix(ts, 0).UTC()
	snap.PeerConnected = peerConnected != 0
	return snap, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Run snapshots counters into the store every period until ctx is
// cancelled (SPEC_FULL: "every 60s, matching the wall-clock ticker
// cadence"). Intended to be run in its own goroutine. A write failure
// is logged and absorbed — telemetry is observational and must never
// affect hub operation.
func Run(ctx context.Context, store *Store, counters *Counters, period time.Duration, nowFn func() time.Time, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Record(ctx, counters.snapshot(nowFn())); err != nil {
				logger.Warn("telemetry snapshot failed", "error", err)
			}
		}
	}
}

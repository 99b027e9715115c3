package telemetry

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telemetry.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndLatestRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var c Counters
	c.IncTriggersFired()
	c.IncTriggersFired()
	c.IncTriggersDropped()
	c.IncBrainInvocations()
	c.SetPeerConnected(true)

	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, c.snapshot(now)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, ok, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !ok {
		t.Fatal("Latest: ok = false, want true")
	}
	if got.TriggersFired != 2 || got.TriggersDropped != 1 || got.BrainInvocations != 1 {
		t.Errorf("got %+v, want TriggersFired=2 TriggersDropped=1 BrainInvocations=1", got)
	}
	if !got.PeerConnected {
		t.Error("PeerConnected = false, want true")
	}
	if !got.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, now)
	}
}

func TestLatestOnEmptyStore(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if ok {
		t.Fatal("ok = true on empty store, want false")
	}
}

func TestRecordPrunesOlderThanRetention(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, Snapshot{Timestamp: old, TriggersFired: 1}); err != nil {
		t.Fatalf("Record old: %v", err)
	}

	recent := old.Add(retention + time.Hour)
	if err := store.Record(ctx, Snapshot{Timestamp: recent, TriggersFired: 2}); err != nil {
		t.Fatalf("Record recent: %v", err)
	}

	var count int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1 (old snapshot should have been pruned)", count)
	}
}

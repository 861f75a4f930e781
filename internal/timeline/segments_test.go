package timeline

import (
	"context"
	"errors"
	"testing"
)

func TestSegmentStore_Refresh(t *testing.T) {
	archive := &fakeArchive{segments: []Segment{
		{StartTimeMs: testAnchor + 1000, EndTimeMs: testAnchor + 5000},
		{StartTimeMs: testAnchor - 3_600_000, EndTimeMs: testAnchor + 1_800_000}, // spills out of the day: kept
		{StartTimeMs: testAnchor + 9000, EndTimeMs: testAnchor + 9000},           // malformed: dropped
	}}
	store := NewSegmentStore(archive)
	store.SetDay("ch1", testAnchor)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	segs := store.Snapshot()
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments (malformed dropped), got %d", len(segs))
	}
}

func TestSegmentStore_Refresh_without_selection_is_noop(t *testing.T) {
	archive := &fakeArchive{}
	store := NewSegmentStore(archive)

	if err := store.Refresh(context.Background()); err != nil {
		t.Errorf("Refresh with no selection should no-op, got %v", err)
	}
}

func TestSegmentStore_Refresh_failure_keeps_snapshot(t *testing.T) {
	archive := &fakeArchive{segments: []Segment{{StartTimeMs: testAnchor, EndTimeMs: testAnchor + 1000}}}
	store := NewSegmentStore(archive)
	store.SetDay("ch1", testAnchor)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("setup refresh: %v", err)
	}

	archive.mu.Lock()
	archive.segErr = errors.New("archive down")
	archive.mu.Unlock()

	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := len(store.Snapshot()); got != 1 {
		t.Errorf("failed refresh must keep the previous snapshot, got %d segments", got)
	}
	if store.LastError() == "" {
		t.Error("failed refresh should record a dismissable message")
	}

	store.DismissError()
	if store.LastError() != "" {
		t.Error("message should clear on dismiss")
	}
}

func TestSegmentStore_SetDay_clears_segments(t *testing.T) {
	archive := &fakeArchive{segments: []Segment{{StartTimeMs: testAnchor, EndTimeMs: testAnchor + 1000}}}
	store := NewSegmentStore(archive)
	store.SetDay("ch1", testAnchor)
	_ = store.Refresh(context.Background())

	store.SetDay("ch2", testAnchor)

	if got := len(store.Snapshot()); got != 0 {
		t.Errorf("stale segments must not survive a day/channel switch, got %d", got)
	}
}

func TestSegmentStore_Snapshot_is_a_copy(t *testing.T) {
	archive := &fakeArchive{segments: []Segment{{StartTimeMs: testAnchor, EndTimeMs: testAnchor + 1000}}}
	store := NewSegmentStore(archive)
	store.SetDay("ch1", testAnchor)
	_ = store.Refresh(context.Background())

	snap := store.Snapshot()
	snap[0].StartTimeMs = 0

	if store.Snapshot()[0].StartTimeMs == 0 {
		t.Error("mutating a snapshot must not affect the store")
	}
}

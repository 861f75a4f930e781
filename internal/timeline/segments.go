package timeline

import (
	"context"
	"sync"
	"time"
)

// DefaultRefreshInterval is how often the store re-queries the archive while
// the selected day is today.
const DefaultRefreshInterval = 5 * time.Second

// SegmentStore holds the recorded ranges for the currently selected channel
// and day. It is refreshed from the archive; refreshes are independent of
// playback and never block it.
type SegmentStore struct {
	mu         sync.RWMutex
	archive    ArchiveClient
	channel    Channel
	dayStartMs int64
	segments   []Segment
	lastErr    string
}

// NewSegmentStore returns an empty store backed by the given archive.
func NewSegmentStore(archive ArchiveClient) *SegmentStore {
	return &SegmentStore{archive: archive}
}

// SetDay repoints the store at a channel/day pair and clears stale segments.
// Call Refresh afterwards to load the new day's ranges.
func (s *SegmentStore) SetDay(channel Channel, dayStartMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel = channel
	s.dayStartMs = dayStartMs
	s.segments = nil
	s.lastErr = ""
}

// Refresh reloads the segment list from the archive. Malformed entries
// (start >= end) are dropped; entries extending outside the day are kept as-is
// since the renderer clips per segment. A fetch failure keeps the previous
// snapshot and records a dismissable message.
func (s *SegmentStore) Refresh(ctx context.Context) error {
	s.mu.RLock()
	channel, dayStart := s.channel, s.dayStartMs
	s.mu.RUnlock()

	if channel == "" || dayStart <= 0 {
		return nil
	}

	segs, err := s.archive.ListSegments(ctx, channel, dayStart, dayStart+int64(24*MillisPerHour))
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel != s.channel || dayStart != s.dayStartMs {
		// Selection changed while the fetch was in flight; drop the result.
		return nil
	}
	if err != nil {
		if ctx.Err() == nil {
			s.lastErr = "failed to load recorded ranges"
		}
		return err
	}

	kept := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		if seg.Valid() {
			kept = append(kept, seg)
		}
	}
	s.segments = kept
	s.lastErr = ""
	return nil
}

// Snapshot returns a copy of the current segment list.
func (s *SegmentStore) Snapshot() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// LastError returns the pending dismissable refresh message, if any.
func (s *SegmentStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// DismissError clears the pending refresh message.
func (s *SegmentStore) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// RunRefresher refreshes the store every interval until ctx is cancelled.
// isLive gates the refresh: it should report whether the selected day is
// today, since finished days never grow new footage. onRefresh (may be nil)
// is called after each successful refresh so the UI can redraw.
func (s *SegmentStore) RunRefresher(ctx context.Context, interval time.Duration, isLive func() bool, onRefresh func()) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if isLive != nil && !isLive() {
				continue
			}
			if err := s.Refresh(ctx); err == nil && onRefresh != nil {
				onRefresh()
			}
		}
	}
}

package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type clipCall struct {
	channel Channel
	startMs int64
	endMs   int64
}

// fakeArchive is a controllable in-memory ArchiveClient. clipFn, when set,
// decides each RequestClip outcome; otherwise a reference derived from the
// start time is returned.
type fakeArchive struct {
	mu        sync.Mutex
	segments  []Segment
	segErr    error
	dates     []string
	clipCalls []clipCall
	clipFn    func(ctx context.Context, channel Channel, startMs, endMs int64) (ClipReference, error)
}

func (a *fakeArchive) ListSegments(ctx context.Context, channel Channel, dayStartMs, dayEndMs int64) ([]Segment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.segErr != nil {
		return nil, a.segErr
	}
	out := make([]Segment, len(a.segments))
	copy(out, a.segments)
	return out, nil
}

func (a *fakeArchive) ListRecordedDates(ctx context.Context, channel Channel) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.dates...), nil
}

func (a *fakeArchive) RequestClip(ctx context.Context, channel Channel, startMs, endMs int64) (ClipReference, error) {
	a.mu.Lock()
	a.clipCalls = append(a.clipCalls, clipCall{channel: channel, startMs: startMs, endMs: endMs})
	fn := a.clipFn
	a.mu.Unlock()
	if fn != nil {
		return fn(ctx, channel, startMs, endMs)
	}
	return ClipReference(fmt.Sprintf("clip-%d", startMs)), nil
}

func (a *fakeArchive) ClipURL(ref ClipReference) string {
	return "http://archive/clips/" + string(ref)
}

func (a *fakeArchive) calls() []clipCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]clipCall(nil), a.clipCalls...)
}

// fakeMedia records every directive the controller issues.
type fakeMedia struct {
	mu      sync.Mutex
	current ClipReference
	loads   []ClipReference
	pauses  int
	resets  int
}

func (m *fakeMedia) Load(ref ClipReference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = ref
	m.loads = append(m.loads, ref)
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
}

func (m *fakeMedia) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = ""
	m.resets++
}

func (m *fakeMedia) Current() ClipReference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *fakeMedia) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loads)
}

func (m *fakeMedia) lastLoad() ClipReference {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.loads) == 0 {
		return ""
	}
	return m.loads[len(m.loads)-1]
}

func (m *fakeMedia) stats() (pauses, resets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauses, m.resets
}

package timeline

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is how long the gate waits after the latest click
// before dispatching a clip request.
const DefaultDebounceDelay = 300 * time.Millisecond

// InteractionGate serializes click-to-seek requests. Every click lands on
// screen immediately (the cursor callback), but the actual clip request is
// debounced: a newer click inside the window replaces the pending target
// rather than queueing behind it. An in-progress flag drops dispatches that
// fire while a previous one is still processing, so rapid double-clicks can
// never run two requests at once.
type InteractionGate struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	pendingTs  int64
	inProgress bool

	seek     func(tsMs int64)
	onCursor func(tsMs int64)
}

// NewInteractionGate returns a gate dispatching to seek after delay; onCursor
// (may be nil) runs synchronously on every click for perceived responsiveness.
// A delay <= 0 falls back to DefaultDebounceDelay.
func NewInteractionGate(delay time.Duration, seek func(tsMs int64), onCursor func(tsMs int64)) *InteractionGate {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &InteractionGate{delay: delay, seek: seek, onCursor: onCursor}
}

// Click registers a seek target. The visual cursor moves now; the clip
// request fires only once clicks pause for the debounce window, targeting the
// latest click.
func (g *InteractionGate) Click(tsMs int64) {
	if g.onCursor != nil {
		g.onCursor(tsMs)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingTs = tsMs
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.delay, g.fire)
}

// Cancel drops any pending dispatch. Used when the channel or date changes
// under a not-yet-fired click.
func (g *InteractionGate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// fire runs on the debounce timer. The in-progress flag is cleared whether
// the seek completes, errors, or is superseded inside the controller.
func (g *InteractionGate) fire() {
	g.mu.Lock()
	if g.inProgress {
		g.mu.Unlock()
		return
	}
	g.inProgress = true
	ts := g.pendingTs
	g.mu.Unlock()

	g.seek(ts)

	g.mu.Lock()
	g.inProgress = false
	g.mu.Unlock()
}

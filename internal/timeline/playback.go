package timeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"nvr-timeline/internal/platform/metrics"
)

// DefaultSettleDelay is the minimum time after loading a new clip before
// media-element position reports may move the cursor again. It papers over
// the element's own load/seek event ordering.
const DefaultSettleDelay = time.Second

// PlaybackController drives the single media player through bounded clips:
// it requests a clip for a target timestamp, plays it, and on natural end
// requests the next contiguous one so consecutive 60s clips present as one
// unbroken timeline. It exclusively owns the PlaybackSession and the media
// player; everything else only reads the cursor.
type PlaybackController struct {
	mu      sync.Mutex
	archive ArchiveClient
	media   MediaPlayer
	log     *slog.Logger
	metrics *metrics.Metrics

	now         func() time.Time
	settleDelay time.Duration

	channel     Channel
	dayAnchorMs int64

	state   PlaybackState
	session *PlaybackSession

	cursorHours float64
	hasCursor   bool

	// gen is the seek generation: each new request bumps it, and a result is
	// applied only if its captured generation still matches. Last-issued-wins
	// even when responses arrive out of order.
	gen    uint64
	cancel context.CancelFunc

	// guard suppresses media-driven cursor updates between issuing a seek and
	// confirming the requested clip is the active one. guardSince is reset
	// when the new clip is loaded; the guard lifts only settleDelay later.
	guard         bool
	guardSince    time.Time
	lastRequested ClipReference

	lastErr  string
	onChange func()
}

// NewPlaybackController returns an idle controller. met may be nil to disable
// metric recording (e.g. in tests).
func NewPlaybackController(archive ArchiveClient, media MediaPlayer, log *slog.Logger, met *metrics.Metrics) *PlaybackController {
	return &PlaybackController{
		archive:     archive,
		media:       media,
		log:         log,
		metrics:     met,
		now:         time.Now,
		settleDelay: DefaultSettleDelay,
		state:       StateIdle,
	}
}

// SetClock replaces the controller's time source. Test hook.
func (c *PlaybackController) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SetSettleDelay overrides the manual-update guard settle delay.
func (c *PlaybackController) SetSettleDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settleDelay = d
}

// OnChange registers a callback fired (outside the lock) whenever cursor,
// state, or session change. Used by the shell to push redraws.
func (c *PlaybackController) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetChannel stops playback and retargets the controller, returning it to
// idle. The cursor is deliberately preserved so a channel-only switch can
// resume at the same spot.
func (c *PlaybackController) SetChannel(channel Channel) {
	c.mu.Lock()
	c.invalidateLocked()
	c.session = nil
	c.state = StateIdle
	c.guard = false
	c.channel = channel
	media := c.media
	c.mu.Unlock()

	media.Pause()
	c.notify()
}

// SetDay stops playback and fully resets the controller for a new day:
// session destroyed, cursor cleared, media returned to position zero.
func (c *PlaybackController) SetDay(anchorMs int64) {
	c.mu.Lock()
	c.invalidateLocked()
	c.dayAnchorMs = anchorMs
	c.session = nil
	c.state = StateIdle
	c.hasCursor = false
	c.cursorHours = 0
	c.guard = false
	c.lastErr = ""
	media := c.media
	c.mu.Unlock()

	media.Reset()
	c.notify()
}

// SeekTo requests and plays the clip covering [tsMs, tsMs+60s). Any in-flight
// request is cancelled; a superseded result is discarded silently. Blocks for
// the duration of the archive call, so callers on hot paths run it in a
// goroutine.
func (c *PlaybackController) SeekTo(ctx context.Context, tsMs int64) {
	c.seek(ctx, tsMs, false)
}

func (c *PlaybackController) seek(ctx context.Context, tsMs int64, continuation bool) {
	c.mu.Lock()
	if c.dayAnchorMs <= 0 || c.channel == "" {
		c.mu.Unlock()
		return
	}
	c.invalidateLocked()
	gen := c.gen
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateRequesting
	c.guard = true
	c.guardSince = c.now()
	channel := c.channel
	anchor := c.dayAnchorMs
	c.mu.Unlock()
	c.notify()

	if c.metrics != nil {
		c.metrics.IncClipRequests()
	}
	ref, err := c.archive.RequestClip(reqCtx, channel, tsMs, tsMs+ClipDurationMs)
	cancel()

	c.mu.Lock()
	if gen != c.gen {
		// Superseded while in flight; the newer request owns the state now.
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.IncClipSuperseded()
		}
		return
	}
	c.cancel = nil

	switch {
	case errors.Is(err, context.Canceled):
		// Cancellation is not a failure: no message, no state beyond Idle.
		c.state = StateIdle
		c.guard = false
		c.mu.Unlock()
		c.notify()
		return
	case errors.Is(err, ErrNoData):
		// Nothing recorded there (live edge or a gap): stop quietly.
		c.state = StateIdle
		c.session = nil
		c.guard = false
		c.mu.Unlock()
		c.notify()
		return
	case err != nil:
		c.state = StateIdle
		c.session = nil
		c.guard = false
		c.lastErr = "failed to load clip"
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.IncClipErrors()
		}
		c.log.Warn("clip request failed",
			slog.String("channel", string(channel)),
			slog.Int64("start_ms", tsMs),
			slog.String("error", err.Error()))
		c.notify()
		return
	}

	c.session = &PlaybackSession{
		CurrentStartTimeMs: tsMs,
		CurrentEndTimeMs:   tsMs + ClipDurationMs,
		PlayingReference:   ref,
	}
	c.lastRequested = ref
	c.state = StatePlaying
	c.cursorHours = float64(tsMs-anchor) / MillisPerHour
	c.hasCursor = true
	c.guardSince = c.now()
	media := c.media
	c.mu.Unlock()

	media.Load(ref)
	if continuation && c.metrics != nil {
		c.metrics.IncContinuations()
	}
	c.notify()
}

// Stop ends playback: cancels any in-flight request, clears the session, and
// pauses the media player. The cursor keeps its last position.
func (c *PlaybackController) Stop() {
	c.stop()
	c.notify()
}

func (c *PlaybackController) stop() {
	c.mu.Lock()
	c.invalidateLocked()
	c.session = nil
	c.state = StateStopped
	c.guard = false
	media := c.media
	c.mu.Unlock()
	media.Pause()
}

// invalidateLocked bumps the generation and cancels any in-flight request so
// its eventual result is discarded. Caller holds c.mu.
func (c *PlaybackController) invalidateLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// HandleMediaEvent consumes one playback report from the media element.
func (c *PlaybackController) HandleMediaEvent(ev MediaEvent) {
	switch ev.Kind {
	case MediaTimeUpdate:
		c.handleTimeUpdate(ev)
	case MediaEnded:
		c.handleEnded(ev)
	}
}

// handleTimeUpdate recomputes the cursor from the element's play position.
// Reports from a clip other than the active one are dropped, and while the
// manual-update guard holds, position reports must both match the
// last-requested clip and arrive after the settle delay before they count.
func (c *PlaybackController) handleTimeUpdate(ev MediaEvent) {
	c.mu.Lock()
	if c.state != StatePlaying || c.session == nil || ev.Source != c.session.PlayingReference {
		c.mu.Unlock()
		return
	}
	if c.guard {
		if ev.Source != c.lastRequested || c.now().Sub(c.guardSince) < c.settleDelay {
			c.mu.Unlock()
			return
		}
		c.guard = false
	}
	c.cursorHours = float64(c.session.CurrentStartTimeMs+ev.PositionMs-c.dayAnchorMs) / MillisPerHour
	c.hasCursor = true
	c.mu.Unlock()
	c.notify()
}

// handleEnded implements the auto-continue contract: when a clip ends
// naturally and more recorded time can exist, request [end, end+60s) with no
// gap and no cursor jump. At the live edge (end >= now) playback stops.
func (c *PlaybackController) handleEnded(ev MediaEvent) {
	c.mu.Lock()
	if c.state != StatePlaying || c.session == nil || ev.Source != c.session.PlayingReference {
		c.mu.Unlock()
		return
	}
	next := c.session.CurrentEndTimeMs
	live := next >= c.now().UnixMilli()
	c.mu.Unlock()

	if live {
		c.Stop()
		return
	}
	c.seek(context.Background(), next, true)
}

// SetCursor moves the visual cursor without touching playback. The
// interaction gate uses it so a click registers on screen before any network
// call is made.
func (c *PlaybackController) SetCursor(hours float64) {
	c.mu.Lock()
	c.cursorHours = hours
	c.hasCursor = true
	c.mu.Unlock()
	c.notify()
}

// Cursor returns the cursor position in hours from midnight and whether one
// is set.
func (c *PlaybackController) Cursor() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursorHours, c.hasCursor
}

// State returns the controller's current state.
func (c *PlaybackController) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the active session, if any.
func (c *PlaybackController) Session() (PlaybackSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return PlaybackSession{}, false
	}
	return *c.session, true
}

// LastError returns the pending dismissable playback message, if any.
func (c *PlaybackController) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// DismissError clears the pending playback message.
func (c *PlaybackController) DismissError() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

// Channel returns the controller's current channel.
func (c *PlaybackController) Channel() Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// DayAnchor returns the controller's current day anchor in epoch ms.
func (c *PlaybackController) DayAnchor() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dayAnchorMs
}

func (c *PlaybackController) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

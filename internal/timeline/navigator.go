package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nvr-timeline/internal/platform/metrics"
)

// DefaultAxisPadding is the horizontal gutter reserved for axis labels at the
// window edges, in pixels.
const DefaultAxisPadding = 40.0

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Options tunes a Navigator. Zero values select the defaults.
type Options struct {
	DebounceDelay time.Duration
	SettleDelay   time.Duration
	AxisPadding   float64
	Location      *time.Location // local timezone for day anchors
}

// Navigator is the composition root of the timeline core: it owns channel and
// date selection plus the viewport, and wires the interaction gate, the
// coordinate mapper, the segment store, and the playback controller together.
// A UI shell drives it and renders the draw commands it produces.
type Navigator struct {
	mu       sync.Mutex
	channel  Channel
	date     string
	anchorMs int64
	viewport Viewport

	loc     *time.Location
	padding float64

	archive ArchiveClient
	store   *SegmentStore
	ctrl    *PlaybackController
	gate    *InteractionGate
	metrics *metrics.Metrics
	log     *slog.Logger

	onChange func()
}

// NewNavigator wires a navigator around the given archive and media player.
// met may be nil to disable metric recording.
func NewNavigator(archive ArchiveClient, media MediaPlayer, log *slog.Logger, met *metrics.Metrics, opts Options) *Navigator {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.AxisPadding <= 0 {
		opts.AxisPadding = DefaultAxisPadding
	}

	n := &Navigator{
		viewport: ResetViewport(),
		loc:      opts.Location,
		padding:  opts.AxisPadding,
		archive:  archive,
		store:    NewSegmentStore(archive),
		metrics:  met,
		log:      log,
	}
	n.ctrl = NewPlaybackController(archive, media, log, met)
	if opts.SettleDelay > 0 {
		n.ctrl.SetSettleDelay(opts.SettleDelay)
	}
	n.ctrl.OnChange(n.notify)
	n.gate = NewInteractionGate(opts.DebounceDelay,
		func(tsMs int64) { n.ctrl.SeekTo(context.Background(), tsMs) },
		func(tsMs int64) {
			if anchor := n.ctrl.DayAnchor(); anchor > 0 {
				n.ctrl.SetCursor(float64(tsMs-anchor) / MillisPerHour)
			}
		},
	)
	return n
}

// OnChange registers a callback fired after any observable state change.
func (n *Navigator) OnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Controller exposes the playback controller for media event delivery.
func (n *Navigator) Controller() *PlaybackController {
	return n.ctrl
}

// SelectDate switches the selected calendar day. This is a full reset: the
// session is destroyed, the cursor cleared, the viewport returned to the 24h
// view, and the media player rewound to position zero. An unparseable date is
// a defensive no-op.
func (n *Navigator) SelectDate(ctx context.Context, date string) error {
	midnight, err := time.ParseInLocation(dateLayout, date, n.loc)
	if err != nil {
		return fmt.Errorf("select date: %w", err)
	}
	anchor := midnight.UnixMilli()

	n.mu.Lock()
	if date == n.date {
		n.mu.Unlock()
		return nil
	}
	n.date = date
	n.anchorMs = anchor
	n.viewport = ResetViewport()
	channel := n.channel
	n.mu.Unlock()

	n.gate.Cancel()
	n.ctrl.SetDay(anchor)
	n.store.SetDay(channel, anchor)
	if channel != "" {
		if err := n.store.Refresh(ctx); err != nil {
			n.log.Warn("segment refresh failed", slog.String("date", date), slog.String("error", err.Error()))
		}
	}
	n.notify()
	return nil
}

// SelectChannel switches the camera channel. Playback stops, but the cursor
// survives: once the new channel's segment list has loaded, the navigator
// automatically seeks to the same cursor timestamp on the new channel.
func (n *Navigator) SelectChannel(ctx context.Context, channel Channel) error {
	n.mu.Lock()
	if channel == n.channel {
		n.mu.Unlock()
		return nil
	}
	n.channel = channel
	anchor := n.anchorMs
	n.mu.Unlock()

	n.gate.Cancel()
	n.ctrl.SetChannel(channel)
	n.store.SetDay(channel, anchor)
	if anchor > 0 {
		if err := n.store.Refresh(ctx); err != nil {
			n.log.Warn("segment refresh failed", slog.String("channel", string(channel)), slog.String("error", err.Error()))
			n.notify()
			return nil
		}
		if cursor, ok := n.ctrl.Cursor(); ok {
			n.ctrl.SeekTo(context.Background(), anchor+int64(cursor*MillisPerHour))
		}
	}
	n.notify()
	return nil
}

// Click handles a timeline click at canvas position x. The cursor moves
// immediately; the clip request goes through the debounced gate.
func (n *Navigator) Click(x, canvasWidth float64) {
	n.mu.Lock()
	m := Mapper{DayAnchorMs: n.anchorMs, View: n.viewport}
	pad := n.padding
	n.mu.Unlock()

	if m.DayAnchorMs <= 0 {
		return
	}
	if n.metrics != nil {
		n.metrics.IncSeekClicks()
	}
	n.gate.Click(m.PixelToTimestamp(x, canvasWidth, pad))
}

// Stop halts playback, keeping the cursor.
func (n *Navigator) Stop() {
	n.gate.Cancel()
	n.ctrl.Stop()
}

// ZoomIn narrows the visible window, keeping the playback cursor centered if
// one exists, otherwise the current view center.
func (n *Navigator) ZoomIn() {
	n.applyViewport(func(v Viewport, center float64) Viewport { return v.ZoomIn(center) })
}

// ZoomOut widens the visible window with the same centering rule as ZoomIn.
func (n *Navigator) ZoomOut() {
	n.applyViewport(func(v Viewport, center float64) Viewport { return v.ZoomOut(center) })
}

// PanBy shifts the visible window by deltaHours, clamped to the day.
func (n *Navigator) PanBy(deltaHours float64) {
	n.mu.Lock()
	n.viewport = n.viewport.PanBy(deltaHours)
	n.mu.Unlock()
	n.notify()
}

// applyViewport runs a zoom transition with cursor-preferred centering: the
// red marker stays visible when zooming during playback.
func (n *Navigator) applyViewport(f func(v Viewport, center float64) Viewport) {
	cursor, hasCursor := n.ctrl.Cursor()
	n.mu.Lock()
	center := n.viewport.Center()
	if hasCursor {
		center = cursor
	}
	n.viewport = f(n.viewport, center)
	n.mu.Unlock()
	n.notify()
}

// Viewport returns the current zoom/pan state.
func (n *Navigator) Viewport() Viewport {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.viewport
}

// RecordedDates lists the dates with footage for the given channel, for the
// date picker. Not on the hot path.
func (n *Navigator) RecordedDates(ctx context.Context, channel Channel) ([]string, error) {
	return n.archive.ListRecordedDates(ctx, channel)
}

// HandleMediaEvent forwards a media element report to the controller.
func (n *Navigator) HandleMediaEvent(ev MediaEvent) {
	n.ctrl.HandleMediaEvent(ev)
}

// Status is the navigator's observable state, pushed to UI clients.
type Status struct {
	Channel     Channel          `json:"channel"`
	Date        string           `json:"date"`
	View        Viewport         `json:"viewport"`
	State       PlaybackState    `json:"state"`
	CursorHours *float64         `json:"cursor_hours"`
	Session     *PlaybackSession `json:"session,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Status assembles the current observable state. The error field carries the
// first pending dismissable message (playback first, then segment refresh).
func (n *Navigator) Status() Status {
	n.mu.Lock()
	st := Status{Channel: n.channel, Date: n.date, View: n.viewport}
	n.mu.Unlock()

	st.State = n.ctrl.State()
	if cursor, ok := n.ctrl.Cursor(); ok {
		st.CursorHours = &cursor
	}
	if sess, ok := n.ctrl.Session(); ok {
		st.Session = &sess
	}
	st.Error = n.ctrl.LastError()
	if st.Error == "" {
		st.Error = n.store.LastError()
	}
	return st
}

// DismissError clears all pending dismissable messages.
func (n *Navigator) DismissError() {
	n.ctrl.DismissError()
	n.store.DismissError()
}

// Frame is one rendered timeline frame plus the canvas geometry the client
// should size its surface to.
type Frame struct {
	CanvasW  float64       `json:"canvas_w"`
	CanvasH  float64       `json:"canvas_h"`
	Padding  float64       `json:"padding"`
	Commands []DrawCommand `json:"commands"`
	Status   Status        `json:"status"`
}

// RenderFrame produces the draw commands for a viewport width and canvas
// height. The canvas widens proportionally with zoom for extra horizontal
// resolution.
func (n *Navigator) RenderFrame(viewWidth, canvasH float64) Frame {
	n.mu.Lock()
	view := n.viewport
	anchor := n.anchorMs
	pad := n.padding
	n.mu.Unlock()

	cursor, hasCursor := n.ctrl.Cursor()
	canvasW := TimelineCanvasWidth(viewWidth, view.ZoomHours)
	cmds := RenderTimeline(RenderInput{
		Segments:    n.store.Snapshot(),
		View:        view,
		DayAnchorMs: anchor,
		CursorHours: cursor,
		HasCursor:   hasCursor,
		CanvasW:     canvasW,
		CanvasH:     canvasH,
		Padding:     pad,
	})
	return Frame{CanvasW: canvasW, CanvasH: canvasH, Padding: pad, Commands: cmds, Status: n.Status()}
}

// RunRefresher periodically reloads the segment list while the selected day
// is today, until ctx is cancelled.
func (n *Navigator) RunRefresher(ctx context.Context, interval time.Duration) {
	n.store.RunRefresher(ctx, interval, n.isToday, func() {
		if n.metrics != nil {
			n.metrics.IncSegmentRefreshes()
		}
		n.notify()
	})
}

func (n *Navigator) isToday() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.date == time.Now().In(n.loc).Format(dateLayout)
}

func (n *Navigator) notify() {
	n.mu.Lock()
	fn := n.onChange
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
}

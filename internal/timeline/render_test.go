package timeline

import (
	"math"
	"testing"
)

func renderInput(view Viewport, segs []Segment) RenderInput {
	return RenderInput{
		Segments:    segs,
		View:        view,
		DayAnchorMs: testAnchor,
		CanvasW:     1000,
		CanvasH:     120,
		Padding:     40,
	}
}

func commandsByOp(cmds []DrawCommand, op DrawOp) []DrawCommand {
	var out []DrawCommand
	for _, c := range cmds {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func TestRenderTimeline_background_first(t *testing.T) {
	cmds := RenderTimeline(renderInput(ResetViewport(), nil))
	if len(cmds) == 0 || cmds[0].Op != OpBackground {
		t.Fatalf("first command must be the background fill, got %+v", cmds)
	}
	bg := cmds[0]
	if bg.W != 1000 || bg.H != 120 {
		t.Errorf("background should cover the canvas, got %+v", bg)
	}
}

func TestRenderTimeline_missing_anchor_only_background(t *testing.T) {
	in := renderInput(ResetViewport(), []Segment{{StartTimeMs: 1, EndTimeMs: 2}})
	in.DayAnchorMs = 0
	cmds := RenderTimeline(in)
	if len(cmds) != 1 || cmds[0].Op != OpBackground {
		t.Errorf("no anchor should render background only, got %+v", cmds)
	}
}

func TestRenderTimeline_segment_clipped_to_window(t *testing.T) {
	// Starts an hour before midnight, ends 30 minutes in: only [0, 0.5h) draws.
	seg := Segment{
		StartTimeMs: testAnchor - int64(MillisPerHour),
		EndTimeMs:   testAnchor + int64(0.5*MillisPerHour),
	}
	cmds := RenderTimeline(renderInput(ResetViewport(), []Segment{seg}))
	bars := commandsByOp(cmds, OpSegmentBar)
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}

	m := Mapper{DayAnchorMs: testAnchor, View: ResetViewport()}
	wantX0 := m.TimestampToPixel(testAnchor, 1000, 40)
	wantX1 := m.TimestampToPixel(testAnchor+int64(0.5*MillisPerHour), 1000, 40)
	if math.Abs(bars[0].X-wantX0) > 0.01 || math.Abs(bars[0].X+bars[0].W-wantX1) > 0.01 {
		t.Errorf("bar [%v, %v] should clip to [%v, %v]", bars[0].X, bars[0].X+bars[0].W, wantX0, wantX1)
	}
	if bars[0].H != 120*barHeightRatio {
		t.Errorf("bar height should use the upper %v of the canvas, got %v", barHeightRatio, bars[0].H)
	}
}

func TestRenderTimeline_segment_outside_window_skipped(t *testing.T) {
	view := Viewport{ZoomHours: 6, PanOffsetHours: 0}
	seg := Segment{
		StartTimeMs: testAnchor + int64(10*MillisPerHour),
		EndTimeMs:   testAnchor + int64(11*MillisPerHour),
	}
	cmds := RenderTimeline(renderInput(view, []Segment{seg}))
	if bars := commandsByOp(cmds, OpSegmentBar); len(bars) != 0 {
		t.Errorf("segment outside window should not draw, got %+v", bars)
	}
}

func TestRenderTimeline_overlapping_segments_draw_independently(t *testing.T) {
	segs := []Segment{
		{StartTimeMs: testAnchor + int64(1*MillisPerHour), EndTimeMs: testAnchor + int64(3*MillisPerHour)},
		{StartTimeMs: testAnchor + int64(2*MillisPerHour), EndTimeMs: testAnchor + int64(4*MillisPerHour)},
		{StartTimeMs: testAnchor + int64(5*MillisPerHour), EndTimeMs: testAnchor + int64(5*MillisPerHour)}, // malformed
	}
	cmds := RenderTimeline(renderInput(ResetViewport(), segs))
	if bars := commandsByOp(cmds, OpSegmentBar); len(bars) != 2 {
		t.Errorf("overlap draws both, malformed draws none: got %d bars", len(bars))
	}
}

func TestRenderTimeline_cursor(t *testing.T) {
	t.Run("inside_window", func(t *testing.T) {
		in := renderInput(ResetViewport(), nil)
		in.CursorHours = 12
		in.HasCursor = true
		cursors := commandsByOp(RenderTimeline(in), OpCursor)
		if len(cursors) != 1 {
			t.Fatalf("expected cursor command, got %d", len(cursors))
		}
		if cursors[0].W != cursorWidthPx || cursors[0].H != 120 {
			t.Errorf("cursor should be a 2px full-height line, got %+v", cursors[0])
		}
	})

	t.Run("off_screen_omitted", func(t *testing.T) {
		in := renderInput(Viewport{ZoomHours: 6, PanOffsetHours: 0}, nil)
		in.CursorHours = 12
		in.HasCursor = true
		if cursors := commandsByOp(RenderTimeline(in), OpCursor); len(cursors) != 0 {
			t.Errorf("off-screen cursor must not draw, got %+v", cursors)
		}
	})

	t.Run("unset_omitted", func(t *testing.T) {
		in := renderInput(ResetViewport(), nil)
		if cursors := commandsByOp(RenderTimeline(in), OpCursor); len(cursors) != 0 {
			t.Errorf("unset cursor must not draw, got %+v", cursors)
		}
	})
}

func TestAxisStepMinutes(t *testing.T) {
	for _, tc := range []struct {
		zoom float64
		want int
	}{
		{24, 120}, {12.5, 120}, {12, 60}, {8, 60}, {6, 30}, {4, 30}, {2, 15}, {0.5, 15},
	} {
		if got := axisStepMinutes(tc.zoom); got != tc.want {
			t.Errorf("axisStepMinutes(%v) = %d, want %d", tc.zoom, got, tc.want)
		}
	}
}

func TestAxisLabel(t *testing.T) {
	for _, tc := range []struct {
		hours float64
		want  string
	}{
		{0, "0"}, {15, "15"}, {15.5, "15:30"}, {9.25, "9:15"}, {23.75, "23:45"},
	} {
		if got := axisLabel(tc.hours); got != tc.want {
			t.Errorf("axisLabel(%v) = %q, want %q", tc.hours, got, tc.want)
		}
	}
}

func TestRenderTimeline_axis_marker_count(t *testing.T) {
	// Full day at 2h steps: markers at 0,2,...,24 = 13 guides and labels.
	cmds := RenderTimeline(renderInput(ResetViewport(), nil))
	guides := commandsByOp(cmds, OpAxisGuide)
	labels := commandsByOp(cmds, OpAxisLabel)
	if len(guides) != 13 || len(labels) != 13 {
		t.Errorf("expected 13 guides and labels for the 24h view, got %d/%d", len(guides), len(labels))
	}
	if labels[0].Text != "0" || labels[len(labels)-1].Text != "24" {
		t.Errorf("expected labels 0..24, got %q..%q", labels[0].Text, labels[len(labels)-1].Text)
	}
}

func TestTimelineCanvasWidth(t *testing.T) {
	for _, tc := range []struct {
		zoom float64
		want float64
	}{
		{24, 1280}, {12, 2560}, {6, 5120}, {0.5, 61440},
	} {
		if got := TimelineCanvasWidth(1280, tc.zoom); got != tc.want {
			t.Errorf("TimelineCanvasWidth(1280, %v) = %v, want %v", tc.zoom, got, tc.want)
		}
	}
}

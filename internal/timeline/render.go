package timeline

import (
	"fmt"
	"math"
)

// DrawOp names the kind of a draw command.
type DrawOp string

const (
	OpBackground DrawOp = "background"
	OpSegmentBar DrawOp = "segment_bar"
	OpAxisGuide  DrawOp = "axis_guide"
	OpAxisLabel  DrawOp = "axis_label"
	OpCursor     DrawOp = "cursor"
)

// DrawCommand is one primitive the canvas shell executes. Rects use X/Y/W/H,
// lines use X/Y/H with W as stroke width, labels carry Text anchored at X/Y.
type DrawCommand struct {
	Op   DrawOp  `json:"op"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Text string  `json:"text,omitempty"`
}

// RenderInput is everything RenderTimeline needs; it never mutates any of it.
type RenderInput struct {
	Segments    []Segment
	View        Viewport
	DayAnchorMs int64
	CursorHours float64
	HasCursor   bool
	CanvasW     float64
	CanvasH     float64
	Padding     float64
}

// barHeightRatio reserves the bottom strip of the canvas for axis labels.
const barHeightRatio = 0.7

// cursorWidthPx is the stroke width of the playback cursor line.
const cursorWidthPx = 2.0

// TimelineCanvasWidth returns the canvas width for the given viewport width
// and zoom: the full viewport at 24h, proportionally wider when zoomed in so
// horizontal resolution grows with zoom.
func TimelineCanvasWidth(viewWidth, zoomHours float64) float64 {
	if zoomHours <= 0 || zoomHours >= MaxZoomHours {
		return viewWidth
	}
	return viewWidth * MaxZoomHours / zoomHours
}

// RenderTimeline produces the ordered draw command list for one frame:
// background, clipped segment bars, adaptive axis markers, and the playback
// cursor if it falls inside the visible window. It is a pure function of its
// input and needs no graphics surface.
func RenderTimeline(in RenderInput) []DrawCommand {
	cmds := []DrawCommand{{Op: OpBackground, X: 0, Y: 0, W: in.CanvasW, H: in.CanvasH}}
	if in.DayAnchorMs <= 0 {
		return cmds
	}

	m := Mapper{DayAnchorMs: in.DayAnchorMs, View: in.View}
	windowStart := in.View.PanOffsetHours
	windowEnd := in.View.PanOffsetHours + in.View.ZoomHours
	barHeight := in.CanvasH * barHeightRatio

	for _, seg := range in.Segments {
		if !seg.Valid() {
			continue
		}
		startH := m.HoursFromAnchor(seg.StartTimeMs)
		endH := m.HoursFromAnchor(seg.EndTimeMs)
		if startH < windowStart {
			startH = windowStart
		}
		if endH > windowEnd {
			endH = windowEnd
		}
		if startH >= endH {
			continue
		}
		x0 := m.TimestampToPixel(m.HoursToTimestamp(startH), in.CanvasW, in.Padding)
		x1 := m.TimestampToPixel(m.HoursToTimestamp(endH), in.CanvasW, in.Padding)
		cmds = append(cmds, DrawCommand{Op: OpSegmentBar, X: x0, Y: 0, W: x1 - x0, H: barHeight})
	}

	cmds = append(cmds, axisCommands(m, in)...)

	if in.HasCursor && in.View.Contains(in.CursorHours) {
		x := m.TimestampToPixel(m.HoursToTimestamp(in.CursorHours), in.CanvasW, in.Padding)
		cmds = append(cmds, DrawCommand{Op: OpCursor, X: x, Y: 0, W: cursorWidthPx, H: in.CanvasH})
	}

	return cmds
}

// axisStepMinutes picks the marker interval for the current zoom level.
func axisStepMinutes(zoomHours float64) int {
	switch {
	case zoomHours > 12:
		return 120
	case zoomHours > 6:
		return 60
	case zoomHours > 2:
		return 30
	default:
		return 15
	}
}

// axisCommands emits a faint vertical guide plus a text label at every marker
// position inside the visible window. Whole hours are labeled "H", others
// "H:MM".
func axisCommands(m Mapper, in RenderInput) []DrawCommand {
	step := float64(axisStepMinutes(in.View.ZoomHours)) / 60.0
	windowStart := in.View.PanOffsetHours
	windowEnd := in.View.PanOffsetHours + in.View.ZoomHours

	var cmds []DrawCommand
	first := math.Ceil(windowStart/step) * step
	for h := first; h <= windowEnd+1e-9; h += step {
		x := m.TimestampToPixel(m.HoursToTimestamp(h), in.CanvasW, in.Padding)
		cmds = append(cmds,
			DrawCommand{Op: OpAxisGuide, X: x, Y: 0, W: 1, H: in.CanvasH},
			DrawCommand{Op: OpAxisLabel, X: x, Y: in.CanvasH, Text: axisLabel(h)},
		)
	}
	return cmds
}

// axisLabel formats an hour offset as "H" on whole hours and "H:MM" otherwise.
func axisLabel(hours float64) string {
	total := int(math.Round(hours * 60))
	h, min := total/60, total%60
	if min == 0 {
		return fmt.Sprintf("%d", h)
	}
	return fmt.Sprintf("%d:%02d", h, min)
}

package timeline

// Mapper converts between canvas pixel positions and absolute epoch
// millisecond timestamps for one day and viewport. It is pure and stateless;
// construct a fresh one whenever the viewport or selected day changes.
//
// A DayAnchorMs of zero or less means "no day selected": all conversions
// become defensive no-ops (zero timestamp, left-edge pixel) instead of
// producing garbage coordinates.
type Mapper struct {
	DayAnchorMs int64 // local midnight of the selected day
	View        Viewport
}

// PixelToTimestamp maps a canvas x position to an absolute timestamp. The x
// value is clamped into the drawable band [padding, canvasWidth-padding]
// before mapping, so clicks in the label gutters resolve to the window edges.
func (m Mapper) PixelToTimestamp(x, canvasWidth, padding float64) int64 {
	if m.DayAnchorMs <= 0 {
		return 0
	}
	usable := canvasWidth - 2*padding
	if usable <= 0 {
		return m.DayAnchorMs
	}
	if x < padding {
		x = padding
	}
	if x > canvasWidth-padding {
		x = canvasWidth - padding
	}
	ratio := (x - padding) / usable
	hours := m.View.PanOffsetHours + ratio*m.View.ZoomHours
	return m.DayAnchorMs + int64(hours*MillisPerHour)
}

// TimestampToPixel is the inverse of PixelToTimestamp. For timestamps inside
// the visible window the round trip stays within one pixel of the input.
// Timestamps outside the window map outside the drawable band; callers decide
// visibility.
func (m Mapper) TimestampToPixel(tsMs int64, canvasWidth, padding float64) float64 {
	if m.DayAnchorMs <= 0 {
		return padding
	}
	usable := canvasWidth - 2*padding
	if usable <= 0 || m.View.ZoomHours <= 0 {
		return padding
	}
	hours := m.HoursFromAnchor(tsMs)
	ratio := (hours - m.View.PanOffsetHours) / m.View.ZoomHours
	return padding + ratio*usable
}

// HoursFromAnchor returns the timestamp's offset from local midnight in
// fractional hours. Not clamped; negative or >24 values are legal and mean
// "outside the selected day".
func (m Mapper) HoursFromAnchor(tsMs int64) float64 {
	if m.DayAnchorMs <= 0 {
		return 0
	}
	return float64(tsMs-m.DayAnchorMs) / MillisPerHour
}

// HoursToTimestamp converts an hour offset back to an absolute timestamp.
func (m Mapper) HoursToTimestamp(hours float64) int64 {
	if m.DayAnchorMs <= 0 {
		return 0
	}
	return m.DayAnchorMs + int64(hours*MillisPerHour)
}

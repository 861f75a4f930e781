package timeline

const (
	// MinZoomHours is the narrowest visible window (30 minutes).
	MinZoomHours = 0.5
	// MaxZoomHours is the full-day view.
	MaxZoomHours = 24.0
)

// Viewport is the zoom/pan state of the timeline: a visible window
// [PanOffsetHours, PanOffsetHours+ZoomHours] that is always a subset of
// [0, 24]. It is an immutable value; every operation returns a re-clamped
// copy.
type Viewport struct {
	ZoomHours      float64 `json:"zoom_hours"`
	PanOffsetHours float64 `json:"pan_offset_hours"`
}

// ResetViewport returns the default full-day viewport.
func ResetViewport() Viewport {
	return Viewport{ZoomHours: MaxZoomHours, PanOffsetHours: 0}
}

// Center returns the midpoint of the visible window in hours from midnight.
func (v Viewport) Center() float64 {
	return v.PanOffsetHours + v.ZoomHours/2
}

// Contains reports whether the given hour offset is inside the visible window.
func (v Viewport) Contains(hours float64) bool {
	return hours >= v.PanOffsetHours && hours <= v.PanOffsetHours+v.ZoomHours
}

// ZoomIn halves the visible window (floored at MinZoomHours) and repositions
// the pan offset so centerHours stays centered, clamped into [0, 24].
func (v Viewport) ZoomIn(centerHours float64) Viewport {
	z := v.ZoomHours / 2
	if z < MinZoomHours {
		z = MinZoomHours
	}
	return Viewport{ZoomHours: z, PanOffsetHours: centerHours - z/2}.Clamp()
}

// ZoomOut doubles the visible window (capped at MaxZoomHours), same centering
// rule as ZoomIn.
func (v Viewport) ZoomOut(centerHours float64) Viewport {
	z := v.ZoomHours * 2
	if z > MaxZoomHours {
		z = MaxZoomHours
	}
	return Viewport{ZoomHours: z, PanOffsetHours: centerHours - z/2}.Clamp()
}

// PanBy shifts the visible window by deltaHours, clamped so it never leaves
// [0, 24].
func (v Viewport) PanBy(deltaHours float64) Viewport {
	return Viewport{ZoomHours: v.ZoomHours, PanOffsetHours: v.PanOffsetHours + deltaHours}.Clamp()
}

// Clamp forces the viewport back into a valid state: ZoomHours in
// [MinZoomHours, MaxZoomHours] and PanOffsetHours in [0, 24-ZoomHours].
func (v Viewport) Clamp() Viewport {
	if v.ZoomHours < MinZoomHours {
		v.ZoomHours = MinZoomHours
	}
	if v.ZoomHours > MaxZoomHours {
		v.ZoomHours = MaxZoomHours
	}
	if v.PanOffsetHours < 0 {
		v.PanOffsetHours = 0
	}
	if v.PanOffsetHours > MaxZoomHours-v.ZoomHours {
		v.PanOffsetHours = MaxZoomHours - v.ZoomHours
	}
	return v
}

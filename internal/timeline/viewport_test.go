package timeline

import (
	"testing"
)

func TestResetViewport(t *testing.T) {
	v := ResetViewport()
	if v.ZoomHours != 24 || v.PanOffsetHours != 0 {
		t.Errorf("expected full-day viewport, got %+v", v)
	}
}

func TestViewport_ZoomIn_halves(t *testing.T) {
	v := ResetViewport().ZoomIn(12)
	if v.ZoomHours != 12 {
		t.Errorf("expected zoom 12, got %v", v.ZoomHours)
	}
	if v.PanOffsetHours != 6 {
		t.Errorf("expected pan 6 (center 12 kept), got %v", v.PanOffsetHours)
	}
}

func TestViewport_ZoomIn_floor(t *testing.T) {
	v := Viewport{ZoomHours: 0.5, PanOffsetHours: 10}.ZoomIn(10.25)
	if v.ZoomHours != MinZoomHours {
		t.Errorf("zoom should floor at %v, got %v", MinZoomHours, v.ZoomHours)
	}
}

func TestViewport_ZoomOut_ceiling(t *testing.T) {
	v := Viewport{ZoomHours: 16, PanOffsetHours: 4}.ZoomOut(12)
	if v.ZoomHours != 24 {
		t.Errorf("zoom should cap at 24, got %v", v.ZoomHours)
	}
	if v.PanOffsetHours != 0 {
		t.Errorf("full-day zoom must pan to 0, got %v", v.PanOffsetHours)
	}
}

func TestViewport_ZoomIn_clamps_at_edges(t *testing.T) {
	t.Run("left_edge", func(t *testing.T) {
		v := ResetViewport().ZoomIn(0)
		if v.PanOffsetHours != 0 {
			t.Errorf("expected pan clamped to 0, got %v", v.PanOffsetHours)
		}
	})
	t.Run("right_edge", func(t *testing.T) {
		v := ResetViewport().ZoomIn(24)
		if v.PanOffsetHours != 12 {
			t.Errorf("expected pan clamped to 12 (24-12), got %v", v.PanOffsetHours)
		}
	})
}

func TestViewport_PanBy_clamps(t *testing.T) {
	v := Viewport{ZoomHours: 6, PanOffsetHours: 2}

	if got := v.PanBy(-5).PanOffsetHours; got != 0 {
		t.Errorf("pan below 0 should clamp to 0, got %v", got)
	}
	if got := v.PanBy(100).PanOffsetHours; got != 18 {
		t.Errorf("pan above 24-zoom should clamp to 18, got %v", got)
	}
	if got := v.PanBy(1.5).PanOffsetHours; got != 3.5 {
		t.Errorf("in-range pan should apply, got %v", got)
	}
}

func TestViewport_window_never_leaves_day(t *testing.T) {
	// Walk through a pile of operations; the invariant must hold after each.
	v := ResetViewport()
	ops := []func(Viewport) Viewport{
		func(v Viewport) Viewport { return v.ZoomIn(23.9) },
		func(v Viewport) Viewport { return v.ZoomIn(0.1) },
		func(v Viewport) Viewport { return v.PanBy(-99) },
		func(v Viewport) Viewport { return v.ZoomIn(v.Center()) },
		func(v Viewport) Viewport { return v.PanBy(50) },
		func(v Viewport) Viewport { return v.ZoomOut(0) },
		func(v Viewport) Viewport { return v.ZoomOut(24) },
		func(v Viewport) Viewport { return v.ZoomIn(12.3) },
	}
	for i, op := range ops {
		v = op(v)
		if v.PanOffsetHours < 0 || v.PanOffsetHours+v.ZoomHours > 24 {
			t.Fatalf("op %d broke the window invariant: %+v", i, v)
		}
		if v.ZoomHours < MinZoomHours || v.ZoomHours > MaxZoomHours {
			t.Fatalf("op %d broke the zoom bounds: %+v", i, v)
		}
	}
}

func TestViewport_Contains(t *testing.T) {
	v := Viewport{ZoomHours: 6, PanOffsetHours: 8}
	for _, tc := range []struct {
		hours float64
		want  bool
	}{
		{8, true}, {11, true}, {14, true}, {7.99, false}, {14.01, false},
	} {
		if got := v.Contains(tc.hours); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.hours, got, tc.want)
		}
	}
}

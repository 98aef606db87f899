package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-450, 270},
	}

	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); !approxEqual(got, tt.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRotatedSize(t *testing.T) {
	tests := []struct {
		name      string
		w, h, deg float64
		wantW     float64
		wantH     float64
	}{
		{"no rotation", 100, 40, 0, 100, 40},
		{"quarter turn swaps extents", 100, 40, 90, 40, 100},
		{"half turn preserves extents", 100, 40, 180, 100, 40},
		{"negative quarter turn", 100, 40, -90, 40, 100},
		{"diagonal grows both extents", 100, 100, 45, 100 * math.Sqrt2, 100 * math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotatedSize(tt.w, tt.h, tt.deg)
			if !approxEqual(got.Width, tt.wantW) || !approxEqual(got.Height, tt.wantH) {
				t.Errorf("RotatedSize(%v, %v, %v) = %vx%v, want %vx%v",
					tt.w, tt.h, tt.deg, got.Width, got.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRotatedBounds_PreservesCenter(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 40}

	for _, deg := range []float64{0, 30, 90, 145, 270} {
		got := RotatedBounds(r, deg)
		if !approxEqual(got.Center().X, r.Center().X) || !approxEqual(got.Center().Y, r.Center().Y) {
			t.Errorf("RotatedBounds(%v) center = %v, want %v", deg, got.Center(), r.Center())
		}
	}
}

func TestOffsetForBounds_RoundTrip(t *testing.T) {
	// Placing the unrotated corner at the computed offset must make the
	// rotated box land exactly on the target.
	target := Point{X: 12, Y: 34}
	w, h := 80.0, 30.0

	for _, deg := range []float64{0, 45, 90, 210} {
		offset := OffsetForBounds(target, w, h, deg)
		bounds := RotatedBounds(Rect{X: offset.X, Y: offset.Y, Width: w, Height: h}, deg)
		if !approxEqual(bounds.X, target.X) || !approxEqual(bounds.Y, target.Y) {
			t.Errorf("OffsetForBounds(deg=%v) round trip = (%v, %v), want (%v, %v)",
				deg, bounds.X, bounds.Y, target.X, target.Y)
		}
	}
}

func TestRect_Overlaps(t *testing.T) {
	base := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"identical", Rect{0, 0, 10, 10}, true},
		{"partial overlap", Rect{5, 5, 10, 10}, true},
		{"contained", Rect{2, 2, 4, 4}, true},
		{"touching edge", Rect{10, 0, 5, 5}, false},
		{"disjoint", Rect{20, 20, 5, 5}, false},
		{"empty other", Rect{5, 5, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestRect_Contains(t *testing.T) {
	base := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"identical", Rect{0, 0, 10, 10}, true},
		{"inner", Rect{1, 1, 5, 5}, true},
		{"sticking out right", Rect{5, 5, 10, 2}, false},
		{"outside", Rect{-5, -5, 2, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Contains(tt.other); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestRect_Union(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 20, Y: 5, Width: 10, Height: 10}

	got := a.Union(b)
	want := Rect{X: 0, Y: 0, Width: 30, Height: 15}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}

	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union(empty) = %+v, want %+v", got, a)
	}
}

func TestCenterOffset_RoundTrip(t *testing.T) {
	canvas := Size{Width: 400, Height: 96}
	w, h := 60.0, 20.0

	tests := []struct {
		name             string
		offsetX, offsetY float64
	}{
		{"centered", 0, 0},
		{"upper left quadrant", -100, -20},
		{"lower right quadrant", 80, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := CenterOffsetToTopLeft(canvas, w, h, tt.offsetX, tt.offsetY)
			back := TopLeftToCenterOffset(canvas, w, h, tl.X, tl.Y)
			if !approxEqual(back.X, tt.offsetX) || !approxEqual(back.Y, tt.offsetY) {
				t.Errorf("round trip = (%v, %v), want (%v, %v)", back.X, back.Y, tt.offsetX, tt.offsetY)
			}
		})
	}
}

func TestCenterOffsetToTopLeft_Centered(t *testing.T) {
	canvas := Size{Width: 400, Height: 100}

	got := CenterOffsetToTopLeft(canvas, 40, 20, 0, 0)
	if !approxEqual(got.X, 180) || !approxEqual(got.Y, 40) {
		t.Errorf("CenterOffsetToTopLeft() = (%v, %v), want (180, 40)", got.X, got.Y)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		want      float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

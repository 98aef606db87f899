// Package geom provides the rectangle and rotation math used by layout
// measurement and normalization.
//
// All coordinates are in device units (printer dots). The draw space has its
// origin at the top-left corner of the preview canvas, +x along the feed
// axis and +y across the tape.
//
// # Coordinate systems
//
// Most items are positioned by the top-left corner of their unrotated box.
// Shape items instead carry offsets measured from the canvas centre to the
// shape centre; [CenterOffsetToTopLeft] and [TopLeftToCenterOffset] convert
// between the two.
//
// # Rotation
//
// Rotation turns an item about its box centre. The reported bounds of a
// rotated item are the axis-aligned box of the rotated rectangle, which is
// wider and shorter (or narrower and taller) than the unrotated box.
// [RotatedBounds] computes that box; [OffsetForBounds] inverts it, answering
// "where must the unrotated top-left corner go so the rotated box lands
// here".
package geom

import "math"

// Point is a position in draw space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle identified by its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the centre point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Overlaps reports whether r and other share any interior area.
// Touching edges do not count as overlap.
func (r Rect) Overlaps(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.MaxX() && other.X < r.MaxX() &&
		r.Y < other.MaxY() && other.Y < r.MaxY()
}

// Contains reports whether other lies fully inside r (edges may touch).
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.MaxX() <= r.MaxX() && other.MaxY() <= r.MaxY()
}

// ContainsPoint reports whether p lies inside r (edges count as inside).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Inset shrinks the rectangle by d on every side. A negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Union returns the smallest rectangle containing both r and other.
// If either rectangle is empty the other is returned unchanged.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.MaxX(), other.MaxX()) - x,
		Height: math.Max(r.MaxY(), other.MaxY()) - y,
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NormalizeAngle maps an angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// RotatedSize returns the size of the axis-aligned box that encloses a
// w×h rectangle rotated by deg degrees about its centre.
func RotatedSize(w, h, deg float64) Size {
	rad := Radians(NormalizeAngle(deg))
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	return Size{
		Width:  w*cos + h*sin,
		Height: w*sin + h*cos,
	}
}

// RotatedBounds returns the axis-aligned box of r rotated by deg degrees
// about its centre. The centre is preserved; the extents grow or shrink.
func RotatedBounds(r Rect, deg float64) Rect {
	size := RotatedSize(r.Width, r.Height, deg)
	c := r.Center()
	return Rect{
		X:      c.X - size.Width/2,
		Y:      c.Y - size.Height/2,
		Width:  size.Width,
		Height: size.Height,
	}
}

// OffsetForBounds returns the unrotated top-left corner that makes the
// rotated box of a w×h rectangle land with its top-left at target.
// With zero rotation this is target itself.
func OffsetForBounds(target Point, w, h, deg float64) Point {
	size := RotatedSize(w, h, deg)
	return Point{
		X: target.X + (size.Width-w)/2,
		Y: target.Y + (size.Height-h)/2,
	}
}

// CenterOffsetToTopLeft converts a centre-relative shape offset into the
// draw-space top-left corner of a w×h box. The offset measures from the
// canvas centre to the box centre.
func CenterOffsetToTopLeft(canvas Size, w, h, offsetX, offsetY float64) Point {
	return Point{
		X: canvas.Width/2 + offsetX - w/2,
		Y: canvas.Height/2 + offsetY - h/2,
	}
}

// TopLeftToCenterOffset converts a draw-space top-left corner of a w×h box
// into the centre-relative shape offset.
func TopLeftToCenterOffset(canvas Size, w, h, x, y float64) Point {
	return Point{
		X: x + w/2 - canvas.Width/2,
		Y: y + h/2 - canvas.Height/2,
	}
}

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

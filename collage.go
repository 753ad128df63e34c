package collage

// Vec2 is a 2D vector used for positions, velocities, and forces
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Viewport is the visible canvas area in absolute pixels. The hybrid
// coordinate system (see coords.go) is defined relative to it.
type Viewport struct {
	Width, Height float64
}

// Bounds returns the viewport as a Rect anchored at the origin.
func (v Viewport) Bounds() Rect {
	return Rect{0, 0, v.Width, v.Height}
}

// Center returns the viewport center in absolute pixels.
func (v Viewport) Center() Vec2 {
	return Vec2{v.Width / 2, v.Height / 2}
}

// PointerDevice distinguishes mouse from touch input. The gesture machine
// treats a press differently per device: mouse presses start a drag
// immediately, touch presses pass through a tap-pending state first.
type PointerDevice uint8

const (
	DeviceMouse PointerDevice = iota
	DeviceTouch
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

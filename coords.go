package collage

import "math"

// The canvas uses a hybrid coordinate encoding for sticker positions:
// X is a signed pixel offset from the viewport's horizontal center, and
// Y is a percentage of the viewport height. Horizontal placement stays
// visually stable when the viewport gains side margin, while vertical
// placement rescales with height changes. Re-layout on resize is a pure
// recompute of the absolute position, never a stored-value rewrite.

// AbsoluteToHybrid converts an absolute viewport point to hybrid coordinates.
func AbsoluteToHybrid(vp Viewport, clientX, clientY float64) (x, yPercent float64) {
	x = clientX - vp.Width/2
	yPercent = clientY / vp.Height * 100
	return x, yPercent
}

// HybridToAbsolute converts hybrid coordinates back to an absolute point.
func HybridToAbsolute(vp Viewport, x, yPercent float64) (clientX, clientY float64) {
	clientX = x + vp.Width/2
	clientY = yPercent / 100 * vp.Height
	return clientX, clientY
}

// PhysicsToHybrid converts a physics-world position (absolute pixels) to
// hybrid coordinates. The formula is identical to AbsoluteToHybrid; the
// separate name marks the boundary between simulation state and persisted
// display state.
func PhysicsToHybrid(vp Viewport, pos Vec2) (x, yPercent float64) {
	return AbsoluteToHybrid(vp, pos.X, pos.Y)
}

// HybridToPhysics converts hybrid coordinates to a physics-world position.
func HybridToPhysics(vp Viewport, x, yPercent float64) Vec2 {
	cx, cy := HybridToAbsolute(vp, x, yPercent)
	return Vec2{cx, cy}
}

// DegToRad converts degrees to radians. Exact, no wrapping.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees. Exact, no wrapping.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Corruption bounds for hybrid positions. Values beyond these are treated as
// corrupted state, not legitimate placement.
const (
	maxSaneX        = 10000
	maxSaneYPercent = 200
)

// Safe default position: canvas center.
const (
	safeX        = 0.0
	safeYPercent = 50.0
)

// SanitizePosition clamps a corrupted hybrid position to the canvas center.
// Returns the (possibly corrected) position and whether a correction was
// applied. Non-finite values and absurd magnitudes are both corruption
// signals.
func SanitizePosition(x, yPercent float64) (float64, float64, bool) {
	bad := math.IsNaN(x) || math.IsInf(x, 0) ||
		math.IsNaN(yPercent) || math.IsInf(yPercent, 0) ||
		math.Abs(x) > maxSaneX || math.Abs(yPercent) > maxSaneYPercent
	if bad {
		return safeX, safeYPercent, true
	}
	return x, yPercent, false
}

// VisibleExtent returns how many pixels of the box are inside the viewport
// along each axis. A fully contained box returns its own width and height;
// a box entirely outside returns zero on the exited axis.
func VisibleExtent(vp Viewport, box Rect) (vx, vy float64) {
	vx = math.Min(box.X+box.Width, vp.Width) - math.Max(box.X, 0)
	vy = math.Min(box.Y+box.Height, vp.Height) - math.Max(box.Y, 0)
	if vx < 0 {
		vx = 0
	}
	if vy < 0 {
		vy = 0
	}
	return vx, vy
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// angleLerp interpolates between two angles (radians) along the shortest
// angular path. The result never deviates from a by more than the shortest
// delta to b.
func angleLerp(a, b, t float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return a + d*t
}

// rotatePoint rotates (x, y) about the origin by the given angle (radians).
func rotatePoint(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package collage

// GravitySource resolves the gravity vector applied each physics tick.
// Without tilt samples it holds a constant downward pull (desktop). Once
// the host feeds device-orientation samples, the applied vector chases the
// tilt target by a fixed lerp factor per tick, so flipping the device
// produces a continuous force change rather than a jump.
type GravitySource struct {
	tun       *Tuning
	constant  Vec2
	target    Vec2 // unit-scale target derived from tilt, each axis in [-1, 1]
	current   Vec2 // smoothed unit-scale vector actually applied
	hasSample bool
}

func newGravitySource(tun *Tuning) *GravitySource {
	return &GravitySource{
		tun:      tun,
		constant: Vec2{0, 1}, // straight down, screen coordinates
	}
}

// SetTilt feeds one device-orientation sample. Beta is front/back tilt,
// gamma left/right, both in degrees. Each axis maps linearly against the
// full-tilt angle and clamps to [-1, 1].
func (g *GravitySource) SetTilt(beta, gamma float64) {
	full := g.tun.TiltFullAngle
	g.target = Vec2{
		X: clamp(gamma/full, -1, 1),
		Y: clamp(beta/full, -1, 1),
	}
	if !g.hasSample {
		// First sample: start smoothing from the constant vector so the
		// transition from desktop gravity is itself continuous.
		g.current = g.constant
		g.hasSample = true
	}
}

// Tick advances the smoothing by one physics tick and returns the gravity
// vector to apply, scaled to pixels/second². If no tilt sample ever
// arrived, the constant vector is returned and the smoothing path never
// engages.
func (g *GravitySource) Tick() Vec2 {
	if !g.hasSample {
		return Vec2{g.constant.X * g.tun.GravityScale, g.constant.Y * g.tun.GravityScale}
	}
	f := g.tun.GravityLerp
	g.current.X = lerp(g.current.X, g.target.X, f)
	g.current.Y = lerp(g.current.Y, g.target.Y, f)
	return Vec2{g.current.X * g.tun.GravityScale, g.current.Y * g.tun.GravityScale}
}

// Reset drops tilt state back to the constant fallback. Called on
// physics-mode exit so a stale target does not leak into the next session.
func (g *GravitySource) Reset() {
	g.target = Vec2{}
	g.current = Vec2{}
	g.hasSample = false
}

package collage

// Sticker is a user-placed, transformable image entity on the canvas.
// Position is stored in hybrid coordinates (see coords.go), rotation in
// degrees and deliberately not normalized, so a sticker spun five times
// keeps its accumulated value. Height is derived from the image aspect
// and never stored.
type Sticker struct {
	// Identity
	ID int

	// Hybrid position
	X        float64 // signed pixel offset from viewport horizontal center
	YPercent float64 // percent of viewport height, 0-100

	// Display box
	Width     float64 // pixels; always clamped to the store's width bounds
	Aspect    float64 // height/width ratio of the source image
	BaseWidth float64 // width the sticker was created at; scale = Width/BaseWidth

	Rotation float64 // degrees, any real value
	ZIndex   int     // monotonically issued; higher draws on top

	// Pinned stickers are excluded from physics and auto-layout and reject
	// resize/rotate/free-drag gestures.
	Pinned bool
}

// Height returns the derived display height.
func (s *Sticker) Height() float64 {
	if s.Aspect <= 0 {
		return s.Width
	}
	return s.Width * s.Aspect
}

// Scale returns the current scale relative to the creation width.
func (s *Sticker) Scale() float64 {
	if s.BaseWidth <= 0 {
		return 1
	}
	return s.Width / s.BaseWidth
}

// Bounds returns the unrotated display box in absolute pixels, centered on
// the sticker's position. Rotation is intentionally ignored: the off-screen
// snap-back rule and hit pre-filtering both work on this box.
func (s *Sticker) Bounds(vp Viewport) Rect {
	cx, cy := HybridToAbsolute(vp, s.X, s.YPercent)
	w := s.Width
	h := s.Height()
	return Rect{cx - w/2, cy - h/2, w, h}
}

// ContainsPoint reports whether the absolute point (px, py) lies inside the
// sticker's rotated display box. The point is rotated into the sticker's
// local frame about its center, then tested against the half extents.
func (s *Sticker) ContainsPoint(vp Viewport, px, py float64) bool {
	cx, cy := HybridToAbsolute(vp, s.X, s.YPercent)
	lx, ly := rotatePoint(px-cx, py-cy, -DegToRad(s.Rotation))
	return lx >= -s.Width/2 && lx <= s.Width/2 &&
		ly >= -s.Height()/2 && ly <= s.Height()/2
}

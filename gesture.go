package collage

import (
	"math"

	"github.com/rs/zerolog"
)

// GestureState identifies what the machine is currently doing with the
// active pointer(s).
type GestureState uint8

const (
	GestureIdle       GestureState = iota
	GesturePendingTap              // touch press, not yet resolved to tap or drag
	GestureDragging                // sticker follows the pointer
	GestureRotating                // single pointer with modifier rotates about the center
	GesturePinching                // two-finger combined resize + rotate
)

// throwSample is one pointer position with its timestamp, kept for exit
// velocity computation.
type throwSample struct {
	t, x, y float64
}

// GestureSession holds every transient field of one interaction. It is a
// plain value owned by the machine, reset on gesture end; nothing here is
// package-level state.
type GestureSession struct {
	State    GestureState
	TargetID int
	Primary  int // pointer id that started the gesture
	Second   int // second pinch pointer, -1 when not pinching
	Device   PointerDevice

	StartX, StartY float64
	StartTime      float64

	// Drag: offset from the sticker center to the grab point, so the
	// sticker does not jump under the finger.
	GrabDX, GrabDY float64

	// Rotate: captured once at gesture start as pointerAngle - rotation.
	RotateOffset float64 // degrees

	// Pinch. Resize applies incremental frame-to-frame distance ratios
	// (a finger lift-and-reposition must not cause a size jump), while
	// rotation applies against a session-start angle offset. The two bases
	// differ on purpose; do not unify them.
	LastPinchDist    float64
	PinchAngleOffset float64 // degrees

	samples []throwSample
}

// Gestures interprets raw pointer sequences into drag/rotate/pinch/tap/throw
// intents, independent of whether physics mode is active. It depends
// downward on the store and reaches the physics adapter only through hooks
// the engine wires in.
type Gestures struct {
	tun      *Tuning
	store    *Store
	viewport func() Viewport
	now      func() float64 // seconds, monotonic

	session  GestureSession
	pointers map[int]Vec2 // absolute positions of currently-down pointers

	// Physics hooks, wired by the engine. All may be nil.
	physicsOn  func() bool
	dragBody   func(id int, pos Vec2)
	throwBody  func(id int, v Vec2)
	removeBody func(id int)

	// onInteract preempts an in-flight auto-layout animation.
	onInteract func()

	// Host callbacks.
	TrashRegion  func() Rect  // nil = no trash hit-region
	OnTrash      func(id int)
	OnSnapBack   func(id int) // fired when a drop snapped back to center
	OnStickerTap func(id int) // short, still press resolved on a sticker
	OnCanvasTap  func()       // empty-canvas tap with nothing selected

	log *zerolog.Logger
}

// newGestures wires a machine to its store. The engine fills in the physics
// hooks after construction.
func newGestures(tun *Tuning, store *Store, viewport func() Viewport, now func() float64, logger *zerolog.Logger) *Gestures {
	return &Gestures{
		tun:      tun,
		store:    store,
		viewport: viewport,
		now:      now,
		pointers: make(map[int]Vec2),
		log:      logger,
	}
}

// Session returns a copy of the current session for inspection.
func (g *Gestures) Session() GestureSession {
	return g.session
}

// PointerDown feeds a press at absolute coordinates.
func (g *Gestures) PointerDown(pointerID int, x, y float64, dev PointerDevice, mods KeyModifiers) {
	g.pointers[pointerID] = Vec2{x, y}
	if g.onInteract != nil {
		g.onInteract()
	}

	// A second touch while a session is live converts it to a pinch on the
	// selected sticker, regardless of which finger is over it. The drag
	// displacement accumulated so far is frozen at this instant.
	if g.session.State == GesturePendingTap || g.session.State == GestureDragging || g.session.State == GestureRotating {
		if dev == DeviceTouch && pointerID != g.session.Primary {
			g.beginPinch(pointerID)
			return
		}
		return
	}

	if g.session.State != GestureIdle {
		return
	}

	vp := g.viewport()
	hit := g.store.TopAt(vp, x, y)
	if hit == nil {
		// Elsewhere: deselect, or surface the canvas tap.
		if g.store.Selected() != nil {
			g.store.Deselect()
		} else if g.OnCanvasTap != nil {
			g.OnCanvasTap()
		}
		return
	}

	selected := g.store.Selected()
	if mods&ModShift != 0 && selected != nil && selected.ID == hit.ID && !hit.Pinned {
		g.beginRotate(pointerID, x, y, dev, hit)
		return
	}

	g.store.Select(hit.ID)
	if hit.Pinned {
		// Selection only; pinned stickers reject free drag.
		return
	}

	g.session = GestureSession{
		TargetID:  hit.ID,
		Primary:   pointerID,
		Second:    -1,
		Device:    dev,
		StartX:    x,
		StartY:    y,
		StartTime: g.now(),
	}
	if dev == DeviceMouse {
		g.beginDrag(x, y, hit)
	} else {
		g.session.State = GesturePendingTap
	}
}

// PointerMove feeds pointer motion at absolute coordinates.
func (g *Gestures) PointerMove(pointerID int, x, y float64, dev PointerDevice, mods KeyModifiers) {
	if _, down := g.pointers[pointerID]; down {
		g.pointers[pointerID] = Vec2{x, y}
	}

	switch g.session.State {
	case GesturePendingTap:
		if pointerID != g.session.Primary {
			return
		}
		dx := x - g.session.StartX
		dy := y - g.session.StartY
		if math.Hypot(dx, dy) > g.tun.DragThreshold {
			if s := g.target(); s != nil {
				g.beginDrag(x, y, s)
				g.updateDrag(x, y)
			}
		}
	case GestureDragging:
		if pointerID == g.session.Primary {
			g.updateDrag(x, y)
		}
	case GestureRotating:
		if pointerID == g.session.Primary {
			g.updateRotate(x, y)
		}
	case GesturePinching:
		g.updatePinch()
	}
}

// PointerUp feeds a release at absolute coordinates.
func (g *Gestures) PointerUp(pointerID int, x, y float64, dev PointerDevice, mods KeyModifiers) {
	delete(g.pointers, pointerID)

	switch g.session.State {
	case GesturePendingTap:
		if pointerID != g.session.Primary {
			return
		}
		// The selection made on press stands either way; a short, still
		// press additionally resolves as a tap.
		moved := math.Hypot(x-g.session.StartX, y-g.session.StartY)
		held := g.now() - g.session.StartTime
		if moved <= g.tun.TapThreshold && held <= g.tun.TapMaxDuration {
			if g.OnStickerTap != nil {
				g.OnStickerTap(g.session.TargetID)
			}
		}
		g.endSession()
	case GestureDragging:
		if pointerID != g.session.Primary {
			return
		}
		g.releaseDrag(x, y)
	case GestureRotating:
		if pointerID != g.session.Primary {
			return
		}
		g.store.Persist(g.session.TargetID)
		g.endSession()
	case GesturePinching:
		if pointerID == g.session.Primary || pointerID == g.session.Second {
			g.store.Persist(g.session.TargetID)
			g.endSession()
		}
	}
}

// Wheel resizes the selected sticker by a multiplicative step per notch.
// Desktop-only by nature; pinned stickers reject it.
func (g *Gestures) Wheel(dy float64) {
	s := g.store.Selected()
	if s == nil || s.Pinned {
		return
	}
	if g.onInteract != nil {
		g.onInteract()
	}
	g.store.UpdateSize(s.ID, s.Width*math.Pow(g.tun.WheelStep, dy))
	g.store.Persist(s.ID)
}

// --- Gesture internals ---

func (g *Gestures) target() *Sticker {
	return g.store.ByID(g.session.TargetID)
}

func (g *Gestures) beginDrag(x, y float64, s *Sticker) {
	vp := g.viewport()
	cx, cy := HybridToAbsolute(vp, s.X, s.YPercent)
	g.session.State = GestureDragging
	g.session.GrabDX = x - cx
	g.session.GrabDY = y - cy
	g.session.samples = g.session.samples[:0]
	g.recordSample(x, y)
}

func (g *Gestures) updateDrag(x, y float64) {
	s := g.target()
	if s == nil {
		g.endSession()
		return
	}
	g.recordSample(x, y)
	vp := g.viewport()
	center := Vec2{x - g.session.GrabDX, y - g.session.GrabDY}
	hx, hy := PhysicsToHybrid(vp, center)
	g.store.UpdatePosition(s.ID, hx, hy)
	if g.physicsActive() && g.dragBody != nil {
		// Position override only; velocity is left alone so gravity keeps
		// acting without fighting the drag.
		g.dragBody(s.ID, center)
	}
}

func (g *Gestures) releaseDrag(x, y float64) {
	// Apply the final pointer displacement before any trash or bounds
	// decision; the drop must land where the pointer let go.
	g.updateDrag(x, y)
	s := g.target()
	if s == nil {
		return
	}
	id := s.ID
	vp := g.viewport()

	if g.TrashRegion != nil && g.TrashRegion().Contains(x, y) {
		if g.physicsActive() && g.removeBody != nil {
			g.removeBody(id)
		}
		g.store.SoftDelete(id)
		if g.OnTrash != nil {
			g.OnTrash(id)
		}
		g.endSession()
		return
	}

	// A sticker may overhang each edge a little, but never so far that it
	// becomes effectively unreachable. Either too little visible fraction
	// or too much absolute overhang triggers the snap.
	box := s.Bounds(vp)
	vx, vy := VisibleExtent(vp, box)
	minX := math.Max(g.tun.MinVisibleFrac*box.Width, box.Width-g.tun.MaxOverhang)
	minY := math.Max(g.tun.MinVisibleFrac*box.Height, box.Height-g.tun.MaxOverhang)
	if vx < minX || vy < minY {
		// The sticker would be effectively unreachable. Snap it back.
		g.store.UpdatePosition(id, safeX, safeYPercent)
		if g.physicsActive() && g.dragBody != nil {
			g.dragBody(id, HybridToPhysics(vp, safeX, safeYPercent))
			if g.throwBody != nil {
				g.throwBody(id, Vec2{})
			}
		}
		if g.OnSnapBack != nil {
			g.OnSnapBack(id)
		}
		g.store.Persist(id)
		g.endSession()
		return
	}

	if g.physicsActive() && g.throwBody != nil {
		g.throwBody(id, g.throwVelocity())
	}
	g.store.Persist(id)
	g.endSession()
}

func (g *Gestures) beginRotate(pointerID int, x, y float64, dev PointerDevice, s *Sticker) {
	vp := g.viewport()
	cx, cy := HybridToAbsolute(vp, s.X, s.YPercent)
	g.session = GestureSession{
		State:        GestureRotating,
		TargetID:     s.ID,
		Primary:      pointerID,
		Second:       -1,
		Device:       dev,
		StartX:       x,
		StartY:       y,
		StartTime:    g.now(),
		RotateOffset: RadToDeg(math.Atan2(y-cy, x-cx)) - s.Rotation,
	}
}

func (g *Gestures) updateRotate(x, y float64) {
	s := g.target()
	if s == nil {
		g.endSession()
		return
	}
	vp := g.viewport()
	cx, cy := HybridToAbsolute(vp, s.X, s.YPercent)
	g.store.UpdateRotation(s.ID, RadToDeg(math.Atan2(y-cy, x-cx))-g.session.RotateOffset)
}

func (g *Gestures) beginPinch(secondID int) {
	s := g.store.Selected()
	if s == nil || s.Pinned {
		return
	}
	p0, ok0 := g.pointers[g.session.Primary]
	p1, ok1 := g.pointers[secondID]
	if !ok0 || !ok1 {
		return
	}
	dist, angleDeg := pinchGeometry(p0, p1)
	if dist == 0 {
		return
	}
	g.session.State = GesturePinching
	g.session.TargetID = s.ID
	g.session.Second = secondID
	g.session.LastPinchDist = dist
	g.session.PinchAngleOffset = angleDeg - s.Rotation
}

func (g *Gestures) updatePinch() {
	s := g.target()
	if s == nil {
		g.endSession()
		return
	}
	p0, ok0 := g.pointers[g.session.Primary]
	p1, ok1 := g.pointers[g.session.Second]
	if !ok0 || !ok1 {
		return
	}
	dist, angleDeg := pinchGeometry(p0, p1)
	if dist == 0 || g.session.LastPinchDist == 0 {
		return
	}
	g.store.UpdateSize(s.ID, s.Width*(dist/g.session.LastPinchDist))
	g.store.UpdateRotation(s.ID, angleDeg-g.session.PinchAngleOffset)
	g.session.LastPinchDist = dist
}

// pinchGeometry returns the distance and angle (degrees) between two
// pointer positions.
func pinchGeometry(p0, p1 Vec2) (dist, angleDeg float64) {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	return math.Hypot(dx, dy), RadToDeg(math.Atan2(dy, dx))
}

func (g *Gestures) endSession() {
	samples := g.session.samples[:0]
	g.session = GestureSession{Second: -1, samples: samples}
}

func (g *Gestures) physicsActive() bool {
	return g.physicsOn != nil && g.physicsOn()
}

// --- Throw velocity ---

func (g *Gestures) recordSample(x, y float64) {
	t := g.now()
	g.session.samples = append(g.session.samples, throwSample{t, x, y})
	// Prune anything older than the sampling window.
	cutoff := t - g.tun.ThrowWindow
	keep := 0
	for keep < len(g.session.samples) && g.session.samples[keep].t < cutoff {
		keep++
	}
	if keep > 0 {
		g.session.samples = append(g.session.samples[:0], g.session.samples[keep:]...)
	}
}

// throwVelocity computes the exit velocity from the pointer displacement
// over the sampling window, clamped to the maximum throw speed.
func (g *Gestures) throwVelocity() Vec2 {
	n := len(g.session.samples)
	if n < 2 {
		return Vec2{}
	}
	first := g.session.samples[0]
	last := g.session.samples[n-1]
	dt := last.t - first.t
	if dt <= 0 {
		return Vec2{}
	}
	v := Vec2{(last.x - first.x) / dt, (last.y - first.y) / dt}
	speed := math.Hypot(v.X, v.Y)
	if speed > g.tun.MaxThrowSpeed {
		scale := g.tun.MaxThrowSpeed / speed
		v.X *= scale
		v.Y *= scale
	}
	return v
}

// HeldID returns the sticker owned by an active drag, rotate, or pinch
// session, or 0. The render loop uses this to skip interpolation writes
// for that body; those gestures write position, rotation, or size through
// the store and nothing else may touch the sticker in the same frame.
func (g *Gestures) HeldID() int {
	switch g.session.State {
	case GestureDragging, GestureRotating, GesturePinching:
		return g.session.TargetID
	}
	return 0
}

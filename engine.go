package collage

import "github.com/rs/zerolog"

// ProxyProvider is the image-pipeline collaborator. While physics mode is
// active every sticker's displayed image is swapped for a cheaper low-res
// proxy; originals are restored byte-for-byte on exit. A failed Acquire is
// logged and that sticker simply keeps its existing image.
type ProxyProvider interface {
	Acquire(id int) error
	Release(id int)
}

// Engine owns the mode coordination between the three frame-driven
// subsystems: the gesture machine (always live), the physics loop, and the
// auto-layout animator. Physics and layout are mutually exclusive; starting
// one synchronously stops the other. Everything runs on the host's single
// update goroutine; coordination is mode flags, never locks.
type Engine struct {
	tun   Tuning
	vp    Viewport
	store *Store

	gestures *Gestures
	world    PhysicsWorld
	loop     *Loop
	gravity  *GravitySource

	physicsActive bool
	layoutRunning bool // authorization guard, re-checked every frame
	layoutAnim    *layoutAnimation

	proxies  ProxyProvider
	acquired []int // sticker ids with live proxies

	clock        float64 // monotonic seconds, advanced by Update
	tiltNotified bool

	injectQueue []injectedEvent

	// OnNotice surfaces transient user-facing notices (tilt unavailable,
	// sticker snapped back). Nil is fine.
	OnNotice func(msg string)

	log *zerolog.Logger
}

// NewEngine wires an engine over the given store. A nil logger gets a
// console writer. The physics backend defaults to Chipmunk2D; swap it with
// SetPhysicsWorld before enabling physics.
func NewEngine(store *Store, vp Viewport, tun Tuning, logger *zerolog.Logger) *Engine {
	if logger == nil {
		l := zerolog.New(zerolog.NewConsoleWriter())
		logger = &l
	}
	e := &Engine{
		tun:   tun,
		vp:    vp,
		store: store,
		log:   logger,
	}
	store.SetWidthBounds(tun.MinWidth, tun.maxWidth(vp))

	e.world = NewChipmunkWorld(&e.tun)
	e.gravity = newGravitySource(&e.tun)
	e.loop = newLoop(&e.tun, e.world)
	e.loop.beforeStep = func() { e.world.SetGravity(e.gravity.Tick()) }
	e.loop.apply = e.applyBodyState

	e.gestures = newGestures(&e.tun, store, e.Viewport, e.now, logger)
	e.gestures.physicsOn = e.IsPhysicsActive
	e.gestures.dragBody = e.dragBody
	e.gestures.throwBody = e.throwBody
	e.gestures.removeBody = e.removeBodyIfActive
	e.gestures.onInteract = e.StopAutoLayout
	e.gestures.OnSnapBack = func(id int) { e.notice("sticker moved back on screen") }
	e.loop.heldID = e.gestures.HeldID

	return e
}

// SetPhysicsWorld replaces the physics backend. Must not be called while
// physics is active.
func (e *Engine) SetPhysicsWorld(w PhysicsWorld) {
	if e.physicsActive {
		return
	}
	e.world = w
	e.loop.world = w
}

// SetProxyProvider sets the image-pipeline collaborator.
func (e *Engine) SetProxyProvider(p ProxyProvider) {
	e.proxies = p
}

// Gestures exposes the gesture machine for host callback configuration
// (trash region, canvas tap, trash/snap-back notifications).
func (e *Engine) Gestures() *Gestures {
	return e.gestures
}

// Store returns the engine's sticker registry.
func (e *Engine) Store() *Store {
	return e.store
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() Viewport {
	return e.vp
}

// SetViewport handles a resize. Hybrid positions recompute for free; only
// the width clamp and, in an active physics session, the walls need work.
func (e *Engine) SetViewport(vp Viewport) {
	e.vp = vp
	e.store.SetWidthBounds(e.tun.MinWidth, e.tun.maxWidth(vp))
	if e.physicsActive {
		e.world.SetWalls(vp)
	}
}

func (e *Engine) now() float64 {
	return e.clock
}

// Update advances the engine by one rendered frame of dt seconds. Within a
// frame the physics steps always complete before the interpolated render
// write, and exactly one of physics or layout runs.
func (e *Engine) Update(dt float64) {
	if dt > 0 {
		e.clock += dt
	}
	e.drainInjected()

	if e.physicsActive {
		e.loop.Frame(dt)
		return
	}
	if e.layoutRunning && e.layoutAnim != nil {
		if e.layoutAnim.advance(e.store, dt) {
			e.finishLayout()
		}
	}
}

// --- Pointer surface (raw device coordinates in, nothing out) ---

func (e *Engine) PointerDown(pointerID int, x, y float64, dev PointerDevice, mods KeyModifiers) {
	e.gestures.PointerDown(pointerID, x, y, dev, mods)
}

func (e *Engine) PointerMove(pointerID int, x, y float64, dev PointerDevice, mods KeyModifiers) {
	e.gestures.PointerMove(pointerID, x, y, dev, mods)
}

func (e *Engine) PointerUp(pointerID int, x, y float64, dev PointerDevice, mods KeyModifiers) {
	e.gestures.PointerUp(pointerID, x, y, dev, mods)
}

func (e *Engine) Wheel(dy float64) {
	e.gestures.Wheel(dy)
}

// --- Physics mode ---

// EnablePhysics builds the boundary walls and one circular body per
// unpinned sticker, swaps in proxy images, and starts the fixed-step loop.
// No-op when already active. Starting physics stops a running layout first.
func (e *Engine) EnablePhysics() {
	if e.physicsActive {
		return
	}
	e.StopAutoLayout()

	e.world.SetWalls(e.vp)
	for _, s := range e.store.All() {
		if !s.Pinned {
			radius := e.tun.BodyRadiusFrac * s.Width / 2
			mass := radius / 20
			e.world.AddBody(s.ID, HybridToPhysics(e.vp, s.X, s.YPercent), DegToRad(s.Rotation), radius, mass)
		}
		if e.proxies != nil {
			if err := e.proxies.Acquire(s.ID); err != nil {
				e.log.Warn().Err(err).Int("sticker", s.ID).Msg("proxy image unavailable")
				continue
			}
			e.acquired = append(e.acquired, s.ID)
		}
	}
	e.world.SetGravity(e.gravity.Tick())
	e.physicsActive = true
}

// DisablePhysics writes every body's final position and rotation back to
// its sticker, persists the batch, and tears the world down.
func (e *Engine) DisablePhysics() {
	if !e.physicsActive {
		return
	}
	e.physicsActive = false

	e.world.Each(func(id int, s BodyState) {
		e.applyBodyState(id, s.Pos, s.Angle)
	})
	e.store.PersistAll()

	e.world.Clear()
	e.loop.Reset()
	e.gravity.Reset()

	if e.proxies != nil {
		for _, id := range e.acquired {
			e.proxies.Release(id)
		}
	}
	e.acquired = e.acquired[:0]
}

// IsPhysicsActive reports whether physics mode is running.
func (e *Engine) IsPhysicsActive() bool {
	return e.physicsActive
}

// SetTilt feeds a device-orientation sample (degrees) into the gravity
// source. Hosts without a gyroscope simply never call this and gravity
// stays at its constant downward vector.
func (e *Engine) SetTilt(beta, gamma float64) {
	e.gravity.SetTilt(beta, gamma)
}

// TiltUnavailable records that the host could not obtain orientation data
// (permission denied, no sensor). Physics still works with constant
// gravity; the user is notified once.
func (e *Engine) TiltUnavailable() {
	if e.tiltNotified {
		return
	}
	e.tiltNotified = true
	e.log.Info().Msg("device orientation unavailable, using constant gravity")
	e.notice("tilt control unavailable")
}

// applyBodyState is the loop's display write: physics coordinates back to
// hybrid plus radians back to degrees. Not persisted per frame.
func (e *Engine) applyBodyState(id int, pos Vec2, angle float64) {
	hx, hy := PhysicsToHybrid(e.vp, pos)
	e.store.UpdatePosition(id, hx, hy)
	e.store.UpdateRotation(id, RadToDeg(angle))
}

func (e *Engine) dragBody(id int, pos Vec2) {
	e.world.SetPosition(id, pos)
}

func (e *Engine) throwBody(id int, v Vec2) {
	e.world.SetVelocity(id, v)
}

func (e *Engine) removeBodyIfActive(id int) {
	if e.physicsActive {
		e.world.RemoveBody(id)
	}
}

// --- Auto-layout ---

// StartAutoLayout disables physics, runs the invisible relaxation to
// completion, and starts the eased transition toward the result.
// Restarting while a previous animation is mid-flight aborts it cleanly.
func (e *Engine) StartAutoLayout() {
	e.DisablePhysics()
	e.StopAutoLayout()

	var bodies []layoutBody
	for _, s := range e.store.All() {
		if s.Pinned {
			continue
		}
		// Sanitize corrupted positions before they poison the solve.
		e.store.UpdatePosition(s.ID, s.X, s.YPercent)
		bodies = append(bodies, layoutBody{
			id:     s.ID,
			pos:    HybridToPhysics(e.vp, s.X, s.YPercent),
			radius: s.Width / 2,
		})
	}
	if len(bodies) == 0 {
		return
	}

	iters := solveLayout(e.vp, &e.tun, bodies)
	e.log.Debug().Int("iterations", iters).Int("stickers", len(bodies)).Msg("layout solved")

	targets := make(map[int]Vec2, len(bodies))
	for _, b := range bodies {
		targets[b.id] = b.pos
	}
	e.layoutAnim = newLayoutAnimation(e.store, e.vp, &e.tun, targets)
	e.layoutRunning = true
}

// StopAutoLayout aborts an in-flight layout animation. Positions already
// written stay where they are; no partial solver state survives.
func (e *Engine) StopAutoLayout() {
	e.layoutRunning = false
	e.layoutAnim = nil
}

// IsLayoutRunning reports whether the transition animation is in flight.
func (e *Engine) IsLayoutRunning() bool {
	return e.layoutRunning
}

// finishLayout re-checks every sticker for residual off-viewport positions,
// clamps them back on-screen, and persists the final arrangement in one
// batch.
func (e *Engine) finishLayout() {
	e.layoutRunning = false
	e.layoutAnim = nil
	for _, s := range e.store.All() {
		if s.Pinned {
			continue
		}
		e.clampOnScreen(s)
	}
	e.store.PersistAll()
}

// clampOnScreen moves a sticker's center so its display box stays inside
// the viewport. Boxes larger than the viewport center instead.
func (e *Engine) clampOnScreen(s *Sticker) {
	cx, cy := HybridToAbsolute(e.vp, s.X, s.YPercent)
	w := s.Width
	h := s.Height()
	if w >= e.vp.Width {
		cx = e.vp.Width / 2
	} else {
		cx = clamp(cx, w/2, e.vp.Width-w/2)
	}
	if h >= e.vp.Height {
		cy = e.vp.Height / 2
	} else {
		cy = clamp(cy, h/2, e.vp.Height-h/2)
	}
	hx, hy := AbsoluteToHybrid(e.vp, cx, cy)
	e.store.UpdatePosition(s.ID, hx, hy)
}

func (e *Engine) notice(msg string) {
	if e.OnNotice != nil {
		e.OnNotice(msg)
	}
}

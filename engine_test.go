package collage

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

// fakeProxies records Acquire/Release traffic, optionally failing specific
// ids.
type fakeProxies struct {
	acquired []int
	released []int
	failFor  map[int]bool
}

func (p *fakeProxies) Acquire(id int) error {
	if p.failFor[id] {
		return errors.New("no image")
	}
	p.acquired = append(p.acquired, id)
	return nil
}

func (p *fakeProxies) Release(id int) {
	p.released = append(p.released, id)
}

func newTestEngine() (*Engine, *fakeWorld) {
	nop := zerolog.Nop()
	st := NewStore(nil, &nop)
	e := NewEngine(st, testVP, DefaultTuning(), &nop)
	w := newFakeWorld()
	e.SetPhysicsWorld(w)
	return e, w
}

func TestEnablePhysicsBuildsBodiesForUnpinned(t *testing.T) {
	e, w := newTestEngine()
	a := addTestSticker(e.Store(), 0, 50, 200)
	b := addTestSticker(e.Store(), 100, 30, 100)
	b.Pinned = true

	e.EnablePhysics()
	if !e.IsPhysicsActive() {
		t.Fatalf("physics not active")
	}
	if _, ok := w.Body(a.ID); !ok {
		t.Errorf("unpinned sticker has no body")
	}
	if _, ok := w.Body(b.ID); ok {
		t.Errorf("pinned sticker got a body")
	}

	// Body starts at the sticker's absolute center.
	s, _ := w.Body(a.ID)
	assertNear(t, "body x", s.Pos.X, 500)
	assertNear(t, "body y", s.Pos.Y, 400)

	// Enabling twice is a no-op.
	e.EnablePhysics()
	count := 0
	w.Each(func(int, BodyState) { count++ })
	if count != 1 {
		t.Errorf("%d bodies after double enable", count)
	}
}

func TestDisablePhysicsWritesBackAndTearsDown(t *testing.T) {
	rec := &recordingPersister{}
	nop := zerolog.Nop()
	st := NewStore(rec, &nop)
	e := NewEngine(st, testVP, DefaultTuning(), &nop)
	w := newFakeWorld()
	e.SetPhysicsWorld(w)
	a := addTestSticker(st, 0, 50, 200)

	e.EnablePhysics()
	w.SetPosition(a.ID, Vec2{700, 200})
	e.DisablePhysics()

	if e.IsPhysicsActive() {
		t.Fatalf("still active")
	}
	assertNear(t, "written back x", a.X, 200)
	assertNear(t, "written back y", a.YPercent, 25)
	if len(rec.calls) == 0 {
		t.Errorf("final positions were not persisted")
	}

	count := 0
	w.Each(func(int, BodyState) { count++ })
	if count != 0 {
		t.Errorf("world not cleared")
	}
}

func TestUpdateDrivesPhysicsLoop(t *testing.T) {
	e, w := newTestEngine()
	addTestSticker(e.Store(), 0, 50, 200)

	e.EnablePhysics()
	tick := e.tun.tickDuration()
	e.Update(tick * 2.5)
	if w.steps != 2 {
		t.Errorf("%d steps, want 2", w.steps)
	}
}

func TestPhysicsGravityAppliedViaUpdate(t *testing.T) {
	e, w := newTestEngine()
	a := addTestSticker(e.Store(), 0, 50, 200)

	e.EnablePhysics()
	w.SetVelocity(a.ID, Vec2{0, 300}) // past the rest band
	before, _ := w.Body(a.ID)
	// 1.5 ticks so the render pass interpolates into the stepped state.
	e.Update(e.tun.tickDuration() * 1.5)
	after, _ := w.Body(a.ID)
	if after.Pos.Y <= before.Pos.Y {
		t.Errorf("body did not move during update")
	}
	// The display write reached the sticker.
	if a.YPercent == 50 {
		t.Errorf("sticker position not updated from simulation")
	}
}

func TestPinchRotationSurvivesPhysicsFrame(t *testing.T) {
	e, w := newTestEngine()
	s := addTestSticker(e.Store(), 0, 50, 200)

	e.EnablePhysics()
	w.SetVelocity(s.ID, Vec2{300, 0}) // past the rest band

	// Pinch-rotate 45 degrees and keep both touches down. The gesture
	// machine owns the sticker for the whole session; the render pass
	// must not write the body's angle over it.
	e.PointerDown(1, 450, 400, DeviceTouch, 0)
	e.PointerDown(2, 550, 400, DeviceTouch, 0)
	c := 50 * math.Cos(math.Pi/4)
	e.PointerMove(1, 500-c, 400-c, DeviceTouch, 0)
	e.PointerMove(2, 500+c, 400+c, DeviceTouch, 0)
	assertNearTol(t, "rotation after pinch", s.Rotation, 45, 1e-6)

	e.Update(e.tun.tickDuration() * 1.5)
	assertNearTol(t, "rotation after frame", s.Rotation, 45, 1e-6)
}

func TestPhysicsAndLayoutAreMutuallyExclusive(t *testing.T) {
	e, _ := newTestEngine()
	addTestSticker(e.Store(), -5, 50, 120)
	addTestSticker(e.Store(), 5, 50, 120)

	e.StartAutoLayout()
	if !e.IsLayoutRunning() {
		t.Fatalf("layout not running")
	}
	e.EnablePhysics()
	if e.IsLayoutRunning() {
		t.Errorf("layout survived physics start")
	}
	if !e.IsPhysicsActive() {
		t.Fatalf("physics not active")
	}

	e.StartAutoLayout()
	if e.IsPhysicsActive() {
		t.Errorf("physics survived layout start")
	}
	if !e.IsLayoutRunning() {
		t.Fatalf("layout not running after restart")
	}
}

func TestLayoutRunsToCompletionViaUpdate(t *testing.T) {
	rec := &recordingPersister{}
	nop := zerolog.Nop()
	st := NewStore(rec, &nop)
	e := NewEngine(st, testVP, DefaultTuning(), &nop)
	a := addTestSticker(st, -2, 50, 140)
	b := addTestSticker(st, 2, 50, 140)

	e.StartAutoLayout()
	for i := 0; i < 600 && e.IsLayoutRunning(); i++ {
		e.Update(1.0 / 60)
	}
	if e.IsLayoutRunning() {
		t.Fatalf("layout never finished")
	}

	// The overlapping pair ended up separated and on screen.
	ax, _ := HybridToAbsolute(testVP, a.X, a.YPercent)
	bx, _ := HybridToAbsolute(testVP, b.X, b.YPercent)
	sep := ax - bx
	if sep < 0 {
		sep = -sep
	}
	if sep < 100 {
		t.Errorf("stickers still clustered: separation %v", sep)
	}
	if len(rec.calls) == 0 {
		t.Errorf("finished layout was not persisted")
	}
}

func TestInteractionStopsLayout(t *testing.T) {
	e, _ := newTestEngine()
	addTestSticker(e.Store(), -5, 50, 120)
	addTestSticker(e.Store(), 5, 50, 120)

	e.StartAutoLayout()
	e.PointerDown(0, 500, 400, DeviceMouse, 0)
	if e.IsLayoutRunning() {
		t.Errorf("pointer press did not stop the layout")
	}
}

func TestLayoutSkipsPinnedStickers(t *testing.T) {
	e, _ := newTestEngine()
	p := addTestSticker(e.Store(), -5, 50, 120)
	p.Pinned = true
	addTestSticker(e.Store(), 5, 50, 120)

	e.StartAutoLayout()
	for i := 0; i < 600 && e.IsLayoutRunning(); i++ {
		e.Update(1.0 / 60)
	}
	assertNear(t, "pinned x", p.X, -5)
	assertNear(t, "pinned yPercent", p.YPercent, 50)
}

func TestProxySwapLifecycle(t *testing.T) {
	e, _ := newTestEngine()
	proxies := &fakeProxies{failFor: map[int]bool{}}
	e.SetProxyProvider(proxies)
	a := addTestSticker(e.Store(), 0, 50, 200)
	b := addTestSticker(e.Store(), 100, 30, 100)
	proxies.failFor[b.ID] = true

	e.EnablePhysics()
	if len(proxies.acquired) != 1 || proxies.acquired[0] != a.ID {
		t.Fatalf("acquired = %v, want [%d]", proxies.acquired, a.ID)
	}

	e.DisablePhysics()
	if len(proxies.released) != 1 || proxies.released[0] != a.ID {
		t.Errorf("released = %v, want [%d]; failed acquires must not be released", proxies.released, a.ID)
	}
}

func TestDisablePhysicsWithProviderRemoved(t *testing.T) {
	e, _ := newTestEngine()
	addTestSticker(e.Store(), 0, 50, 200)
	e.SetProxyProvider(&fakeProxies{})

	e.EnablePhysics()
	e.SetProxyProvider(nil)
	e.DisablePhysics()
	if e.IsPhysicsActive() {
		t.Fatalf("still active")
	}
}

func TestSetViewportReclampsWidths(t *testing.T) {
	e, _ := newTestEngine()
	s := addTestSticker(e.Store(), 0, 50, 800)

	small := Viewport{Width: 600, Height: 400}
	e.SetViewport(small)
	if s.Width > e.tun.maxWidth(small) {
		t.Errorf("width %v not re-clamped for the smaller viewport", s.Width)
	}
	if e.Viewport() != small {
		t.Errorf("viewport not updated")
	}
}

func TestTiltFeedsGravityAndNotifiesOnce(t *testing.T) {
	e, _ := newTestEngine()
	addTestSticker(e.Store(), 0, 50, 200)

	var notices []string
	e.OnNotice = func(msg string) { notices = append(notices, msg) }

	e.TiltUnavailable()
	e.TiltUnavailable()
	if len(notices) != 1 {
		t.Fatalf("%d notices, want 1", len(notices))
	}

	// Tilt hard left, run a few ticks: the applied vector starts swinging
	// toward the target without ever snapping onto it.
	e.SetTilt(0, -e.tun.TiltFullAngle)
	e.EnablePhysics()
	for i := 0; i < 5; i++ {
		e.Update(e.tun.tickDuration())
	}
	if e.gravity.current.X >= 0 {
		t.Errorf("gravity x did not swing left: %v", e.gravity.current.X)
	}
	if e.gravity.current.X <= -1 {
		t.Errorf("gravity x snapped to the target")
	}
}

func TestInjectDragMovesSticker(t *testing.T) {
	e, _ := newTestEngine()
	s := addTestSticker(e.Store(), 0, 50, 200)

	e.InjectDrag(0, 500, 400, 700, 300, DeviceMouse, 6)
	for i := 0; i < 6; i++ {
		e.Update(1.0 / 60)
	}

	assertNear(t, "x", s.X, 200)
	assertNear(t, "yPercent", s.YPercent, 37.5)
}

func TestInjectedEventsConsumeOnePerFrame(t *testing.T) {
	e, _ := newTestEngine()
	addTestSticker(e.Store(), 0, 50, 200)

	e.InjectPress(0, 500, 400, DeviceMouse)
	e.InjectRelease(0, 500, 400, DeviceMouse)
	if len(e.injectQueue) != 2 {
		t.Fatalf("queue = %d, want 2", len(e.injectQueue))
	}
	e.Update(1.0 / 60)
	if len(e.injectQueue) != 1 {
		t.Errorf("queue = %d after one frame, want 1", len(e.injectQueue))
	}
	e.Update(1.0 / 60)
	if len(e.injectQueue) != 0 {
		t.Errorf("queue = %d after two frames, want 0", len(e.injectQueue))
	}
}

func TestWheelRequiresSelection(t *testing.T) {
	e, _ := newTestEngine()
	s := addTestSticker(e.Store(), 0, 50, 200)

	e.Wheel(2)
	assertNear(t, "width untouched", s.Width, 200)

	e.Store().Select(s.ID)
	e.Wheel(2)
	if s.Width <= 200 {
		t.Errorf("wheel did not grow the selected sticker")
	}
}

package collage

import (
	"math"
	"testing"
)

// fakeWorld is a scripted PhysicsWorld: each Step moves every body by its
// velocity for exactly the step duration. Deterministic, no simulation
// library involved.
type fakeWorld struct {
	bodies map[int]*fakeBody
	steps  int
	lastDt float64
}

type fakeBody struct {
	state   BodyState
	linear  Vec2
	angular float64
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{bodies: make(map[int]*fakeBody)}
}

func (w *fakeWorld) AddBody(id int, pos Vec2, angle, radius, mass float64) {
	w.bodies[id] = &fakeBody{state: BodyState{Pos: pos, Angle: angle}}
}
func (w *fakeWorld) RemoveBody(id int)    { delete(w.bodies, id) }
func (w *fakeWorld) SetWalls(vp Viewport) {}
func (w *fakeWorld) SetGravity(g Vec2)    {}

func (w *fakeWorld) Step(dt float64) {
	w.steps++
	w.lastDt = dt
	for _, b := range w.bodies {
		b.state.Pos.X += b.linear.X * dt
		b.state.Pos.Y += b.linear.Y * dt
		b.state.Angle += b.angular * dt
	}
}

func (w *fakeWorld) Body(id int) (BodyState, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return BodyState{}, false
	}
	return b.state, true
}

func (w *fakeWorld) Motion(id int) (Vec2, float64, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return Vec2{}, 0, false
	}
	return b.linear, b.angular, true
}

func (w *fakeWorld) SetPosition(id int, pos Vec2) {
	if b, ok := w.bodies[id]; ok {
		b.state.Pos = pos
	}
}

func (w *fakeWorld) SetVelocity(id int, v Vec2) {
	if b, ok := w.bodies[id]; ok {
		b.linear = v
	}
}

func (w *fakeWorld) Each(fn func(id int, s BodyState)) {
	for id, b := range w.bodies {
		fn(id, b.state)
	}
}

func (w *fakeWorld) Clear() {
	w.bodies = make(map[int]*fakeBody)
}

// applyRecorder collects every display write the loop performs.
type applyRecorder struct {
	writes []struct {
		id    int
		pos   Vec2
		angle float64
	}
}

func (r *applyRecorder) fn(id int, pos Vec2, angle float64) {
	r.writes = append(r.writes, struct {
		id    int
		pos   Vec2
		angle float64
	}{id, pos, angle})
}

func newTestLoop(tun *Tuning, w *fakeWorld) (*Loop, *applyRecorder) {
	l := newLoop(tun, w)
	rec := &applyRecorder{}
	l.apply = rec.fn
	return l, rec
}

func TestLoopTickCounts(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, _ := newTestLoop(&tun, w)
	tick := tun.tickDuration()

	cases := []struct {
		name  string
		dt    float64
		steps int
	}{
		{"under one tick", tick * 0.5, 0},
		{"carryover reaches one tick", tick * 0.6, 1},
		{"several ticks", tick * 3.05, 3},
	}
	for _, tc := range cases {
		before := w.steps
		l.Frame(tc.dt)
		if got := w.steps - before; got != tc.steps {
			t.Errorf("%s: %d steps, want %d", tc.name, got, tc.steps)
		}
	}
	assertNear(t, "step dt", w.lastDt, tick)

	// A long stall is capped, not replayed: roughly maxFrameDelta worth of
	// ticks, never the full ten seconds.
	before := w.steps
	l.Frame(10)
	got := w.steps - before
	if got < 14 || got > 16 {
		t.Errorf("stall produced %d steps, want about %d", got, int(maxFrameDelta/tick))
	}
}

func TestLoopNegativeDtIgnored(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, _ := newTestLoop(&tun, w)

	l.Frame(-1)
	if w.steps != 0 {
		t.Errorf("negative dt stepped the world")
	}
}

func TestLoopInterpolatesOnSegment(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, rec := newTestLoop(&tun, w)
	tick := tun.tickDuration()

	w.AddBody(1, Vec2{100, 100}, 0, 50, 1)
	w.SetVelocity(1, Vec2{600, 0}) // 10px per tick at 60Hz

	// 1.5 ticks: one step lands the body at x=110, alpha=0.5 renders the
	// midpoint between the pre-step snapshot (100) and the current (110).
	l.Frame(tick * 1.5)

	if len(rec.writes) != 1 {
		t.Fatalf("%d writes, want 1", len(rec.writes))
	}
	wr := rec.writes[0]
	assertNear(t, "interpolated x", wr.pos.X, 105)
	assertNear(t, "interpolated y", wr.pos.Y, 100)
}

func TestLoopInterpolatedAngleTakesShortestPath(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, rec := newTestLoop(&tun, w)
	tick := tun.tickDuration()

	// Start just below a full turn, spin fast enough to wrap within one tick.
	start := 2*math.Pi - 0.05
	w.AddBody(1, Vec2{100, 100}, start, 50, 1)
	w.bodies[1].angular = 0.1 / tick
	w.bodies[1].linear = Vec2{600, 0} // keep the body out of the at-rest band

	l.Frame(tick * 1.5)

	if len(rec.writes) != 1 {
		t.Fatalf("%d writes, want 1", len(rec.writes))
	}
	got := rec.writes[0].angle
	want := start + 0.05 // halfway through the 0.1 advance
	assertNearTol(t, "angle", got, want, 1e-9)
}

func TestLoopSkipsHeldBody(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, rec := newTestLoop(&tun, w)
	tick := tun.tickDuration()

	w.AddBody(1, Vec2{100, 100}, 0, 50, 1)
	w.SetVelocity(1, Vec2{600, 0})
	w.AddBody(2, Vec2{300, 100}, 0, 50, 1)
	w.SetVelocity(2, Vec2{600, 0})

	l.heldID = func() int { return 1 }
	l.Frame(tick * 2)

	for _, wr := range rec.writes {
		if wr.id == 1 {
			t.Fatalf("held body was written")
		}
	}
	if len(rec.writes) == 0 {
		t.Fatalf("free body was not written")
	}
}

func TestLoopSkipsBodiesAtRest(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, rec := newTestLoop(&tun, w)
	tick := tun.tickDuration()

	w.AddBody(1, Vec2{100, 100}, 0, 50, 1)
	w.SetVelocity(1, Vec2{tun.RestLinearSpeed / 2, 0})

	l.Frame(tick * 2)
	if len(rec.writes) != 0 {
		t.Errorf("at-rest body was written %d times", len(rec.writes))
	}
}

func TestLoopSuppressesSubEpsilonWrites(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, rec := newTestLoop(&tun, w)
	tick := tun.tickDuration()

	// Fast enough to escape the rest band, but each render lands within the
	// write epsilon of the previous one once the epsilon is inflated.
	tun.WriteEpsilonPos = 1000
	w.AddBody(1, Vec2{100, 100}, 0, 50, 1)
	w.SetVelocity(1, Vec2{600, 0})

	l.Frame(tick)
	l.Frame(tick)
	l.Frame(tick)
	if len(rec.writes) != 1 {
		t.Errorf("%d writes, want only the first", len(rec.writes))
	}
}

func TestLoopResetClearsAccumulator(t *testing.T) {
	tun := DefaultTuning()
	w := newFakeWorld()
	l, _ := newTestLoop(&tun, w)
	tick := tun.tickDuration()

	l.Frame(tick * 0.9)
	l.Reset()
	l.Frame(tick * 0.9)
	if w.steps != 0 {
		t.Errorf("carried accumulator across Reset: %d steps", w.steps)
	}
}

package collage

import "math"

// maxFrameDelta caps the accumulator feed so a long stall (tab hidden,
// debugger pause) does not trigger a runaway catch-up burst of ticks.
const maxFrameDelta = 0.25

// Loop decouples the fixed physics tick rate from the display refresh rate.
// Every rendered frame feeds wall-clock time into an accumulator; each time
// the accumulator reaches one tick the world advances by exactly that tick,
// so simulation results are deterministic regardless of frame timing jitter.
// Rendered values are interpolated between the pre-step and post-step body
// states by the accumulator remainder.
type Loop struct {
	tun   *Tuning
	world PhysicsWorld

	acc         float64
	prev        map[int]BodyState // snapshot taken immediately before each step
	lastWritten map[int]BodyState // last value actually applied, for write suppression

	// beforeStep runs once per physics tick, before the world steps.
	// The engine uses it to apply the smoothed gravity vector.
	beforeStep func()

	// heldID names the sticker owned by an active gesture session; its body
	// is skipped so the render write never fights the gesture machine.
	heldID func() int

	// apply performs the actual display write for one body.
	apply func(id int, pos Vec2, angle float64)
}

func newLoop(tun *Tuning, world PhysicsWorld) *Loop {
	return &Loop{
		tun:         tun,
		world:       world,
		prev:        make(map[int]BodyState),
		lastWritten: make(map[int]BodyState),
	}
}

// Frame advances the loop by dt seconds of wall-clock time: zero or more
// fixed physics ticks, then one interpolated render pass.
func (l *Loop) Frame(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	tick := l.tun.tickDuration()

	l.acc += dt
	for l.acc >= tick {
		l.snapshot()
		if l.beforeStep != nil {
			l.beforeStep()
		}
		l.world.Step(tick)
		l.acc -= tick
	}

	alpha := l.acc / tick
	l.render(alpha)
}

// snapshot records every body's pre-step state. The previous snapshot is
// discarded; it only ever serves the interpolator for the current tick pair.
func (l *Loop) snapshot() {
	for id := range l.prev {
		delete(l.prev, id)
	}
	l.world.Each(func(id int, s BodyState) {
		l.prev[id] = s
	})
}

// render interpolates each body between its pre-step snapshot and its
// current state, and writes the result unless suppressed.
func (l *Loop) render(alpha float64) {
	var held int
	if l.heldID != nil {
		held = l.heldID()
	}

	l.world.Each(func(id int, cur BodyState) {
		if id == held && held != 0 {
			return
		}
		if lv, av, ok := l.world.Motion(id); ok {
			if math.Hypot(lv.X, lv.Y) < l.tun.RestLinearSpeed && math.Abs(av) < l.tun.RestAngularSpd {
				return // at rest, skip the write entirely
			}
		}

		prev, ok := l.prev[id]
		if !ok {
			// Body added mid-session; nothing to interpolate from yet.
			prev = cur
		}
		pos := Vec2{
			X: lerp(prev.Pos.X, cur.Pos.X, alpha),
			Y: lerp(prev.Pos.Y, cur.Pos.Y, alpha),
		}
		angle := angleLerp(prev.Angle, cur.Angle, alpha)

		if last, ok := l.lastWritten[id]; ok {
			if math.Abs(pos.X-last.Pos.X) < l.tun.WriteEpsilonPos &&
				math.Abs(pos.Y-last.Pos.Y) < l.tun.WriteEpsilonPos &&
				math.Abs(angle-last.Angle) < l.tun.WriteEpsilonAng {
				return // change too small to be worth a write
			}
		}
		l.lastWritten[id] = BodyState{Pos: pos, Angle: angle}
		if l.apply != nil {
			l.apply(id, pos, angle)
		}
	})
}

// Reset clears the accumulator and all per-frame state. Called on physics
// mode exit; snapshots never outlive the session.
func (l *Loop) Reset() {
	l.acc = 0
	for id := range l.prev {
		delete(l.prev, id)
	}
	for id := range l.lastWritten {
		delete(l.lastWritten, id)
	}
}

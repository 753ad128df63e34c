package collage

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// The auto-layout runs in two phases so the relaxation can iterate through
// arbitrarily chaotic intermediate states without ever rendering them:
// an invisible force-directed solve over virtual positions, then a visible
// eased animation from each sticker's real position to its solved one.

// layoutBody is the virtual working copy of one unpinned sticker during a
// solve. Positions are absolute pixels; nothing is written back to the real
// sticker until the animation finishes.
type layoutBody struct {
	id     int
	pos    Vec2
	radius float64
}

// layoutForces evaluates the net force on every body for one iteration:
// pairwise repulsion scaled by combined radii, boundary repulsion inside
// the viewport margin, and a weak center attraction beyond the ideal spread
// radius. Forces are written into out, which must have len(bodies).
func layoutForces(vp Viewport, tun *Tuning, bodies []layoutBody, out []Vec2) {
	for i := range out {
		out[i] = Vec2{}
	}

	// Pairwise repulsion, inversely proportional to center distance and
	// scaled by the pair's combined radii so overlapping large pairs push
	// hardest.
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			dx := bodies[i].pos.X - bodies[j].pos.X
			dy := bodies[i].pos.Y - bodies[j].pos.Y
			dist := math.Hypot(dx, dy)
			var ux, uy float64
			if dist < 1e-6 {
				// Coincident centers: separate along a deterministic
				// per-pair direction instead of dividing by zero.
				angle := float64(i*7+j*13) * 0.61803398875 * 2 * math.Pi
				ux, uy = math.Cos(angle), math.Sin(angle)
				dist = 1e-6
			} else {
				ux, uy = dx/dist, dy/dist
			}
			mag := tun.LayoutRepulsion * (bodies[i].radius + bodies[j].radius) / math.Max(dist, 1)
			out[i].X += ux * mag
			out[i].Y += uy * mag
			out[j].X -= ux * mag
			out[j].Y -= uy * mag
		}
	}

	center := vp.Center()
	spread := tun.LayoutSpreadFrac * math.Min(vp.Width, vp.Height)
	for i := range bodies {
		b := &bodies[i]

		// Boundary repulsion whenever the body penetrates the margin.
		margin := tun.LayoutMargin
		if pen := margin - (b.pos.X - b.radius); pen > 0 {
			out[i].X += pen * tun.LayoutBoundaryGain
		}
		if pen := margin - (vp.Width - b.pos.X - b.radius); pen > 0 {
			out[i].X -= pen * tun.LayoutBoundaryGain
		}
		if pen := margin - (b.pos.Y - b.radius); pen > 0 {
			out[i].Y += pen * tun.LayoutBoundaryGain
		}
		if pen := margin - (vp.Height - b.pos.Y - b.radius); pen > 0 {
			out[i].Y -= pen * tun.LayoutBoundaryGain
		}

		// Weak attraction toward the center keeps the arrangement compact
		// instead of letting repulsion push items arbitrarily far apart.
		dcx := center.X - b.pos.X
		dcy := center.Y - b.pos.Y
		dc := math.Hypot(dcx, dcy)
		if dc > spread {
			pull := (dc - spread) * tun.LayoutCenterPull
			out[i].X += dcx / dc * pull
			out[i].Y += dcy / dc * pull
		}
	}

	// Magnitude cap against numerical blow-up.
	for i := range out {
		mag := math.Hypot(out[i].X, out[i].Y)
		if mag > tun.LayoutForceCap {
			scale := tun.LayoutForceCap / mag
			out[i].X *= scale
			out[i].Y *= scale
		}
	}
}

// solveLayout relaxes the virtual positions in place and returns the number
// of iterations used. The loop exits early once enough consecutive
// iterations produce a maximum per-body movement below the convergence
// threshold; otherwise it runs to the iteration cap.
func solveLayout(vp Viewport, tun *Tuning, bodies []layoutBody) int {
	if len(bodies) == 0 {
		return 0
	}
	forces := make([]Vec2, len(bodies))
	quiet := 0
	for iter := 1; iter <= tun.LayoutMaxIterations; iter++ {
		layoutForces(vp, tun, bodies, forces)

		maxMove := 0.0
		for i := range bodies {
			mx := forces[i].X * tun.LayoutDamping
			my := forces[i].Y * tun.LayoutDamping
			bodies[i].pos.X += mx
			bodies[i].pos.Y += my
			if move := math.Hypot(mx, my); move > maxMove {
				maxMove = move
			}
		}

		if maxMove < tun.LayoutConvergence {
			quiet++
			if quiet >= tun.LayoutQuietStreak {
				return iter
			}
		} else {
			quiet = 0
		}
	}
	return tun.LayoutMaxIterations
}

// --- Phase 2: animated transition ---

// layoutTween animates one sticker's hybrid position to its solved target.
type layoutTween struct {
	id           int
	x, y         *gween.Tween
	doneX, doneY bool
}

// layoutAnimation drives every sticker toward its solved position over a
// fixed duration with an ease-out cubic curve, on the frame callback rather
// than the physics tick.
type layoutAnimation struct {
	items []layoutTween
	done  bool
}

// newLayoutAnimation builds tweens from each sticker's current hybrid
// position to the solved absolute target.
func newLayoutAnimation(store *Store, vp Viewport, tun *Tuning, targets map[int]Vec2) *layoutAnimation {
	anim := &layoutAnimation{}
	for id, target := range targets {
		s := store.ByID(id)
		if s == nil {
			continue
		}
		tx, ty := PhysicsToHybrid(vp, target)
		dur := float32(tun.LayoutDuration)
		anim.items = append(anim.items, layoutTween{
			id: id,
			x:  gween.New(float32(s.X), float32(tx), dur, ease.OutCubic),
			y:  gween.New(float32(s.YPercent), float32(ty), dur, ease.OutCubic),
		})
	}
	if len(anim.items) == 0 {
		anim.done = true
	}
	return anim
}

// advance moves every tween forward by dt seconds and writes the current
// values through the store. Returns true when all tweens have finished.
func (a *layoutAnimation) advance(store *Store, dt float64) bool {
	if a.done {
		return true
	}
	allDone := true
	for i := range a.items {
		it := &a.items[i]
		x, fx := it.x.Update(float32(dt))
		y, fy := it.y.Update(float32(dt))
		it.doneX = it.doneX || fx
		it.doneY = it.doneY || fy
		store.UpdatePosition(it.id, float64(x), float64(y))
		if !it.doneX || !it.doneY {
			allDone = false
		}
	}
	a.done = allDone
	return allDone
}

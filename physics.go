package collage

import "github.com/jakecoffman/cp"

// BodyState is a position/angle snapshot of one rigid body, in absolute
// pixels and radians.
type BodyState struct {
	Pos   Vec2
	Angle float64
}

// PhysicsWorld is the rigid-body backend the engine drives. Bodies are
// circular proxies keyed by sticker id; walls contain them like the inside
// of a box. The engine never touches the simulation library directly, so
// the backend is swappable and testable without one.
type PhysicsWorld interface {
	AddBody(id int, pos Vec2, angle, radius, mass float64)
	RemoveBody(id int)
	SetWalls(vp Viewport)
	SetGravity(g Vec2)
	Step(dt float64)

	Body(id int) (BodyState, bool)
	Motion(id int) (linear Vec2, angular float64, ok bool)
	SetPosition(id int, pos Vec2)
	SetVelocity(id int, v Vec2)
	Each(fn func(id int, s BodyState))

	// Clear removes every body and wall. Called on physics-mode exit.
	Clear()
}

// chipmunkWorld implements PhysicsWorld on Chipmunk2D.
type chipmunkWorld struct {
	tun    *Tuning
	space  *cp.Space
	bodies map[int]*cp.Body
	shapes map[int]*cp.Shape
	walls  []*cp.Shape
}

// NewChipmunkWorld creates the default physics backend.
func NewChipmunkWorld(tun *Tuning) PhysicsWorld {
	return &chipmunkWorld{
		tun:    tun,
		space:  cp.NewSpace(),
		bodies: make(map[int]*cp.Body),
		shapes: make(map[int]*cp.Shape),
	}
}

func (w *chipmunkWorld) AddBody(id int, pos Vec2, angle, radius, mass float64) {
	if _, exists := w.bodies[id]; exists {
		w.RemoveBody(id)
	}
	body := w.space.AddBody(cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{})))
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	body.SetAngle(angle)
	shape := w.space.AddShape(cp.NewCircle(body, radius, cp.Vector{}))
	shape.SetElasticity(w.tun.Elasticity)
	shape.SetFriction(w.tun.Friction)
	w.bodies[id] = body
	w.shapes[id] = shape
}

func (w *chipmunkWorld) RemoveBody(id int) {
	if shape, ok := w.shapes[id]; ok {
		w.space.RemoveShape(shape)
		delete(w.shapes, id)
	}
	if body, ok := w.bodies[id]; ok {
		w.space.RemoveBody(body)
		delete(w.bodies, id)
	}
}

// SetWalls rebuilds the four static boundary walls. Each wall is a thick
// segment whose inner face lies exactly on the viewport edge; the thickness
// keeps fast bodies from tunneling out.
func (w *chipmunkWorld) SetWalls(vp Viewport) {
	for _, wall := range w.walls {
		w.space.RemoveShape(wall)
	}
	w.walls = w.walls[:0]

	t := w.tun.WallThickness
	segments := [][2]cp.Vector{
		{{X: -t, Y: -t}, {X: vp.Width + t, Y: -t}},                     // top
		{{X: -t, Y: vp.Height + t}, {X: vp.Width + t, Y: vp.Height + t}}, // bottom
		{{X: -t, Y: -t}, {X: -t, Y: vp.Height + t}},                     // left
		{{X: vp.Width + t, Y: -t}, {X: vp.Width + t, Y: vp.Height + t}}, // right
	}
	for _, seg := range segments {
		shape := w.space.AddShape(cp.NewSegment(w.space.StaticBody, seg[0], seg[1], t))
		shape.SetElasticity(w.tun.Elasticity)
		shape.SetFriction(w.tun.Friction)
		w.walls = append(w.walls, shape)
	}
}

func (w *chipmunkWorld) SetGravity(g Vec2) {
	w.space.SetGravity(cp.Vector{X: g.X, Y: g.Y})
}

func (w *chipmunkWorld) Step(dt float64) {
	w.space.Step(dt)
}

func (w *chipmunkWorld) Body(id int) (BodyState, bool) {
	body, ok := w.bodies[id]
	if !ok {
		return BodyState{}, false
	}
	p := body.Position()
	return BodyState{Pos: Vec2{p.X, p.Y}, Angle: body.Angle()}, true
}

func (w *chipmunkWorld) Motion(id int) (Vec2, float64, bool) {
	body, ok := w.bodies[id]
	if !ok {
		return Vec2{}, 0, false
	}
	v := body.Velocity()
	return Vec2{v.X, v.Y}, body.AngularVelocity(), true
}

func (w *chipmunkWorld) SetPosition(id int, pos Vec2) {
	if body, ok := w.bodies[id]; ok {
		body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	}
}

func (w *chipmunkWorld) SetVelocity(id int, v Vec2) {
	if body, ok := w.bodies[id]; ok {
		body.SetVelocityVector(cp.Vector{X: v.X, Y: v.Y})
	}
}

func (w *chipmunkWorld) Each(fn func(id int, s BodyState)) {
	for id, body := range w.bodies {
		p := body.Position()
		fn(id, BodyState{Pos: Vec2{p.X, p.Y}, Angle: body.Angle()})
	}
}

func (w *chipmunkWorld) Clear() {
	for id := range w.bodies {
		w.RemoveBody(id)
	}
	for _, wall := range w.walls {
		w.space.RemoveShape(wall)
	}
	w.walls = w.walls[:0]
}

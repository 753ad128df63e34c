// Package collage is an interactive sticker-canvas engine for [Ebitengine].
//
// Users place, drag, rotate, pinch-resize, and pin image stickers on a
// virtual canvas, drop the whole collection into a physics-driven gravity
// play mode, or trigger an automatic non-overlapping layout. The package
// provides the hybrid coordinate system, the unified pointer/touch gesture
// state machine, the fixed-timestep physics loop with render interpolation,
// the gyroscope-to-gravity mapping, and the force-directed auto-layout
// solver.
//
// # Quick start
//
//	store := collage.NewStore(persister, nil)
//	engine := collage.NewEngine(store, collage.Viewport{Width: 1280, Height: 720}, collage.DefaultTuning(), nil)
//	renderer := collage.NewRenderer(store)
//	engine.SetProxyProvider(renderer)
//	input := collage.NewInputRouter(engine)
//
// Then, from your [ebiten.Game]:
//
//	func (g *Game) Update() error {
//		input.Update()
//		engine.Update(1.0 / float64(ebiten.TPS()))
//		return nil
//	}
//
//	func (g *Game) Draw(screen *ebiten.Image) {
//		renderer.Draw(screen, engine.Viewport())
//	}
//
// Or let [Run] own the loop:
//
//	collage.Run(engine, renderer, collage.RunConfig{Title: "Collage", Width: 1280, Height: 720})
//
// # Coordinates
//
// Sticker positions use a hybrid encoding: X is a signed pixel offset from
// the viewport's horizontal center, Y a percentage of viewport height.
// Resizing the window is a pure recompute, never a stored-value rewrite.
//
// # Modes
//
// Gestures are always live. [Engine.EnablePhysics] turns each unpinned
// sticker into a circular rigid body inside boundary walls, simulated at a
// fixed tick rate and rendered with interpolation; tilt samples fed through
// [Engine.SetTilt] steer gravity. [Engine.StartAutoLayout] relaxes the
// arrangement invisibly, then eases stickers to their places. The two modes
// are mutually exclusive and preempt each other synchronously.
//
// [Ebitengine]: https://ebitengine.org
package collage

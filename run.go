package collage

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the Run convenience loop.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// ClearColor fills the screen before stickers draw. Zero value is black.
	ClearColor color.RGBA

	// ShowFPS draws an FPS/TPS readout in the top-left corner.
	ShowFPS bool

	// Debug strokes every sticker's rotated display box.
	Debug bool

	// TestRunner, if set, drives scripted pointer input and screenshots
	// instead of waiting for a human.
	TestRunner *TestRunner

	// OnFrame, if set, runs once per frame after input routing and before
	// the engine update. Hosts use it for keyboard handling and UI.
	OnFrame func(dt float64)
}

// Run starts a self-contained ebiten loop over an engine and renderer:
// input routing, engine update at the display rate, and z-ordered drawing.
// Hosts needing their own ebiten.Game can skip Run and wire an InputRouter,
// Engine.Update, and Renderer.Draw themselves.
func Run(e *Engine, r *Renderer, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return ebiten.RunGame(&runGame{
		engine:   e,
		renderer: r,
		input:    NewInputRouter(e),
		cfg:      cfg,
	})
}

type runGame struct {
	engine   *Engine
	renderer *Renderer
	input    *InputRouter
	cfg      RunConfig
	fps      fpsOverlay
	lastDt   float64
}

func (g *runGame) Update() error {
	g.input.Update()
	dt := 1.0 / float64(ebiten.TPS())
	g.lastDt = dt
	if g.cfg.OnFrame != nil {
		g.cfg.OnFrame(dt)
	}
	if g.cfg.TestRunner != nil {
		g.cfg.TestRunner.Step(g.engine)
	}
	g.engine.Update(dt)
	return nil
}

func (g *runGame) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.ClearColor)
	vp := g.engine.Viewport()
	g.renderer.Draw(screen, vp)
	if g.cfg.Debug {
		g.renderer.DrawDebug(screen, vp)
	}
	if g.cfg.ShowFPS {
		g.fps.draw(screen, g.lastDt)
	}
	if g.cfg.TestRunner != nil {
		g.cfg.TestRunner.Screenshots().Flush(screen)
	}
}

func (g *runGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	vp := Viewport{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	if vp != g.engine.Viewport() {
		g.engine.SetViewport(vp)
	}
	return outsideWidth, outsideHeight
}

package collage

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	debugBoxColor      = color.RGBA{90, 200, 255, 255}
	debugSelectedColor = color.RGBA{255, 210, 60, 255}
)

// DrawDebug strokes every live sticker's rotated display box, with the
// selected sticker highlighted. Intended for development overlays; draw it
// after the sticker pass.
func (r *Renderer) DrawDebug(screen *ebiten.Image, vp Viewport) {
	selected := r.store.Selected()
	for _, s := range r.store.All() {
		col := debugBoxColor
		width := float32(1)
		if selected != nil && selected.ID == s.ID {
			col = debugSelectedColor
			width = 2
		}
		strokeStickerBox(screen, vp, s, width, col)
	}
}

// strokeStickerBox draws the four edges of a sticker's rotated box.
func strokeStickerBox(screen *ebiten.Image, vp Viewport, s *Sticker, width float32, col color.RGBA) {
	cx, cy := HybridToAbsolute(vp, s.X, s.YPercent)
	hw, hh := s.Width/2, s.Height()/2
	angle := DegToRad(s.Rotation)

	corners := [4][2]float64{
		{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh},
	}
	var pts [4][2]float32
	for i, c := range corners {
		x, y := rotatePoint(c[0], c[1], angle)
		pts[i] = [2]float32{float32(x + cx), float32(y + cy)}
	}
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%4]
		vector.StrokeLine(screen, a[0], a[1], b[0], b[1], width, col, true)
	}
}

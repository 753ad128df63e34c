package collage

import "github.com/hajimehoshi/ebiten/v2"

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// InputRouter reads ebiten mouse, touch, and wheel state once per frame and
// feeds the engine's device-agnostic pointer entry points. Touch IDs are
// mapped to stable pointer slots for the duration of each touch.
type InputRouter struct {
	engine *Engine

	mouseDown bool
	mouseX    float64
	mouseY    float64

	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	touchLast    [maxPointers]Vec2
	prevTouchIDs []ebiten.TouchID
}

// NewInputRouter wires a router to an engine.
func NewInputRouter(e *Engine) *InputRouter {
	return &InputRouter{engine: e}
}

// Update polls input state. Call once per frame, before Engine.Update.
func (r *InputRouter) Update() {
	mods := readModifiers()
	r.updateMouse(mods)
	r.updateTouches(mods)

	if _, wy := ebiten.Wheel(); wy != 0 {
		r.engine.Wheel(wy)
	}
}

func (r *InputRouter) updateMouse(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	switch {
	case pressed && !r.mouseDown:
		r.mouseDown = true
		r.engine.PointerDown(0, x, y, DeviceMouse, mods)
	case pressed && r.mouseDown:
		if x != r.mouseX || y != r.mouseY {
			r.engine.PointerMove(0, x, y, DeviceMouse, mods)
		}
	case !pressed && r.mouseDown:
		r.mouseDown = false
		r.engine.PointerUp(0, x, y, DeviceMouse, mods)
	}
	r.mouseX = x
	r.mouseY = y
}

func (r *InputRouter) updateTouches(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(r.prevTouchIDs[:0])
	r.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot, isNew := r.touchSlot(tid)
		if slot < 0 {
			continue
		}
		tx, ty := ebiten.TouchPosition(tid)
		pos := Vec2{float64(tx), float64(ty)}
		if isNew {
			r.engine.PointerDown(slot, pos.X, pos.Y, DeviceTouch, mods)
		} else if pos != r.touchLast[slot] {
			r.engine.PointerMove(slot, pos.X, pos.Y, DeviceTouch, mods)
		}
		activeSlots[slot] = true
		r.touchLast[slot] = pos
	}

	// Release slots whose touch vanished this frame.
	for i := 1; i < maxPointers; i++ {
		if r.touchUsed[i] && !activeSlots[i] {
			last := r.touchLast[i]
			r.engine.PointerUp(i, last.X, last.Y, DeviceTouch, mods)
			r.touchUsed[i] = false
			r.touchMap[i] = 0
			r.touchLast[i] = Vec2{}
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one; isNew reports an
// allocation. Returns -1 if all slots are taken.
func (r *InputRouter) touchSlot(tid ebiten.TouchID) (slot int, isNew bool) {
	for i := 1; i < maxPointers; i++ {
		if r.touchUsed[i] && r.touchMap[i] == tid {
			return i, false
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !r.touchUsed[i] {
			r.touchUsed[i] = true
			r.touchMap[i] = tid
			return i, true
		}
	}
	return -1, false
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

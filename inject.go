package collage

// injectedEvent is a single synthetic pointer event. Events use absolute
// viewport coordinates and feed through the exact entry points real input
// uses, one event per updated frame.
type injectedEvent struct {
	pointerID int
	x, y      float64
	dev       PointerDevice
	kind      injectKind
	mods      KeyModifiers
}

type injectKind uint8

const (
	injectPress injectKind = iota
	injectMove
	injectRelease
)

// InjectPress queues a synthetic pointer press. Consumed on the next
// Update call.
func (e *Engine) InjectPress(pointerID int, x, y float64, dev PointerDevice) {
	e.injectQueue = append(e.injectQueue, injectedEvent{pointerID, x, y, dev, injectPress, 0})
}

// InjectMove queues a synthetic pointer move with the button held down.
func (e *Engine) InjectMove(pointerID int, x, y float64, dev PointerDevice) {
	e.injectQueue = append(e.injectQueue, injectedEvent{pointerID, x, y, dev, injectMove, 0})
}

// InjectRelease queues a synthetic pointer release.
func (e *Engine) InjectRelease(pointerID int, x, y float64, dev PointerDevice) {
	e.injectQueue = append(e.injectQueue, injectedEvent{pointerID, x, y, dev, injectRelease, 0})
}

// InjectDrag queues a full drag: press at (fromX, fromY), interpolated
// moves over frames-2 intermediate frames, release at (toX, toY). The
// sequence consumes `frames` Update calls; minimum is 2 (press + release).
func (e *Engine) InjectDrag(pointerID int, fromX, fromY, toX, toY float64, dev PointerDevice, frames int) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPress(pointerID, fromX, fromY, dev)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(pointerID, fromX+(toX-fromX)*t, fromY+(toY-fromY)*t, dev)
	}
	e.InjectRelease(pointerID, toX, toY, dev)
}

// drainInjected consumes at most one queued event per frame, matching the
// cadence of real input.
func (e *Engine) drainInjected() {
	if len(e.injectQueue) == 0 {
		return
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	switch evt.kind {
	case injectPress:
		e.PointerDown(evt.pointerID, evt.x, evt.y, evt.dev, evt.mods)
	case injectMove:
		e.PointerMove(evt.pointerID, evt.x, evt.y, evt.dev, evt.mods)
	case injectRelease:
		e.PointerUp(evt.pointerID, evt.x, evt.y, evt.dev, evt.mods)
	}
}

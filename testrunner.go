package collage

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Dy     float64 `json:"dy,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected pointer events, mode switches, and
// screenshots across frames for automated interaction testing. Attach one
// through RunConfig, or call Step yourself once per frame.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool

	shots *Screenshotter
}

// LoadTestScript parses a JSON test script. Supported actions: "press",
// "release", "click", "drag", "wheel", "physics", "layout", "wait",
// "screenshot".
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	return &TestRunner{steps: script.Steps, shots: NewScreenshotter("")}, nil
}

// Screenshots exposes the runner's screenshot queue so the host's draw path
// can flush it.
func (r *TestRunner) Screenshots() *Screenshotter {
	return r.shots
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Step advances the runner by one frame, queuing events on the engine.
// Pending injected events drain before the next step fires.
func (r *TestRunner) Step(e *Engine) {
	if r.done {
		return
	}
	if len(e.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		r.shots.Queue(st.Label)
	case "press":
		e.InjectPress(0, st.X, st.Y, DeviceMouse)
	case "release":
		e.InjectRelease(0, st.X, st.Y, DeviceMouse)
	case "click":
		e.InjectPress(0, st.X, st.Y, DeviceMouse)
		e.InjectRelease(0, st.X, st.Y, DeviceMouse)
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		e.InjectDrag(0, st.FromX, st.FromY, st.ToX, st.ToY, DeviceMouse, frames)
	case "wheel":
		e.Wheel(st.Dy)
	case "physics":
		if e.IsPhysicsActive() {
			e.DisablePhysics()
		} else {
			e.EnablePhysics()
		}
	case "layout":
		e.StartAutoLayout()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}

package collage

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Tuning collects every threshold and constant the engine runs on. All
// components read from the Tuning they were built with, so two engines with
// different tunings can coexist. Load one from TOML with LoadTuning, or
// start from DefaultTuning and adjust fields directly.
type Tuning struct {
	// Gesture thresholds (pixels and seconds).
	DragThreshold  float64 `toml:"drag_threshold"`   // movement before a touch press becomes a drag
	TapThreshold   float64 `toml:"tap_threshold"`    // max movement for a press to resolve as a tap
	TapMaxDuration float64 `toml:"tap_max_duration"` // seconds; longer presses are never taps
	MinVisibleFrac float64 `toml:"min_visible_frac"` // per-axis visible fraction below which a drop snaps back
	MaxOverhang    float64 `toml:"max_overhang"`     // pixels a sticker may hang past an edge before snapping back
	WheelStep      float64 `toml:"wheel_step"`       // multiplicative width change per wheel notch

	// Sticker size bounds. MaxWidthFrac is relative to viewport width.
	MinWidth     float64 `toml:"min_width"`
	MaxWidthFrac float64 `toml:"max_width_frac"`

	// Throw velocity sampling.
	ThrowWindow   float64 `toml:"throw_window"`    // seconds of pointer history used for exit velocity
	MaxThrowSpeed float64 `toml:"max_throw_speed"` // pixels/second magnitude clamp

	// Physics.
	TickRate        float64 `toml:"tick_rate"`         // fixed physics steps per second
	GravityScale    float64 `toml:"gravity_scale"`     // pixels/second^2 at full tilt
	GravityLerp     float64 `toml:"gravity_lerp"`      // per-tick smoothing factor toward target gravity
	TiltFullAngle   float64 `toml:"tilt_full_angle"`   // device tilt (degrees) mapping to gravity 1.0
	BodyRadiusFrac  float64 `toml:"body_radius_frac"`  // collision radius as fraction of rendered half-width
	WallThickness   float64 `toml:"wall_thickness"`    // static boundary wall thickness
	Elasticity      float64 `toml:"elasticity"`        // body and wall restitution
	Friction        float64 `toml:"friction"`          // body and wall friction
	RestLinearSpeed float64 `toml:"rest_linear_speed"` // below this (and RestAngularSpeed) a body is at rest
	RestAngularSpd  float64 `toml:"rest_angular_speed"`
	WriteEpsilonPos float64 `toml:"write_epsilon_pos"` // min position change worth writing out
	WriteEpsilonAng float64 `toml:"write_epsilon_ang"` // min angle change (radians) worth writing out

	// Auto-layout solver.
	LayoutMaxIterations int     `toml:"layout_max_iterations"`
	LayoutConvergence   float64 `toml:"layout_convergence"`    // max per-sticker movement for a quiet iteration
	LayoutQuietStreak   int     `toml:"layout_quiet_streak"`   // consecutive quiet iterations to converge
	LayoutRepulsion     float64 `toml:"layout_repulsion"`      // pairwise repulsion gain
	LayoutForceCap      float64 `toml:"layout_force_cap"`      // max force magnitude per iteration
	LayoutDamping       float64 `toml:"layout_damping"`        // applied to the summed force before integration
	LayoutMargin        float64 `toml:"layout_margin"`         // boundary repulsion margin
	LayoutBoundaryGain  float64 `toml:"layout_boundary_gain"`  // boundary repulsion per penetrated pixel
	LayoutSpreadFrac    float64 `toml:"layout_spread_frac"`    // ideal spread radius as fraction of min viewport dimension
	LayoutCenterPull    float64 `toml:"layout_center_pull"`    // attraction per pixel beyond the spread radius
	LayoutDuration      float64 `toml:"layout_duration"`       // seconds for the phase-2 animation
}

// DefaultTuning returns the values the engine ships with.
func DefaultTuning() Tuning {
	return Tuning{
		DragThreshold:  8,
		TapThreshold:   10,
		TapMaxDuration: 0.25,
		MinVisibleFrac: 0.1,
		MaxOverhang:    40,
		WheelStep:      1.05,

		MinWidth:     40,
		MaxWidthFrac: 0.9,

		ThrowWindow:   0.1,
		MaxThrowSpeed: 1800,

		TickRate:        60,
		GravityScale:    1400,
		GravityLerp:     0.08,
		TiltFullAngle:   45,
		BodyRadiusFrac:  0.7,
		WallThickness:   120,
		Elasticity:      0.25,
		Friction:        0.7,
		RestLinearSpeed: 2,
		RestAngularSpd:  0.02,
		WriteEpsilonPos: 0.05,
		WriteEpsilonAng: 0.0005,

		LayoutMaxIterations: 300,
		LayoutConvergence:   0.5,
		LayoutQuietStreak:   3,
		LayoutRepulsion:     6,
		LayoutForceCap:      40,
		LayoutDamping:       0.85,
		LayoutMargin:        60,
		LayoutBoundaryGain:  0.2,
		LayoutSpreadFrac:    0.35,
		LayoutCenterPull:    0.02,
		LayoutDuration:      0.6,
	}
}

// LoadTuning reads a TOML tuning file over the defaults, so a file only
// needs to name the values it changes.
func LoadTuning(path string) (Tuning, error) {
	tun := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return tun, fmt.Errorf("read tuning: %w", err)
	}
	if err := toml.Unmarshal(data, &tun); err != nil {
		return tun, fmt.Errorf("parse tuning: %w", err)
	}
	return tun, nil
}

// tickDuration returns the fixed physics step length in seconds.
func (t *Tuning) tickDuration() float64 {
	return 1.0 / t.TickRate
}

// maxWidth returns the viewport-relative width cap.
func (t *Tuning) maxWidth(vp Viewport) float64 {
	return vp.Width * t.MaxWidthFrac
}

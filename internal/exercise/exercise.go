// Package exercise defines the exercise families the pipeline understands
// and their per-family tuning. Each family is a variant with its own
// primary joint, transition thresholds and canonical movement pattern;
// adding a family means adding a variant here plus its machine spec,
// not threading new branches through shared functions.
package exercise

import "github.com/repwise-data/repwise/internal/features"

// Family identifies one exercise family.
type Family string

const (
	Situp      Family = "situp"
	Pushup     Family = "pushup"
	Squat      Family = "squat"
	Jump       Family = "vertical_jump"
	BroadJump  Family = "broad_jump"
	Sprint     Family = "sprint"
	ShuttleRun Family = "shuttle_run"
	Unknown    Family = "unknown"
)

// Families lists all classifiable families in ranking order.
var Families = []Family{Situp, Pushup, Squat, Jump, BroadJump, Sprint, ShuttleRun}

// Valid reports whether f names a known family.
func (f Family) Valid() bool {
	for _, known := range Families {
		if f == known {
			return true
		}
	}
	return false
}

// Joint names the primary joint driving a family's rep cycle.
type Joint string

const (
	JointTorso Joint = "torso"
	JointElbow Joint = "elbow"
	JointKnee  Joint = "knee"
)

// Thresholds holds the per-family angle and movement tuning. All angle
// values are degrees. These are heuristic defaults inherited from the
// source models, exposed through config for tuning — they are not
// validated biomechanical constants.
type Thresholds struct {
	// Rep state machine: extended→flexed when the primary angle drops
	// below FlexAngle; flexed→extended (the counted transition) when it
	// rises above ExtendAngle.
	FlexAngle   float64 `json:"flex_angle"`
	ExtendAngle float64 `json:"extend_angle"`

	// Ideal extremes for range-of-motion scoring.
	IdealFlexAngle   float64 `json:"ideal_flex_angle"`
	IdealExtendAngle float64 `json:"ideal_extend_angle"`

	// Gating minimums: an attempt whose features fall below every
	// applicable minimum is rejected as insufficient movement.
	MinPrimaryAngleDelta float64 `json:"min_primary_angle_delta"`
	MinVerticalRange     float64 `json:"min_vertical_range"`
	MinHorizontalRange   float64 `json:"min_horizontal_range"`
}

// Spec is the static description of one family.
type Spec struct {
	Family  Family
	Joint   Joint
	Pattern features.MovementPattern
	// PostureFloor is the minimum secondary-joint angle for posture
	// integrity (hip sag and similar); zero disables the check.
	PostureFloor float64
	Defaults     Thresholds
}

// specs carries the built-in family definitions. Threshold provenance:
// situp 70/160 and min delta 50 from the sit-up counter, pushup 90/160
// and squat 100/160 from the shared flex/extend convention, jump and
// sprint from the vertical-jump and gait analyzers, broad jump and
// shuttle run from the standing-long-jump and line-touch drills.
var specs = map[Family]Spec{
	Situp: {
		Family:  Situp,
		Joint:   JointTorso,
		Pattern: features.PatternFlexion,
		Defaults: Thresholds{
			FlexAngle:            70,
			ExtendAngle:          160,
			IdealFlexAngle:       55,
			IdealExtendAngle:     170,
			MinPrimaryAngleDelta: 50,
		},
	},
	Pushup: {
		Family:       Pushup,
		Joint:        JointElbow,
		Pattern:      features.PatternVertical,
		PostureFloor: 150, // shoulder-hip-knee line must stay near straight
		Defaults: Thresholds{
			FlexAngle:            90,
			ExtendAngle:          160,
			IdealFlexAngle:       75,
			IdealExtendAngle:     175,
			MinPrimaryAngleDelta: 40,
			MinVerticalRange:     0.02,
		},
	},
	Squat: {
		Family:  Squat,
		Joint:   JointKnee,
		Pattern: features.PatternVertical,
		Defaults: Thresholds{
			FlexAngle:            100,
			ExtendAngle:          160,
			IdealFlexAngle:       80,
			IdealExtendAngle:     175,
			MinPrimaryAngleDelta: 40,
			MinVerticalRange:     0.05,
		},
	},
	Jump: {
		Family:  Jump,
		Joint:   JointKnee,
		Pattern: features.PatternVertical,
		Defaults: Thresholds{
			FlexAngle:            110,
			ExtendAngle:          160,
			IdealFlexAngle:       90,
			IdealExtendAngle:     175,
			MinVerticalRange:     0.08,
			MinPrimaryAngleDelta: 25,
		},
	},
	BroadJump: {
		Family:  BroadJump,
		Joint:   JointKnee,
		Pattern: features.PatternHorizontal,
		Defaults: Thresholds{
			FlexAngle:            110,
			ExtendAngle:          160,
			IdealFlexAngle:       90,
			IdealExtendAngle:     175,
			MinHorizontalRange:   0.15,
			MinPrimaryAngleDelta: 0,
		},
	},
	Sprint: {
		Family:  Sprint,
		Joint:   JointKnee,
		Pattern: features.PatternHorizontal,
		Defaults: Thresholds{
			FlexAngle:            130,
			ExtendAngle:          165,
			IdealFlexAngle:       110,
			IdealExtendAngle:     175,
			MinHorizontalRange:   0.25,
			MinPrimaryAngleDelta: 0,
		},
	},
	ShuttleRun: {
		Family:  ShuttleRun,
		Joint:   JointKnee,
		Pattern: features.PatternHorizontal,
		Defaults: Thresholds{
			FlexAngle:            130,
			ExtendAngle:          165,
			IdealFlexAngle:       110,
			IdealExtendAngle:     175,
			MinHorizontalRange:   0.25,
			MinPrimaryAngleDelta: 0,
		},
	},
}

// SpecFor returns the family spec; ok is false for unknown families.
func SpecFor(f Family) (Spec, bool) {
	s, ok := specs[f]
	return s, ok
}

// DefaultThresholds returns a copy of the family's built-in thresholds.
func DefaultThresholds(f Family) Thresholds {
	return specs[f].Defaults
}

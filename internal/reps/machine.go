// Package reps implements the per-exercise repetition counters. Every
// family shares one machine shape — extended and flexed phases with
// hysteresis thresholds on the family's primary joint angle — and a rep
// is counted exactly once, on the flexed→extended transition, so a
// half-finished motion never scores.
package reps

import (
	"fmt"
	"math"
	"time"

	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/pose"
)

// Phase is the machine's position in the rep cycle.
type Phase string

const (
	PhaseExtended Phase = "extended"
	PhaseFlexed   Phase = "flexed"
)

// Form-quality weights. Symmetry and posture accumulate per frame,
// range-of-motion per completed rep.
const (
	symmetryWeight = 0.4
	romWeight      = 0.4
	postureWeight  = 0.2

	// symmetryFullPenaltyDeg is the left/right angle gap that zeroes
	// the symmetry component.
	symmetryFullPenaltyDeg = 90.0
)

// RepEvent records one counted repetition.
type RepEvent struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	// Angle extremes observed during the cycle that produced this rep.
	CycleMinAngle float64 `json:"cycle_min_angle"`
	CycleMaxAngle float64 `json:"cycle_max_angle"`
}

// Summary is the frozen output of a finalized machine.
type Summary struct {
	Family      exercise.Family `json:"family"`
	RepCount    int             `json:"rep_count"`
	FormQuality float64         `json:"form_quality"` // [0,100]
	// Component scores [0,1], for diagnostics.
	Symmetry      float64    `json:"symmetry"`
	RangeOfMotion float64    `json:"range_of_motion"`
	Posture       float64    `json:"posture"`
	Events        []RepEvent `json:"events,omitempty"`
}

// Machine counts repetitions for one attempt. Not safe for concurrent
// use: the offload worker owns it exclusively for the attempt lifetime.
type Machine struct {
	spec       exercise.Spec
	thresholds exercise.Thresholds
	floor      float64 // landmark confidence floor; garbled frames skip

	phase    Phase
	repCount int
	events   []RepEvent

	// Extremes within the current cycle, reset after each counted rep.
	cycleMin float64
	cycleMax float64

	// Accumulators.
	symmetrySum  float64
	postureSum   float64
	frameSamples int
	romSum       float64
	romSamples   int

	finalized bool
	summary   Summary
}

// NewMachine builds a machine for the family using the given thresholds.
// Passing zero-valued thresholds selects the family defaults.
func NewMachine(family exercise.Family, th exercise.Thresholds, confidenceFloor float64) (*Machine, error) {
	spec, ok := exercise.SpecFor(family)
	if !ok {
		return nil, fmt.Errorf("no rep machine for exercise family %q", family)
	}
	if th == (exercise.Thresholds{}) {
		th = spec.Defaults
	}
	if th.FlexAngle >= th.ExtendAngle {
		return nil, fmt.Errorf("flex angle %.1f must be below extend angle %.1f", th.FlexAngle, th.ExtendAngle)
	}
	if confidenceFloor <= 0 {
		confidenceFloor = 0.5
	}
	return &Machine{
		spec:       spec,
		thresholds: th,
		floor:      confidenceFloor,
		phase:      PhaseExtended,
		cycleMin:   math.MaxFloat64,
	}, nil
}

// Phase returns the current cycle phase.
func (m *Machine) Phase() Phase { return m.phase }

// RepCount returns the repetitions counted so far.
func (m *Machine) RepCount() int { return m.repCount }

// Observe feeds one frame through the machine. Returns true when this
// frame completed a repetition. Low-confidence frames are skipped — the
// full-body gate has already rejected attempts too corrupted to analyze,
// so a garbled frame here is transient and must not be an error.
func (m *Machine) Observe(f *pose.Frame) bool {
	if m.finalized {
		return false
	}

	left, right, ok := m.jointAngles(f)
	if !ok {
		return false
	}
	angle := (left + right) / 2

	m.accumulateForm(f, left, right)

	if angle < m.cycleMin {
		m.cycleMin = angle
	}
	if angle > m.cycleMax {
		m.cycleMax = angle
	}

	switch m.phase {
	case PhaseExtended:
		if angle < m.thresholds.FlexAngle {
			m.phase = PhaseFlexed
		}
	case PhaseFlexed:
		if angle > m.thresholds.ExtendAngle {
			m.phase = PhaseExtended
			m.countRep(f.Timestamp)
			return true
		}
	}
	return false
}

// countRep records a completed flexed→extended cycle and scores its
// range of motion against the ideal extremes.
func (m *Machine) countRep(ts time.Time) {
	m.repCount++
	m.events = append(m.events, RepEvent{
		Index:         m.repCount,
		Timestamp:     ts,
		CycleMinAngle: m.cycleMin,
		CycleMaxAngle: m.cycleMax,
	})

	m.romSum += m.cycleROMScore()
	m.romSamples++

	// New cycle starts from the extended position just reached.
	m.cycleMin = math.MaxFloat64
	m.cycleMax = 0
}

// cycleROMScore scores how close the cycle extremes came to the ideal
// flexed and extended angles, each half worth 0.5.
func (m *Machine) cycleROMScore() float64 {
	th := m.thresholds
	flexSpan := th.FlexAngle - th.IdealFlexAngle
	extendSpan := th.IdealExtendAngle - th.ExtendAngle

	flexScore := 0.5
	if flexSpan > 0 {
		overshoot := th.FlexAngle - m.cycleMin // how far below the gate
		flexScore = 0.5 * clamp01(overshoot/flexSpan)
	}
	extendScore := 0.5
	if extendSpan > 0 {
		overshoot := m.cycleMax - th.ExtendAngle
		extendScore = 0.5 * clamp01(overshoot/extendSpan)
	}
	return flexScore + extendScore
}

// accumulateForm adds this frame's symmetry and posture samples.
func (m *Machine) accumulateForm(f *pose.Frame, left, right float64) {
	diff := math.Abs(left - right)
	m.symmetrySum += clamp01(1 - diff/symmetryFullPenaltyDeg)

	posture := 1.0
	if m.spec.PostureFloor > 0 {
		sag := f.HipSagAngle()
		if sag < m.spec.PostureFloor {
			// Linear penalty: 30° below the floor zeroes the sample.
			posture = clamp01(1 - (m.spec.PostureFloor-sag)/30)
		}
	}
	m.postureSum += posture
	m.frameSamples++
}

// jointAngles returns the left/right primary joint angle for the family,
// with ok=false when any involved landmark is below the confidence floor.
func (m *Machine) jointAngles(f *pose.Frame) (left, right float64, ok bool) {
	var ids []pose.LandmarkID
	switch m.spec.Joint {
	case exercise.JointTorso:
		ids = []pose.LandmarkID{
			pose.LeftShoulder, pose.RightShoulder,
			pose.LeftHip, pose.RightHip,
			pose.LeftKnee, pose.RightKnee,
		}
	case exercise.JointElbow:
		ids = []pose.LandmarkID{
			pose.LeftShoulder, pose.RightShoulder,
			pose.LeftElbow, pose.RightElbow,
			pose.LeftWrist, pose.RightWrist,
		}
	case exercise.JointKnee:
		ids = []pose.LandmarkID{
			pose.LeftHip, pose.RightHip,
			pose.LeftKnee, pose.RightKnee,
			pose.LeftAnkle, pose.RightAnkle,
		}
	}
	for _, id := range ids {
		if !f.Visible(id, m.floor) {
			return 0, 0, false
		}
	}

	switch m.spec.Joint {
	case exercise.JointTorso:
		return f.TorsoAngle(true), f.TorsoAngle(false), true
	case exercise.JointElbow:
		return f.ElbowAngle(true), f.ElbowAngle(false), true
	default:
		return f.KneeAngle(true), f.KneeAngle(false), true
	}
}

// Finalize freezes the machine and returns its summary. Repeated calls
// return the same summary.
func (m *Machine) Finalize() Summary {
	if m.finalized {
		return m.summary
	}
	m.finalized = true

	s := Summary{
		Family:   m.spec.Family,
		RepCount: m.repCount,
		Events:   m.events,
	}
	if m.frameSamples > 0 {
		s.Symmetry = m.symmetrySum / float64(m.frameSamples)
		s.Posture = m.postureSum / float64(m.frameSamples)
	}
	if m.romSamples > 0 {
		s.RangeOfMotion = m.romSum / float64(m.romSamples)
	}
	s.FormQuality = 100 * (symmetryWeight*s.Symmetry +
		romWeight*s.RangeOfMotion +
		postureWeight*s.Posture)

	m.summary = s
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

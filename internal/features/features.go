// Package features reduces a landmark history to the scalar movement
// aggregates the exercise classifier scores against. Extraction is a pure
// function of the history: same frames in, same features out.
package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/repwise-data/repwise/internal/pose"
)

// MovementPattern is the categorical shape of the observed motion.
type MovementPattern string

const (
	PatternVertical   MovementPattern = "vertical"
	PatternHorizontal MovementPattern = "horizontal"
	PatternFlexion    MovementPattern = "flexion"
	PatternRotation   MovementPattern = "rotation"
	PatternStatic     MovementPattern = "static"
)

// Pattern dominance thresholds. Ranges are in normalized frame units,
// angles in degrees. Heuristic defaults carried from the source models.
const (
	staticRangeMax    = 0.02
	staticAngleMax    = 10.0
	flexionAngleMin   = 40.0
	rotationDeltaMin  = 35.0
	minOscillationAmp = 0.01
	minAngleStep      = 3.0
)

// Movement holds the derived, immutable feature snapshot for one attempt.
type Movement struct {
	// Normalized max-min extent of the hip centroid.
	VerticalRange   float64 `json:"vertical_range"`
	HorizontalRange float64 `json:"horizontal_range"`

	// Max angular delta per joint, degrees, averaged over both sides
	// per frame before taking the extent.
	TorsoAngleDelta float64 `json:"torso_angle_delta"`
	KneeAngleDelta  float64 `json:"knee_angle_delta"`
	ElbowAngleDelta float64 `json:"elbow_angle_delta"`

	// Shoulder-line orientation change, degrees.
	ShoulderRotationDelta float64 `json:"shoulder_rotation_delta"`

	// Oscillations counted as velocity sign changes of the hip centroid
	// along the dominant axis.
	OscillationCount int `json:"oscillation_count"`

	// Mean and spread of the hip centroid vertical position, for
	// diagnostics and sustained-displacement checks.
	VerticalMean   float64 `json:"vertical_mean"`
	VerticalStdDev float64 `json:"vertical_stddev"`

	DurationSecs float64         `json:"duration_secs"`
	FrameCount   int             `json:"frame_count"`
	Pattern      MovementPattern `json:"movement_pattern"`
}

// Extract computes the movement features over the full history.
func Extract(h *pose.History) Movement {
	m := Movement{Pattern: PatternStatic, FrameCount: h.Len()}
	if h.Len() == 0 {
		return m
	}

	n := h.Len()
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		c := h.At(i).HipCentroid()
		xs[i] = c.X
		ys[i] = c.Y
	}

	m.HorizontalRange = extent(xs)
	m.VerticalRange = extent(ys)
	m.VerticalMean = stat.Mean(ys, nil)
	if n > 1 {
		m.VerticalStdDev = stat.StdDev(ys, nil)
	}

	m.TorsoAngleDelta = angleExtent(h, func(f *pose.Frame) float64 {
		return (f.TorsoAngle(true) + f.TorsoAngle(false)) / 2
	})
	m.KneeAngleDelta = angleExtent(h, func(f *pose.Frame) float64 {
		return (f.KneeAngle(true) + f.KneeAngle(false)) / 2
	})
	m.ElbowAngleDelta = angleExtent(h, func(f *pose.Frame) float64 {
		return (f.ElbowAngle(true) + f.ElbowAngle(false)) / 2
	})
	m.ShoulderRotationDelta = angleExtent(h, shoulderLineAngle)

	first, last := h.At(0).Timestamp, h.At(n-1).Timestamp
	if last.After(first) {
		m.DurationSecs = last.Sub(first).Seconds()
	}

	m.Pattern = classifyPattern(m)

	// Oscillations follow whichever signal dominates: the trunk angle for
	// flexion movement, otherwise the hip centroid on its dominant axis.
	switch {
	case m.Pattern == PatternFlexion:
		torso := make([]float64, n)
		for i := 0; i < n; i++ {
			f := h.At(i)
			torso[i] = (f.TorsoAngle(true) + f.TorsoAngle(false)) / 2
		}
		m.OscillationCount = countOscillationsWithAmp(torso, minAngleStep)
	case m.VerticalRange >= m.HorizontalRange:
		m.OscillationCount = countOscillationsWithAmp(ys, minOscillationAmp)
	default:
		m.OscillationCount = countOscillationsWithAmp(xs, minOscillationAmp)
	}
	return m
}

// extent returns max-min of the series.
func extent(vs []float64) float64 {
	min, max := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

func angleExtent(h *pose.History, angle func(*pose.Frame) float64) float64 {
	vs := make([]float64, h.Len())
	for i := 0; i < h.Len(); i++ {
		vs[i] = angle(h.At(i))
	}
	return extent(vs)
}

// shoulderLineAngle is the orientation of the left→right shoulder vector
// in degrees, used to detect rotational movement.
func shoulderLineAngle(f *pose.Frame) float64 {
	l, r := f.Points[pose.LeftShoulder], f.Points[pose.RightShoulder]
	return math.Atan2(r.Y-l.Y, r.X-l.X) * 180 / math.Pi
}

// countOscillationsWithAmp counts sign changes of the first difference,
// ignoring steps smaller than minAmp so detector jitter does not count
// as movement.
func countOscillationsWithAmp(vs []float64, minAmp float64) int {
	var count, lastSign int
	for i := 1; i < len(vs); i++ {
		d := vs[i] - vs[i-1]
		if math.Abs(d) < minAmp {
			continue
		}
		sign := 1
		if d < 0 {
			sign = -1
		}
		if lastSign != 0 && sign != lastSign {
			count++
		}
		lastSign = sign
	}
	return count
}

func classifyPattern(m Movement) MovementPattern {
	maxAngle := math.Max(m.TorsoAngleDelta, math.Max(m.KneeAngleDelta, m.ElbowAngleDelta))
	if m.VerticalRange < staticRangeMax && m.HorizontalRange < staticRangeMax && maxAngle < staticAngleMax {
		return PatternStatic
	}
	if m.ShoulderRotationDelta > rotationDeltaMin &&
		m.ShoulderRotationDelta > m.TorsoAngleDelta &&
		m.VerticalRange < staticRangeMax*2 && m.HorizontalRange < staticRangeMax*2 {
		return PatternRotation
	}
	// Flexion wins when the trunk folds far more than the body travels.
	if m.TorsoAngleDelta > flexionAngleMin && m.TorsoAngleDelta >= m.KneeAngleDelta {
		return PatternFlexion
	}
	if m.VerticalRange >= m.HorizontalRange {
		return PatternVertical
	}
	return PatternHorizontal
}

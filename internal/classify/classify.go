// Package classify maps extracted movement features to a best-guess
// exercise family. Rule-based scoring, one rule set per family; scores
// are heuristic placeholders tuned for qualitative behaviour (reject on
// mismatch, never silently score the wrong exercise) rather than
// cross-validated accuracy.
package classify

import (
	"sort"

	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/features"
)

// Confidence bands shared by the per-family scorers.
const (
	highConfidence   = 0.85
	mediumConfidence = 0.70
	lowConfidence    = 0.50

	// tieEpsilon is the score gap under which two candidates are
	// considered tied and the canonical-pattern match breaks the tie.
	tieEpsilon = 0.05

	// minSprintDuration is the sustained-displacement requirement for
	// the sprint family, seconds.
	minSprintDuration = 3.0
)

// Candidate is one scored family.
type Candidate struct {
	Family     exercise.Family `json:"family"`
	Confidence float64         `json:"confidence"`
}

// Result is the classification outcome for one attempt.
type Result struct {
	Detected        exercise.Family `json:"detected"`
	Confidence      float64         `json:"confidence"`
	Alternates      []Candidate     `json:"alternates,omitempty"`
	Declared        exercise.Family `json:"declared"`
	MatchesDeclared bool            `json:"matches_declared"`
}

// Classify scores every known family against the features and compares
// the winner with the declared family. Pure function of its inputs.
func Classify(m features.Movement, declared exercise.Family) Result {
	candidates := make([]Candidate, 0, len(exercise.Families))
	for _, f := range exercise.Families {
		candidates = append(candidates, Candidate{Family: f, Confidence: score(f, m)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if diff := a.Confidence - b.Confidence; diff > tieEpsilon || diff < -tieEpsilon {
			return a.Confidence > b.Confidence
		}
		// Tie: prefer the family whose canonical pattern matches.
		am := canonicalPatternMatches(a.Family, m.Pattern)
		bm := canonicalPatternMatches(b.Family, m.Pattern)
		if am != bm {
			return am
		}
		return a.Confidence > b.Confidence
	})

	top := candidates[0]
	res := Result{
		Detected:   top.Family,
		Confidence: top.Confidence,
		Alternates: candidates[1:],
		Declared:   declared,
	}
	if top.Confidence < lowConfidence {
		res.Detected = exercise.Unknown
	}
	res.MatchesDeclared = res.Detected == declared
	return res
}

func canonicalPatternMatches(f exercise.Family, p features.MovementPattern) bool {
	spec, ok := exercise.SpecFor(f)
	return ok && spec.Pattern == p
}

// score applies the family's heuristic rules to the feature vector.
func score(f exercise.Family, m features.Movement) float64 {
	switch f {
	case exercise.Situp:
		return situpScore(m)
	case exercise.Pushup:
		return pushupScore(m)
	case exercise.Squat:
		return squatScore(m)
	case exercise.Jump:
		return jumpScore(m)
	case exercise.BroadJump:
		return broadJumpScore(m)
	case exercise.Sprint:
		return sprintScore(m)
	case exercise.ShuttleRun:
		return shuttleScore(m)
	}
	return 0
}

// situpScore: large trunk fold, repeated oscillation, body stays in place.
func situpScore(m features.Movement) float64 {
	if m.TorsoAngleDelta < 40 {
		return 0.1
	}
	c := mediumConfidence
	if m.TorsoAngleDelta > 70 {
		c += 0.10
	}
	if m.OscillationCount >= 3 {
		c += 0.05
	}
	if m.HorizontalRange > 0.15 {
		c -= 0.25 // travelling bodies are not doing sit-ups
	}
	if m.TorsoAngleDelta < m.KneeAngleDelta {
		c -= 0.15
	}
	return clamp(c, 0, highConfidence+0.1)
}

// pushupScore: elbow-dominant flexion with small vertical body travel.
func pushupScore(m features.Movement) float64 {
	if m.ElbowAngleDelta < 30 {
		return 0.1
	}
	c := mediumConfidence
	if m.ElbowAngleDelta > 60 {
		c += 0.10
	}
	if m.ElbowAngleDelta > m.KneeAngleDelta && m.ElbowAngleDelta > m.TorsoAngleDelta {
		c += 0.10
	}
	if m.VerticalRange > 0.15 || m.HorizontalRange > 0.15 {
		c -= 0.20
	}
	return clamp(c, 0, highConfidence+0.1)
}

// squatScore: knee-dominant flexion, moderate vertical travel, no drift.
func squatScore(m features.Movement) float64 {
	if m.KneeAngleDelta < 30 || m.VerticalRange < 0.03 {
		return 0.1
	}
	c := mediumConfidence
	if m.KneeAngleDelta > 60 {
		c += 0.10
	}
	if m.VerticalRange >= 0.05 && m.VerticalRange <= 0.25 {
		c += 0.05
	}
	if m.HorizontalRange > 0.15 {
		c -= 0.20
	}
	if m.KneeAngleDelta < m.TorsoAngleDelta {
		c -= 0.10
	}
	return clamp(c, 0, highConfidence+0.1)
}

// jumpScore: vertical-dominant displacement with low horizontal travel.
func jumpScore(m features.Movement) float64 {
	if m.VerticalRange < 0.06 {
		return 0.1
	}
	c := mediumConfidence
	if m.VerticalRange > 0.12 {
		c += 0.15
	}
	if m.HorizontalRange < 0.08 {
		c += 0.05
	}
	if m.HorizontalRange > m.VerticalRange {
		c -= 0.25
	}
	if m.TorsoAngleDelta > 60 {
		c -= 0.15 // deep trunk folding points at flexion work instead
	}
	return clamp(c, 0, highConfidence+0.1)
}

// broadJumpScore: a single explosive leap, horizontal travel dominating a
// brief flight arc and no sustained locomotion.
func broadJumpScore(m features.Movement) float64 {
	if m.HorizontalRange < 0.12 || m.HorizontalRange <= m.VerticalRange {
		return 0.1
	}
	c := mediumConfidence
	if m.HorizontalRange > 0.25 {
		c += 0.10
	}
	if m.OscillationCount <= 2 {
		c += 0.10 // one take-off and one landing, not repeated travel
	}
	if m.DurationSecs >= minSprintDuration {
		c -= 0.15 // sustained movement reads as running work
	}
	if m.TorsoAngleDelta > 60 {
		c -= 0.15
	}
	return clamp(c, 0, highConfidence+0.1)
}

// sprintScore: sustained horizontal displacement over multiple seconds.
func sprintScore(m features.Movement) float64 {
	if m.HorizontalRange < 0.2 || m.DurationSecs < minSprintDuration {
		return 0.1
	}
	c := mediumConfidence
	if m.HorizontalRange > 0.4 {
		c += 0.15
	}
	if m.HorizontalRange > m.VerticalRange*2 {
		c += 0.05
	}
	if m.OscillationCount >= 3 {
		c -= 0.25 // direction reversals belong to shuttle laps
	}
	return clamp(c, 0, highConfidence+0.1)
}

// shuttleScore: repeated horizontal laps with direction reversals at the
// turn lines.
func shuttleScore(m features.Movement) float64 {
	if m.HorizontalRange < 0.2 || m.OscillationCount < 3 {
		return 0.1
	}
	c := mediumConfidence
	if m.OscillationCount >= 4 {
		c += 0.10
	}
	if m.HorizontalRange > m.VerticalRange*2 {
		c += 0.05
	}
	if m.DurationSecs < 2 {
		c -= 0.15
	}
	return clamp(c, 0, highConfidence+0.1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

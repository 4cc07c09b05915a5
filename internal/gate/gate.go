// Package gate implements the full-body visibility check run before any
// movement analysis. It is the cheapest stage and the most common
// rejection reason (selfie framing showing only face and torso), so it
// short-circuits the rest of the gating phase.
package gate

import "github.com/repwise-data/repwise/internal/pose"

// DefaultConfidenceFloor is the per-landmark visibility floor applied
// when no override is configured. Empirically chosen, not validated.
const DefaultConfidenceFloor = 0.5

// Result reports per-group visibility for a frame or clip.
type Result struct {
	Present       bool                   `json:"present"`
	MissingGroups []pose.Group           `json:"missing_groups,omitempty"`
	Confidence    map[pose.Group]float64 `json:"per_group_confidence"`
}

// ValidateFrame checks a single frame: every required bilateral group must
// have at least one side at or above floor.
func ValidateFrame(f *pose.Frame, floor float64) Result {
	res := Result{
		Present:    true,
		Confidence: make(map[pose.Group]float64, len(pose.RequiredGroups)),
	}
	for _, g := range pose.RequiredGroups {
		sides := pose.GroupSides[g]
		left := f.Point(sides[0]).Confidence
		right := f.Point(sides[1]).Confidence
		best := left
		if right > best {
			best = right
		}
		res.Confidence[g] = best
		if best < floor {
			res.Present = false
			res.MissingGroups = append(res.MissingGroups, g)
		}
	}
	return res
}

// Validate checks a whole clip. Per-group confidence is the mean of the
// per-frame best-side confidence, so a group that flickers below the
// floor on a few frames still passes while one that is never visible
// fails with its name reported.
func Validate(h *pose.History, floor float64) Result {
	res := Result{
		Present:    true,
		Confidence: make(map[pose.Group]float64, len(pose.RequiredGroups)),
	}
	if h.Len() == 0 {
		res.Present = false
		res.MissingGroups = append(res.MissingGroups, pose.RequiredGroups...)
		return res
	}

	for _, g := range pose.RequiredGroups {
		sides := pose.GroupSides[g]
		var sum float64
		for i := 0; i < h.Len(); i++ {
			f := h.At(i)
			left := f.Point(sides[0]).Confidence
			right := f.Point(sides[1]).Confidence
			if right > left {
				sum += right
			} else {
				sum += left
			}
		}
		mean := sum / float64(h.Len())
		res.Confidence[g] = mean
		if mean < floor {
			res.Present = false
			res.MissingGroups = append(res.MissingGroups, g)
		}
	}
	return res
}

// Package attempt orchestrates the clip-level gating phase of one exercise
// attempt: full-body visibility, movement feature extraction, and exercise
// classification against the user's declared exercise. Streaming rep
// counting only starts once gating has passed.
package attempt

import (
	"context"
	"fmt"
	"strings"

	"github.com/repwise-data/repwise/internal/assets"
	"github.com/repwise-data/repwise/internal/classify"
	"github.com/repwise-data/repwise/internal/config"
	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/features"
	"github.com/repwise-data/repwise/internal/gate"
	"github.com/repwise-data/repwise/internal/monitoring"
	"github.com/repwise-data/repwise/internal/pose"
)

// Details echoes the measurements behind a gating verdict so a rejected
// user can self-correct.
type Details struct {
	MissingGroups   []pose.Group           `json:"missing_groups,omitempty"`
	GroupConfidence map[pose.Group]float64 `json:"per_group_confidence,omitempty"`
	Features        *features.Movement     `json:"features,omitempty"`
}

// ValidationResult is the immutable outcome of the gating phase.
type ValidationResult struct {
	Valid          bool             `json:"valid"`
	Kind           ErrorKind        `json:"error_kind,omitempty"`
	Message        string           `json:"message,omitempty"`
	Confidence     float64          `json:"confidence"`
	Details        Details          `json:"details"`
	Classification *classify.Result `json:"classification,omitempty"`
}

// Gate runs the gating phase. Construct with NewGate; the asset manager is
// optional for tests that exercise gating logic alone.
type Gate struct {
	cfg    *config.TuningConfig
	assets *assets.Manager
}

// NewGate creates a Gate. cfg must be non-nil; assets may be nil to skip
// the model-asset precondition.
func NewGate(cfg *config.TuningConfig, mgr *assets.Manager) *Gate {
	return &Gate{cfg: cfg, assets: mgr}
}

// Run validates one recorded history against the declared exercise.
// A non-nil *Error return is terminal for the attempt; the returned
// ValidationResult carries the diagnostic payload either way.
func (g *Gate) Run(ctx context.Context, h *pose.History, declared exercise.Family) (*ValidationResult, error) {
	if g.assets != nil {
		if err := g.assets.Preload(ctx, g.cfg.GetRequiredAssets()); err != nil {
			monitoring.Logf("gating aborted: %v", err)
			return nil, &Error{
				Kind:    ModelLoadFailure,
				Message: "required model assets could not be loaded",
				Cause:   err,
			}
		}
	}

	floor := g.cfg.GetConfidenceFloor()
	visibility := gate.Validate(h, floor)
	res := &ValidationResult{
		Confidence: meanConfidence(visibility.Confidence),
		Details: Details{
			MissingGroups:   visibility.MissingGroups,
			GroupConfidence: visibility.Confidence,
		},
	}

	if !visibility.Present {
		res.Kind = FullBodyNotVisible
		res.Message = fmt.Sprintf("full body not visible: %s below confidence floor %.2f",
			groupList(visibility.MissingGroups), floor)
		return res, &Error{Kind: FullBodyNotVisible, Message: res.Message}
	}

	mv := features.Extract(h)
	res.Details.Features = &mv

	if mv.Pattern == features.PatternStatic {
		res.Kind = InsufficientMovement
		res.Message = fmt.Sprintf(
			"no significant movement detected (vertical range %.3f, horizontal range %.3f)",
			mv.VerticalRange, mv.HorizontalRange)
		return res, &Error{Kind: InsufficientMovement, Message: res.Message}
	}

	cls := classify.Classify(mv, declared)
	res.Classification = &cls
	res.Confidence = cls.Confidence

	if !cls.MatchesDeclared {
		res.Kind = ExerciseMismatch
		res.Message = fmt.Sprintf("you appear to be doing %s (confidence %.2f), not %s",
			cls.Detected, cls.Confidence, declared)
		return res, &Error{Kind: ExerciseMismatch, Message: res.Message}
	}

	if msg, ok := belowMinimums(g.cfg.ThresholdsFor(declared), declared, mv); ok {
		res.Kind = InsufficientMovement
		res.Message = msg
		return res, &Error{Kind: InsufficientMovement, Message: msg}
	}

	res.Valid = true
	return res, nil
}

// belowMinimums checks the declared family's configured movement minimums
// once the motion is known to match the declared exercise.
func belowMinimums(th exercise.Thresholds, declared exercise.Family, mv features.Movement) (string, bool) {
	spec, ok := exercise.SpecFor(declared)
	if !ok {
		return "", false
	}

	if th.MinPrimaryAngleDelta > 0 {
		delta := primaryDelta(spec.Joint, mv)
		if delta < th.MinPrimaryAngleDelta {
			return fmt.Sprintf("%s range of motion too small: %.0f° of %s movement, need at least %.0f°",
				declared, delta, spec.Joint, th.MinPrimaryAngleDelta), true
		}
	}
	if th.MinVerticalRange > 0 && mv.VerticalRange < th.MinVerticalRange {
		return fmt.Sprintf("%s vertical movement too small: %.3f, need at least %.3f",
			declared, mv.VerticalRange, th.MinVerticalRange), true
	}
	if th.MinHorizontalRange > 0 && mv.HorizontalRange < th.MinHorizontalRange {
		return fmt.Sprintf("%s horizontal movement too small: %.3f, need at least %.3f",
			declared, mv.HorizontalRange, th.MinHorizontalRange), true
	}
	return "", false
}

func primaryDelta(j exercise.Joint, mv features.Movement) float64 {
	switch j {
	case exercise.JointTorso:
		return mv.TorsoAngleDelta
	case exercise.JointElbow:
		return mv.ElbowAngleDelta
	case exercise.JointKnee:
		return mv.KneeAngleDelta
	}
	return 0
}

func meanConfidence(byGroup map[pose.Group]float64) float64 {
	if len(byGroup) == 0 {
		return 0
	}
	var sum float64
	for _, c := range byGroup {
		sum += c
	}
	return sum / float64(len(byGroup))
}

func groupList(groups []pose.Group) string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

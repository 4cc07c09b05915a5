package attempt

import (
	"fmt"

	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/reps"
)

// Severity levels for user-facing feedback entries.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Feedback is one user-facing message attached to a final attempt result.
type Feedback struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ratingBand maps a rep count floor to a performance label.
type ratingBand struct {
	minReps int
	label   string
}

// Rep-count rating bands, from the sit-up counter's young-adult standards
// scaled to a single short attempt.
var ratingBands = map[exercise.Family][]ratingBand{
	exercise.Situp:      {{30, "excellent"}, {20, "good"}, {12, "average"}, {6, "below average"}},
	exercise.Pushup:     {{25, "excellent"}, {18, "good"}, {10, "average"}, {5, "below average"}},
	exercise.Squat:      {{30, "excellent"}, {22, "good"}, {14, "average"}, {7, "below average"}},
	exercise.Jump:       {{12, "excellent"}, {8, "good"}, {5, "average"}, {2, "below average"}},
	exercise.BroadJump:  {{3, "excellent"}, {2, "good"}, {1, "average"}},
	exercise.Sprint:     {{6, "excellent"}, {4, "good"}, {2, "average"}, {1, "below average"}},
	exercise.ShuttleRun: {{8, "excellent"}, {6, "good"}, {4, "average"}, {2, "below average"}},
}

// Rating returns the performance label for a finished attempt.
func Rating(f exercise.Family, repCount int) string {
	for _, band := range ratingBands[f] {
		if repCount >= band.minReps {
			return band.label
		}
	}
	return "needs improvement"
}

// Summarize converts a finalized rep-counting summary into the feedback
// entries surfaced with the final result.
func Summarize(s reps.Summary) []Feedback {
	fb := []Feedback{
		{
			Message:  fmt.Sprintf("%d %s repetitions counted", s.RepCount, s.Family),
			Severity: SeverityInfo,
		},
		{
			Message:  fmt.Sprintf("performance rating: %s", Rating(s.Family, s.RepCount)),
			Severity: ratingSeverity(s.Family, s.RepCount),
		},
	}

	switch {
	case s.RepCount == 0:
		fb = append(fb, Feedback{
			Message:  "no complete repetitions detected; make sure each rep returns to the starting position",
			Severity: SeverityWarning,
		})
	case s.FormQuality >= 80:
		fb = append(fb, Feedback{
			Message:  fmt.Sprintf("great form (quality %.0f/100)", s.FormQuality),
			Severity: SeveritySuccess,
		})
	case s.FormQuality < 50:
		fb = append(fb, Feedback{
			Message:  fmt.Sprintf("form quality %.0f/100; focus on full range of motion and keeping both sides even", s.FormQuality),
			Severity: SeverityWarning,
		})
	default:
		fb = append(fb, Feedback{
			Message:  fmt.Sprintf("form quality %.0f/100", s.FormQuality),
			Severity: SeverityInfo,
		})
	}

	if s.RepCount > 0 && s.Posture < 0.6 {
		fb = append(fb, Feedback{
			Message:  "posture dropped during the attempt; keep your body line straight",
			Severity: SeverityWarning,
		})
	}

	return fb
}

func ratingSeverity(f exercise.Family, repCount int) Severity {
	switch Rating(f, repCount) {
	case "excellent", "good":
		return SeveritySuccess
	case "needs improvement":
		return SeverityWarning
	}
	return SeverityInfo
}

package attempt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repwise-data/repwise/internal/assets"
	"github.com/repwise-data/repwise/internal/config"
	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/fsutil"
	"github.com/repwise-data/repwise/internal/pose"
	"github.com/repwise-data/repwise/internal/testutil"
)

func testGate() *Gate {
	return NewGate(config.EmptyTuningConfig(), nil)
}

// selfieHistory builds frames where only the upper body clears the
// confidence floor, the typical too-close framing.
func selfieHistory(n int) *pose.History {
	h := pose.NewHistory(n)
	ts := time.Unix(0, 0)
	for i := 0; i < n; i++ {
		f := testutil.VisibleFrame(0.9)
		for _, id := range []pose.LandmarkID{
			pose.LeftHip, pose.RightHip,
			pose.LeftKnee, pose.RightKnee,
			pose.LeftAnkle, pose.RightAnkle,
		} {
			f.Points[id].Confidence = 0.05
		}
		f.Timestamp = ts
		ts = ts.Add(testutil.FrameInterval)
		h.Append(f)
	}
	return h
}

func TestGateValidTrunkFlexion(t *testing.T) {
	angles := testutil.OscillateAngles(165, 55, 6, 8)
	h := testutil.TorsoAngleHistory(angles)

	res, err := testGate().Run(context.Background(), h, exercise.Situp)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.NotNil(t, res.Classification)
	assert.True(t, res.Classification.MatchesDeclared)
	assert.Equal(t, exercise.Situp, res.Classification.Detected)
}

func TestGateValidBroadJump(t *testing.T) {
	h := testutil.BroadJumpHistory(0.35, 40)

	res, err := testGate().Run(context.Background(), h, exercise.BroadJump)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.NotNil(t, res.Classification)
	assert.Equal(t, exercise.BroadJump, res.Classification.Detected)
}

func TestGateSelfieFramingRejected(t *testing.T) {
	res, err := testGate().Run(context.Background(), selfieHistory(30), exercise.Situp)
	require.Error(t, err)
	assert.Equal(t, FullBodyNotVisible, KindOf(err))
	assert.False(t, res.Valid)
	assert.ElementsMatch(t,
		[]pose.Group{pose.GroupHips, pose.GroupKnees, pose.GroupAnkles},
		res.Details.MissingGroups)
	assert.Contains(t, res.Message, "hips")
}

func TestGateStaticSubjectRejected(t *testing.T) {
	res, err := testGate().Run(context.Background(), testutil.StaticHistory(60), exercise.Squat)
	require.Error(t, err)
	assert.Equal(t, InsufficientMovement, KindOf(err))
	assert.False(t, res.Valid)
	require.NotNil(t, res.Details.Features)
}

func TestGateExerciseMismatch(t *testing.T) {
	h := testutil.VerticalJumpHistory(0.18, 4, 20)

	res, err := testGate().Run(context.Background(), h, exercise.Situp)
	require.Error(t, err)
	assert.Equal(t, ExerciseMismatch, KindOf(err))
	require.NotNil(t, res.Classification)
	assert.Equal(t, exercise.Jump, res.Classification.Detected)
	assert.Contains(t, res.Message, string(exercise.Jump))
}

func TestGateShallowDeclaredMovementRejected(t *testing.T) {
	// Matches the declared family but never reaches the configured
	// minimum range of motion.
	angles := testutil.OscillateAngles(165, 125, 6, 8)
	h := testutil.TorsoAngleHistory(angles)

	_, err := testGate().Run(context.Background(), h, exercise.Situp)
	require.Error(t, err)
	assert.Equal(t, InsufficientMovement, KindOf(err))
}

func TestGateModelLoadFailureBlocksGating(t *testing.T) {
	// Empty cache and no fetcher: loading must fail and gating must not
	// run any analysis.
	mgr := assets.NewManager(assets.NewFileStore(fsutil.NewMemoryFileSystem(), "assets"), nil)
	g := NewGate(config.EmptyTuningConfig(), mgr)

	angles := testutil.OscillateAngles(165, 55, 6, 8)
	res, err := g.Run(context.Background(), testutil.TorsoAngleHistory(angles), exercise.Situp)
	require.Error(t, err)
	assert.Equal(t, ModelLoadFailure, KindOf(err))
	assert.Nil(t, res)
}

func TestKindOf(t *testing.T) {
	err := &Error{Kind: ExerciseMismatch, Message: "detected vertical_jump"}
	assert.Equal(t, ExerciseMismatch, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("fetch failed")
	err := &Error{Kind: ModelLoadFailure, Message: "asset missing", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "model_load_failure")
	assert.Contains(t, err.Error(), "fetch failed")
}

// Package testutil provides shared synthetic pose fixtures.
//
// Tests across the gating, classification and rep-counting packages need
// landmark traces with known geometry (a torso folding to a target angle,
// a body rising and falling). This package centralises those builders so
// each test states intent, not trigonometry.
package testutil

import (
	"math"
	"time"

	"github.com/repwise-data/repwise/internal/pose"
)

// FrameInterval is the synthetic capture cadence (30 fps).
const FrameInterval = 33 * time.Millisecond

// VisibleFrame returns a frame with every landmark at the given
// confidence, laid out as an upright standing body centred in frame.
func VisibleFrame(confidence float64) pose.Frame {
	var f pose.Frame
	set := func(id pose.LandmarkID, x, y float64) {
		f.Points[id] = pose.Point{X: x, Y: y, Confidence: confidence}
	}
	set(pose.Nose, 0.50, 0.10)
	set(pose.LeftShoulder, 0.45, 0.25)
	set(pose.RightShoulder, 0.55, 0.25)
	set(pose.LeftElbow, 0.42, 0.40)
	set(pose.RightElbow, 0.58, 0.40)
	set(pose.LeftWrist, 0.40, 0.55)
	set(pose.RightWrist, 0.60, 0.55)
	set(pose.LeftHip, 0.46, 0.55)
	set(pose.RightHip, 0.54, 0.55)
	set(pose.LeftKnee, 0.46, 0.75)
	set(pose.RightKnee, 0.54, 0.75)
	set(pose.LeftAnkle, 0.46, 0.95)
	set(pose.RightAnkle, 0.54, 0.95)
	return f
}

// TorsoAngleFrame returns a full-confidence frame whose shoulder-hip-knee
// angle equals angleDeg on both sides. Hip, knee and ankle stay fixed;
// the shoulders (and arms above them) rotate about the hip.
func TorsoAngleFrame(angleDeg float64, ts time.Time) pose.Frame {
	f := VisibleFrame(0.95)
	f.Timestamp = ts

	hip := pose.Point{X: 0.50, Y: 0.60}
	knee := pose.Point{X: 0.62, Y: 0.72}
	ankle := pose.Point{X: 0.74, Y: 0.84}
	const torsoLen = 0.25

	// Direction hip→knee, rotated by angleDeg, gives the hip→shoulder ray.
	base := math.Atan2(knee.Y-hip.Y, knee.X-hip.X)
	dir := base - angleDeg*math.Pi/180
	sx := hip.X + torsoLen*math.Cos(dir)
	sy := hip.Y + torsoLen*math.Sin(dir)

	setBoth := func(l, r pose.LandmarkID, x, y float64) {
		f.Points[l] = pose.Point{X: x - 0.02, Y: y, Confidence: 0.95}
		f.Points[r] = pose.Point{X: x + 0.02, Y: y, Confidence: 0.95}
	}
	setBoth(pose.LeftShoulder, pose.RightShoulder, sx, sy)
	setBoth(pose.LeftElbow, pose.RightElbow, sx, sy+0.08)
	setBoth(pose.LeftWrist, pose.RightWrist, sx, sy+0.16)
	setBoth(pose.LeftHip, pose.RightHip, hip.X, hip.Y)
	setBoth(pose.LeftKnee, pose.RightKnee, knee.X, knee.Y)
	setBoth(pose.LeftAnkle, pose.RightAnkle, ankle.X, ankle.Y)
	f.Points[pose.Nose] = pose.Point{X: sx, Y: sy - 0.08, Confidence: 0.95}
	return f
}

// TorsoAngleHistory builds a clip whose torso angle follows the given
// sequence, one frame per value, at FrameInterval cadence.
func TorsoAngleHistory(angles []float64) *pose.History {
	h := pose.NewHistory(len(angles))
	ts := time.Unix(0, 0)
	for _, a := range angles {
		h.Append(TorsoAngleFrame(a, ts))
		ts = ts.Add(FrameInterval)
	}
	return h
}

// OscillateAngles produces cycles of extended→flexed→extended angles:
// each cycle ramps from high to low and back in the given number of
// steps per half-cycle.
func OscillateAngles(high, low float64, cycles, stepsPerHalf int) []float64 {
	var out []float64
	for c := 0; c < cycles; c++ {
		for s := 0; s <= stepsPerHalf; s++ {
			out = append(out, high-(high-low)*float64(s)/float64(stepsPerHalf))
		}
		for s := 1; s <= stepsPerHalf; s++ {
			out = append(out, low+(high-low)*float64(s)/float64(stepsPerHalf))
		}
	}
	return out
}

// VerticalJumpHistory builds a clip where the whole body translates
// vertically by amplitude (normalized units) over the given cycle count,
// with negligible horizontal drift.
func VerticalJumpHistory(amplitude float64, cycles, framesPerCycle int) *pose.History {
	total := cycles * framesPerCycle
	h := pose.NewHistory(total)
	ts := time.Unix(0, 0)
	for i := 0; i < total; i++ {
		phase := 2 * math.Pi * float64(i) / float64(framesPerCycle)
		dy := -amplitude / 2 * (1 - math.Cos(phase)) // 0 → -amplitude → 0
		f := VisibleFrame(0.95)
		f.Timestamp = ts
		for id := pose.LandmarkID(0); id < pose.NumLandmarks; id++ {
			f.Points[id].Y += dy
		}
		h.Append(f)
		ts = ts.Add(FrameInterval)
	}
	return h
}

// PushupFrame returns a plank-position frame with the given elbow angle
// on both sides and the given shoulder-hip-knee angle (180 = straight
// body line, lower values sag at the hip).
func PushupFrame(elbowDeg, bodyLineDeg float64, ts time.Time) pose.Frame {
	f := VisibleFrame(0.95)
	f.Timestamp = ts

	shoulder := pose.Point{X: 0.30, Y: 0.50}
	hip := pose.Point{X: 0.55, Y: 0.50}

	// Knee placed so the angle at the hip equals bodyLineDeg.
	hipToShoulder := math.Atan2(shoulder.Y-hip.Y, shoulder.X-hip.X)
	kneeDir := hipToShoulder - bodyLineDeg*math.Pi/180
	knee := pose.Point{X: hip.X + 0.20*math.Cos(kneeDir), Y: hip.Y + 0.20*math.Sin(kneeDir)}
	ankle := pose.Point{X: knee.X + 0.18*math.Cos(kneeDir), Y: knee.Y + 0.18*math.Sin(kneeDir)}

	// Elbow hangs below the shoulder; the wrist direction sets the angle.
	elbow := pose.Point{X: shoulder.X, Y: shoulder.Y + 0.12}
	elbowToShoulder := math.Atan2(shoulder.Y-elbow.Y, shoulder.X-elbow.X)
	wristDir := elbowToShoulder + elbowDeg*math.Pi/180
	wrist := pose.Point{X: elbow.X + 0.12*math.Cos(wristDir), Y: elbow.Y + 0.12*math.Sin(wristDir)}

	setBoth := func(l, r pose.LandmarkID, p pose.Point) {
		p.Confidence = 0.95
		f.Points[l] = p
		p.X += 0.01
		f.Points[r] = p
	}
	setBoth(pose.LeftShoulder, pose.RightShoulder, shoulder)
	setBoth(pose.LeftElbow, pose.RightElbow, elbow)
	setBoth(pose.LeftWrist, pose.RightWrist, wrist)
	setBoth(pose.LeftHip, pose.RightHip, hip)
	setBoth(pose.LeftKnee, pose.RightKnee, knee)
	setBoth(pose.LeftAnkle, pose.RightAnkle, ankle)
	f.Points[pose.Nose] = pose.Point{X: shoulder.X - 0.06, Y: shoulder.Y - 0.02, Confidence: 0.95}
	return f
}

// StaticHistory builds a clip of n identical full-visibility frames.
func StaticHistory(n int) *pose.History {
	h := pose.NewHistory(n)
	ts := time.Unix(0, 0)
	for i := 0; i < n; i++ {
		f := VisibleFrame(0.95)
		f.Timestamp = ts
		h.Append(f)
		ts = ts.Add(FrameInterval)
	}
	return h
}

// BroadJumpHistory builds a clip of one standing long jump: the body
// travels the given horizontal distance (normalized units) through a
// brief flight arc, then holds the landing position for the remaining
// frames.
func BroadJumpHistory(distance float64, frames int) *pose.History {
	h := pose.NewHistory(frames)
	ts := time.Unix(0, 0)
	flight := frames * 7 / 10
	for i := 0; i < frames; i++ {
		var dx, dy float64
		if i < flight {
			progress := float64(i) / float64(flight-1)
			dx = distance * progress
			dy = -0.08 * math.Sin(math.Pi*progress)
		} else {
			dx = distance
		}
		f := VisibleFrame(0.95)
		f.Timestamp = ts
		for id := pose.LandmarkID(0); id < pose.NumLandmarks; id++ {
			f.Points[id].X += dx
			f.Points[id].Y += dy
		}
		h.Append(f)
		ts = ts.Add(FrameInterval)
	}
	return h
}

// ShuttleRunHistory builds a clip where the body runs back and forth
// between two lines: laps one-way trips of framesPerLap frames each,
// with light vertical bounce.
func ShuttleRunHistory(laps, framesPerLap int) *pose.History {
	total := laps * framesPerLap
	h := pose.NewHistory(total)
	ts := time.Unix(0, 0)
	for i := 0; i < total; i++ {
		lap := i / framesPerLap
		progress := float64(i%framesPerLap) / float64(framesPerLap-1)
		if lap%2 == 1 {
			progress = 1 - progress
		}
		dx := -0.25 + 0.5*progress
		dy := 0.015 * math.Sin(2*math.Pi*float64(i)/8)
		f := VisibleFrame(0.95)
		f.Timestamp = ts
		for id := pose.LandmarkID(0); id < pose.NumLandmarks; id++ {
			f.Points[id].X += dx
			f.Points[id].Y += dy
		}
		h.Append(f)
		ts = ts.Add(FrameInterval)
	}
	return h
}

// SprintHistory builds a clip where the body sweeps horizontally across
// the frame with light vertical bounce, sustained over the clip duration.
func SprintHistory(frames int) *pose.History {
	h := pose.NewHistory(frames)
	ts := time.Unix(0, 0)
	for i := 0; i < frames; i++ {
		progress := float64(i) / float64(frames-1)
		dx := -0.35 + 0.7*progress
		dy := 0.015 * math.Sin(2*math.Pi*float64(i)/8)
		f := VisibleFrame(0.95)
		f.Timestamp = ts
		for id := pose.LandmarkID(0); id < pose.NumLandmarks; id++ {
			f.Points[id].X += dx
			f.Points[id].Y += dy
		}
		h.Append(f)
		ts = ts.Add(FrameInterval)
	}
	return h
}

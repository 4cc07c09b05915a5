package pose

import "math"

// angleEpsilon guards the cosine denominator against zero-length vectors.
const angleEpsilon = 1e-6

// JointAngle computes the angle at b formed by the segments b→a and b→c,
// in degrees [0, 180]. Degenerate inputs (coincident points) yield 0.
func JointAngle(a, b, c Point) float64 {
	bax, bay := a.X-b.X, a.Y-b.Y
	bcx, bcy := c.X-b.X, c.Y-b.Y

	dot := bax*bcx + bay*bcy
	norm := math.Hypot(bax, bay) * math.Hypot(bcx, bcy)
	if norm < angleEpsilon {
		return 0
	}
	cos := dot / norm
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// KneeAngle is the hip-knee-ankle angle for one side: ~180° standing,
// small when deeply bent.
func (f *Frame) KneeAngle(left bool) float64 {
	if left {
		return JointAngle(f.Points[LeftHip], f.Points[LeftKnee], f.Points[LeftAnkle])
	}
	return JointAngle(f.Points[RightHip], f.Points[RightKnee], f.Points[RightAnkle])
}

// ElbowAngle is the shoulder-elbow-wrist angle for one side.
func (f *Frame) ElbowAngle(left bool) float64 {
	if left {
		return JointAngle(f.Points[LeftShoulder], f.Points[LeftElbow], f.Points[LeftWrist])
	}
	return JointAngle(f.Points[RightShoulder], f.Points[RightElbow], f.Points[RightWrist])
}

// TorsoAngle is the shoulder-hip-knee angle for one side: ~180° lying flat
// or standing upright, small when the trunk is folded toward the knees.
func (f *Frame) TorsoAngle(left bool) float64 {
	if left {
		return JointAngle(f.Points[LeftShoulder], f.Points[LeftHip], f.Points[LeftKnee])
	}
	return JointAngle(f.Points[RightShoulder], f.Points[RightHip], f.Points[RightKnee])
}

// HipSagAngle is the shoulder-hip-knee angle averaged over both sides,
// used as the posture-integrity signal for plank-like holds.
func (f *Frame) HipSagAngle() float64 {
	return (f.TorsoAngle(true) + f.TorsoAngle(false)) / 2
}

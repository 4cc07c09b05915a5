package pose

import "time"

// Point is one detected landmark position. Coordinates are normalized to
// the frame dimensions ([0,1] on each axis, origin top-left, Y down) so the
// pipeline is resolution independent. Z is optional depth in the same scale;
// zero when the detector is 2D. Confidence is the detector's visibility
// score in [0,1].
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Frame is one landmark sample. Immutable once captured: stages read it,
// none of them write it.
type Frame struct {
	Timestamp time.Time           `json:"timestamp"`
	Points    [NumLandmarks]Point `json:"points"`
}

// Point returns the landmark, or a zero Point for an invalid id.
func (f *Frame) Point(id LandmarkID) Point {
	if !id.Valid() {
		return Point{}
	}
	return f.Points[id]
}

// Visible reports whether the landmark's confidence meets the floor.
func (f *Frame) Visible(id LandmarkID, floor float64) bool {
	return f.Point(id).Confidence >= floor
}

// HipCentroid is the midpoint of the two hips, the representative body
// point used for range-of-motion and displacement features.
func (f *Frame) HipCentroid() Point {
	l, r := f.Points[LeftHip], f.Points[RightHip]
	return Point{
		X:          (l.X + r.X) / 2,
		Y:          (l.Y + r.Y) / 2,
		Z:          (l.Z + r.Z) / 2,
		Confidence: minf(l.Confidence, r.Confidence),
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

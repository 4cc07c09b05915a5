// Package pose defines the strongly-typed landmark data model shared by
// the gating, classification and rep-counting stages. Landmarks arrive
// from an external pose-detection model as normalized coordinates with
// per-point confidence; everything downstream indexes them by LandmarkID
// so a missing or renamed landmark is a compile-time error, not a silent
// zero read.
package pose

// LandmarkID identifies one anatomical point.
type LandmarkID int

const (
	Nose LandmarkID = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle

	// NumLandmarks is the count of known landmark IDs.
	NumLandmarks
)

var landmarkNames = [NumLandmarks]string{
	Nose:          "nose",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftElbow:     "left_elbow",
	RightElbow:    "right_elbow",
	LeftWrist:     "left_wrist",
	RightWrist:    "right_wrist",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
	LeftKnee:      "left_knee",
	RightKnee:     "right_knee",
	LeftAnkle:     "left_ankle",
	RightAnkle:    "right_ankle",
}

// String returns the snake_case landmark name used in wire payloads and logs.
func (id LandmarkID) String() string {
	if id < 0 || id >= NumLandmarks {
		return "unknown"
	}
	return landmarkNames[id]
}

// Valid reports whether id names a known landmark.
func (id LandmarkID) Valid() bool {
	return id >= 0 && id < NumLandmarks
}

// ParseLandmarkID maps a snake_case name back to its LandmarkID.
// Returns NumLandmarks and false for unknown names.
func ParseLandmarkID(name string) (LandmarkID, bool) {
	for id, n := range landmarkNames {
		if n == name {
			return LandmarkID(id), true
		}
	}
	return NumLandmarks, false
}

// Group is a bilateral anatomical group checked by the full-body gate.
type Group string

const (
	GroupShoulders Group = "shoulders"
	GroupElbows    Group = "elbows"
	GroupWrists    Group = "wrists"
	GroupHips      Group = "hips"
	GroupKnees     Group = "knees"
	GroupAnkles    Group = "ankles"
)

// GroupSides maps each bilateral group to its left/right landmark pair.
var GroupSides = map[Group][2]LandmarkID{
	GroupShoulders: {LeftShoulder, RightShoulder},
	GroupElbows:    {LeftElbow, RightElbow},
	GroupWrists:    {LeftWrist, RightWrist},
	GroupHips:      {LeftHip, RightHip},
	GroupKnees:     {LeftKnee, RightKnee},
	GroupAnkles:    {LeftAnkle, RightAnkle},
}

// RequiredGroups lists the groups the full-body gate checks, in the order
// missing groups are reported.
var RequiredGroups = []Group{
	GroupShoulders,
	GroupElbows,
	GroupWrists,
	GroupHips,
	GroupKnees,
	GroupAnkles,
}

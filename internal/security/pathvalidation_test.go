package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAssetName(t *testing.T) {
	valid := []string{
		"pose_detector.tflite",
		"pose_landmarks.json",
		"model-v2.bin",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateAssetName(name), name)
	}

	invalid := []string{
		"",
		".",
		"..",
		"../pose_detector.tflite",
		"models/pose_detector.tflite",
		`models\pose_detector.tflite`,
		"a/../b",
		"./model.bin",
	}
	for _, name := range invalid {
		assert.Error(t, ValidateAssetName(name), name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"pose_detector.tflite", "pose_detector.tflite"},
		{"attempt 42: situp", "attempt_42_situp"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"///", "unknown"},
		{"trace<>|chart", "trace_chart"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), tc.in)
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	got := SanitizeFilename(string(long))
	assert.LessOrEqual(t, len(got), 128)
	assert.NotEmpty(t, got)
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/repwise-data/repwise/internal/exercise"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root tuning surface for the analysis pipeline.
// Fields are pointers so a partial JSON file overrides only what it
// names; the Get* accessors supply defaults for everything else.
type TuningConfig struct {
	// ConfidenceFloor is the per-landmark visibility floor used by the
	// full-body gate and the rep machines.
	ConfidenceFloor *float64 `json:"confidence_floor,omitempty"`

	// StreamWindow is the sliding-window capacity (frames) held during
	// the streaming phase.
	StreamWindow *int `json:"stream_window,omitempty"`

	// FrameBuffer is the offload worker's frame queue depth; frames
	// beyond it are dropped oldest-first.
	FrameBuffer *int `json:"frame_buffer,omitempty"`

	// RequiredAssets lists the detector model assets that must be
	// loadable before gating can run.
	RequiredAssets []string `json:"required_assets,omitempty"`

	// Exercises holds per-family threshold overrides keyed by family
	// name (e.g. "situp").
	Exercises map[string]ExerciseTuning `json:"exercises,omitempty"`
}

// ExerciseTuning overrides one family's angle and movement thresholds.
type ExerciseTuning struct {
	FlexAngle            *float64 `json:"flex_angle,omitempty"`
	ExtendAngle          *float64 `json:"extend_angle,omitempty"`
	IdealFlexAngle       *float64 `json:"ideal_flex_angle,omitempty"`
	IdealExtendAngle     *float64 `json:"ideal_extend_angle,omitempty"`
	MinPrimaryAngleDelta *float64 `json:"min_primary_angle_delta,omitempty"`
	MinVerticalRange     *float64 `json:"min_vertical_range,omitempty"`
	MinHorizontalRange   *float64 `json:"min_horizontal_range,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are coherent.
func (c *TuningConfig) Validate() error {
	if c.ConfidenceFloor != nil {
		if *c.ConfidenceFloor < 0 || *c.ConfidenceFloor > 1 {
			return fmt.Errorf("confidence_floor must be between 0 and 1, got %f", *c.ConfidenceFloor)
		}
	}
	if c.StreamWindow != nil && *c.StreamWindow < 1 {
		return fmt.Errorf("stream_window must be positive, got %d", *c.StreamWindow)
	}
	if c.FrameBuffer != nil && *c.FrameBuffer < 1 {
		return fmt.Errorf("frame_buffer must be positive, got %d", *c.FrameBuffer)
	}

	for name := range c.Exercises {
		fam := exercise.Family(name)
		if !fam.Valid() {
			return fmt.Errorf("unknown exercise family %q in exercises", name)
		}
		th := c.ThresholdsFor(fam)
		if th.FlexAngle >= th.ExtendAngle {
			return fmt.Errorf("exercise %q: flex_angle %.1f must be below extend_angle %.1f",
				name, th.FlexAngle, th.ExtendAngle)
		}
	}
	return nil
}

// GetConfidenceFloor returns the confidence_floor value or the default.
func (c *TuningConfig) GetConfidenceFloor() float64 {
	if c.ConfidenceFloor == nil {
		return 0.5 // default
	}
	return *c.ConfidenceFloor
}

// GetStreamWindow returns the stream_window value or the default.
func (c *TuningConfig) GetStreamWindow() int {
	if c.StreamWindow == nil {
		return 90 // default: three seconds at 30 fps
	}
	return *c.StreamWindow
}

// GetFrameBuffer returns the frame_buffer value or the default.
func (c *TuningConfig) GetFrameBuffer() int {
	if c.FrameBuffer == nil {
		return 16 // default
	}
	return *c.FrameBuffer
}

// GetRequiredAssets returns the configured asset list or the default
// detector asset set.
func (c *TuningConfig) GetRequiredAssets() []string {
	if len(c.RequiredAssets) > 0 {
		return c.RequiredAssets
	}
	return []string{"pose_detector.tflite", "pose_landmarks.json"}
}

// ThresholdsFor resolves one family's thresholds: built-in defaults with
// any configured overrides applied on top.
func (c *TuningConfig) ThresholdsFor(f exercise.Family) exercise.Thresholds {
	th := exercise.DefaultThresholds(f)
	et, ok := c.Exercises[string(f)]
	if !ok {
		return th
	}
	if et.FlexAngle != nil {
		th.FlexAngle = *et.FlexAngle
	}
	if et.ExtendAngle != nil {
		th.ExtendAngle = *et.ExtendAngle
	}
	if et.IdealFlexAngle != nil {
		th.IdealFlexAngle = *et.IdealFlexAngle
	}
	if et.IdealExtendAngle != nil {
		th.IdealExtendAngle = *et.IdealExtendAngle
	}
	if et.MinPrimaryAngleDelta != nil {
		th.MinPrimaryAngleDelta = *et.MinPrimaryAngleDelta
	}
	if et.MinVerticalRange != nil {
		th.MinVerticalRange = *et.MinVerticalRange
	}
	if et.MinHorizontalRange != nil {
		th.MinHorizontalRange = *et.MinHorizontalRange
	}
	return th
}

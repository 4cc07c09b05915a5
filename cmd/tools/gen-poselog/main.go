// Command gen-poselog generates synthetic landmark recordings for testing
// the analyze endpoint. The output file is a JSON body that can be POSTed
// to /api/attempts/analyze as-is.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/pose"
	"github.com/repwise-data/repwise/internal/security"
	"github.com/repwise-data/repwise/internal/testutil"
)

type recording struct {
	Declared exercise.Family `json:"declared"`
	Frames   []pose.Frame    `json:"frames"`
}

func main() {
	output := flag.String("o", "", "output path (default <exercise>-poselog.json)")
	family := flag.String("exercise", "situp", "exercise family to synthesize")
	reps := flag.Int("n", 6, "number of repetitions")
	flag.Parse()

	declared := exercise.Family(*family)
	if !declared.Valid() {
		log.Fatalf("unknown exercise family %q", *family)
	}
	if *output == "" {
		*output = fmt.Sprintf("%s-poselog.json", security.SanitizeFilename(*family))
	}

	var h *pose.History
	switch declared {
	case exercise.Situp:
		h = testutil.TorsoAngleHistory(testutil.OscillateAngles(165, 55, *reps, 20))
	case exercise.Jump:
		h = testutil.VerticalJumpHistory(0.18, *reps, 20)
	case exercise.BroadJump:
		h = testutil.BroadJumpHistory(0.35, 40)
	case exercise.Sprint:
		h = testutil.SprintHistory(*reps * 20)
	case exercise.ShuttleRun:
		h = testutil.ShuttleRunHistory(*reps, 20)
	default:
		log.Fatalf("no synthetic generator for %q", *family)
	}

	data, err := json.MarshalIndent(recording{Declared: declared, Frames: h.Frames()}, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode recording: %v", err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *output, err)
	}
	log.Printf("✓ Created: %s (%d frames)", *output, h.Len())
}

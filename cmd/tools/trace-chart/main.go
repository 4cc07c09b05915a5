// Command trace-chart renders a recorded attempt as an HTML line chart:
// the primary joint angle per frame, with markers on counted repetitions.
// Input is the JSON format produced by gen-poselog.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/pose"
	"github.com/repwise-data/repwise/internal/reps"
)

type recording struct {
	Declared exercise.Family `json:"declared"`
	Frames   []pose.Frame    `json:"frames"`
}

// primaryAngle averages the left and right angle of the family's primary
// joint for one frame.
func primaryAngle(f *pose.Frame, joint exercise.Joint) float64 {
	switch joint {
	case exercise.JointTorso:
		return (f.TorsoAngle(true) + f.TorsoAngle(false)) / 2
	case exercise.JointElbow:
		return (f.ElbowAngle(true) + f.ElbowAngle(false)) / 2
	default:
		return (f.KneeAngle(true) + f.KneeAngle(false)) / 2
	}
}

func main() {
	input := flag.String("i", "sample-poselog.json", "input recording path")
	output := flag.String("o", "trace.html", "output HTML path")
	flag.Parse()

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}
	var rec recording
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Fatalf("failed to decode recording: %v", err)
	}
	spec, ok := exercise.SpecFor(rec.Declared)
	if !ok {
		log.Fatalf("unknown exercise family %q", rec.Declared)
	}

	machine, err := reps.NewMachine(rec.Declared, spec.Defaults, 0.5)
	if err != nil {
		log.Fatalf("failed to build rep machine: %v", err)
	}

	xAxis := make([]string, 0, len(rec.Frames))
	angles := make([]opts.LineData, 0, len(rec.Frames))
	repMarks := make([]opts.ScatterData, 0)
	for i := range rec.Frames {
		f := &rec.Frames[i]
		angle := primaryAngle(f, spec.Joint)
		xAxis = append(xAxis, fmt.Sprintf("%d", i))
		angles = append(angles, opts.LineData{Value: angle})
		if machine.Observe(f) {
			repMarks = append(repMarks, opts.ScatterData{Value: []interface{}{i, angle}})
		}
	}
	summary := machine.Finalize()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Attempt Trace", Theme: "dark", Width: "1200px", Height: "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s: %s angle", rec.Declared, spec.Joint),
			Subtitle: fmt.Sprintf("frames=%d reps=%d form=%.1f",
				len(rec.Frames), summary.RepCount, summary.FormQuality),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "angle (deg)"}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("primary angle", angles)

	scatter := charts.NewScatter()
	scatter.AddSeries("reps", repMarks, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	line.Overlap(scatter)

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer out.Close()
	if err := line.Render(out); err != nil {
		log.Fatalf("failed to render chart: %v", err)
	}
	log.Printf("✓ Created: %s (%d reps marked)", *output, summary.RepCount)
}

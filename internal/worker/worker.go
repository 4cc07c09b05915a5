// Package worker runs the computation side of an attempt on a single
// background goroutine. The capture side talks to it only through channels;
// per-attempt state (the rep machine, the attempt id) is owned exclusively
// by the worker goroutine, so per-frame analysis is strictly sequential and
// ordering-preserving.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/repwise-data/repwise/internal/attempt"
	"github.com/repwise-data/repwise/internal/config"
	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/gate"
	"github.com/repwise-data/repwise/internal/pose"
	"github.com/repwise-data/repwise/internal/reps"
)

var (
	// ErrAttemptInProgress is returned by StartAttempt while another
	// attempt is still streaming. Finalize or Reset it first.
	ErrAttemptInProgress = errors.New("an attempt is already in progress")

	// ErrNoAttempt is returned by Finalize when no attempt is streaming.
	ErrNoAttempt = errors.New("no attempt in progress")
)

// Result is the final record for one finished attempt.
type Result struct {
	AttemptID       string             `json:"attempt_id"`
	Family          exercise.Family    `json:"family"`
	RepetitionCount int                `json:"repetition_count"`
	FormQuality     float64            `json:"form_quality"`
	Feedback        []attempt.Feedback `json:"feedback"`
	Summary         reps.Summary       `json:"summary"`

	// WindowVisibility is the share of frames in the trailing stream
	// window where the full body was visible, [0,1].
	WindowVisibility float64 `json:"window_visibility"`
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdFinalize
	cmdReset
)

type command struct {
	kind     commandKind
	ctx      context.Context
	history  *pose.History
	declared exercise.Family
	reply    chan cmdReply
}

type cmdReply struct {
	validation *attempt.ValidationResult
	result     *Result
	err        error
}

// Worker is the computation offload channel. Create with New; it is running
// until Close.
type Worker struct {
	cfg  *config.TuningConfig
	gate *attempt.Gate

	cmds   chan command
	frames chan pose.Frame
	quit   chan struct{}
	done   chan struct{}

	// window holds the most recent streamed frames; owned exclusively by
	// the run goroutine.
	window *pose.Window

	closeOnce sync.Once
	dropped   atomic.Int64
}

// New creates a Worker and starts its background goroutine. The frame
// buffer size comes from the tuning config.
func New(cfg *config.TuningConfig, g *attempt.Gate) *Worker {
	w := &Worker{
		cfg:    cfg,
		gate:   g,
		cmds:   make(chan command),
		frames: make(chan pose.Frame, cfg.GetFrameBuffer()),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		window: pose.NewWindow(cfg.GetStreamWindow()),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)

	var (
		machine   *reps.Machine
		attemptID string
		family    exercise.Family
	)

	for {
		select {
		case <-w.quit:
			return

		case f := <-w.frames:
			if machine == nil {
				tracef("frame at %v arrived with no attempt armed, discarded", f.Timestamp)
				continue
			}
			w.window.Add(f)
			machine.Observe(&f)

		case cmd := <-w.cmds:
			switch cmd.kind {
			case cmdStart:
				if machine != nil {
					cmd.reply <- cmdReply{err: ErrAttemptInProgress}
					continue
				}
				res, err := w.gate.Run(cmd.ctx, cmd.history, cmd.declared)
				if err != nil {
					diagf("attempt rejected during gating: %v", err)
					cmd.reply <- cmdReply{validation: res, err: err}
					continue
				}
				m, err := reps.NewMachine(cmd.declared,
					w.cfg.ThresholdsFor(cmd.declared), w.cfg.GetConfidenceFloor())
				if err != nil {
					cmd.reply <- cmdReply{err: err}
					continue
				}
				machine = m
				attemptID = uuid.NewString()
				family = cmd.declared
				w.drainFrames(nil) // discard anything queued before this attempt
				w.window.Reset()
				diagf("attempt %s armed for %s", attemptID, family)
				cmd.reply <- cmdReply{validation: res}

			case cmdFinalize:
				if machine == nil {
					cmd.reply <- cmdReply{err: ErrNoAttempt}
					continue
				}
				w.drainFrames(machine) // queued frames count before the freeze
				summary := machine.Finalize()
				result := &Result{
					AttemptID:        attemptID,
					Family:           family,
					RepetitionCount:  summary.RepCount,
					FormQuality:      summary.FormQuality,
					Feedback:         attempt.Summarize(summary),
					Summary:          summary,
					WindowVisibility: w.windowVisibility(),
				}
				diagf("attempt %s finalized: %d reps, form %.1f, window visibility %.2f",
					attemptID, summary.RepCount, summary.FormQuality, result.WindowVisibility)
				machine = nil
				attemptID = ""
				w.window.Reset()
				cmd.reply <- cmdReply{result: result}

			case cmdReset:
				machine = nil
				attemptID = ""
				w.drainFrames(nil)
				w.window.Reset()
				diagf("per-attempt state discarded")
				cmd.reply <- cmdReply{}
			}
		}
	}
}

// drainFrames empties the frame buffer, observing each frame when a machine
// is given and discarding otherwise.
func (w *Worker) drainFrames(m *reps.Machine) {
	for {
		select {
		case f := <-w.frames:
			if m != nil {
				w.window.Add(f)
				m.Observe(&f)
			}
		default:
			return
		}
	}
}

// windowVisibility is the share of frames in the stream window where every
// required landmark group cleared the confidence floor. Run-goroutine only.
func (w *Worker) windowVisibility() float64 {
	n := w.window.Len()
	if n == 0 {
		return 0
	}
	floor := w.cfg.GetConfidenceFloor()
	visible := 0
	for i := 1; i <= n; i++ {
		if gate.ValidateFrame(w.window.Previous(i), floor).Present {
			visible++
		}
	}
	return float64(visible) / float64(n)
}

// StartAttempt runs the gating phase for the recorded history and, when it
// passes, arms frame streaming for the declared exercise. The returned
// ValidationResult carries the diagnostic payload on rejection too.
func (w *Worker) StartAttempt(ctx context.Context, h *pose.History, declared exercise.Family) (*attempt.ValidationResult, error) {
	reply, err := w.send(command{kind: cmdStart, ctx: ctx, history: h, declared: declared}, ctx)
	if err != nil {
		return nil, err
	}
	return reply.validation, reply.err
}

// SubmitFrame hands one frame to the worker without blocking. When the
// buffer is full the oldest queued frame is dropped; stale frames are
// worthless for real-time counting.
func (w *Worker) SubmitFrame(f pose.Frame) error {
	select {
	case <-w.quit:
		return unavailable("worker is not running")
	default:
	}

	select {
	case w.frames <- f:
		return nil
	default:
	}

	select {
	case <-w.frames:
		if n := w.dropped.Add(1); n == 1 || n%128 == 0 {
			opsf("frame buffer full: %d frames dropped so far", n)
		}
	default:
	}
	select {
	case w.frames <- f:
	default:
		w.dropped.Add(1)
	}
	return nil
}

// SubmitFrameWait blocks until the worker accepts the frame. Recorded clips
// replayed faster than capture cadence must not lose frames to the
// drop-oldest policy, so batch callers use this instead of SubmitFrame.
func (w *Worker) SubmitFrameWait(ctx context.Context, f pose.Frame) error {
	select {
	case <-w.quit:
		return unavailable("worker is not running")
	default:
	}

	select {
	case w.frames <- f:
		return nil
	case <-w.quit:
		return unavailable("worker is not running")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finalize freezes the in-flight attempt after processing every queued
// frame and returns its final result.
func (w *Worker) Finalize(ctx context.Context) (*Result, error) {
	reply, err := w.send(command{kind: cmdFinalize, ctx: ctx}, ctx)
	if err != nil {
		return nil, err
	}
	return reply.result, reply.err
}

// Reset atomically discards all per-attempt state and returns the worker
// to idle. Safe to call with no attempt in progress.
func (w *Worker) Reset(ctx context.Context) error {
	_, err := w.send(command{kind: cmdReset, ctx: ctx}, ctx)
	return err
}

// Dropped reports how many frames have been discarded due to backpressure.
func (w *Worker) Dropped() int64 {
	return w.dropped.Load()
}

// Close stops the background goroutine. Operations after Close surface
// ChannelUnavailable.
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.quit) })
	<-w.done
}

func (w *Worker) send(cmd command, ctx context.Context) (cmdReply, error) {
	cmd.reply = make(chan cmdReply, 1)

	select {
	case w.cmds <- cmd:
	case <-w.quit:
		return cmdReply{}, unavailable("worker is not running")
	case <-ctx.Done():
		return cmdReply{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r, nil
	case <-w.quit:
		return cmdReply{}, unavailable("worker stopped before replying")
	case <-ctx.Done():
		return cmdReply{}, ctx.Err()
	}
}

func unavailable(msg string) error {
	return &attempt.Error{Kind: attempt.ChannelUnavailable, Message: msg}
}

// internal/trial/session.go
package trial

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/pointer"
)

// SessionConfig defines one block-structured run of acquisition trials.
type SessionConfig struct {
	Modality                 Modality
	Blocks                   int
	Ring                     RingLayout
	DwellTime                time.Duration
	TrialTimeout             time.Duration
	ExcludeSaccadesFromDwell bool
}

// Validate checks the session parameters.
func (c *SessionConfig) Validate() error {
	switch c.Modality {
	case ModalityGaze, ModalityHand:
	default:
		return fmt.Errorf("trial: unknown modality %q", c.Modality)
	}
	if c.Blocks <= 0 {
		return fmt.Errorf("trial: blocks must be positive, got %d", c.Blocks)
	}
	if c.DwellTime <= 0 {
		return fmt.Errorf("trial: dwell time must be positive, got %v", c.DwellTime)
	}
	if c.TrialTimeout <= c.DwellTime {
		return fmt.Errorf("trial: timeout %v must exceed dwell time %v", c.TrialTimeout, c.DwellTime)
	}
	if c.Ring.Amplitude <= 0 || c.Ring.Width <= 0 {
		return fmt.Errorf("trial: ring amplitude and width must be positive")
	}
	return nil
}

// StreamSample is one per-tick observation emitted during a trial: the raw
// pointer position and the (possibly simulated) output consumed by the dwell
// logic.
type StreamSample struct {
	Block int
	Trial int
	At    time.Duration
	Raw   gazesim.Vector2D
	Out   gazesim.Sample
}

// Session runs synthetic acquisition trials: a generated hand-pointer stream
// is pushed through a per-trial gaze simulator (or passed through unchanged
// for the hand modality) and evaluated against dwell-based selection. The
// run is fully deterministic given seeded generator and simulator RNGs.
type Session struct {
	// ID is the generated session identifier used in logged records.
	ID string

	cfg      SessionConfig
	simCfg   gazesim.Config
	gen      *pointer.Generator
	interval time.Duration
	logger   *zap.Logger
	onSample func(StreamSample)
}

// NewSession validates both configs and builds a session. The simulator
// config is used as a template: each trial gets a fresh Simulator with the
// trial's target wired in for the adaptive noise policy.
func NewSession(cfg SessionConfig, simCfg gazesim.Config, gen *pointer.Generator, logger *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := simCfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// The hold-padding and timeout arithmetic must run on the same cadence
	// the generator samples at.
	interval := 16 * time.Millisecond
	if gen != nil {
		interval = gen.SampleInterval()
	}
	return &Session{
		ID:       uuid.NewString(),
		cfg:      cfg,
		simCfg:   simCfg,
		gen:      gen,
		interval: interval,
		logger:   logger.Named("session"),
	}, nil
}

// OnSample registers a callback receiving every per-tick observation, e.g. a
// trace writer. Must be set before Run.
func (s *Session) OnSample(fn func(StreamSample)) { s.onSample = fn }

// Run executes all blocks and returns one record per trial. It stops early
// with ctx.Err() on cancellation.
func (s *Session) Run(ctx context.Context) ([]Record, error) {
	targets := s.cfg.Ring.Targets()
	records := make([]Record, 0, s.cfg.Blocks*len(targets))

	pos := s.cfg.Ring.Center
	trialNo := 0
	for block := 1; block <= s.cfg.Blocks; block++ {
		hits := 0
		for _, target := range targets {
			if err := ctx.Err(); err != nil {
				return records, err
			}
			trialNo++
			rec, endRaw := s.runTrial(block, trialNo, pos, target)
			if rec.Correct {
				hits++
			}
			records = append(records, rec)
			pos = endRaw
		}
		s.logger.Info("block complete",
			zap.Int("block", block),
			zap.Int("trials", len(targets)),
			zap.Int("hits", hits))
	}
	return records, nil
}

// runTrial drives one movement-and-dwell trial. It returns the record and
// the raw pointer position where the trial ended, which seeds the next one.
func (s *Session) runTrial(block, trialNo int, start gazesim.Vector2D, target Target) (Record, gazesim.Vector2D) {
	amplitude := start.Dist(target.Center)

	simCfg := s.simCfg
	simCfg.TargetSize = target.Width
	tp := target.Center
	simCfg.TargetPosition = &tp

	sim := gazesim.New(simCfg, s.logger)
	sim.Enable()

	dwell := NewDwellTimer(s.cfg.DwellTime, s.cfg.ExcludeSaccadesFromDwell)
	trialStart := time.Unix(0, 0)

	points := s.gen.Move(start, target.Center, target.Width, nil)
	// Pad with a stationary hold so the dwell can complete, or the timeout
	// can genuinely elapse.
	if len(points) > 0 {
		moveEnd := points[len(points)-1]
		remaining := s.cfg.TrialTimeout - moveEnd.At
		if remaining > 0 {
			for i, hp := range s.gen.Hold(moveEnd.Pos, remaining) {
				points = append(points, pointer.TimedPoint{
					Pos: hp.Pos,
					At:  moveEnd.At + time.Duration(i+1)*s.interval,
				})
			}
		}
	}

	rec := Record{
		SessionID:  s.ID,
		Block:      block,
		Trial:      trialNo,
		Modality:   s.cfg.Modality,
		Amplitude:  amplitude,
		Width:      target.Width,
		Difficulty: IndexOfDifficulty(amplitude, target.Width),
		TargetX:    target.Center.X,
		TargetY:    target.Center.Y,
	}

	entered := false
	lastRaw := start
	var lastOut gazesim.Sample
	prevAt := time.Duration(0)

	for _, p := range points {
		if p.At > s.cfg.TrialTimeout {
			break
		}
		raw := p.Pos
		var out gazesim.Sample
		if s.cfg.Modality == ModalityGaze {
			out = sim.Update(&raw, trialStart.Add(p.At))
		} else {
			out = gazesim.Sample{Position: raw}
		}

		dt := p.At - prevAt
		prevAt = p.At
		lastRaw = raw
		lastOut = out

		if s.onSample != nil {
			s.onSample(StreamSample{Block: block, Trial: trialNo, At: p.At, Raw: raw, Out: out})
		}

		acquired := dwell.Observe(out, target, dt)
		if dwell.Inside() {
			entered = true
		}
		if acquired {
			rec.Correct = true
			rec.RTms = float64(p.At) / float64(time.Millisecond)
			break
		}
	}

	sim.Disable()

	rec.HoverMs = float64(dwell.Hover()) / float64(time.Millisecond)
	rec.EndpointX = lastOut.Position.X
	rec.EndpointY = lastOut.Position.Y

	if !rec.Correct {
		switch {
		case entered:
			rec.ErrType = OutcomeSlip
		case prevAt+s.interval >= s.cfg.TrialTimeout:
			rec.ErrType = OutcomeTimeout
		default:
			// The stream ended early without reaching the target, e.g. a
			// truncated replay trace.
			rec.ErrType = OutcomeMiss
		}
		rec.RTms = float64(prevAt) / float64(time.Millisecond)
	}

	return rec, lastRaw
}

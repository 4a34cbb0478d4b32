// internal/gazesim/simulator.go
//
// Package gazesim converts a raw, noise-free pointer stream into a
// physiologically plausible simulated eye-gaze stream: tracker lag while
// fixating, Gaussian tremor plus slow drift at rest, and saccadic suppression
// (motion blindness) during fast movements. It is used to emulate a
// gaze-tracking modality without eye-tracking hardware.
package gazesim

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// State is the saccade machine state.
type State int

const (
	// StateFixating is the initial state: output follows the raw position
	// through the smoothing filter, with tremor when genuinely still.
	StateFixating State = iota
	// StateSaccading pins the output to the position frozen at saccade onset.
	// Entered only when saccadic suppression is enabled.
	StateSaccading
)

func (s State) String() string {
	if s == StateSaccading {
		return "saccading"
	}
	return "fixating"
}

// Sample is the simulator output for one tick.
type Sample struct {
	// Position is the simulated gaze point in screen pixels.
	Position Vector2D
	// IsSaccading reports whether the output is currently frozen. Hosts may
	// exclude such samples from dwell-timer accumulation.
	IsSaccading bool
	// Velocity is the estimated raw-input velocity for this tick, in px/s, or
	// deg/s when the config sets PixelsPerDegree.
	Velocity float64
	// NoiseApplied reports whether fixation tremor or drift was injected this
	// tick.
	NoiseApplied bool
}

// Simulator owns the mutable gaze-dynamics state. It is not safe for
// concurrent use: a single goroutine (the host frame loop or a Scheduler)
// must own it, and raw samples must be processed strictly in arrival order.
// Instantiate one per trial; there is no shared instance.
type Simulator struct {
	cfg    Config
	rng    *rand.Rand
	tremor *tremorGenerator
	logger *zap.Logger

	enabled     bool
	initialized bool
	output      Vector2D
	prevRaw     *Vector2D
	prevUpdate  time.Time
	enabledAt   time.Time
	state       State
	frozen      Vector2D
}

// New creates a Simulator from a validated Config. The config is copied; the
// caller must have run Validate. A nil logger is replaced with a nop logger.
func New(cfg Config, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.NoisePolicy == "" {
		cfg.NoisePolicy = NoiseFixed
	}
	// Drift seeds derive from rng so identically seeded simulators replay
	// identical traces.
	return &Simulator{
		cfg:    cfg,
		rng:    rng,
		tremor: newTremorGenerator(rng, rng.Int63()),
		logger: logger,
		state:  StateFixating,
	}
}

// Config returns a copy of the simulator configuration.
func (s *Simulator) Config() Config { return s.cfg }

// State returns the current machine state.
func (s *Simulator) State() State { return s.state }

// Enabled reports whether the simulator is armed.
func (s *Simulator) Enabled() bool { return s.enabled }

// Enable arms the simulator. The first valid raw sample after enabling
// initializes the output to that sample exactly.
func (s *Simulator) Enable() {
	s.enabled = true
}

// Disable stops the simulation and synchronously resets all state to the
// uninitialized sentinel. No partial update is observable afterward.
func (s *Simulator) Disable() {
	s.enabled = false
	s.Reset()
}

// Reset reverts the state to the uninitialized sentinel: zero output, no
// previous raw sample, fixating, frozen snapshot cleared.
func (s *Simulator) Reset() {
	s.initialized = false
	s.output = Vector2D{}
	s.prevRaw = nil
	s.prevUpdate = time.Time{}
	s.state = StateFixating
	s.frozen = Vector2D{}
}

// Emit re-emits the last computed output without advancing the simulation.
// Render-cadence ticks between raw samples use this for display continuity.
func (s *Simulator) Emit() Sample {
	return Sample{
		Position:    s.output,
		IsSaccading: s.state == StateSaccading,
	}
}

// Update advances the simulation with one raw pointer sample observed at now.
// A nil raw position is treated as disabled for the tick: full reset, zero
// output. Invalid timing degrades to a zero-velocity tick rather than an
// error; there are no failure modes in the update path.
func (s *Simulator) Update(raw *Vector2D, now time.Time) Sample {
	if !s.enabled || raw == nil {
		s.Reset()
		return Sample{}
	}

	// First valid sample establishes a stable origin: output = raw exactly,
	// no smoothing or noise on this frame.
	if !s.initialized {
		s.initialized = true
		s.output = *raw
		prev := *raw
		s.prevRaw = &prev
		s.prevUpdate = now
		s.enabledAt = now
		s.state = StateFixating
		return Sample{Position: s.output}
	}

	elapsed := now.Sub(s.prevUpdate)
	velocity := s.estimateVelocity(*raw, elapsed)

	sample := s.step(*raw, velocity, now)

	prev := *raw
	s.prevRaw = &prev
	s.prevUpdate = now
	return sample
}

// estimateVelocity converts the displacement from the previous raw sample and
// the elapsed time into a scalar velocity. Non-positive elapsed time or a
// missing previous sample yields zero, guarding the first sample and clock
// stalls against divide-by-zero and spurious saccade triggers.
func (s *Simulator) estimateVelocity(raw Vector2D, elapsed time.Duration) float64 {
	if s.prevRaw == nil || elapsed <= 0 {
		return 0
	}
	v := s.prevRaw.Dist(raw) / elapsed.Seconds()
	if s.cfg.PixelsPerDegree > 0 {
		v /= s.cfg.PixelsPerDegree
	}
	return v
}

// step runs the saccade state machine and, while fixating, the smoothing
// filter and noise generator.
func (s *Simulator) step(raw Vector2D, velocity float64, now time.Time) Sample {
	switch s.state {
	case StateSaccading:
		if velocity <= s.cfg.SaccadeVelocityThreshold {
			// Saccade offset: vision resumes with the gaze already caught up,
			// so snap discontinuously to the current raw position.
			s.state = StateFixating
			s.frozen = Vector2D{}
			s.output = raw
			return Sample{Position: s.output, Velocity: velocity}
		}
		// Motion blindness: output stays pinned to the onset snapshot.
		s.output = s.frozen
		return Sample{Position: s.output, IsSaccading: true, Velocity: velocity}

	default: // StateFixating
		if s.cfg.EnableSaccadicSuppression && velocity > s.cfg.SaccadeVelocityThreshold {
			// Saccade onset: freeze the last validly rendered gaze point, not
			// the raw position, since no visual information arrives mid-saccade.
			s.state = StateSaccading
			s.frozen = s.output
			return Sample{Position: s.output, IsSaccading: true, Velocity: velocity}
		}

		smoothed := s.output.Lerp(raw, s.cfg.SmoothingFactor)
		noise := false
		if velocity < s.cfg.FixationVelocityThreshold {
			// Genuinely still: inject tremor and drift. In the band between the
			// fixation and saccade thresholds only plain smoothing applies.
			scale := adaptiveNoiseScale(&s.cfg, smoothed)
			smoothed = smoothed.Add(s.tremor.jitter(s.cfg.FixationNoiseStdDev * scale))
			smoothed = smoothed.Add(s.tremor.drift(now.Sub(s.enabledAt).Seconds(), s.cfg.DriftAmplitude))
			noise = s.cfg.FixationNoiseStdDev > 0 || s.cfg.DriftAmplitude > 0
		}
		s.output = smoothed
		return Sample{Position: s.output, Velocity: velocity, NoiseApplied: noise}
	}
}

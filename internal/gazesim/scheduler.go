// internal/gazesim/scheduler.go
package gazesim

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FrameFunc receives the current output sample once per render frame.
type FrameFunc func(Sample)

// Scheduler drives a Simulator from two triggers: externally pushed raw
// pointer samples, which advance the simulation, and a render-cadence tick,
// which re-emits the last output for display continuity. All simulator access
// happens on the Run goroutine, so raw samples are processed strictly in
// arrival order and no lock is needed around the simulator state.
type Scheduler struct {
	sim     *Simulator
	frame   FrameFunc
	logger  *zap.Logger
	refresh time.Duration
	events  chan schedulerEvent

	// now is the tick clock, injectable for tests.
	now func() time.Time
}

// schedulerEvent is one control or data message for the Run goroutine: a raw
// sample, a disable (pos nil), or a re-enable.
type schedulerEvent struct {
	pos    *Vector2D
	enable bool
}

// NewScheduler wraps sim with a frame loop at refreshHz. The frame callback
// may be nil when the host only consumes samples via Push-side effects.
func NewScheduler(sim *Simulator, refreshHz float64, frame FrameFunc, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if refreshHz <= 0 {
		refreshHz = 60.0
	}
	return &Scheduler{
		sim:     sim,
		frame:   frame,
		logger:  logger,
		refresh: time.Duration(float64(time.Second) / refreshHz),
		events:  make(chan schedulerEvent, 256),
		now:     time.Now,
	}
}

// Push delivers a raw pointer sample. It blocks if the scheduler is behind
// rather than dropping or reordering samples.
func (s *Scheduler) Push(pos Vector2D) {
	p := pos
	s.events <- schedulerEvent{pos: &p}
}

// Disable resets the simulator to the uninitialized sentinel and stops frame
// emission. The disable is sticky: raw samples pushed afterwards produce the
// zero output, and render ticks are suppressed, until Enable is called.
func (s *Scheduler) Disable() {
	s.events <- schedulerEvent{}
}

// Enable re-arms a disabled scheduler. The next raw sample after re-enabling
// starts a cold simulation: it passes through unchanged and establishes the
// new origin.
func (s *Scheduler) Enable() {
	s.events <- schedulerEvent{enable: true}
}

// Run owns the simulator until ctx is cancelled. It returns ctx.Err() on
// cancellation; the simulator is reset on the way out so a stale output can
// never leak into a later run.
func (s *Scheduler) Run(ctx context.Context) error {
	s.sim.Enable()
	defer s.sim.Disable()

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	s.logger.Debug("gaze scheduler running",
		zap.Duration("frame_interval", s.refresh))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			switch {
			case ev.enable:
				s.sim.Enable()
			case ev.pos == nil:
				s.sim.Disable()
			default:
				// A disabled simulator answers with the zero sample here.
				sample := s.sim.Update(ev.pos, s.now())
				if s.frame != nil {
					s.frame(sample)
				}
			}
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Render re-emission stops while disabled.
			if s.frame != nil && s.sim.Enabled() {
				s.frame(s.sim.Emit())
			}
		}
	}
}

// internal/trial/dwell.go
package trial

import (
	"time"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
)

// DwellTimer accumulates time the gaze point spends over a target and fires
// when the required dwell is reached. Leaving the target resets the
// accumulator; saccade-frozen samples can optionally be excluded from
// accumulation, since a frozen output hovering a target carries no evidence
// the participant is looking at it.
type DwellTimer struct {
	required        time.Duration
	excludeSaccades bool

	accumulated time.Duration
	hover       time.Duration
	inside      bool
}

// NewDwellTimer creates a timer requiring the given continuous dwell.
func NewDwellTimer(required time.Duration, excludeSaccades bool) *DwellTimer {
	return &DwellTimer{required: required, excludeSaccades: excludeSaccades}
}

// Observe feeds one output sample covering dt of wall time. It returns true
// once the continuous dwell requirement is met.
func (d *DwellTimer) Observe(sample gazesim.Sample, target Target, dt time.Duration) bool {
	d.inside = target.Contains(sample.Position)
	if !d.inside {
		d.accumulated = 0
		return false
	}

	d.hover += dt
	if d.excludeSaccades && sample.IsSaccading {
		// Frozen sample: the dwell streak neither grows nor breaks.
		return d.accumulated >= d.required
	}

	d.accumulated += dt
	return d.accumulated >= d.required
}

// Inside reports whether the last observed sample was over the target.
func (d *DwellTimer) Inside() bool { return d.inside }

// Accumulated returns the current continuous dwell streak.
func (d *DwellTimer) Accumulated() time.Duration { return d.accumulated }

// Hover returns the total time spent over the target, streaks and all.
func (d *DwellTimer) Hover() time.Duration { return d.hover }

// Reset clears all accumulated state for the next trial.
func (d *DwellTimer) Reset() {
	d.accumulated = 0
	d.hover = 0
	d.inside = false
}

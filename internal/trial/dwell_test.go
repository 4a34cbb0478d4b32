// internal/trial/dwell_test.go
package trial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
)

const tick = 16 * time.Millisecond

func inTarget(t Target) gazesim.Sample {
	return gazesim.Sample{Position: t.Center}
}

func outTarget(t Target) gazesim.Sample {
	return gazesim.Sample{Position: t.Center.Add(gazesim.Vector2D{X: t.Width, Y: 0})}
}

func TestDwellCompletesAfterRequiredTime(t *testing.T) {
	t.Parallel()

	target := Target{Center: gazesim.Vector2D{X: 100, Y: 100}, Width: 40}
	d := NewDwellTimer(80*time.Millisecond, false)

	for i := 0; i < 4; i++ {
		assert.False(t, d.Observe(inTarget(target), target, tick))
	}
	// Fifth tick crosses 80ms.
	assert.True(t, d.Observe(inTarget(target), target, tick))
	assert.Equal(t, 80*time.Millisecond, d.Accumulated())
}

func TestDwellResetsOnExit(t *testing.T) {
	t.Parallel()

	target := Target{Center: gazesim.Vector2D{X: 100, Y: 100}, Width: 40}
	d := NewDwellTimer(48*time.Millisecond, false)

	d.Observe(inTarget(target), target, tick)
	d.Observe(inTarget(target), target, tick)
	require.Equal(t, 32*time.Millisecond, d.Accumulated())

	d.Observe(outTarget(target), target, tick)
	assert.Zero(t, d.Accumulated(), "leaving the target must reset the streak")
	assert.False(t, d.Inside())

	// Hover keeps counting total in-target time across streaks.
	d.Observe(inTarget(target), target, tick)
	assert.Equal(t, 48*time.Millisecond, d.Hover())
}

func TestDwellExcludesSaccadeFrozenSamples(t *testing.T) {
	t.Parallel()

	target := Target{Center: gazesim.Vector2D{X: 100, Y: 100}, Width: 40}
	frozen := gazesim.Sample{Position: target.Center, IsSaccading: true}

	excluding := NewDwellTimer(32*time.Millisecond, true)
	counting := NewDwellTimer(32*time.Millisecond, false)

	for i := 0; i < 10; i++ {
		assert.False(t, excluding.Observe(frozen, target, tick),
			"frozen samples must not accumulate dwell")
	}
	assert.Zero(t, excluding.Accumulated())
	assert.Equal(t, 10*tick, excluding.Hover(), "hover still counts frozen time over the target")

	// Without exclusion the same stream completes the dwell.
	counting.Observe(frozen, target, tick)
	assert.True(t, counting.Observe(frozen, target, tick))

	// A frozen sample must not break an existing streak either.
	excluding.Reset()
	excluding.Observe(inTarget(target), target, tick)
	excluding.Observe(frozen, target, tick)
	assert.Equal(t, tick, excluding.Accumulated())
	assert.True(t, excluding.Observe(inTarget(target), target, tick))
}

func TestTargetGeometry(t *testing.T) {
	t.Parallel()

	target := Target{Center: gazesim.Vector2D{X: 0, Y: 0}, Width: 40}
	assert.True(t, target.Contains(gazesim.Vector2D{X: 20, Y: 0}), "boundary counts as inside")
	assert.False(t, target.Contains(gazesim.Vector2D{X: 20.1, Y: 0}))

	assert.InDelta(t, 1.0, IndexOfDifficulty(30, 30), 1e-9)
	assert.InDelta(t, 0.0, IndexOfDifficulty(0, 30), 1e-9)
	assert.Zero(t, IndexOfDifficulty(100, 0))
}

func TestRingLayoutAlternates(t *testing.T) {
	t.Parallel()

	ring := RingLayout{
		Center:    gazesim.Vector2D{X: 500, Y: 500},
		Amplitude: 400,
		Width:     40,
		Count:     9,
	}
	targets := ring.Targets()
	require.Len(t, targets, 9)

	// Every target sits on the ring.
	for _, tgt := range targets {
		assert.InDelta(t, 200.0, ring.Center.Dist(tgt.Center), 1e-6)
	}

	// Consecutive targets are roughly a diameter apart (the alternating
	// order crosses the circle), never adjacent.
	for i := 1; i < len(targets); i++ {
		hop := targets[i-1].Center.Dist(targets[i].Center)
		assert.Greater(t, hop, 300.0, "presentation order should cross the ring")
	}

	// All nine positions are distinct.
	seen := make(map[[2]int]bool)
	for _, tgt := range targets {
		key := [2]int{int(tgt.Center.X*10 + 0.5), int(tgt.Center.Y*10 + 0.5)}
		assert.False(t, seen[key], "duplicate target position")
		seen[key] = true
	}
}

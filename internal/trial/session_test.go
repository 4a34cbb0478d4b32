// internal/trial/session_test.go
package trial

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/pointer"
)

func testSessionConfig() SessionConfig {
	return SessionConfig{
		Modality: ModalityGaze,
		Blocks:   1,
		Ring: RingLayout{
			Center:    gazesim.Vector2D{X: 640, Y: 400},
			Amplitude: 300,
			Width:     60,
			Count:     5,
		},
		DwellTime:                300 * time.Millisecond,
		TrialTimeout:             5 * time.Second,
		ExcludeSaccadesFromDwell: true,
	}
}

func testSimConfig() gazesim.Config {
	cfg := gazesim.DefaultConfig()
	cfg.PixelsPerDegree = 0
	cfg.FixationVelocityThreshold = 30
	cfg.SaccadeVelocityThreshold = 800
	cfg.FixationNoiseStdDev = 1.0
	cfg.DriftAmplitude = 0.5
	cfg.Rng = rand.New(rand.NewSource(42))
	return cfg
}

func testPointerGen(seed int64) *pointer.Generator {
	cfg := pointer.DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(seed))
	return pointer.New(cfg)
}

func TestSessionAllTrialsAcquired(t *testing.T) {
	t.Parallel()

	sess, err := NewSession(testSessionConfig(), testSimConfig(), testPointerGen(7), zap.NewNop())
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	var streamed int
	sess.OnSample(func(s StreamSample) { streamed++ })

	records, err := sess.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Greater(t, streamed, 5*10, "every trial should stream many samples")

	for i, rec := range records {
		assert.Equal(t, sess.ID, rec.SessionID)
		assert.Equal(t, 1, rec.Block)
		assert.Equal(t, i+1, rec.Trial)
		assert.Equal(t, ModalityGaze, rec.Modality)
		assert.True(t, rec.Correct, "trial %d should complete its dwell", rec.Trial)
		assert.Empty(t, rec.ErrType)
		assert.Greater(t, rec.RTms, 0.0)
		assert.GreaterOrEqual(t, rec.HoverMs, 300.0)
		assert.Greater(t, rec.Difficulty, 0.0)
		assert.Greater(t, rec.Throughput(), 0.0)

		// The selection endpoint must be on the acquired target.
		endpoint := gazesim.Vector2D{X: rec.EndpointX, Y: rec.EndpointY}
		tgt := Target{Center: gazesim.Vector2D{X: rec.TargetX, Y: rec.TargetY}, Width: rec.Width}
		assert.True(t, tgt.Contains(endpoint), "trial %d endpoint off target", rec.Trial)
	}
}

func TestSessionHandModalityPassesRawThrough(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	cfg.Modality = ModalityHand

	sess, err := NewSession(cfg, testSimConfig(), testPointerGen(11), zap.NewNop())
	require.NoError(t, err)

	sess.OnSample(func(s StreamSample) {
		assert.Equal(t, s.Raw, s.Out.Position, "hand modality must not distort the pointer")
		assert.False(t, s.Out.IsSaccading)
	})

	records, err := sess.Run(context.Background())
	require.NoError(t, err)
	for _, rec := range records {
		assert.True(t, rec.Correct)
		assert.Equal(t, ModalityHand, rec.Modality)
	}
}

func TestSessionTimeoutWhenMovementCannotFinish(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	cfg.Ring.Amplitude = 600
	cfg.DwellTime = 200 * time.Millisecond
	cfg.TrialTimeout = 300 * time.Millisecond // well under the Fitts movement time

	sess, err := NewSession(cfg, testSimConfig(), testPointerGen(3), zap.NewNop())
	require.NoError(t, err)

	records, err := sess.Run(context.Background())
	require.NoError(t, err)
	for _, rec := range records {
		require.False(t, rec.Correct)
		assert.Equal(t, OutcomeTimeout, rec.ErrType)
	}
}

func TestSessionSlipWhenDwellCannotComplete(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	cfg.Ring.Amplitude = 300
	cfg.DwellTime = 2 * time.Second
	// The hold phase after arrival is shorter than the required dwell.
	cfg.TrialTimeout = 2200 * time.Millisecond

	sess, err := NewSession(cfg, testSimConfig(), testPointerGen(5), zap.NewNop())
	require.NoError(t, err)

	records, err := sess.Run(context.Background())
	require.NoError(t, err)
	for _, rec := range records {
		require.False(t, rec.Correct)
		assert.Equal(t, OutcomeSlip, rec.ErrType)
		assert.Greater(t, rec.HoverMs, 0.0)
	}
}

func TestSessionFollowsGeneratorCadence(t *testing.T) {
	t.Parallel()

	genCfg := pointer.DefaultConfig()
	genCfg.SampleInterval = 32 * time.Millisecond
	genCfg.Rng = rand.New(rand.NewSource(21))

	sess, err := NewSession(testSessionConfig(), testSimConfig(), pointer.New(genCfg), zap.NewNop())
	require.NoError(t, err)

	var firstTrial []StreamSample
	sess.OnSample(func(s StreamSample) {
		if s.Trial == 1 {
			firstTrial = append(firstTrial, s)
		}
	})

	records, err := sess.Run(context.Background())
	require.NoError(t, err)
	require.True(t, records[0].Correct)

	// The dwell completes during the stationary hold phase, whose padding
	// timestamps are spaced at the generator cadence, not a fixed 16 ms.
	require.Greater(t, len(firstTrial), 2)
	n := len(firstTrial)
	assert.Equal(t, 32*time.Millisecond, firstTrial[n-1].At-firstTrial[n-2].At,
		"hold padding must run at the generator sample interval")
}

func TestSessionValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*SessionConfig)
	}{
		{name: "bad_modality", mutate: func(c *SessionConfig) { c.Modality = "telepathy" }},
		{name: "zero_blocks", mutate: func(c *SessionConfig) { c.Blocks = 0 }},
		{name: "zero_dwell", mutate: func(c *SessionConfig) { c.DwellTime = 0 }},
		{name: "timeout_below_dwell", mutate: func(c *SessionConfig) {
			c.TrialTimeout = c.DwellTime / 2
		}},
		{name: "zero_width", mutate: func(c *SessionConfig) { c.Ring.Width = 0 }},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := testSessionConfig()
			tc.mutate(&cfg)
			_, err := NewSession(cfg, testSimConfig(), testPointerGen(1), zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestSessionStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	sess, err := NewSession(testSessionConfig(), testSimConfig(), testPointerGen(9), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, err := sess.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)
}

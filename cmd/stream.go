// File: cmd/stream.go
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/observability"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/trace"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/trial"
)

var (
	streamOutput string
	streamSeed   int64
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Run the simulator in real time over pointer samples from stdin.",
	Long: `Stream reads "x,y" pointer samples from stdin, pushes them through the
gaze simulator, and emits gaze samples at the configured refresh rate
(simulation.refresh_hz). Between pointer samples the last gaze position is
re-emitted, so downstream consumers see a steady frame cadence. The stream
ends on EOF.`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)
	streamCmd.Flags().StringVarP(&streamOutput, "output", "o", "-", "output file for the gaze stream; - writes to stdout")
	streamCmd.Flags().Int64Var(&streamSeed, "seed", 0, "RNG seed for the noise terms; 0 picks a time-based seed")
}

func runStream(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()

	seed := streamSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := gazesim.New(appConfig.Simulation.ToSimulator(rand.New(rand.NewSource(seed))), logger)

	var out io.Writer = os.Stdout
	if streamOutput != "-" {
		f, err := os.Create(streamOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	sw := trace.NewSampleWriter(out)

	// lastRaw is written by the stdin reader and read by the frame callback,
	// which runs on the scheduler goroutine.
	var mu sync.Mutex
	var lastRaw gazesim.Vector2D
	start := time.Now()

	frame := func(s gazesim.Sample) {
		mu.Lock()
		raw := lastRaw
		mu.Unlock()
		if err := sw.Write(trial.StreamSample{Block: 1, Trial: 1, At: time.Since(start), Raw: raw, Out: s}); err != nil {
			logger.Error("Failed to write gaze sample", zap.Error(err))
		}
	}
	sched := gazesim.NewScheduler(sim, appConfig.Simulation.RefreshHz, frame, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		// EOF ends the run cleanly by cancelling the scheduler.
		defer cancel()
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return nil
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			parts := strings.Split(line, ",")
			if len(parts) != 2 {
				logger.Warn("Skipping malformed pointer sample", zap.String("line", line))
				continue
			}
			x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if errX != nil || errY != nil {
				logger.Warn("Skipping malformed pointer sample", zap.String("line", line))
				continue
			}
			pos := gazesim.Vector2D{X: x, Y: y}
			mu.Lock()
			lastRaw = pos
			mu.Unlock()
			sched.Push(pos)
		}
		return scanner.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return sw.Flush()
}

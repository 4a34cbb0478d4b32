// internal/trace/writer.go
//
// Package trace handles the experiment's on-disk formats: per-tick gaze
// sample CSVs, per-trial endpoint CSVs, raw pointer traces for replay, and
// JSON session summaries.
package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/trial"
)

// sampleHeader is the column layout of the per-tick gaze stream CSV.
var sampleHeader = []string{
	"block", "trial", "ts_ms",
	"raw_x", "raw_y",
	"gaze_x", "gaze_y",
	"velocity", "state", "noise",
}

// SampleWriter streams per-tick observations to CSV.
type SampleWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewSampleWriter wraps w. The header row is written with the first sample.
func NewSampleWriter(w io.Writer) *SampleWriter {
	return &SampleWriter{w: csv.NewWriter(w)}
}

// Write appends one observation row.
func (sw *SampleWriter) Write(s trial.StreamSample) error {
	if !sw.wroteHeader {
		if err := sw.w.Write(sampleHeader); err != nil {
			return fmt.Errorf("trace: writing sample header: %w", err)
		}
		sw.wroteHeader = true
	}

	state := "fixating"
	if s.Out.IsSaccading {
		state = "saccading"
	}
	row := []string{
		strconv.Itoa(s.Block),
		strconv.Itoa(s.Trial),
		formatFloat(float64(s.At) / float64(time.Millisecond)),
		formatFloat(s.Raw.X),
		formatFloat(s.Raw.Y),
		formatFloat(s.Out.Position.X),
		formatFloat(s.Out.Position.Y),
		formatFloat(s.Out.Velocity),
		state,
		strconv.FormatBool(s.Out.NoiseApplied),
	}
	if err := sw.w.Write(row); err != nil {
		return fmt.Errorf("trace: writing sample row: %w", err)
	}
	return nil
}

// Flush commits buffered rows and reports any accumulated write error.
func (sw *SampleWriter) Flush() error {
	sw.w.Flush()
	if err := sw.w.Error(); err != nil {
		return fmt.Errorf("trace: flushing samples: %w", err)
	}
	return nil
}

// trialHeader mirrors the experiment's logged-endpoint schema.
var trialHeader = []string{
	"pid", "block", "trial", "modality",
	"A", "W", "ID", "target_x", "target_y",
	"rt_ms", "correct", "err_type", "hover_ms",
	"endpoint_x", "endpoint_y",
}

// TrialWriter streams per-trial records to CSV.
type TrialWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewTrialWriter wraps w.
func NewTrialWriter(w io.Writer) *TrialWriter {
	return &TrialWriter{w: csv.NewWriter(w)}
}

// Write appends one trial record row.
func (tw *TrialWriter) Write(r trial.Record) error {
	if !tw.wroteHeader {
		if err := tw.w.Write(trialHeader); err != nil {
			return fmt.Errorf("trace: writing trial header: %w", err)
		}
		tw.wroteHeader = true
	}

	row := []string{
		r.SessionID,
		strconv.Itoa(r.Block),
		strconv.Itoa(r.Trial),
		string(r.Modality),
		formatFloat(r.Amplitude),
		formatFloat(r.Width),
		formatFloat(r.Difficulty),
		formatFloat(r.TargetX),
		formatFloat(r.TargetY),
		formatFloat(r.RTms),
		strconv.FormatBool(r.Correct),
		string(r.ErrType),
		formatFloat(r.HoverMs),
		formatFloat(r.EndpointX),
		formatFloat(r.EndpointY),
	}
	if err := tw.w.Write(row); err != nil {
		return fmt.Errorf("trace: writing trial row: %w", err)
	}
	return nil
}

// Flush commits buffered rows and reports any accumulated write error.
func (tw *TrialWriter) Flush() error {
	tw.w.Flush()
	if err := tw.w.Error(); err != nil {
		return fmt.Errorf("trace: flushing trials: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// internal/trace/summary.go
package trace

import (
	"fmt"
	"io"
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/trial"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Summary aggregates a session's trial records for quick inspection; the
// heavyweight statistics live in the downstream analysis pipeline.
type Summary struct {
	SessionID string            `json:"session_id"`
	Modality  trial.Modality    `json:"modality"`
	Trials    int               `json:"trials"`
	Hits      int               `json:"hits"`
	ErrorRate float64           `json:"error_rate"`
	Errors    map[string]int    `json:"errors,omitempty"`
	RT        DistributionStats `json:"rt_ms"`
	MeanTPbps float64           `json:"mean_throughput_bps"`
}

// DistributionStats carries the mean and standard deviation of a measure
// over correct trials.
type DistributionStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"sd"`
}

// Summarize folds trial records into a Summary. Reaction-time statistics use
// correct trials only, the convention of the downstream analysis.
func Summarize(records []trial.Record) Summary {
	s := Summary{Errors: make(map[string]int)}
	if len(records) == 0 {
		return s
	}
	s.SessionID = records[0].SessionID
	s.Modality = records[0].Modality
	s.Trials = len(records)

	var rts []float64
	var tpSum float64
	for _, r := range records {
		if r.Correct {
			s.Hits++
			rts = append(rts, r.RTms)
			tpSum += r.Throughput()
		} else {
			s.Errors[string(r.ErrType)]++
		}
	}

	s.ErrorRate = float64(s.Trials-s.Hits) / float64(s.Trials)
	if s.Hits > 0 {
		s.RT = distStats(rts)
		s.MeanTPbps = tpSum / float64(s.Hits)
	}
	if len(s.Errors) == 0 {
		s.Errors = nil
	}
	return s
}

// WriteSummary encodes the summary of records as indented JSON.
func WriteSummary(w io.Writer, records []trial.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Summarize(records)); err != nil {
		return fmt.Errorf("trace: encoding summary: %w", err)
	}
	return nil
}

func distStats(values []float64) DistributionStats {
	n := float64(len(values))
	if n == 0 {
		return DistributionStats{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	sd := 0.0
	if n > 1 {
		sd = math.Sqrt(sq / (n - 1))
	}
	return DistributionStats{Mean: mean, StdDev: sd}
}

// internal/trial/record.go
package trial

// Modality identifies the pointing modality under test.
type Modality string

const (
	ModalityGaze Modality = "gaze"
	ModalityHand Modality = "hand"
)

// Outcome classifies how a trial ended.
type Outcome string

const (
	// OutcomeHit means the dwell completed before the trial timeout.
	OutcomeHit Outcome = "hit"
	// OutcomeMiss means the movement ended outside the target.
	OutcomeMiss Outcome = "miss"
	// OutcomeTimeout means the target was never entered before the timeout.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeSlip means the target was entered but the dwell never completed.
	OutcomeSlip Outcome = "slip"
)

// Record is one trial's logged endpoint, matching the experiment's CSV
// schema (pid, block, trial, modality, ID, A, W, target position, rt_ms,
// correct, err_type, hover_ms).
type Record struct {
	SessionID string
	Block     int
	Trial     int
	Modality  Modality

	Amplitude  float64
	Width      float64
	Difficulty float64 // bits, Shannon formulation
	TargetX    float64
	TargetY    float64

	RTms    float64
	Correct bool
	ErrType Outcome // empty when Correct
	HoverMs float64

	EndpointX float64
	EndpointY float64
}

// Throughput returns the trial's Fitts throughput in bits/s, zero for
// incorrect or instantaneous trials.
func (r Record) Throughput() float64 {
	if !r.Correct || r.RTms <= 0 {
		return 0
	}
	return r.Difficulty / (r.RTms / 1000.0)
}

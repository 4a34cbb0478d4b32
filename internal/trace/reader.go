// internal/trace/reader.go
package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/gazesim"
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/internal/pointer"
)

// ReadPointerTrace parses a recorded raw pointer stream: a CSV with columns
// ts_ms,x,y (header optional). Timestamps must be non-decreasing; the reader
// rejects traces that would reorder samples, since the simulator contract is
// strict arrival order.
func ReadPointerTrace(r io.Reader) ([]pointer.TimedPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	var out []pointer.TimedPoint
	line := 0
	lastAt := time.Duration(-1)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trace: reading pointer trace: %w", err)
		}
		line++

		ts, errTs := strconv.ParseFloat(record[0], 64)
		x, errX := strconv.ParseFloat(record[1], 64)
		y, errY := strconv.ParseFloat(record[2], 64)
		if errTs != nil || errX != nil || errY != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("trace: malformed pointer trace at line %d: %q", line, record)
		}

		at := time.Duration(ts * float64(time.Millisecond))
		if at < lastAt {
			return nil, fmt.Errorf("trace: timestamps go backwards at line %d (%.3fms)", line, ts)
		}
		lastAt = at

		out = append(out, pointer.TimedPoint{
			Pos: gazesim.Vector2D{X: x, Y: y},
			At:  at,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("trace: pointer trace contains no samples")
	}
	return out, nil
}

// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/measure"
)

// CycleResult is a snapshot produced by one DRAINING cycle.
// It exists only if every register read of the cycle succeeded.
type CycleResult struct {
	Seq int
	At  time.Time

	// Remaining is the countdown after this cycle; 0 on the last row.
	Remaining int

	// Indexed by ade9000.Channel, sampled in order A, B, C.
	Samples [ade9000.NumChannels]measure.Sample
}

// Sample returns the channel's values.
func (r CycleResult) Sample(ch ade9000.Channel) measure.Sample {
	return r.Samples[ch]
}

// internal/writer/types.go
package writer

import (
	"fmt"

	"github.com/tamzrod/ade9000-logger/internal/poller"
	"github.com/tamzrod/ade9000-logger/internal/status"
)

// Sink is one output destination for completed cycles.
type Sink interface {
	Name() string
	Append(res poller.CycleResult) error
	Flush() error
	// Close delivers the final run status and releases the destination.
	Close(final status.Snapshot) error
}

// SinkError wraps any failure of a sink. It is fatal for the run.
type SinkError struct {
	Sink string
	Op   string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s %s: %v", e.Sink, e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

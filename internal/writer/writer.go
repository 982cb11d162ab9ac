// internal/writer/writer.go
package writer

import (
	"go.uber.org/multierr"

	"github.com/tamzrod/ade9000-logger/internal/poller"
	"github.com/tamzrod/ade9000-logger/internal/status"
)

// Fanout delivers every cycle to all sinks in order.
// It implements poller.Sink.
type Fanout struct {
	sinks []Sink
}

func New(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Sinks returns the configured sinks.
func (f *Fanout) Sinks() []Sink { return f.sinks }

// Append tries every sink and reports all failures together.
func (f *Fanout) Append(res poller.CycleResult) error {
	var errs error
	for _, s := range f.sinks {
		if err := s.Append(res); err != nil {
			errs = multierr.Append(errs, &SinkError{Sink: s.Name(), Op: "append", Err: err})
		}
	}
	return errs
}

func (f *Fanout) Flush() error {
	var errs error
	for _, s := range f.sinks {
		if err := s.Flush(); err != nil {
			errs = multierr.Append(errs, &SinkError{Sink: s.Name(), Op: "flush", Err: err})
		}
	}
	return errs
}

// Close closes every sink, even after failures.
func (f *Fanout) Close(final status.Snapshot) error {
	var errs error
	for _, s := range f.sinks {
		if err := s.Close(final); err != nil {
			errs = multierr.Append(errs, &SinkError{Sink: s.Name(), Op: "close", Err: err})
		}
	}
	return errs
}

// internal/poller/strategy.go
package poller

import (
	"context"
	"time"
)

// PollStrategy decides what happens between two STATUS0 polls that found
// the energy-ready flag clear.
type PollStrategy interface {
	Pause(ctx context.Context) error
}

// BusySpin polls again immediately.
type BusySpin struct{}

func (BusySpin) Pause(ctx context.Context) error { return ctx.Err() }

// SleepPoll waits Interval between polls.
type SleepPoll struct {
	Interval time.Duration
}

func (s SleepPoll) Pause(ctx context.Context) error {
	t := time.NewTimer(s.Interval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

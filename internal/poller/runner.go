// internal/poller/runner.go
package poller

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tamzrod/ade9000-logger/internal/metrics"
)

// Run drives the loop until cfg.Cycles rows were appended.
//
//	WAITING:  poll STATUS0 until EGYRDY is set
//	DRAINING: sample A, B, C; append one row; clear EGYRDY
//
// The first error stops the loop. The sink is flushed on every exit.
// ctx is checked once per WAITING poll.
func (p *Poller) Run(ctx context.Context, sink Sink) (rows int, err error) {
	defer func() {
		if ferr := sink.Flush(); ferr != nil {
			p.metrics.Error(metrics.KindSink)
			err = multierr.Append(err, ferr)
		}
	}()

	remaining := p.cfg.Cycles

	for remaining > 0 {
		// ---- WAITING ----
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		ready, err := p.dev.EnergyReady()
		if err != nil {
			return rows, fmt.Errorf("poll status: %w", err)
		}
		if !ready {
			p.metrics.WaitPoll()
			if err := p.cfg.Strategy.Pause(ctx); err != nil {
				return rows, err
			}
			continue
		}

		// ---- DRAINING ----
		res, err := p.PollOnce()
		if err != nil {
			return rows, fmt.Errorf("cycle %d: %w", p.seq, err)
		}
		res.Remaining = remaining - 1

		if err := sink.Append(res); err != nil {
			p.metrics.Error(metrics.KindSink)
			return rows, fmt.Errorf("cycle %d: %w", p.seq, err)
		}
		rows++
		p.seq++

		if err := p.dev.ClearEnergyReady(); err != nil {
			return rows, fmt.Errorf("clear energy ready: %w", err)
		}

		remaining--
		p.metrics.CycleDone()

		if ce := p.log.Check(zap.DebugLevel, "cycle"); ce != nil {
			fields := []zap.Field{
				zap.Int("seq", res.Seq),
				zap.Int("remaining", res.Remaining),
			}
			for _, s := range res.Samples {
				fields = append(fields, zap.Dict(s.Channel.String(),
					zap.Float64("v", s.Voltage),
					zap.Float64("a", s.Current),
					zap.Float64("w", s.ActivePower),
					zap.Float64("var", s.ReactivePower),
					zap.Float64("va", s.ApparentPower),
					zap.Float64("wh", s.ActiveEnergy),
				))
			}
			ce.Write(fields...)
		}
	}

	return rows, nil
}

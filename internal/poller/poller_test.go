// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/measure"
)

// ---- fakes ----

// events is shared by the fakes to check ordering.
type events []string

type fakeDevice struct {
	ev        *events
	every     int // ready on every n-th poll
	polls     int
	pollErr   error
	clears    int
	onPoll    func(n int)
	clearFail error
}

func (f *fakeDevice) EnergyReady() (bool, error) {
	f.polls++
	if f.onPoll != nil {
		f.onPoll(f.polls)
	}
	if f.pollErr != nil {
		return false, f.pollErr
	}
	return f.polls%f.every == 0, nil
}

func (f *fakeDevice) ClearEnergyReady() error {
	if f.clearFail != nil {
		return f.clearFail
	}
	f.clears++
	*f.ev = append(*f.ev, "clear")
	return nil
}

type fakeSampler struct {
	reads  int
	failAt int // 1-based channel read that fails; 0 = never
	err    error
}

func (f *fakeSampler) ReadChannel(ch ade9000.Channel) (measure.Sample, error) {
	f.reads++
	if f.failAt > 0 && f.reads == f.failAt {
		return measure.Sample{}, f.err
	}
	return measure.Sample{Channel: ch, Voltage: 230, ActiveEnergy: float64(f.reads)}, nil
}

type fakeSink struct {
	ev        *events
	rows      []CycleResult
	flushes   int
	appendErr error
	flushErr  error
}

func (f *fakeSink) Append(res CycleResult) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, res)
	*f.ev = append(*f.ev, "append")
	return nil
}

func (f *fakeSink) Flush() error {
	f.flushes++
	return f.flushErr
}

func setup(t *testing.T, cycles, every int) (*Poller, *fakeDevice, *fakeSampler, *fakeSink) {
	t.Helper()
	ev := &events{}
	dev := &fakeDevice{ev: ev, every: every}
	smp := &fakeSampler{}
	sink := &fakeSink{ev: ev}
	p, err := New(Config{Cycles: cycles}, dev, smp, nil, nil)
	require.NoError(t, err)
	return p, dev, smp, sink
}

// ---- tests ----

func TestNew_Validates(t *testing.T) {
	_, err := New(Config{Cycles: 0}, &fakeDevice{}, &fakeSampler{}, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{Cycles: 1}, nil, &fakeSampler{}, nil, nil)
	assert.Error(t, err)
}

func TestRun_CountdownIgnoresWaitingPolls(t *testing.T) {
	for _, every := range []int{1, 4, 25} {
		p, dev, smp, sink := setup(t, 3, every)

		rows, err := p.Run(context.Background(), sink)
		require.NoError(t, err)

		assert.Equal(t, 3, rows)
		assert.Len(t, sink.rows, 3)
		assert.Equal(t, 3, dev.clears)
		assert.Equal(t, 3*every, dev.polls)
		assert.Equal(t, 9, smp.reads)
		assert.Equal(t, 1, sink.flushes)

		for i, r := range sink.rows {
			assert.Equal(t, i, r.Seq)
			assert.Equal(t, 2-i, r.Remaining)
			for _, ch := range ade9000.Channels {
				assert.Equal(t, ch, r.Sample(ch).Channel)
			}
		}
	}
}

func TestRun_AppendBeforeClear(t *testing.T) {
	p, dev, _, sink := setup(t, 2, 1)

	_, err := p.Run(context.Background(), sink)
	require.NoError(t, err)
	assert.Equal(t, events{"append", "clear", "append", "clear"}, *dev.ev)
}

func TestRun_ReadFailureDropsCycle(t *testing.T) {
	p, dev, smp, sink := setup(t, 3, 1)
	boom := errors.New("bus gone")
	smp.failAt, smp.err = 5, boom // cycle 2, channel B

	rows, err := p.Run(context.Background(), sink)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 1, rows)
	assert.Len(t, sink.rows, 1, "no partial row")
	assert.Equal(t, 1, dev.clears, "flag left set for the aborted cycle")
	assert.Equal(t, 1, sink.flushes)
}

func TestRun_PollFailure(t *testing.T) {
	p, dev, _, sink := setup(t, 3, 1)
	dev.pollErr = errors.New("eio")

	rows, err := p.Run(context.Background(), sink)
	assert.Error(t, err)
	assert.Zero(t, rows)
	assert.Equal(t, 1, sink.flushes)
}

func TestRun_SinkFailureStopsBeforeClear(t *testing.T) {
	p, dev, _, sink := setup(t, 3, 1)
	boom := errors.New("disk full")
	sink.appendErr = boom

	rows, err := p.Run(context.Background(), sink)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, rows)
	assert.Zero(t, dev.clears)
}

func TestRun_FlushErrorIsReported(t *testing.T) {
	p, _, _, sink := setup(t, 1, 1)
	boom := errors.New("flush")
	sink.flushErr = boom

	rows, err := p.Run(context.Background(), sink)
	assert.Equal(t, 1, rows)
	assert.ErrorIs(t, err, boom)
}

func TestRun_CanceledWhileWaiting(t *testing.T) {
	p, dev, _, sink := setup(t, 3, 1_000_000)
	ctx, cancel := context.WithCancel(context.Background())
	dev.onPoll = func(n int) {
		if n == 10 {
			cancel()
		}
	}

	rows, err := p.Run(ctx, sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rows)
	assert.Equal(t, 10, dev.polls)
	assert.Equal(t, 1, sink.flushes)
}

func TestSleepPoll(t *testing.T) {
	s := SleepPoll{Interval: time.Millisecond}
	assert.NoError(t, s.Pause(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepPoll{Interval: time.Hour}.Pause(ctx), context.Canceled)
	assert.ErrorIs(t, BusySpin{}.Pause(ctx), context.Canceled)
}

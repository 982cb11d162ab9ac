// internal/poller/builder_test.go
package poller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	cfg "github.com/tamzrod/ade9000-logger/internal/config"
	"github.com/tamzrod/ade9000-logger/internal/metrics"
	"github.com/tamzrod/ade9000-logger/internal/simulator"
	"github.com/tamzrod/ade9000-logger/internal/spi"
)

type collect struct{ rows []CycleResult }

func (c *collect) Append(res CycleResult) error { c.rows = append(c.rows, res); return nil }
func (c *collect) Flush() error                 { return nil }

func simConfig(cycles int) *cfg.Config {
	c := cfg.Default()
	c.Bus.Driver = cfg.DriverSim
	c.Acquisition.Cycles = cycles
	return c
}

func build(t *testing.T, c *cfg.Config, sim *simulator.Device) (*Poller, func() error) {
	t.Helper()
	p, closeFn, err := BuildWithBus(c, nil, metrics.New(), func(cfg.BusConfig) (spi.Bus, error) {
		return sim, nil
	})
	require.NoError(t, err)
	return p, closeFn
}

func TestBuild_SimulatedRun(t *testing.T) {
	sim := simulator.New(5)
	sim.ApplyLoads(simulator.DefaultLoads)

	p, closeFn := build(t, simConfig(4), sim)
	sink := &collect{}

	rows, err := p.Run(context.Background(), sink)
	require.NoError(t, err)
	require.Equal(t, 4, rows)

	var prev [ade9000.NumChannels]float64
	for _, r := range sink.rows {
		a := r.Sample(ade9000.ChannelA)
		assert.InDelta(t, 230, a.Voltage, 2)
		assert.InDelta(t, 1.5, a.Current, 0.05)

		for _, ch := range ade9000.Channels {
			e := r.Sample(ch).ActiveEnergy
			assert.GreaterOrEqual(t, e, prev[ch], "channel %s energy decreased", ch)
			prev[ch] = e
		}
	}
	assert.Greater(t, prev[ade9000.ChannelA], 0.0)
	assert.Zero(t, prev[ade9000.ChannelC], "no load on C")

	require.NoError(t, closeFn())
	assert.True(t, sim.Closed())
}

func TestBuild_TransportFailureMidCycle(t *testing.T) {
	sim := simulator.New(1)
	sim.ApplyLoads(simulator.DefaultLoads)

	p, _ := build(t, simConfig(3), sim)

	// init is 6 transactions; a cycle is poll + 18 reads + clear
	sim.FailFrom(sim.Transactions()+20+1+9, nil)

	sink := &collect{}
	rows, err := p.Run(context.Background(), sink)

	var te *spi.TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, simulator.ErrInjected)
	assert.Equal(t, 1, rows)
	assert.Len(t, sink.rows, 1)
}

func TestBuild_InitFailureClosesBus(t *testing.T) {
	sim := simulator.New(1)
	sim.FailFrom(1, nil)

	_, _, err := BuildWithBus(simConfig(1), nil, nil, func(cfg.BusConfig) (spi.Bus, error) {
		return sim, nil
	})
	require.Error(t, err)
	assert.True(t, sim.Closed())
}

func TestBuild_SleepStrategy(t *testing.T) {
	c := simConfig(1)
	c.Acquisition.Poll = cfg.PollSleep
	c.Acquisition.PollIntervalMs = 1

	sim := simulator.New(3)
	p, _ := build(t, c, sim)
	assert.Equal(t, SleepPoll{Interval: 1_000_000}, p.cfg.Strategy)

	rows, err := p.Run(context.Background(), &collect{})
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestBuild_DefaultsSelect60Hz(t *testing.T) {
	sim := simulator.New(1)
	c := cfg.Default()

	_, closeFn := build(t, c, sim)
	defer closeFn()

	assert.Equal(t, uint32(0x0100), sim.Get(ade9000.ACCMODE))
}

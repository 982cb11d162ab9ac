// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/ade9000-logger/internal/config"
	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/measure"
	"github.com/tamzrod/ade9000-logger/internal/metrics"
	"github.com/tamzrod/ade9000-logger/internal/simulator"
	"github.com/tamzrod/ade9000-logger/internal/spi"
)

// OpenBus opens the configured transport. No retries.
func OpenBus(c cfg.BusConfig) (spi.Bus, error) {
	if c.Driver == cfg.DriverSim {
		dev := simulator.New(c.SimReadyAfter)
		dev.ApplyLoads(simulator.DefaultLoads)
		return dev, nil
	}
	return spi.Open(c.Driver, spi.Config{
		Path:        c.Path,
		Mode:        c.Mode,
		BitsPerWord: c.BitsPerWord,
		SpeedHz:     c.SpeedHz,
	})
}

// Build opens the bus, initializes the device and wires the measurement
// engine into a Poller. The returned closer releases the bus handle.
// Fails fast: nothing is retried at startup.
func Build(c *cfg.Config, log *zap.Logger, m *metrics.Metrics) (*Poller, func() error, error) {
	return BuildWithBus(c, log, m, OpenBus)
}

// BuildWithBus is Build with a custom bus opener.
func BuildWithBus(c *cfg.Config, log *zap.Logger, m *metrics.Metrics, open func(cfg.BusConfig) (spi.Bus, error)) (*Poller, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cal, err := measure.NewCalibration(measure.Hardware{
		BurdenResistor: c.Calibration.BurdenResistor,
		R1:             c.Calibration.R1,
		R2:             c.Calibration.R2,
		CTRatio:        c.Calibration.CTRatio,
		FullScaleRMS:   c.Calibration.FullScaleRMS,
		FullScalePWR:   c.Calibration.FullScalePWR,
	})
	if err != nil {
		return nil, nil, err
	}

	bus, err := open(c.Bus)
	if err != nil {
		return nil, nil, err
	}

	dev := ade9000.New(bus, ade9000.Config{
		LineFrequency: c.Device.LineFrequency,
		EPCfg:         c.Device.EPCfg,
		EgyTime:       uint16(c.Device.EgyTime),
		Strict:        c.Acquisition.StrictRegisters,
		Retries:       c.Bus.Retries,
	}, log.Named("ade9000"), m)

	if _, err := dev.Initialize(); err != nil {
		_ = dev.Close()
		return nil, nil, fmt.Errorf("initialize: %w", err)
	}

	var strategy PollStrategy = BusySpin{}
	if c.Acquisition.Poll == cfg.PollSleep {
		strategy = SleepPoll{Interval: time.Duration(c.Acquisition.PollIntervalMs) * time.Millisecond}
	}

	p, err := New(
		Config{
			Cycles:   c.Acquisition.Cycles,
			Strategy: strategy,
		},
		dev,
		measure.NewEngine(dev, cal, m),
		log.Named("poller"),
		m,
	)
	if err != nil {
		_ = dev.Close()
		return nil, nil, err
	}

	return p, dev.Close, nil
}

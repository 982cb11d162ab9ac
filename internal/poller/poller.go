// internal/poller/poller.go
package poller

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/measure"
	"github.com/tamzrod/ade9000-logger/internal/metrics"
)

// Device is the interrupt handshake the loop needs.
type Device interface {
	EnergyReady() (bool, error)
	ClearEnergyReady() error
}

// Sampler reads one channel's full sample.
type Sampler interface {
	ReadChannel(ch ade9000.Channel) (measure.Sample, error)
}

// Sink receives completed cycles.
type Sink interface {
	Append(res CycleResult) error
	Flush() error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Cycles   int
	Strategy PollStrategy
}

// Poller is the acquisition loop. It owns the device for the run.
type Poller struct {
	cfg     Config
	dev     Device
	sampler Sampler
	log     *zap.Logger
	metrics *metrics.Metrics

	seq int
}

// New creates a poller with immutable config.
func New(cfg Config, dev Device, sampler Sampler, log *zap.Logger, m *metrics.Metrics) (*Poller, error) {
	if cfg.Cycles <= 0 {
		return nil, errors.New("poller: cycles must be > 0")
	}
	if dev == nil || sampler == nil {
		return nil, errors.New("poller: device and sampler required")
	}
	if cfg.Strategy == nil {
		cfg.Strategy = BusySpin{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{cfg: cfg, dev: dev, sampler: sampler, log: log, metrics: m}, nil
}

// PollOnce performs exactly one DRAINING cycle.
// All-or-nothing: any failure aborts the cycle and no result is produced.
func (p *Poller) PollOnce() (CycleResult, error) {
	res := CycleResult{
		Seq: p.seq,
		At:  time.Now(),
	}

	for _, ch := range ade9000.Channels {
		s, err := p.sampler.ReadChannel(ch)
		if err != nil {
			return CycleResult{}, err
		}
		res.Samples[ch] = s
	}

	return res, nil
}

// internal/ade9000/device.go
package ade9000

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tamzrod/ade9000-logger/internal/metrics"
	"github.com/tamzrod/ade9000-logger/internal/spi"
)

// ErrUnknownRegister is returned for addresses above MaxAddress and, in
// strict mode, for addresses outside the documented register map.
var ErrUnknownRegister = errors.New("ade9000: unknown register")

// Defaults used by Initialize.
const (
	DefaultEPCfg   uint16 = 0x31
	DefaultEgyTime uint16 = 8000 // 8 ksps, one energy update per second
)

// Config is the measurement setup written at Initialize.
type Config struct {
	LineFrequency int    // 50 or 60
	EPCfg         uint16 // EP_CFG
	EgyTime       uint16 // EGY_TIME, samples per energy update

	// Strict rejects addresses that are not in the register map.
	Strict bool
	// Retries is the number of extra attempts per register transaction
	// after a transport failure. Zero means fail on the first error.
	Retries int
}

// Device owns one bus handle. It is not safe for concurrent use.
type Device struct {
	bus     spi.Bus
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics

	// rx scratch, one frame at a time
	rx [MaxFrameLen]byte
}

// New wraps an already opened bus. It performs no I/O.
func New(bus spi.Bus, cfg Config, log *zap.Logger, m *metrics.Metrics) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.EPCfg == 0 {
		cfg.EPCfg = DefaultEPCfg
	}
	if cfg.EgyTime == 0 {
		cfg.EgyTime = DefaultEgyTime
	}
	return &Device{bus: bus, cfg: cfg, log: log, metrics: m}
}

// Initialize checks bus liveness through VERSION and starts energy
// accumulation with the energy-ready interrupt enabled.
func (d *Device) Initialize() (uint16, error) {
	version, err := d.ReadRegister(VERSION)
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}

	accmode := uint32(0)
	if d.cfg.LineFrequency == 60 {
		accmode |= accmodeSelFreq60
	}

	steps := []struct {
		addr  Address
		value uint32
	}{
		{RUN, 1},
		{ACCMODE, accmode},
		{MASK0, EGYRDY},
		{EP_CFG, uint32(d.cfg.EPCfg)},
		{EGY_TIME, uint32(d.cfg.EgyTime)},
	}
	for _, s := range steps {
		if err := d.WriteRegister(s.addr, s.value); err != nil {
			return 0, fmt.Errorf("write %s: %w", s.addr, err)
		}
	}

	d.log.Info("device initialized",
		zap.String("version", fmt.Sprintf("0x%04X", uint16(version))),
		zap.Int("line_frequency", d.cfg.LineFrequency),
		zap.Uint16("egy_time", d.cfg.EgyTime),
	)
	return uint16(version), nil
}

// ReadRegister performs one full-duplex transaction of FrameWidth(addr) bytes.
func (d *Device) ReadRegister(addr Address) (int32, error) {
	if err := d.check(addr); err != nil {
		return 0, err
	}

	tx := EncodeReadHeader(addr)
	rx := d.rx[:tx.Len()]

	err := d.do("read", addr, func() error {
		clear(rx)
		return d.bus.Transfer(tx.Bytes(), rx)
	})
	if err != nil {
		return 0, err
	}
	return DecodeReadResponse(addr, rx)
}

// WriteRegister performs one write-only transaction of FrameWidth(addr) bytes.
func (d *Device) WriteRegister(addr Address, value uint32) error {
	if err := d.check(addr); err != nil {
		return err
	}

	tx := EncodeWriteFrame(addr, value)
	return d.do("write", addr, func() error {
		return d.bus.Write(tx.Bytes())
	})
}

// EnergyReady reports STATUS0.EGYRDY.
func (d *Device) EnergyReady() (bool, error) {
	v, err := d.ReadRegister(STATUS0)
	if err != nil {
		return false, err
	}
	return uint32(v)&EGYRDY != 0, nil
}

// ClearEnergyReady acknowledges the energy-ready interrupt (write-1-to-clear).
func (d *Device) ClearEnergyReady() error {
	return d.WriteRegister(STATUS0, EGYRDY)
}

// Close releases the bus handle.
func (d *Device) Close() error {
	return d.bus.Close()
}

func (d *Device) check(addr Address) error {
	if addr > MaxAddress || (d.cfg.Strict && !Known(addr)) {
		d.metrics.Error(metrics.KindProtocol)
		return fmt.Errorf("%w: %s", ErrUnknownRegister, addr)
	}
	return nil
}

// do runs one register transaction, repeating it on transport failure
// at most cfg.Retries times.
func (d *Device) do(op string, addr Address, fn func() error) error {
	var err error
	for attempt := 0; attempt <= d.cfg.Retries; attempt++ {
		if attempt > 0 {
			d.metrics.Retry()
			d.log.Warn("retrying register transaction",
				zap.String("op", op),
				zap.Stringer("register", addr),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}

		d.metrics.Transaction(op)
		if err = fn(); err == nil {
			return nil
		}

		var te *spi.TransportError
		if !errors.As(err, &te) {
			break
		}
	}

	d.metrics.Error(metrics.KindTransport)
	return fmt.Errorf("%s %s: %w", op, addr, err)
}

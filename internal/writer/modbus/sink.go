// internal/writer/modbus/sink.go
package modbus

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/poller"
	"github.com/tamzrod/ade9000-logger/internal/status"
)

// ---- DATA BLOCK GEOMETRY ----

// ValuesPerChannel are V, A, W, var, VA, Wh in that order.
const ValuesPerChannel = 6

// DataRegs is seq (uint32) followed by every channel value as float32.
const DataRegs = 2 + ade9000.NumChannels*ValuesPerChannel*2

type SinkConfig struct {
	UnitID        uint8
	Address       uint16
	StatusAddress *uint16
	Cycles        int
}

// Sink mirrors the latest cycle into holding registers.
type Sink struct {
	cli    RegisterWriter
	cfg    SinkConfig
	status *statusWriter
	log    *zap.Logger

	rows int
}

// New takes ownership of cli and publishes the initial status block.
func New(cli RegisterWriter, cfg SinkConfig, log *zap.Logger) (*Sink, error) {
	if cli == nil {
		return nil, errors.New("writer modbus: client required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Sink{cli: cli, cfg: cfg, log: log}
	if cfg.StatusAddress != nil {
		s.status = newStatusWriter(cli, cfg.UnitID, *cfg.StatusAddress)
		s.publish(status.Snapshot{
			Health:          status.HealthOK,
			CyclesRemaining: status.Clamp16(cfg.Cycles),
		})
	}
	return s, nil
}

func (s *Sink) Name() string { return "modbus" }

// Append writes the whole data block in one request.
func (s *Sink) Append(res poller.CycleResult) error {
	if err := s.cli.WriteRegisters(s.cfg.UnitID, s.cfg.Address, EncodeRow(res)); err != nil {
		return fmt.Errorf("write data block at %d: %w", s.cfg.Address, err)
	}
	s.rows++

	s.publish(status.Snapshot{
		Health:          status.HealthOK,
		CyclesRemaining: status.Clamp16(res.Remaining),
		RowsWritten:     status.Clamp16(s.rows),
	})
	return nil
}

// Flush is a no-op: every Append is already on the wire.
func (s *Sink) Flush() error { return nil }

// Close publishes the final outcome and drops the connection.
func (s *Sink) Close(final status.Snapshot) error {
	s.publish(final)
	return s.cli.Close()
}

// publish never fails the run; the status block is advisory.
func (s *Sink) publish(snap status.Snapshot) {
	if s.status == nil {
		return
	}
	if err := s.status.WriteStatus(snap); err != nil {
		s.log.Warn("status block write failed", zap.Error(err))
	}
}

// EncodeRow packs one cycle into DataRegs registers.
// float32 values use big-endian word order (high word first).
func EncodeRow(res poller.CycleResult) []uint16 {
	regs := make([]uint16, 0, DataRegs)

	seq := uint32(res.Seq)
	regs = append(regs, uint16(seq>>16), uint16(seq))

	for _, ch := range ade9000.Channels {
		smp := res.Sample(ch)
		for _, v := range [ValuesPerChannel]float64{
			smp.Voltage,
			smp.Current,
			smp.ActivePower,
			smp.ReactivePower,
			smp.ApparentPower,
			smp.ActiveEnergy,
		} {
			bits := math.Float32bits(float32(v))
			regs = append(regs, uint16(bits>>16), uint16(bits))
		}
	}
	return regs
}

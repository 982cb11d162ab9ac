// internal/measure/engine.go
package measure

import (
	"fmt"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/metrics"
)

// RegisterReader is the one device operation the engine needs.
type RegisterReader interface {
	ReadRegister(addr ade9000.Address) (int32, error)
}

// Sample is one channel's values for one cycle.
type Sample struct {
	Channel       ade9000.Channel
	Current       float64 // A
	Voltage       float64 // V
	ActivePower   float64 // W
	ReactivePower float64 // var
	ApparentPower float64 // VA
	ActiveEnergy  float64 // Wh since start of run
}

// Engine owns the energy totals of one run. Not safe for concurrent use.
type Engine struct {
	dev     RegisterReader
	cal     Calibration
	metrics *metrics.Metrics

	energy [ade9000.NumChannels]float64
}

func NewEngine(dev RegisterReader, cal Calibration, m *metrics.Metrics) *Engine {
	return &Engine{dev: dev, cal: cal, metrics: m}
}

func (e *Engine) read(ch ade9000.Channel, pick func(ade9000.ChannelRegisters) ade9000.Address) (int32, error) {
	if !ch.Valid() {
		return 0, fmt.Errorf("measure: invalid channel %d", int(ch))
	}
	return e.dev.ReadRegister(pick(ch.Registers()))
}

func (e *Engine) ReadCurrent(ch ade9000.Channel) (float64, error) {
	raw, err := e.read(ch, func(r ade9000.ChannelRegisters) ade9000.Address { return r.IRMS })
	if err != nil {
		return 0, err
	}
	return e.cal.Current(raw), nil
}

func (e *Engine) ReadVoltage(ch ade9000.Channel) (float64, error) {
	raw, err := e.read(ch, func(r ade9000.ChannelRegisters) ade9000.Address { return r.VRMS })
	if err != nil {
		return 0, err
	}
	return e.cal.Voltage(raw), nil
}

func (e *Engine) ReadActivePower(ch ade9000.Channel) (float64, error) {
	raw, err := e.read(ch, func(r ade9000.ChannelRegisters) ade9000.Address { return r.WATT })
	if err != nil {
		return 0, err
	}
	return e.cal.Power(raw), nil
}

func (e *Engine) ReadReactivePower(ch ade9000.Channel) (float64, error) {
	raw, err := e.read(ch, func(r ade9000.ChannelRegisters) ade9000.Address { return r.VAR })
	if err != nil {
		return 0, err
	}
	return e.cal.Power(raw), nil
}

func (e *Engine) ReadApparentPower(ch ade9000.Channel) (float64, error) {
	raw, err := e.read(ch, func(r ade9000.ChannelRegisters) ade9000.Address { return r.VA })
	if err != nil {
		return 0, err
	}
	return e.cal.Power(raw), nil
}

// ReadActiveEnergy reads the energy delta of the last interval, adds it
// to ch's total and returns the new total in Wh. Only ch's total changes.
func (e *Engine) ReadActiveEnergy(ch ade9000.Channel) (float64, error) {
	raw, err := e.read(ch, func(r ade9000.ChannelRegisters) ade9000.Address { return r.WATTHR })
	if err != nil {
		return 0, err
	}
	e.energy[ch] += e.cal.Energy(raw)
	e.metrics.SetEnergy(ch.String(), e.energy[ch])
	return e.energy[ch], nil
}

// Energy returns ch's running total without touching the device.
func (e *Engine) Energy(ch ade9000.Channel) float64 {
	if !ch.Valid() {
		return 0
	}
	return e.energy[ch]
}

// ReadChannel reads all six quantities of ch in fixed order: current,
// voltage, active, reactive, apparent power, active energy.
// On error the returned sample must be discarded.
func (e *Engine) ReadChannel(ch ade9000.Channel) (Sample, error) {
	s := Sample{Channel: ch}

	steps := []struct {
		name string
		read func(ade9000.Channel) (float64, error)
		dst  *float64
	}{
		{"current", e.ReadCurrent, &s.Current},
		{"voltage", e.ReadVoltage, &s.Voltage},
		{"active power", e.ReadActivePower, &s.ActivePower},
		{"reactive power", e.ReadReactivePower, &s.ReactivePower},
		{"apparent power", e.ReadApparentPower, &s.ApparentPower},
		{"active energy", e.ReadActiveEnergy, &s.ActiveEnergy},
	}
	for _, st := range steps {
		v, err := st.read(ch)
		if err != nil {
			return Sample{}, fmt.Errorf("channel %s %s: %w", ch, st.name, err)
		}
		*st.dst = v
	}
	return s, nil
}

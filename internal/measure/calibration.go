// internal/measure/calibration.go

// Package measure turns raw ADE9000 register codes into physical units
// and keeps the per-channel energy totals of a run.
package measure

import "errors"

// PeakToRMS is 1/sqrt(2) as baked into the full-scale figures.
const PeakToRMS = 0.7071

// SecondsPerHour converts the energy register's power-second units to Wh.
const SecondsPerHour = 3600.0

// Hardware describes the analog front end.
type Hardware struct {
	BurdenResistor float64 // ohms across the CT secondary
	R1             float64 // upper divider resistor
	R2             float64 // lower divider resistor
	CTRatio        float64

	FullScaleRMS float64 // xIRMS / xVRMS code at full scale
	FullScalePWR float64 // xWATT / xVAR / xVA code at full scale
}

// DefaultHardware is the reference board.
var DefaultHardware = Hardware{
	BurdenResistor: 10,
	R1:             990,
	R2:             1,
	CTRatio:        1000,
	FullScaleRMS:   52702092,
	FullScalePWR:   20694066,
}

// Calibration holds the derived scale factors. Immutable once built.
type Calibration struct {
	MaxCurrent float64
	MaxVoltage float64
	MaxPower   float64

	fullScaleRMS float64
	fullScalePWR float64
}

var ErrCalibration = errors.New("measure: calibration constants must be positive")

// NewCalibration derives the scale factors from h.
func NewCalibration(h Hardware) (Calibration, error) {
	if h.BurdenResistor <= 0 || h.R2 <= 0 || h.R1 < 0 || h.CTRatio <= 0 ||
		h.FullScaleRMS <= 0 || h.FullScalePWR <= 0 {
		return Calibration{}, ErrCalibration
	}

	maxI := PeakToRMS * h.CTRatio / h.BurdenResistor
	maxV := PeakToRMS * (h.R1 + h.R2) / h.R2

	return Calibration{
		MaxCurrent:   maxI,
		MaxVoltage:   maxV,
		MaxPower:     maxI * maxV,
		fullScaleRMS: h.FullScaleRMS,
		fullScalePWR: h.FullScalePWR,
	}, nil
}

// Current converts an xIRMS code to amperes.
func (c Calibration) Current(raw int32) float64 {
	return c.MaxCurrent * float64(raw) / c.fullScaleRMS
}

// Voltage converts an xVRMS code to volts.
func (c Calibration) Voltage(raw int32) float64 {
	return c.MaxVoltage * float64(raw) / c.fullScaleRMS
}

// Power converts an xWATT, xVAR or xVA code to W, var or VA.
func (c Calibration) Power(raw int32) float64 {
	return c.MaxPower * float64(raw) / c.fullScalePWR
}

// Energy converts one xWATTHR_HI interval reading to Wh.
func (c Calibration) Energy(raw int32) float64 {
	return c.MaxPower * float64(raw) / (c.fullScalePWR * SecondsPerHour)
}

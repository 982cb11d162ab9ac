// internal/measure/calibration_test.go
package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalibration_Default(t *testing.T) {
	cal, err := NewCalibration(DefaultHardware)
	require.NoError(t, err)

	assert.InDelta(t, 70.71, cal.MaxCurrent, 1e-9)
	assert.InDelta(t, 700.7361, cal.MaxVoltage, 1e-9)
	assert.InDelta(t, 70.71*700.7361, cal.MaxPower, 1e-6)
}

func TestCalibration_FullScale(t *testing.T) {
	cal, err := NewCalibration(DefaultHardware)
	require.NoError(t, err)

	// full-scale RMS code reads as max current
	assert.InDelta(t, 70.71, cal.Current(52702092), 1e-6)
	assert.InDelta(t, cal.MaxVoltage, cal.Voltage(52702092), 1e-6)
	assert.InDelta(t, cal.MaxPower, cal.Power(20694066), 1e-6)
	assert.InDelta(t, -cal.MaxPower, cal.Power(-20694066), 1e-6)

	// one second at full scale
	assert.InDelta(t, cal.MaxPower/3600, cal.Energy(20694066), 1e-9)
	assert.Zero(t, cal.Energy(0))
}

func TestNewCalibration_Rejects(t *testing.T) {
	for name, mut := range map[string]func(h *Hardware){
		"burden":   func(h *Hardware) { h.BurdenResistor = 0 },
		"r2":       func(h *Hardware) { h.R2 = 0 },
		"r1":       func(h *Hardware) { h.R1 = -1 },
		"ct":       func(h *Hardware) { h.CTRatio = -5 },
		"fs rms":   func(h *Hardware) { h.FullScaleRMS = 0 },
		"fs power": func(h *Hardware) { h.FullScalePWR = 0 },
	} {
		h := DefaultHardware
		mut(&h)
		_, err := NewCalibration(h)
		assert.ErrorIs(t, err, ErrCalibration, name)
	}
}

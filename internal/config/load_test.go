// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParse_Overlay(t *testing.T) {
	c, err := Parse([]byte(`
bus:
  driver: sim
  sim_ready_after: 3
device:
  line_frequency: 60
acquisition:
  cycles: 5
  poll: sleep
sinks:
  csv:
    dir: /var/log/ade9000
    footer: true
  modbus:
    endpoint: 10.0.0.2:502
    unit_id: 4
    address: 1000
    status_address: 2000
  mqtt:
    broker: tcp://broker:1883
    topic: meter/lab
log:
  level: DEBUG
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, DriverSim, c.Bus.Driver)
	assert.Equal(t, 3, c.Bus.SimReadyAfter)
	assert.Equal(t, uint32(8_000_000), c.Bus.SpeedHz, "untouched default kept")
	assert.Equal(t, 60, c.Device.LineFrequency)
	assert.Equal(t, uint16(0x31), c.Device.EPCfg)
	assert.Equal(t, 5, c.Acquisition.Cycles)
	assert.Equal(t, 10, c.Acquisition.PollIntervalMs)
	assert.True(t, c.Sinks.CSV.Footer)

	require.NotNil(t, c.Sinks.Modbus)
	assert.Equal(t, TransportModbus, c.Sinks.Modbus.Transport)
	assert.Equal(t, 2000, c.Sinks.Modbus.TimeoutMs)
	require.NotNil(t, c.Sinks.Modbus.StatusAddress)
	assert.Equal(t, uint16(2000), *c.Sinks.Modbus.StatusAddress)

	require.NotNil(t, c.Sinks.MQTT)
	assert.Equal(t, 5000, c.Sinks.MQTT.TimeoutMs)

	assert.Equal(t, "debug", c.Log.Level)
	assert.NoError(t, Validate(c))
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("bus:\n  speed: 1\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("acquisition:\n  cycles: 7\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Acquisition.Cycles)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

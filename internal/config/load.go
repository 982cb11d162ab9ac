// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default reproduces the reference board setup.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Driver:        DriverSpidev,
			Path:          "/dev/spidev0.0",
			Mode:          0,
			BitsPerWord:   8,
			SpeedHz:       8_000_000, // rx shifts by one bit above ~9.2 MHz
			SimReadyAfter: 1,
		},
		Device: DeviceConfig{
			LineFrequency: 60, // SELFREQ set
			EPCfg:         0x31,
			EgyTime:       8000,
		},
		Calibration: CalibrationConfig{
			BurdenResistor: 10,
			R1:             990,
			R2:             1,
			CTRatio:        1000,
			FullScaleRMS:   52702092,
			FullScalePWR:   20694066,
		},
		Acquisition: AcquisitionConfig{
			Cycles:         20,
			Poll:           PollBusy,
			PollIntervalMs: 10,
		},
		Sinks: SinksConfig{
			CSV: &CSVConfig{Dir: "."},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (*Config, error) {
	c := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(c)
	return c, nil
}

// applyDefaults refills fields a file explicitly zeroed.
func applyDefaults(c *Config) {
	d := Default()

	if c.Bus.Driver == "" {
		c.Bus.Driver = d.Bus.Driver
	}
	if c.Bus.Path == "" && c.Bus.Driver == DriverSpidev {
		c.Bus.Path = d.Bus.Path
	}
	if c.Bus.BitsPerWord == 0 {
		c.Bus.BitsPerWord = d.Bus.BitsPerWord
	}
	if c.Bus.SpeedHz == 0 {
		c.Bus.SpeedHz = d.Bus.SpeedHz
	}
	if c.Bus.SimReadyAfter == 0 {
		c.Bus.SimReadyAfter = d.Bus.SimReadyAfter
	}
	if c.Device.LineFrequency == 0 {
		c.Device.LineFrequency = d.Device.LineFrequency
	}
	if c.Device.EPCfg == 0 {
		c.Device.EPCfg = d.Device.EPCfg
	}
	if c.Device.EgyTime == 0 {
		c.Device.EgyTime = d.Device.EgyTime
	}
	if c.Acquisition.Poll == "" {
		c.Acquisition.Poll = d.Acquisition.Poll
	}
	if c.Acquisition.PollIntervalMs == 0 {
		c.Acquisition.PollIntervalMs = d.Acquisition.PollIntervalMs
	}
	if c.Sinks.CSV == nil {
		c.Sinks.CSV = d.Sinks.CSV
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if m := c.Sinks.Modbus; m != nil {
		if m.Transport == "" {
			m.Transport = TransportModbus
		}
		if m.TimeoutMs == 0 {
			m.TimeoutMs = 2000
		}
	}
	if c.Sinks.MQTT != nil && c.Sinks.MQTT.TimeoutMs == 0 {
		c.Sinks.MQTT.TimeoutMs = 5000
	}
}

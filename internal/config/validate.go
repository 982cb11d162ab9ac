// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	switch cfg.Bus.Driver {
	case DriverSpidev, DriverPeriph:
		if cfg.Bus.Driver == DriverSpidev && cfg.Bus.Path == "" {
			return fmt.Errorf("bus: path is required for driver %q", cfg.Bus.Driver)
		}
	case DriverSim:
		if cfg.Bus.SimReadyAfter < 1 {
			return fmt.Errorf("bus: sim_ready_after must be >= 1")
		}
	default:
		return fmt.Errorf("bus: unknown driver %q", cfg.Bus.Driver)
	}

	// Sanity only; whether the device accepts the setting is up to the kernel.
	if cfg.Bus.Mode > 3 {
		return fmt.Errorf("bus: mode %d out of range (0..3)", cfg.Bus.Mode)
	}
	if cfg.Bus.BitsPerWord == 0 {
		return fmt.Errorf("bus: bits_per_word must be > 0")
	}
	if cfg.Bus.SpeedHz == 0 {
		return fmt.Errorf("bus: speed_hz must be > 0")
	}
	if cfg.Bus.Retries < 0 {
		return fmt.Errorf("bus: retries must be >= 0")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.LineFrequency != 50 && cfg.Device.LineFrequency != 60 {
		return fmt.Errorf("device: line_frequency must be 50 or 60, got %d", cfg.Device.LineFrequency)
	}
	if cfg.Device.EgyTime == 0 || cfg.Device.EgyTime > 0xFFFF {
		return fmt.Errorf("device: egy_time %d out of range (1..65535)", cfg.Device.EgyTime)
	}

	// ------------------------------------------------------------
	// CALIBRATION
	// ------------------------------------------------------------

	cal := cfg.Calibration
	positive := []struct {
		name string
		v    float64
	}{
		{"burden_resistor", cal.BurdenResistor},
		{"r2", cal.R2},
		{"ct_ratio", cal.CTRatio},
		{"full_scale_rms", cal.FullScaleRMS},
		{"full_scale_pwr", cal.FullScalePWR},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("calibration: %s must be > 0", p.name)
		}
	}
	if cal.R1 < 0 {
		return fmt.Errorf("calibration: r1 must be >= 0")
	}

	// ------------------------------------------------------------
	// ACQUISITION
	// ------------------------------------------------------------

	if cfg.Acquisition.Cycles <= 0 {
		return fmt.Errorf("acquisition: cycles must be > 0")
	}
	switch cfg.Acquisition.Poll {
	case PollBusy:
	case PollSleep:
		if cfg.Acquisition.PollIntervalMs <= 0 {
			return fmt.Errorf("acquisition: poll_interval_ms must be > 0 for sleep polling")
		}
	default:
		return fmt.Errorf("acquisition: unknown poll strategy %q", cfg.Acquisition.Poll)
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	enabled := 0

	if c := cfg.Sinks.CSV; c != nil && !c.Disable {
		enabled++
	}

	if m := cfg.Sinks.Modbus; m != nil {
		enabled++
		switch m.Transport {
		case TransportModbus, TransportIngest:
		default:
			return fmt.Errorf("sinks.modbus: unknown transport %q", m.Transport)
		}
		if m.Endpoint == "" {
			return fmt.Errorf("sinks.modbus: endpoint is required")
		}
		// seq (2 regs) + 3 channels x 6 float32 (2 regs each)
		const dataRegs = 2 + 3*6*2
		if int(m.Address)+dataRegs > 0x10000 {
			return fmt.Errorf("sinks.modbus: address %d leaves no room for %d registers", m.Address, dataRegs)
		}
		if m.StatusAddress != nil {
			start, end := int(*m.StatusAddress), int(*m.StatusAddress)+statusRegs-1
			dStart, dEnd := int(m.Address), int(m.Address)+dataRegs-1
			// overlap check (inclusive)
			if !(end < dStart || start > dEnd) {
				return fmt.Errorf(
					"sinks.modbus: status block %d-%d overlaps data block %d-%d",
					start, end, dStart, dEnd,
				)
			}
		}
	}

	if q := cfg.Sinks.MQTT; q != nil {
		enabled++
		if q.Broker == "" {
			return fmt.Errorf("sinks.mqtt: broker is required")
		}
		if strings.Trim(q.Topic, "/") == "" {
			return fmt.Errorf("sinks.mqtt: topic is required")
		}
		if strings.ContainsAny(q.Topic, "+#") {
			return fmt.Errorf("sinks.mqtt: topic %q must not contain wildcards", q.Topic)
		}
		if q.TimeoutMs < 0 {
			return fmt.Errorf("sinks.mqtt: timeout_ms must be >= 0")
		}
		if q.QoS > 2 {
			return fmt.Errorf("sinks.mqtt: qos must be 0, 1 or 2")
		}
	}

	if enabled == 0 {
		return fmt.Errorf("sinks: at least one sink must be enabled")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log: unknown format %q", cfg.Log.Format)
	}

	return nil
}

// statusRegs mirrors status.SlotsPerRun; config must not import runtime packages.
const statusRegs = 8

// internal/config/config.go
package config

type Config struct {
	Bus         BusConfig         `yaml:"bus"`
	Device      DeviceConfig      `yaml:"device"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Sinks       SinksConfig       `yaml:"sinks"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
}

// ---- BUS ----

type BusConfig struct {
	Driver      string `yaml:"driver"` // spidev | periph | sim
	Path        string `yaml:"path"`
	Mode        uint8  `yaml:"mode"`
	BitsPerWord uint8  `yaml:"bits_per_word"`
	SpeedHz     uint32 `yaml:"speed_hz"`

	// Extra attempts per register transaction after a transport failure.
	Retries int `yaml:"retries"`

	// sim only: status polls per energy interval
	SimReadyAfter int `yaml:"sim_ready_after"`
}

const (
	DriverSpidev = "spidev"
	DriverPeriph = "periph"
	DriverSim    = "sim"
)

// ---- DEVICE ----

type DeviceConfig struct {
	LineFrequency int    `yaml:"line_frequency"` // 50 | 60
	EPCfg         uint16 `yaml:"ep_cfg"`
	EgyTime       uint32 `yaml:"egy_time"`
}

// ---- CALIBRATION ----

type CalibrationConfig struct {
	BurdenResistor float64 `yaml:"burden_resistor"`
	R1             float64 `yaml:"r1"`
	R2             float64 `yaml:"r2"`
	CTRatio        float64 `yaml:"ct_ratio"`
	FullScaleRMS   float64 `yaml:"full_scale_rms"`
	FullScalePWR   float64 `yaml:"full_scale_pwr"`
}

// ---- ACQUISITION ----

type AcquisitionConfig struct {
	Cycles          int    `yaml:"cycles"`
	Poll            string `yaml:"poll"` // busy | sleep
	PollIntervalMs  int    `yaml:"poll_interval_ms"`
	StrictRegisters bool   `yaml:"strict_registers"`
}

const (
	PollBusy  = "busy"
	PollSleep = "sleep"
)

// ---- SINKS ----

type SinksConfig struct {
	CSV    *CSVConfig        `yaml:"csv"`
	Modbus *ModbusSinkConfig `yaml:"modbus"`
	MQTT   *MQTTSinkConfig   `yaml:"mqtt"`
}

type CSVConfig struct {
	Disable bool   `yaml:"disable"`
	Dir     string `yaml:"dir"`
	Footer  bool   `yaml:"footer"`
}

type ModbusSinkConfig struct {
	Transport string `yaml:"transport"` // modbus | ingest
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// Run status block (optional, opt-in)
	StatusAddress *uint16 `yaml:"status_address"`
}

const (
	TransportModbus = "modbus"
	TransportIngest = "ingest"
)

type MQTTSinkConfig struct {
	Broker    string `yaml:"broker"`
	Topic     string `yaml:"topic"`
	ClientID  string `yaml:"client_id"`
	QoS       byte   `yaml:"qos"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- AMBIENT ----

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

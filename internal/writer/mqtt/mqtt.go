// internal/writer/mqtt/mqtt.go
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/tamzrod/ade9000-logger/internal/poller"
	"github.com/tamzrod/ade9000-logger/internal/status"
)

const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Publisher is the subset of paho.Client the sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

type Config struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
	Username string
	Password string
	Timeout  time.Duration
}

// SampleTopic and StateTopic hang off the configured base topic.
func SampleTopic(base string) string { return base + "/sample" }
func StateTopic(base string) string  { return base + "/state" }

// Options builds paho options with a retained offline will on the state topic.
func Options(cfg Config, runID string) *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	id := cfg.ClientID
	if id == "" {
		id = "ade9000-" + runID
		if len(id) > 23 {
			id = id[:23]
		}
	}
	opts.SetClientID(id)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetAutoReconnect(false)

	opts.WillEnabled = true
	opts.WillPayload = []byte(PayloadOffline)
	opts.WillRetained = true
	opts.WillTopic = StateTopic(cfg.Topic)
	opts.WillQos = cfg.QoS

	return opts
}

// Sink publishes every cycle as one JSON message.
type Sink struct {
	cli     Publisher
	cfg     Config
	runID   string
	log     *zap.Logger
	timeout time.Duration
}

// Dial connects to the broker and announces the run.
func Dial(cfg Config, runID string, log *zap.Logger) (*Sink, error) {
	return connect(paho.NewClient(Options(cfg, runID)), cfg, runID, log)
}

type connector interface {
	Publisher
	Connect() paho.Token
}

func connect(cli connector, cfg Config, runID string, log *zap.Logger) (*Sink, error) {
	tok := cli.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		cli.Disconnect(0)
		return nil, errors.New("connect timed out")
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}

	s, err := New(cli, cfg, runID, log)
	if err != nil {
		cli.Disconnect(0)
		return nil, err
	}
	return s, nil
}

// New wraps a connected publisher and sets the retained state online.
func New(cli Publisher, cfg Config, runID string, log *zap.Logger) (*Sink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sink{cli: cli, cfg: cfg, runID: runID, log: log, timeout: cfg.Timeout}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	if err := s.publish(StateTopic(cfg.Topic), true, PayloadOnline); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) Name() string { return "mqtt" }

// ChannelPayload is one channel of a sample message.
type ChannelPayload struct {
	Voltage       float64 `json:"voltage"`
	Current       float64 `json:"current"`
	ActivePower   float64 `json:"active_power"`
	ReactivePower float64 `json:"reactive_power"`
	ApparentPower float64 `json:"apparent_power"`
	ActiveEnergy  float64 `json:"active_energy"`
}

// SamplePayload is the body published on the sample topic.
type SamplePayload struct {
	RunID     string                    `json:"run_id"`
	Seq       int                       `json:"seq"`
	At        time.Time                 `json:"at"`
	Remaining int                       `json:"remaining"`
	Channels  map[string]ChannelPayload `json:"channels"`
}

func NewSamplePayload(runID string, res poller.CycleResult) SamplePayload {
	p := SamplePayload{
		RunID:     runID,
		Seq:       res.Seq,
		At:        res.At,
		Remaining: res.Remaining,
		Channels:  make(map[string]ChannelPayload, len(res.Samples)),
	}
	for _, smp := range res.Samples {
		p.Channels[smp.Channel.String()] = ChannelPayload{
			Voltage:       smp.Voltage,
			Current:       smp.Current,
			ActivePower:   smp.ActivePower,
			ReactivePower: smp.ReactivePower,
			ApparentPower: smp.ApparentPower,
			ActiveEnergy:  smp.ActiveEnergy,
		}
	}
	return p
}

func (s *Sink) Append(res poller.CycleResult) error {
	body, err := json.Marshal(NewSamplePayload(s.runID, res))
	if err != nil {
		return err
	}
	return s.publish(SampleTopic(s.cfg.Topic), false, body)
}

// Flush is a no-op: Append waits for every publish.
func (s *Sink) Flush() error { return nil }

// Close marks the run offline and disconnects.
func (s *Sink) Close(final status.Snapshot) error {
	err := s.publish(StateTopic(s.cfg.Topic), true, PayloadOffline)
	s.log.Debug("mqtt disconnect",
		zap.Uint16("health", final.Health),
		zap.Uint16("last_error", final.LastErrorCode),
	)
	s.cli.Disconnect(250)
	return err
}

func (s *Sink) publish(topic string, retain bool, payload interface{}) error {
	tok := s.cli.Publish(topic, s.cfg.QoS, retain, payload)
	if !tok.WaitTimeout(s.timeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// internal/writer/builder.go
package writer

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/ade9000-logger/internal/config"
	"github.com/tamzrod/ade9000-logger/internal/status"
	wcsv "github.com/tamzrod/ade9000-logger/internal/writer/csv"
	"github.com/tamzrod/ade9000-logger/internal/writer/ingest"
	wmodbus "github.com/tamzrod/ade9000-logger/internal/writer/modbus"
	wmqtt "github.com/tamzrod/ade9000-logger/internal/writer/mqtt"
)

// Options carries the per-run inputs that are not in the config file.
type Options struct {
	// Base names the CSV file; empty selects the timestamped default.
	Base  string
	RunID string
}

// Build opens every enabled sink in order csv, modbus, mqtt.
// If one fails, the ones already open are closed.
func Build(c *cfg.Config, opts Options, log *zap.Logger) (*Fanout, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var sinks []Sink
	fail := func(name string, err error) (*Fanout, error) {
		_ = New(sinks...).Close(status.Snapshot{
			Health:        status.HealthError,
			LastErrorCode: status.ErrorSink,
		})
		return nil, &SinkError{Sink: name, Op: "open", Err: err}
	}

	if cc := c.Sinks.CSV; cc != nil && !cc.Disable {
		s, err := wcsv.Open(wcsv.Config{
			Dir:    cc.Dir,
			Base:   opts.Base,
			Footer: cc.Footer,
		})
		if err != nil {
			return fail("csv", err)
		}
		log.Info("csv sink open", zap.String("path", s.Path()))
		sinks = append(sinks, s)
	}

	if mc := c.Sinks.Modbus; mc != nil {
		cli, err := openRegisterWriter(mc)
		if err != nil {
			return fail("modbus", err)
		}
		s, err := wmodbus.New(cli, wmodbus.SinkConfig{
			UnitID:        mc.UnitID,
			Address:       mc.Address,
			StatusAddress: mc.StatusAddress,
			Cycles:        c.Acquisition.Cycles,
		}, log.Named("modbus"))
		if err != nil {
			_ = cli.Close()
			return fail("modbus", err)
		}
		log.Info("modbus sink open",
			zap.String("transport", mc.Transport),
			zap.String("endpoint", mc.Endpoint),
			zap.Uint16("address", mc.Address),
		)
		sinks = append(sinks, s)
	}

	if qc := c.Sinks.MQTT; qc != nil {
		s, err := wmqtt.Dial(wmqtt.Config{
			Broker:   qc.Broker,
			Topic:    qc.Topic,
			ClientID: qc.ClientID,
			QoS:      qc.QoS,
			Username: qc.Username,
			Password: qc.Password,
			Timeout:  time.Duration(qc.TimeoutMs) * time.Millisecond,
		}, opts.RunID, log.Named("mqtt"))
		if err != nil {
			return fail("mqtt", err)
		}
		log.Info("mqtt sink open", zap.String("broker", qc.Broker), zap.String("topic", qc.Topic))
		sinks = append(sinks, s)
	}

	return New(sinks...), nil
}

func openRegisterWriter(mc *cfg.ModbusSinkConfig) (wmodbus.RegisterWriter, error) {
	timeout := time.Duration(mc.TimeoutMs) * time.Millisecond
	if mc.Transport == cfg.TransportIngest {
		c, err := ingest.NewClient(ingest.Config{Endpoint: mc.Endpoint, Timeout: timeout})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := wmodbus.NewTCPClient(wmodbus.Config{Endpoint: mc.Endpoint, Timeout: timeout})
	if err != nil {
		return nil, err
	}
	return c, nil
}

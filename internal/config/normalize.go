// internal/config/normalize.go
package config

import (
	"path/filepath"
	"strings"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if c := cfg.Sinks.CSV; c != nil {
		if c.Dir == "" {
			c.Dir = "."
		}
		c.Dir = filepath.Clean(c.Dir)
	}

	if q := cfg.Sinks.MQTT; q != nil {
		// "meter/lab/" and "/meter/lab" both publish under "meter/lab"
		q.Topic = strings.Trim(q.Topic, "/")

		// Broker given as host:port
		if !strings.Contains(q.Broker, "://") {
			q.Broker = "tcp://" + q.Broker
		}
	}
}

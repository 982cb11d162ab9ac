//go:build !linux

// internal/spi/spidev_other.go
package spi

// OpenSpidev always fails outside Linux; use the periph driver or the simulator.
func OpenSpidev(cfg Config) (Bus, error) {
	return nil, &TransportError{Op: "open", Path: cfg.Path, Err: ErrUnsupported}
}

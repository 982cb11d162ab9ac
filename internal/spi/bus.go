// internal/spi/bus.go
package spi

import (
	"errors"
	"fmt"
)

// Bus is the transport capability the device driver talks through.
// Every call is exactly one chip-select transaction.
type Bus interface {
	// Write clocks tx out and discards whatever the device drives back.
	Write(tx []byte) error
	// Read clocks zeros out and fills rx.
	Read(rx []byte) error
	// Transfer is full duplex: rx is filled while tx is clocked out.
	// len(rx) must equal len(tx).
	Transfer(tx, rx []byte) error
	// WriteThenRead sends tx and then reads len(rx) bytes in a single
	// two-segment message, chip select held in between.
	WriteThenRead(tx, rx []byte) error
	Close() error
}

// Config is the electrical configuration of one device handle.
type Config struct {
	Path        string
	Mode        uint8
	BitsPerWord uint8
	SpeedHz     uint32
}

// Driver names accepted by Open.
const (
	DriverSpidev = "spidev"
	DriverPeriph = "periph"
)

var (
	ErrUnsupported    = errors.New("spi: spidev is not supported on this platform")
	ErrLengthMismatch = errors.New("spi: tx and rx length differ")
	ErrClosed         = errors.New("spi: handle closed")
)

// TransportError wraps any failure of the bus handle.
// It is fatal for an acquisition run.
type TransportError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("spi %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Open opens and configures a handle with the named driver.
func Open(driver string, cfg Config) (Bus, error) {
	switch driver {
	case "", DriverSpidev:
		return OpenSpidev(cfg)
	case DriverPeriph:
		return OpenPeriph(cfg)
	default:
		return nil, fmt.Errorf("spi: unknown driver %q", driver)
	}
}

func checkDuplex(path string, tx, rx []byte) error {
	if len(tx) != len(rx) {
		return &TransportError{Op: "transfer", Path: path, Err: ErrLengthMismatch}
	}
	return nil
}

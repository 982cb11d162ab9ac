// internal/spi/periph.go
package spi

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// periphBus drives the device through periph.io's port registry, which
// covers spidev as well as the memory-mapped SoC controllers periph knows.
type periphBus struct {
	mu   sync.Mutex
	path string
	port spi.PortCloser
	conn spi.Conn
}

var hostInit struct {
	once sync.Once
	err  error
}

// OpenPeriph opens cfg.Path through spireg ("/dev/spidev0.0", "SPI0.0" or
// "" for the first registered port).
func OpenPeriph(cfg Config) (Bus, error) {
	hostInit.once.Do(func() {
		_, hostInit.err = host.Init()
	})
	if hostInit.err != nil {
		return nil, &TransportError{Op: "open", Path: cfg.Path, Err: fmt.Errorf("periph host init: %w", hostInit.err)}
	}

	port, err := spireg.Open(cfg.Path)
	if err != nil {
		return nil, &TransportError{Op: "open", Path: cfg.Path, Err: err}
	}

	conn, err := port.Connect(physic.Frequency(cfg.SpeedHz)*physic.Hertz, spi.Mode(cfg.Mode), int(cfg.BitsPerWord))
	if err != nil {
		_ = port.Close()
		return nil, &TransportError{Op: "configure", Path: cfg.Path, Err: err}
	}

	return &periphBus{path: cfg.Path, port: port, conn: conn}, nil
}

func (b *periphBus) tx(op string, fn func(spi.Conn) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return &TransportError{Op: op, Path: b.path, Err: ErrClosed}
	}
	if err := fn(b.conn); err != nil {
		return &TransportError{Op: op, Path: b.path, Err: err}
	}
	return nil
}

func (b *periphBus) Write(tx []byte) error {
	return b.tx("write", func(c spi.Conn) error { return c.Tx(tx, nil) })
}

func (b *periphBus) Read(rx []byte) error {
	return b.tx("read", func(c spi.Conn) error { return c.Tx(nil, rx) })
}

func (b *periphBus) Transfer(tx, rx []byte) error {
	if err := checkDuplex(b.path, tx, rx); err != nil {
		return err
	}
	return b.tx("transfer", func(c spi.Conn) error { return c.Tx(tx, rx) })
}

func (b *periphBus) WriteThenRead(tx, rx []byte) error {
	return b.tx("write-read", func(c spi.Conn) error {
		return c.TxPackets([]spi.Packet{
			{W: tx, KeepCS: true},
			{R: rx},
		})
	})
}

func (b *periphBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.port == nil {
		return nil
	}
	err := b.port.Close()
	b.port, b.conn = nil, nil
	if err != nil {
		return &TransportError{Op: "close", Path: b.path, Err: err}
	}
	return nil
}

// internal/simulator/simulator.go

// Package simulator answers ADE9000 SPI frames from an in-memory register
// file. It implements spi.Bus so the whole acquisition path can run
// without hardware.
package simulator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/spi"
)

// Path is reported in transport errors.
const Path = "sim://ade9000"

// DefaultVersion is returned for VERSION unless overridden.
const DefaultVersion uint32 = 0x00FE

var (
	ErrInjected   = errors.New("simulator: injected failure")
	ErrFrameWidth = errors.New("simulator: frame width does not match address")
	ErrDirection  = errors.New("simulator: read flag does not match transfer")
)

// Access is one decoded register transaction.
type Access struct {
	Addr  ade9000.Address
	Read  bool
	Width int
	Value uint32
}

// Device is a simulated ADE9000.
type Device struct {
	mu sync.Mutex

	regs map[ade9000.Address]uint32

	// EGYRDY rises on the ReadyAfter-th STATUS0 read after it was last cleared.
	readyAfter int
	polls      int

	// Transaction number (1-based) from which every transfer fails; 0 = never.
	failFrom int
	failErr  error
	count    int

	closed bool
	log    []Access

	// onInterval runs each time EGYRDY rises.
	onInterval func(regs map[ade9000.Address]uint32)
}

// New returns a device whose energy-ready flag rises on every readyAfter-th
// status poll (minimum 1).
func New(readyAfter int) *Device {
	if readyAfter < 1 {
		readyAfter = 1
	}
	return &Device{
		regs:       map[ade9000.Address]uint32{ade9000.VERSION: DefaultVersion},
		readyAfter: readyAfter,
	}
}

// Set stores a raw register value.
func (d *Device) Set(addr ade9000.Address, v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[addr] = v
}

// SetSigned stores a two's complement value.
func (d *Device) SetSigned(addr ade9000.Address, v int32) {
	d.Set(addr, uint32(v))
}

// Get returns a raw register value.
func (d *Device) Get(addr ade9000.Address) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[addr]
}

// OnInterval installs a hook that may rewrite registers each time a new
// energy interval completes.
func (d *Device) OnInterval(fn func(regs map[ade9000.Address]uint32)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onInterval = fn
}

// FailFrom makes transaction n and every later one fail with err
// (ErrInjected if nil).
func (d *Device) FailFrom(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	d.failFrom, d.failErr = n, err
}

// Accesses returns a copy of the transaction log.
func (d *Device) Accesses() []Access {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Access(nil), d.log...)
}

// Transactions returns the number of bus transactions seen.
func (d *Device) Transactions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Closed reports whether Close was called.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// ---- spi.Bus ----

func (d *Device) Write(tx []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	addr, read, err := d.begin("write", tx)
	if err != nil {
		return err
	}
	if read {
		return d.fail("write", ErrDirection)
	}

	w := ade9000.FrameWidth(addr)
	v := payload(tx[ade9000.HeaderLen:w])
	d.log = append(d.log, Access{Addr: addr, Width: w, Value: v})

	if addr == ade9000.STATUS0 {
		// write-1-to-clear
		if v&ade9000.EGYRDY != 0 {
			d.regs[ade9000.STATUS0] &^= ade9000.EGYRDY
			d.polls = 0
		}
		return nil
	}
	d.regs[addr] = v
	return nil
}

func (d *Device) Transfer(tx, rx []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(tx) != len(rx) {
		return d.fail("transfer", spi.ErrLengthMismatch)
	}
	addr, read, err := d.begin("transfer", tx)
	if err != nil {
		return err
	}
	if !read {
		return d.fail("transfer", ErrDirection)
	}

	v := d.readLocked(addr)
	w := ade9000.FrameWidth(addr)
	d.log = append(d.log, Access{Addr: addr, Read: true, Width: w, Value: v})

	clear(rx)
	putPayload(rx[ade9000.HeaderLen:w], v)
	return nil
}

func (d *Device) Read(rx []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.fail("read", spi.ErrClosed)
	}
	d.count++
	clear(rx)
	return nil
}

// WriteThenRead takes a 2-byte read header and returns the payload only.
func (d *Device) WriteThenRead(tx, rx []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.fail("write-read", spi.ErrClosed)
	}
	d.count++
	if d.failFrom > 0 && d.count >= d.failFrom {
		return d.fail("write-read", d.failErr)
	}
	if len(tx) < ade9000.HeaderLen {
		return d.fail("write-read", ErrFrameWidth)
	}
	addr, read := ade9000.ParseCommandHeader(tx)
	if !read || len(rx) != ade9000.PayloadLen(addr) {
		return d.fail("write-read", ErrFrameWidth)
	}

	v := d.readLocked(addr)
	d.log = append(d.log, Access{Addr: addr, Read: true, Width: ade9000.FrameWidth(addr), Value: v})
	putPayload(rx, v)
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// ---- internals ----

func (d *Device) begin(op string, tx []byte) (ade9000.Address, bool, error) {
	if d.closed {
		return 0, false, d.fail(op, spi.ErrClosed)
	}
	d.count++
	if d.failFrom > 0 && d.count >= d.failFrom {
		return 0, false, d.fail(op, d.failErr)
	}
	if len(tx) < ade9000.HeaderLen {
		return 0, false, d.fail(op, ErrFrameWidth)
	}

	addr, read := ade9000.ParseCommandHeader(tx)
	if len(tx) != ade9000.FrameWidth(addr) {
		return 0, false, d.fail(op, fmt.Errorf("%w: %s sent %d bytes", ErrFrameWidth, addr, len(tx)))
	}
	return addr, read, nil
}

func (d *Device) readLocked(addr ade9000.Address) uint32 {
	if addr == ade9000.STATUS0 && d.regs[ade9000.STATUS0]&ade9000.EGYRDY == 0 {
		d.polls++
		if d.polls >= d.readyAfter {
			d.regs[ade9000.STATUS0] |= ade9000.EGYRDY
			if d.onInterval != nil {
				d.onInterval(d.regs)
			}
		}
	}
	return d.regs[addr]
}

func (d *Device) fail(op string, err error) error {
	return &spi.TransportError{Op: op, Path: Path, Err: err}
}

func payload(b []byte) uint32 {
	if len(b) == 2 {
		return uint32(binary.BigEndian.Uint16(b))
	}
	return binary.BigEndian.Uint32(b)
}

func putPayload(b []byte, v uint32) {
	if len(b) == 2 {
		binary.BigEndian.PutUint16(b, uint16(v))
		return
	}
	binary.BigEndian.PutUint32(b, v)
}

//go:build linux

// internal/spi/spidev_linux.go
package spi

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/spi/spidev.h
const (
	iocWrite = 1
	iocRead  = 2
	iocMagic = 'k'

	transferSize = 32 // sizeof(struct spi_ioc_transfer)
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | iocMagic<<8 | nr
}

var (
	iocWrMode        = ioc(iocWrite, 1, 1)
	iocRdMode        = ioc(iocRead, 1, 1)
	iocWrBitsPerWord = ioc(iocWrite, 3, 1)
	iocRdBitsPerWord = ioc(iocRead, 3, 1)
	iocWrMaxSpeedHz  = ioc(iocWrite, 4, 4)
	iocRdMaxSpeedHz  = ioc(iocRead, 4, 4)
)

func iocMessage(n int) uintptr {
	return ioc(iocWrite, 0, uintptr(n*transferSize))
}

// iocTransfer mirrors struct spi_ioc_transfer.
type iocTransfer struct {
	txBuf          uint64
	rxBuf          uint64
	length         uint32
	speedHz        uint32
	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

// spidev is a /dev/spidevB.C handle driven through raw ioctls.
type spidev struct {
	mu  sync.Mutex
	fd  int
	cfg Config
}

// OpenSpidev opens the character device and applies mode, word size and
// clock speed, reading each one back to confirm the kernel accepted it.
func OpenSpidev(cfg Config) (Bus, error) {
	fd, err := unix.Open(cfg.Path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &TransportError{Op: "open", Path: cfg.Path, Err: err}
	}

	d := &spidev{fd: fd, cfg: cfg}
	if err := d.configure(); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return d, nil
}

func (d *spidev) configure() error {
	mode := d.cfg.Mode
	if err := d.setU8(iocWrMode, iocRdMode, mode, "mode"); err != nil {
		return err
	}
	if err := d.setU8(iocWrBitsPerWord, iocRdBitsPerWord, d.cfg.BitsPerWord, "bits per word"); err != nil {
		return err
	}

	speed := d.cfg.SpeedHz
	if err := d.ioctl(iocWrMaxSpeedHz, unsafe.Pointer(&speed)); err != nil {
		return &TransportError{Op: "configure", Path: d.cfg.Path, Err: fmt.Errorf("set max speed: %w", err)}
	}
	var got uint32
	if err := d.ioctl(iocRdMaxSpeedHz, unsafe.Pointer(&got)); err != nil {
		return &TransportError{Op: "configure", Path: d.cfg.Path, Err: fmt.Errorf("get max speed: %w", err)}
	}
	if got != speed {
		return &TransportError{Op: "configure", Path: d.cfg.Path, Err: fmt.Errorf("max speed read back %d, want %d", got, speed)}
	}
	return nil
}

func (d *spidev) setU8(wr, rd uintptr, v uint8, what string) error {
	if err := d.ioctl(wr, unsafe.Pointer(&v)); err != nil {
		return &TransportError{Op: "configure", Path: d.cfg.Path, Err: fmt.Errorf("set %s: %w", what, err)}
	}
	var got uint8
	if err := d.ioctl(rd, unsafe.Pointer(&got)); err != nil {
		return &TransportError{Op: "configure", Path: d.cfg.Path, Err: fmt.Errorf("get %s: %w", what, err)}
	}
	if got != v {
		return &TransportError{Op: "configure", Path: d.cfg.Path, Err: fmt.Errorf("%s read back %d, want %d", what, got, v)}
	}
	return nil
}

func (d *spidev) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func bufAddr(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&b[0])))
}

func (d *spidev) message(op string, xfers []iocTransfer, keep ...[]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fd < 0 {
		return &TransportError{Op: op, Path: d.cfg.Path, Err: ErrClosed}
	}
	for i := range xfers {
		xfers[i].speedHz = d.cfg.SpeedHz
		xfers[i].bitsPerWord = d.cfg.BitsPerWord
	}

	err := d.ioctl(iocMessage(len(xfers)), unsafe.Pointer(&xfers[0]))
	runtime.KeepAlive(keep)
	if err != nil {
		return &TransportError{Op: op, Path: d.cfg.Path, Err: err}
	}
	return nil
}

func (d *spidev) Write(tx []byte) error {
	return d.message("write", []iocTransfer{{
		txBuf:  bufAddr(tx),
		length: uint32(len(tx)),
	}}, tx)
}

func (d *spidev) Read(rx []byte) error {
	return d.message("read", []iocTransfer{{
		rxBuf:  bufAddr(rx),
		length: uint32(len(rx)),
	}}, rx)
}

func (d *spidev) Transfer(tx, rx []byte) error {
	if err := checkDuplex(d.cfg.Path, tx, rx); err != nil {
		return err
	}
	return d.message("transfer", []iocTransfer{{
		txBuf:  bufAddr(tx),
		rxBuf:  bufAddr(rx),
		length: uint32(len(tx)),
	}}, tx, rx)
}

func (d *spidev) WriteThenRead(tx, rx []byte) error {
	return d.message("write-read", []iocTransfer{
		{txBuf: bufAddr(tx), length: uint32(len(tx))},
		{rxBuf: bufAddr(rx), length: uint32(len(rx))},
	}, tx, rx)
}

func (d *spidev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	if err != nil {
		return &TransportError{Op: "close", Path: d.cfg.Path, Err: err}
	}
	return nil
}

//go:build linux

// internal/spi/spidev_linux_test.go
package spi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

// Request codes as produced by <linux/spi/spidev.h>.
func TestIoctlRequestCodes(t *testing.T) {
	assert.Equal(t, uintptr(0x40016b01), iocWrMode)
	assert.Equal(t, uintptr(0x80016b01), iocRdMode)
	assert.Equal(t, uintptr(0x40016b03), iocWrBitsPerWord)
	assert.Equal(t, uintptr(0x80046b04), iocRdMaxSpeedHz)
	assert.Equal(t, uintptr(0x40206b00), iocMessage(1))
	assert.Equal(t, uintptr(0x40406b00), iocMessage(2))
}

func TestTransferLayout(t *testing.T) {
	assert.Equal(t, uintptr(transferSize), unsafe.Sizeof(iocTransfer{}))
}

// internal/ade9000/frame.go
package ade9000

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame geometry.
// Every frame is a 2-byte command header followed by a 2- or 4-byte payload.
const (
	HeaderLen   = 2
	MaxFrameLen = 6

	shortFrameLen = 4
	longFrameLen  = 6

	shortRangeStart Address = 0x480
	shortRangeEnd   Address = 0x4FE

	// CMD_HDR[3]
	readBit uint16 = 1 << 3
)

var ErrShortResponse = errors.New("ade9000: response shorter than frame width")

// FrameWidth returns the on-wire length of any access to addr.
// It depends on the address only.
func FrameWidth(addr Address) int {
	if addr >= shortRangeStart && addr <= shortRangeEnd {
		return shortFrameLen
	}
	return longFrameLen
}

// PayloadLen returns the number of value bytes carried for addr.
func PayloadLen(addr Address) int {
	return FrameWidth(addr) - HeaderLen
}

// Frame is a fixed-capacity wire buffer with an explicit length.
type Frame struct {
	buf [MaxFrameLen]byte
	n   int
}

// Bytes returns the frame's wire bytes.
func (f *Frame) Bytes() []byte { return f.buf[:f.n] }

// Len returns the frame width.
func (f *Frame) Len() int { return f.n }

// CommandHeader builds CMD_HDR: address in [15:4], read flag in [3], zeros in [2:0].
func CommandHeader(addr Address, read bool) uint16 {
	h := uint16(addr) << 4
	if read {
		h |= readBit
	}
	return h
}

func newFrame(addr Address, read bool) Frame {
	f := Frame{n: FrameWidth(addr)}
	binary.BigEndian.PutUint16(f.buf[:HeaderLen], CommandHeader(addr, read))
	return f
}

// EncodeWriteFrame builds a write frame. value is right-aligned in the
// payload, least significant byte last; bits that do not fit are dropped.
func EncodeWriteFrame(addr Address, value uint32) Frame {
	f := newFrame(addr, false)
	for i := f.n - 1; i >= HeaderLen; i-- {
		f.buf[i] = byte(value)
		value >>= 8
	}
	return f
}

// EncodeReadHeader builds a read frame. The payload is zero and only
// clocks the device's answer back.
func EncodeReadHeader(addr Address) Frame {
	return newFrame(addr, true)
}

// DecodeReadResponse rebuilds the register value from rx[2:FrameWidth(addr)],
// most significant byte first. 32-bit registers are two's complement;
// 16-bit registers are unsigned.
func DecodeReadResponse(addr Address, rx []byte) (int32, error) {
	n := FrameWidth(addr)
	if len(rx) < n {
		return 0, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortResponse, addr, n, len(rx))
	}

	payload := rx[HeaderLen:n]
	if n == shortFrameLen {
		return int32(binary.BigEndian.Uint16(payload)), nil
	}
	return int32(binary.BigEndian.Uint32(payload)), nil
}

// ParseCommandHeader splits a header back into address and read flag.
func ParseCommandHeader(b []byte) (Address, bool) {
	h := binary.BigEndian.Uint16(b[:HeaderLen])
	return Address(h >> 4), h&readBit != 0
}

// internal/writer/ingest/client.go
package ingest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	magicHi byte = 0x52 // 'R'
	magicLo byte = 0x49 // 'I'

	versionV1 byte = 0x01

	// AreaHoldingRegisters is the only area the meter publishes into.
	AreaHoldingRegisters byte = 3

	respOK       byte = 0x00
	respRejected byte = 0x01

	headerLen = 10
)

// ErrRejected is returned when the endpoint refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// Client speaks Raw Ingest v1 (stateless, 1 packet = 1 connection).
// It satisfies the register sink's RegisterWriter.
type Client struct {
	endpoint string
	timeout  time.Duration
	dial     func(network, addr string, timeout time.Duration) (net.Conn, error)
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dial:     net.DialTimeout,
	}, nil
}

func (c *Client) Close() error { return nil }

// WriteRegisters sends regs as one holding-register packet.
func (c *Client) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	pkt := BuildPacket(AreaHoldingRegisters, unitID, addr, regs)

	conn, err := c.dial("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := writeAll(conn, pkt); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.timeout))
	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}

// ---- Raw Ingest v1 packet ----
//
// 0–1  Magic "RI"
// 2    Version (0x01)
// 3    Area
// 4–5  UnitID
// 6–7  Address
// 8–9  Count
// 10+  Payload, registers big-endian

func BuildPacket(area byte, unitID uint8, addr uint16, regs []uint16) []byte {
	pkt := make([]byte, headerLen+2*len(regs))

	pkt[0] = magicHi
	pkt[1] = magicLo
	pkt[2] = versionV1
	pkt[3] = area

	putU16(pkt[4:6], uint16(unitID))
	putU16(pkt[6:8], addr)
	putU16(pkt[8:10], uint16(len(regs)))

	for i, r := range regs {
		putU16(pkt[headerLen+2*i:], r)
	}
	return pkt
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

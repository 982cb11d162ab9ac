// internal/simulator/simulator_test.go
package simulator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/spi"
)

func read(t *testing.T, d *Device, addr ade9000.Address) uint32 {
	t.Helper()
	tx := ade9000.EncodeReadHeader(addr)
	rx := make([]byte, tx.Len())
	require.NoError(t, d.Transfer(tx.Bytes(), rx))
	v, err := ade9000.DecodeReadResponse(addr, rx)
	require.NoError(t, err)
	return uint32(v)
}

func write(t *testing.T, d *Device, addr ade9000.Address, v uint32) {
	t.Helper()
	f := ade9000.EncodeWriteFrame(addr, v)
	require.NoError(t, d.Write(f.Bytes()))
}

func TestVersionAndRegisters(t *testing.T) {
	d := New(1)
	assert.Equal(t, DefaultVersion, read(t, d, ade9000.VERSION))

	write(t, d, ade9000.EGY_TIME, 8000)
	assert.Equal(t, uint32(8000), read(t, d, ade9000.EGY_TIME))

	d.SetSigned(ade9000.AWATT, -1)
	assert.Equal(t, uint32(0xFFFFFFFF), read(t, d, ade9000.AWATT))
}

func TestEnergyReady_RisesAndClears(t *testing.T) {
	d := New(2)
	intervals := 0
	d.OnInterval(func(map[ade9000.Address]uint32) { intervals++ })

	assert.Zero(t, read(t, d, ade9000.STATUS0)&ade9000.EGYRDY)
	assert.NotZero(t, read(t, d, ade9000.STATUS0)&ade9000.EGYRDY)
	assert.NotZero(t, read(t, d, ade9000.STATUS0)&ade9000.EGYRDY, "sticky until cleared")
	assert.Equal(t, 1, intervals)

	// writing 0 does not clear
	write(t, d, ade9000.STATUS0, 0)
	assert.NotZero(t, read(t, d, ade9000.STATUS0)&ade9000.EGYRDY)

	write(t, d, ade9000.STATUS0, ade9000.EGYRDY)
	assert.Zero(t, read(t, d, ade9000.STATUS0)&ade9000.EGYRDY)
	assert.NotZero(t, read(t, d, ade9000.STATUS0)&ade9000.EGYRDY)
	assert.Equal(t, 2, intervals)
}

func TestFrameWidthEnforced(t *testing.T) {
	d := New(1)

	// VERSION is a 4-byte frame
	tx := []byte{0x4F, 0xE8, 0, 0, 0, 0}
	err := d.Transfer(tx, make([]byte, 6))
	assert.ErrorIs(t, err, ErrFrameWidth)

	var te *spi.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestDirectionEnforced(t *testing.T) {
	d := New(1)
	w := ade9000.EncodeWriteFrame(ade9000.RUN, 1)
	assert.ErrorIs(t, d.Transfer(w.Bytes(), make([]byte, w.Len())), ErrDirection)

	r := ade9000.EncodeReadHeader(ade9000.RUN)
	assert.ErrorIs(t, d.Write(r.Bytes()), ErrDirection)
}

func TestWriteThenRead(t *testing.T) {
	d := New(1)
	d.Set(ade9000.AIRMS, 0x01020304)

	hdr := ade9000.EncodeReadHeader(ade9000.AIRMS)
	rx := make([]byte, ade9000.PayloadLen(ade9000.AIRMS))
	require.NoError(t, d.WriteThenRead(hdr.Bytes()[:ade9000.HeaderLen], rx))
	assert.Equal(t, []byte{1, 2, 3, 4}, rx)
}

func TestFailFrom(t *testing.T) {
	d := New(1)
	boom := errors.New("cable")
	d.FailFrom(2, boom)

	read(t, d, ade9000.VERSION)
	tx := ade9000.EncodeReadHeader(ade9000.VERSION)
	assert.ErrorIs(t, d.Transfer(tx.Bytes(), make([]byte, tx.Len())), boom)
	assert.Equal(t, 2, d.Transactions())
	assert.Len(t, d.Accesses(), 1)
}

func TestApplyLoads(t *testing.T) {
	d := New(1)
	d.ApplyLoads(DefaultLoads)

	assert.Equal(t, DefaultLoads[0].VRMS, read(t, d, ade9000.AVRMS))
	assert.Zero(t, read(t, d, ade9000.AWATTHR_HI))

	read(t, d, ade9000.STATUS0) // interval completes
	assert.Equal(t, uint32(DefaultLoads[0].WATT), read(t, d, ade9000.AWATTHR_HI))
	assert.Zero(t, read(t, d, ade9000.CWATTHR_HI))
}

func TestClose(t *testing.T) {
	d := New(1)
	require.NoError(t, d.Close())
	assert.True(t, d.Closed())
	assert.ErrorIs(t, d.Read(make([]byte, 2)), spi.ErrClosed)
}

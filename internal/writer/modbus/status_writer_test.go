// internal/writer/modbus/status_writer_test.go
package modbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ade9000-logger/internal/status"
)

func TestStatusWriter_FullThenIncremental(t *testing.T) {
	cli := &fakeClient{}
	sw := newStatusWriter(cli, 1, 40)

	first := status.Snapshot{Health: status.HealthOK, CyclesRemaining: 20}
	require.NoError(t, sw.WriteStatus(first))
	require.Len(t, cli.writes, 1)
	assert.Equal(t, uint16(40), cli.writes[0].addr)
	assert.Len(t, cli.writes[0].regs, status.SlotsPerRun)

	// only the changed slot is written
	second := first
	second.CyclesRemaining = 19
	require.NoError(t, sw.WriteStatus(second))
	require.Len(t, cli.writes, 2)
	assert.Equal(t, uint16(40+status.SlotCyclesRemaining), cli.writes[1].addr)
	assert.Equal(t, []uint16{19}, cli.writes[1].regs)

	// unchanged snapshot writes nothing
	require.NoError(t, sw.WriteStatus(second))
	assert.Len(t, cli.writes, 2)
}

func TestStatusWriter_FailureForcesFullReassert(t *testing.T) {
	cli := &fakeClient{}
	sw := newStatusWriter(cli, 1, 0)
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	cli.failAt = map[uint16]error{status.SlotHealthCode: errors.New("timeout")}
	err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: status.ErrorTransport})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot0 health")

	// the block base is slot 0 as well, so recover the endpoint first
	cli.failAt = nil
	n := len(cli.writes)
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: status.ErrorTransport}))
	require.Len(t, cli.writes, n+1)
	assert.Len(t, cli.writes[n].regs, status.SlotsPerRun)
}

func TestStatusWriter_Disabled(t *testing.T) {
	var sw *statusWriter
	assert.Error(t, sw.WriteStatus(status.Snapshot{}))
}

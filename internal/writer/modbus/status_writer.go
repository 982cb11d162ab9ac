// internal/writer/modbus/status_writer.go
package modbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/ade9000-logger/internal/status"
)

// statusWriter publishes the run status block.
// It receives a snapshot and writes it verbatim.
type statusWriter struct {
	cli    RegisterWriter
	unitID uint8
	base   uint16

	needFull bool
	last     status.Snapshot
}

func newStatusWriter(cli RegisterWriter, unitID uint8, base uint16) *statusWriter {
	return &statusWriter{
		cli:      cli,
		unitID:   unitID,
		base:     base,
		needFull: true, // full re-assert on first successful write
	}
}

// WriteStatus delivers a run status snapshot.
// On any write failure, the next successful call re-asserts the full block.
func (sw *statusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.cli == nil {
		return errors.New("status writer: disabled")
	}

	// ------------------------------------------------------------
	// Full block write
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.unitID, sw.base, status.Encode(s)); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Changed slots only
	// ------------------------------------------------------------
	slots := []struct {
		name string
		slot int
		last *uint16
		next uint16
	}{
		{"health", status.SlotHealthCode, &sw.last.Health, s.Health},
		{"last_error", status.SlotLastErrorCode, &sw.last.LastErrorCode, s.LastErrorCode},
		{"cycles_remaining", status.SlotCyclesRemaining, &sw.last.CyclesRemaining, s.CyclesRemaining},
		{"rows_written", status.SlotRowsWritten, &sw.last.RowsWritten, s.RowsWritten},
	}

	var errs []string
	for _, sl := range slots {
		if *sl.last == sl.next {
			continue
		}
		if err := sw.cli.WriteRegisters(sw.unitID, sw.base+uint16(sl.slot), []uint16{sl.next}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", sl.slot, sl.name, err))
			continue
		}
		*sl.last = sl.next
	}

	if len(errs) > 0 {
		// Any partial failure: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

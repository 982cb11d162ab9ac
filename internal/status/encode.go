// internal/status/encode.go
package status

// Encode converts a Snapshot into a full run status block.
// Layout is fixed.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerRun)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotCyclesRemaining] = s.CyclesRemaining
	regs[SlotRowsWritten] = s.RowsWritten

	return regs
}

// Clamp16 saturates n into a register.
func Clamp16(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > 0xFFFF {
		return 0xFFFF
	}
	return uint16(n)
}

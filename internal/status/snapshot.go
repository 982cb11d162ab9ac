// internal/status/snapshot.go
package status

// Snapshot represents exactly what a sink is allowed to publish about the run.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health          uint16
	LastErrorCode   uint16
	CyclesRemaining uint16
	RowsWritten     uint16
}

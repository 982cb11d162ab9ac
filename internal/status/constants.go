// internal/status/constants.go
package status

// Run Status Block layout constants.
// These values define the published layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerRun is the fixed number of holding registers in the block.
const SlotsPerRun = 8

// ---- SLOT INDICES ----

// SlotHealthCode holds the run health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the code of the error that stopped the run.
const SlotLastErrorCode = 1

// SlotCyclesRemaining holds the countdown of cycles still to sample.
const SlotCyclesRemaining = 2

// SlotRowsWritten holds the number of rows delivered so far.
const SlotRowsWritten = 3

// Slots 4–7 are reserved.
const SlotReservedStart = 4
const SlotReservedEnd = 7

// ---- HEALTH CODES ----

// HealthUnknown represents the state before the first cycle.
const HealthUnknown uint16 = 0

// HealthOK represents a run that is sampling.
const HealthOK uint16 = 1

// HealthError represents a run stopped by an error.
const HealthError uint16 = 2

// HealthDone represents a run that completed its countdown.
const HealthDone uint16 = 3

// ---- ERROR CODES ----
// Same numbering as the process exit codes.

const (
	ErrorNone      uint16 = 0
	ErrorGeneric   uint16 = 1
	ErrorTransport uint16 = 2
	ErrorSink      uint16 = 3
	ErrorProtocol  uint16 = 4
	ErrorCanceled  uint16 = 130
)

// cmd/ade9000-logger/exit.go
package main

import (
	"context"
	"errors"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/spi"
	"github.com/tamzrod/ade9000-logger/internal/status"
	"github.com/tamzrod/ade9000-logger/internal/writer"
)

// Process exit codes. The status block reports the same numbers.
const (
	exitOK          = 0
	exitUsage       = 1
	exitTransport   = 2
	exitSink        = 3
	exitProtocol    = 4
	exitInterrupted = 130
)

// exitCode maps an error chain to a process exit code.
// Cancellation wins over whatever failed while shutting down.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	if errors.Is(err, ade9000.ErrUnknownRegister) {
		return exitProtocol
	}

	var te *spi.TransportError
	if errors.As(err, &te) {
		return exitTransport
	}
	var se *writer.SinkError
	if errors.As(err, &se) {
		return exitSink
	}
	return exitUsage
}

// finalSnapshot is the outcome handed to the sinks on close.
func finalSnapshot(err error, cycles, rows int) status.Snapshot {
	s := status.Snapshot{
		Health:          status.HealthDone,
		LastErrorCode:   status.ErrorNone,
		CyclesRemaining: status.Clamp16(cycles - rows),
		RowsWritten:     status.Clamp16(rows),
	}
	if err != nil {
		s.Health = status.HealthError
		s.LastErrorCode = uint16(exitCode(err))
	}
	return s
}

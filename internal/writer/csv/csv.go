// internal/writer/csv/csv.go
package csv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tamzrod/ade9000-logger/internal/ade9000"
	"github.com/tamzrod/ade9000-logger/internal/poller"
	"github.com/tamzrod/ade9000-logger/internal/status"
)

// FieldsPerRow is the sequence number plus six values per channel.
const FieldsPerRow = 1 + ade9000.NumChannels*6

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("writer csv: closed")

type Config struct {
	Dir string
	// Base is the file name without ".csv". Empty selects a timestamped name.
	Base   string
	Footer bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Sink writes one row per cycle to a CSV file.
type Sink struct {
	path   string
	f      *os.File
	buf    *bufio.Writer
	w      *csv.Writer
	footer bool
	now    func() time.Time
}

// FileName returns the file name for base, or the timestamped default.
func FileName(base string, at time.Time) string {
	if base == "" {
		return "ADE9000_" + at.Format("20060102-150405") + ".csv"
	}
	return base + ".csv"
}

// Header is the fixed first row.
func Header() []string {
	h := make([]string, 0, FieldsPerRow)
	h = append(h, "second")
	for _, ch := range ade9000.Channels {
		p := ch.String() + "-"
		h = append(h,
			p+"Voltage(V)",
			p+"Current(A)",
			p+"Power(W)",
			p+"VAR",
			p+"VA",
			p+"Energy(Wh)",
		)
	}
	return h
}

// Open creates (or truncates) the file and writes the header.
func Open(cfg Config) (*Sink, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}

	path := filepath.Join(cfg.Dir, FileName(cfg.Base, cfg.Now()))
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	buf := bufio.NewWriter(f)
	s := &Sink{
		path:   path,
		f:      f,
		buf:    buf,
		w:      csv.NewWriter(buf),
		footer: cfg.Footer,
		now:    cfg.Now,
	}

	if err := s.writeLine(Header()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return s, nil
}

func (s *Sink) Name() string { return "csv" }

// Path is the file being written.
func (s *Sink) Path() string { return s.path }

// Append writes and flushes one row, so an aborted run keeps every row
// appended before the abort.
func (s *Sink) Append(res poller.CycleResult) error {
	if s.f == nil {
		return ErrClosed
	}
	return s.writeLine(FormatRow(res))
}

func (s *Sink) Flush() error {
	if s.f == nil {
		return nil
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	return s.buf.Flush()
}

// Close writes the optional footer and closes the file.
// The final run status is not recorded in the table.
func (s *Sink) Close(_ status.Snapshot) error {
	if s.f == nil {
		return nil
	}
	var err error
	if s.footer {
		err = s.writeLine([]string{"Finish : " + s.now().Format(time.ANSIC)})
	} else {
		err = s.Flush()
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	s.f = nil
	return err
}

func (s *Sink) writeLine(fields []string) error {
	if err := s.w.Write(fields); err != nil {
		return err
	}
	return s.Flush()
}

// FormatRow renders one cycle: voltage %.2f, current %.4f, powers %.2f,
// energy %.3f.
func FormatRow(res poller.CycleResult) []string {
	row := make([]string, 0, FieldsPerRow)
	row = append(row, strconv.Itoa(res.Seq))
	for _, ch := range ade9000.Channels {
		smp := res.Sample(ch)
		row = append(row,
			strconv.FormatFloat(smp.Voltage, 'f', 2, 64),
			strconv.FormatFloat(smp.Current, 'f', 4, 64),
			strconv.FormatFloat(smp.ActivePower, 'f', 2, 64),
			strconv.FormatFloat(smp.ReactivePower, 'f', 2, 64),
			strconv.FormatFloat(smp.ApparentPower, 'f', 2, 64),
			strconv.FormatFloat(smp.ActiveEnergy, 'f', 3, 64),
		)
	}
	return row
}

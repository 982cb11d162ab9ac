// cmd/ade9000-logger/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tamzrod/ade9000-logger/internal/config"
	"github.com/tamzrod/ade9000-logger/internal/logging"
	"github.com/tamzrod/ade9000-logger/internal/metrics"
	"github.com/tamzrod/ade9000-logger/internal/poller"
	"github.com/tamzrod/ade9000-logger/internal/writer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ade9000-logger", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: ade9000-logger [flags] [name]")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "YAML config file (defaults apply when empty)")
	cycles := fs.Int("cycles", 0, "energy intervals to record (overrides config)")
	device := fs.String("device", "", "SPI device path (overrides config)")
	driver := fs.String("driver", "", "bus driver: spidev | periph | sim (overrides config)")
	dir := fs.String("dir", "", "CSV output directory (overrides config; rejected when sinks.csv.disable is set)")
	version := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *version {
		fmt.Println("ade9000-logger", versioninfo.Short())
		return exitOK
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}
	base := fs.Arg(0)

	// --------------------
	// Load + validate config
	// --------------------

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
			return exitUsage
		}
	}

	if *cycles != 0 {
		cfg.Acquisition.Cycles = *cycles
	}
	if *driver != "" {
		cfg.Bus.Driver = *driver
	}
	if *device != "" {
		cfg.Bus.Path = *device
	}
	if *dir != "" {
		if cfg.Sinks.CSV == nil {
			cfg.Sinks.CSV = &config.CSVConfig{}
		}
		if cfg.Sinks.CSV.Disable {
			fmt.Fprintln(os.Stderr, "-dir given but sinks.csv.disable is set")
			return exitUsage
		}
		cfg.Sinks.CSV.Dir = *dir
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		return exitUsage
	}
	config.Normalize(cfg)

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return exitUsage
	}
	defer func() { _ = log.Sync() }()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	log.Info("starting",
		zap.String("version", versioninfo.Short()),
		zap.String("driver", cfg.Bus.Driver),
		zap.String("device", cfg.Bus.Path),
		zap.Int("cycles", cfg.Acquisition.Cycles),
	)

	m := metrics.New()
	defer func() {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("metrics textfile write failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Build pipeline
	// --------------------

	p, closeDevice, err := poller.Build(cfg, log, m)
	if err != nil {
		log.Error("device init failed", zap.Error(err))
		return exitCode(err)
	}

	sinks, err := writer.Build(cfg, writer.Options{Base: base, RunID: runID}, log.Named("writer"))
	if err != nil {
		log.Error("sink open failed", zap.Error(err))
		_ = closeDevice()
		return exitCode(err)
	}

	// --------------------
	// Run
	// --------------------

	started := time.Now()
	rows, runErr := p.Run(ctx, sinks)

	final := finalSnapshot(runErr, cfg.Acquisition.Cycles, rows)
	err = multierr.Combine(runErr, sinks.Close(final), closeDevice())
	code := exitCode(err)

	fields := []zap.Field{
		zap.Int("rows", rows),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("exit_code", code),
	}
	switch {
	case err == nil:
		log.Info("finished", fields...)
	case code == exitInterrupted:
		log.Warn("interrupted", fields...)
	default:
		log.Error("run failed", append(fields, zap.Error(err))...)
	}
	return code
}

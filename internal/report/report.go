// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report emits conversion status messages and progress. A Reporter
// is created per conversion (or per process run) and passed explicitly; there
// is no package-level logger state.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ProgressFunc receives page-level progress: completed pages out of total
// pages in the scoped range. Returning an error aborts the conversion.
type ProgressFunc func(completed, total int) error

// Options selects where records go and how much is emitted.
type Options struct {
	// Verbose emits debug and info records; otherwise only warnings and errors.
	Verbose bool

	// LogFile, when set, receives a JSON copy of every emitted record.
	LogFile string

	// Console is the human-readable sink (default os.Stderr).
	Console io.Writer

	// NoColor disables ANSI colors on the console.
	NoColor bool
}

// Reporter wraps a zerolog logger with an optional log file it owns.
type Reporter struct {
	zl   zerolog.Logger
	file *os.File
	once sync.Once
}

// New builds a Reporter. A log file that cannot be opened is not an error:
// a warning is emitted and the reporter falls back to console-only output.
func New(opts Options) *Reporter {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	level := zerolog.WarnLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	cw := zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339, NoColor: opts.NoColor}

	var openErr error
	r := &Reporter{}
	if opts.LogFile != "" {
		r.file, openErr = openLogFile(opts.LogFile)
	}

	var out io.Writer = cw
	if r.file != nil {
		out = zerolog.MultiLevelWriter(cw, r.file)
	}
	r.zl = zerolog.New(out).Level(level).With().Timestamp().Str("component", "pdfdocx").Logger()

	if openErr != nil {
		r.zl.Warn().Err(openErr).Str("log_file", opts.LogFile).Msg("log file unavailable, logging to console only")
	}
	return r
}

// Nop returns a Reporter that discards everything.
func Nop() *Reporter {
	return &Reporter{zl: zerolog.Nop()}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}

// Logger returns the underlying zerolog logger.
func (r *Reporter) Logger() *zerolog.Logger { return &r.zl }

// With returns a child reporter that shares the log file and adds fields.
func (r *Reporter) With(key, value string) *Reporter {
	return &Reporter{zl: r.zl.With().Str(key, value).Logger()}
}

// Debug starts a debug record.
func (r *Reporter) Debug() *zerolog.Event { return r.zl.Debug() }

// Info starts an informational record.
func (r *Reporter) Info() *zerolog.Event { return r.zl.Info() }

// Warn starts a warning record.
func (r *Reporter) Warn() *zerolog.Event { return r.zl.Warn() }

// Error starts an error record.
func (r *Reporter) Error() *zerolog.Event { return r.zl.Error() }

// Close releases the log file, if any. Child reporters created with With
// do not own the file; only the reporter returned by New closes it.
func (r *Reporter) Close() error {
	var err error
	r.once.Do(func() {
		if r.file != nil {
			err = r.file.Close()
			r.file = nil
		}
	})
	return err
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs the external pdf2docx converter, either from a local
// install or from a container image. Each call converts one page range of one
// source into one DOCX file.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

const (
	// DefaultBinary is the pdf2docx executable looked up on PATH.
	DefaultBinary = "pdf2docx"
	// DefaultImage is the container image that provides pdf2docx.
	DefaultImage = "pdf2docx:latest"

	// stderrLimit caps how much engine stderr is carried into an error.
	stderrLimit = 2048
)

// Engine converts a page range of a PDF into a DOCX file.
type Engine interface {
	// Name identifies the engine in logs (e.g. "local:pdf2docx").
	Name() string

	// Convert runs one job to completion. The destination may be partially
	// written when an error is returned.
	Convert(ctx context.Context, job types.Job) error
}

// Args builds the pdf2docx command line for a job. pdf2docx takes a 0-based
// start index and an exclusive end index.
func Args(source, destination string, pages types.PageRange, extra []string) []string {
	args := []string{
		"convert",
		source,
		destination,
		fmt.Sprintf("--start=%d", pages.First),
		fmt.Sprintf("--end=%d", pages.Last+1),
	}
	return append(args, extra...)
}

// runner abstracts process execution for testing.
type runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osRunner) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Local runs a pdf2docx binary installed on the host.
type Local struct {
	bin   string
	extra []string
	run   runner
}

// NewLocal returns an engine that runs bin (DefaultBinary when empty).
func NewLocal(bin string, extra []string) *Local {
	return newLocal(bin, extra, osRunner{})
}

func newLocal(bin string, extra []string, r runner) *Local {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Local{bin: bin, extra: extra, run: r}
}

// Name implements Engine.
func (l *Local) Name() string { return "local:" + l.bin }

// Available reports whether the binary can be found.
func (l *Local) Available() bool {
	_, err := l.run.LookPath(l.bin)
	return err == nil
}

// Convert implements Engine.
func (l *Local) Convert(ctx context.Context, job types.Job) error {
	var stderr bytes.Buffer
	args := Args(job.Source, job.Destination, job.Pages, l.extra)
	if err := l.run.Run(ctx, l.bin, args, io.Discard, &stderr); err != nil {
		return commandError(l.bin, job, err, stderr.Bytes())
	}
	return nil
}

// commandError wraps a failed engine run with the page span and the tail of
// the engine's stderr.
func commandError(name string, job types.Job, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if len(msg) > stderrLimit {
		msg = "..." + msg[len(msg)-stderrLimit:]
	}
	if msg == "" {
		return fmt.Errorf("%s failed on pages %d-%d of %s: %w",
			name, job.Pages.First, job.Pages.Last, job.Source, err)
	}
	return fmt.Errorf("%s failed on pages %d-%d of %s: %w\n%s",
		name, job.Pages.First, job.Pages.Last, job.Source, err, msg)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert validates conversion requests and drives the external
// PDF-to-DOCX engine over them: in one call, page by page with progress
// reporting, or across parallel workers whose outputs are merged in page
// order. ConvertMany repeats this for many inputs with per-item failure
// isolation.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pdfdocx/internal/docx"
	"github.com/pdiddy/pdfdocx/internal/inspect"
	"github.com/pdiddy/pdfdocx/internal/report"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

// Engine converts the pages of one job. Implementations live in
// internal/engine.
type Engine interface {
	Name() string
	Convert(ctx context.Context, job types.Job) error
}

// Merger concatenates DOCX parts, in order, into dst.
type Merger interface {
	Merge(parts []string, dst string) error
}

// Deps are the collaborators a Converter delegates to. Engine is required;
// a nil Inspector or Merger selects the pdfcpu inspector and the DOCX merger.
type Deps struct {
	Engine    Engine
	Inspector Inspector
	Merger    Merger

	// Console receives human-readable log records (default os.Stderr).
	Console io.Writer
	NoColor bool
}

func (d Deps) withDefaults() Deps {
	if d.Inspector == nil {
		d.Inspector = inspect.PDFCPU{}
	}
	if d.Merger == nil {
		d.Merger = docx.Merger{}
	}
	return d
}

// Converter converts one source PDF into one DOCX destination. It owns the
// reporter (and its log file) until Close.
type Converter struct {
	source   string
	dest     string
	cfg      Config
	deps     Deps
	root     *report.Reporter
	log      *report.Reporter
	progress report.ProgressFunc
	pages    int
}

// New prepares a conversion of source into destination. An empty destination
// defaults to DestinationFor(source). The caller must Close the Converter.
func New(source, destination string, cfg Config, deps Deps) (*Converter, error) {
	if deps.Engine == nil {
		return nil, newError(InvalidConfiguration, "", "no conversion engine", nil)
	}
	if source == "" {
		return nil, newError(SourceNotFound, "", "empty source path", nil)
	}
	if destination == "" {
		destination = DestinationFor(source)
	}

	root := report.New(report.Options{
		Verbose: cfg.Verbose(),
		LogFile: cfg.LogFile(),
		Console: deps.Console,
		NoColor: deps.NoColor,
	})
	return &Converter{
		source: source,
		dest:   destination,
		cfg:    cfg,
		deps:   deps.withDefaults(),
		root:   root,
		log:    root.With("source", filepath.Base(source)),
	}, nil
}

// Source returns the source path.
func (c *Converter) Source() string { return c.source }

// Destination returns the resolved destination path.
func (c *Converter) Destination() string { return c.dest }

// Config returns the configuration in use.
func (c *Converter) Config() Config { return c.cfg }

// Pages returns the number of pages converted by the last successful call.
func (c *Converter) Pages() int { return c.pages }

// SetProgress registers fn to receive page progress during
// ConvertWithProgress. A nil fn drops progress events.
func (c *Converter) SetProgress(fn report.ProgressFunc) { c.progress = fn }

// Close releases the reporter. It is safe to call more than once.
func (c *Converter) Close() error { return c.root.Close() }

// Convert runs the conversion with one engine call per worker and returns
// the destination path.
func (c *Converter) Convert(ctx context.Context) (string, error) {
	return c.run(ctx, false)
}

// ConvertWithProgress runs the conversion one page at a time, reporting each
// completed page to the registered progress function in page order.
func (c *Converter) ConvertWithProgress(ctx context.Context) (string, error) {
	return c.run(ctx, true)
}

func (c *Converter) run(ctx context.Context, tracked bool) (string, error) {
	start := time.Now()
	c.pages = 0
	c.log.Info().Str("destination", c.dest).Str("engine", c.deps.Engine.Name()).Msg("starting conversion")
	c.log.Debug().Stringer("config", c.cfg).Msg("configuration")

	v, err := validate(c.source, c.dest, c.cfg, c.deps.Inspector)
	if err != nil {
		c.log.Error().Err(err).Msg("validation failed")
		return "", err
	}
	if v.backup != "" {
		c.log.Info().Str("backup", v.backup).Msg("backed up existing destination")
	}
	c.logSource(v.info)

	r, err := c.cfg.Range(v.info.Pages)
	if err != nil {
		c.log.Error().Err(err).Int("pages", v.info.Pages).Msg("invalid page range")
		return "", err
	}

	workers := 1
	if c.cfg.MultiProcessing() {
		workers = c.cfg.Workers(r.Len())
	}
	c.log.Debug().Int("first", r.First).Int("last", r.Last).Int("workers", workers).Bool("progress", tracked).Msg("page range resolved")

	switch {
	case workers > 1:
		err = c.convertParallel(ctx, r, workers, tracked)
	case tracked:
		err = c.convertSequential(ctx, r)
	default:
		err = c.convertBulk(ctx, r)
	}
	if err != nil {
		c.log.Error().Err(err).Msg("conversion failed")
		return "", err
	}

	st, err := os.Stat(c.dest)
	if err != nil {
		err = engineError(NoPage, c.dest, fmt.Errorf("engine produced no output: %w", err))
		c.log.Error().Err(err).Msg("conversion failed")
		return "", err
	}
	c.pages = r.Len()
	c.log.Info().
		Str("destination", c.dest).
		Int("pages", c.pages).
		Int64("bytes", st.Size()).
		Dur("elapsed", time.Since(start)).
		Msg("conversion complete")
	return c.dest, nil
}

func (c *Converter) logSource(info types.SourceInfo) {
	if !c.cfg.Verbose() {
		return
	}
	c.log.Info().
		Str("name", info.Name).
		Int64("size", info.Size).
		Int("pages", info.Pages).
		Str("version", info.Version).
		Bool("encrypted", info.Encrypted).
		Msg("source")
	if info.Encrypted {
		c.log.Warn().Msg("source is encrypted; the engine may fail to read it")
	}
}

func (c *Converter) convertBulk(ctx context.Context, r types.PageRange) error {
	job := types.Job{Source: c.source, Destination: c.dest, Pages: r}
	if err := c.deps.Engine.Convert(ctx, job); err != nil {
		return engineError(r.First, c.source, err)
	}
	return nil
}

// convertSequential converts r page by page on the calling goroutine.
func (c *Converter) convertSequential(ctx context.Context, r types.PageRange) error {
	total := r.Len()
	if total == 1 {
		if err := c.convertBulk(ctx, r); err != nil {
			return err
		}
		return c.emit(1, total)
	}

	dir, err := c.partsDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	completed := 0
	parts, err := c.pagewise(ctx, r, dir, func(int) error {
		completed++
		return c.emit(completed, total)
	})
	if err != nil {
		return err
	}
	return c.merge(parts)
}

// convertParallel splits r across workers, joins them, and merges their
// parts in page order. Progress events from workers are re-sequenced here so
// the callback sees pages in order.
func (c *Converter) convertParallel(ctx context.Context, r types.PageRange, workers int, tracked bool) error {
	chunks := r.Split(workers)
	dir, err := c.partsDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	parts := make([][]string, len(chunks))
	var events chan int
	if tracked {
		events = make(chan int, r.Len())
	}

	for i, chunk := range chunks {
		g.Go(func() error {
			c.log.Debug().Int("worker", i).Int("first", chunk.First).Int("last", chunk.Last).Msg("worker started")
			if tracked {
				ps, err := c.pagewise(gctx, chunk, dir, func(page int) error {
					events <- page
					return nil
				})
				parts[i] = ps
				return err
			}
			part := partPath(dir, chunk)
			job := types.Job{Source: c.source, Destination: part, Pages: chunk}
			if err := c.deps.Engine.Convert(gctx, job); err != nil {
				return engineError(chunk.First, c.source, err)
			}
			parts[i] = []string{part}
			return nil
		})
	}

	var waitErr error
	joined := make(chan struct{})
	go func() {
		waitErr = g.Wait()
		if events != nil {
			close(events)
		}
		close(joined)
	}()

	var cbErr error
	if tracked {
		seq := newSequencer(r)
		for page := range events {
			if cbErr != nil {
				continue
			}
			for _, n := range seq.complete(page) {
				if err := c.emit(n, seq.total()); err != nil {
					cbErr = err
					cancel()
					break
				}
			}
		}
	}
	<-joined

	if cbErr != nil {
		return cbErr
	}
	if waitErr != nil {
		return waitErr
	}

	all := make([]string, 0, r.Len())
	for _, ps := range parts {
		all = append(all, ps...)
	}
	return c.merge(all)
}

// pagewise converts each page of r into its own part under dir, calling done
// after every page. It stops at the first failure.
func (c *Converter) pagewise(ctx context.Context, r types.PageRange, dir string, done func(page int) error) ([]string, error) {
	parts := make([]string, 0, r.Len())
	for page := r.First; page <= r.Last; page++ {
		if err := ctx.Err(); err != nil {
			return parts, engineError(page, c.source, err)
		}
		pr := types.PageRange{First: page, Last: page}
		part := partPath(dir, pr)
		if err := c.deps.Engine.Convert(ctx, types.Job{Source: c.source, Destination: part, Pages: pr}); err != nil {
			return parts, engineError(page, c.source, err)
		}
		parts = append(parts, part)
		c.log.Debug().Int("page", page).Msg("page converted")
		if err := done(page); err != nil {
			return parts, err
		}
	}
	return parts, nil
}

func (c *Converter) merge(parts []string) error {
	c.log.Debug().Int("parts", len(parts)).Msg("merging parts")
	if err := c.deps.Merger.Merge(parts, c.dest); err != nil {
		return engineError(NoPage, c.dest, fmt.Errorf("merging parts: %w", err))
	}
	return nil
}

func (c *Converter) partsDir() (string, error) {
	dir, err := os.MkdirTemp("", "pdfdocx-parts-*")
	if err != nil {
		return "", newError(DestinationUnwritable, "", "creating temp directory", err)
	}
	return dir, nil
}

// emit delivers one progress event, converting callback errors and panics
// into ProgressCallbackError.
func (c *Converter) emit(completed, total int) (err error) {
	if c.progress == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = newError(ProgressCallbackError, "", "progress callback panicked", fmt.Errorf("%v", p))
		}
	}()
	if cbErr := c.progress(completed, total); cbErr != nil {
		var e *Error
		if errors.As(cbErr, &e) && e.Kind == ProgressCallbackError {
			return cbErr
		}
		return newError(ProgressCallbackError, "", "", cbErr)
	}
	return nil
}

func partPath(dir string, r types.PageRange) string {
	return filepath.Join(dir, fmt.Sprintf("part-%06d-%06d.docx", r.First, r.Last))
}

// sequencer turns out-of-order page completions into in-order completion
// counts.
type sequencer struct {
	first int
	done  []bool
	next  int
}

func newSequencer(r types.PageRange) *sequencer {
	return &sequencer{first: r.First, done: make([]bool, r.Len())}
}

func (s *sequencer) total() int { return len(s.done) }

// complete marks page done and returns the completion counts that became
// reportable, in increasing order.
func (s *sequencer) complete(page int) []int {
	s.done[page-s.first] = true
	var out []int
	for s.next < len(s.done) && s.done[s.next] {
		s.next++
		out = append(out, s.next)
	}
	return out
}

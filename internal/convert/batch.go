// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

// Request is one item of a batch. An empty Destination defaults to
// DestinationFor(Source); a nil Config means DefaultConfig().
type Request struct {
	Source      string
	Destination string
	Config      *Config
}

// Outcome records what happened to one Request.
type Outcome struct {
	Source      string
	Destination string
	Path        string // set on success
	Kind        Kind   // set on failure
	Err         error
	Pages       int
	StartedAt   time.Time
	Duration    time.Duration
}

// Status reports the outcome as a conversion status.
func (o Outcome) Status() types.ConversionStatus {
	if o.Err != nil {
		return types.ConversionFailed
	}
	return types.ConversionDone
}

// BatchOptions tunes ConvertMany.
type BatchOptions struct {
	// Jobs is how many requests run at once. Values below 2 run them
	// one after another.
	Jobs int
}

// BatchResult holds the outcome counts of a batch run.
type BatchResult struct {
	Converted int
	Failed    int
}

// Total returns the total number of requests processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any request failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertMany converts every request and returns one Outcome per request, in
// request order. A failing request never stops the others.
func ConvertMany(ctx context.Context, reqs []Request, deps Deps, opts BatchOptions) []Outcome {
	out := make([]Outcome, len(reqs))
	if opts.Jobs < 2 {
		for i, req := range reqs {
			out[i] = convertOne(ctx, req, deps)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(opts.Jobs)
	for i, req := range reqs {
		g.Go(func() error {
			out[i] = convertOne(ctx, req, deps)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func convertOne(ctx context.Context, req Request, deps Deps) Outcome {
	cfg := DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	dest := req.Destination
	if dest == "" {
		dest = DestinationFor(req.Source)
	}

	o := Outcome{Source: req.Source, Destination: dest, StartedAt: time.Now()}

	c, err := New(req.Source, dest, cfg, deps)
	if err != nil {
		o.Err, o.Kind = err, KindOf(err)
		o.Duration = time.Since(o.StartedAt)
		return o
	}
	defer c.Close()

	path, err := c.Convert(ctx)
	o.Duration = time.Since(o.StartedAt)
	if err != nil {
		o.Err, o.Kind = err, KindOf(err)
		return o
	}
	o.Path, o.Pages = path, c.Pages()
	return o
}

// Summarize counts successes and failures.
func Summarize(outcomes []Outcome) BatchResult {
	var r BatchResult
	for _, o := range outcomes {
		if o.Err != nil {
			r.Failed++
		} else {
			r.Converted++
		}
	}
	return r
}

// WriteSummary prints one line per outcome followed by the batch summary and
// returns the counts.
func WriteSummary(w io.Writer, outcomes []Outcome) BatchResult {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", o.Source, o.Err)
			continue
		}
		fmt.Fprintf(w, "converted: %s -> %s (%d pages)\n", o.Source, o.Path, o.Pages)
	}
	r := Summarize(outcomes)
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		r.Converted, r.Failed, r.Total())
	return r
}

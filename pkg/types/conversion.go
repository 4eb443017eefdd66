// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one source document.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// PageRange is a 0-based page span, inclusive on both ends.
type PageRange struct {
	First int `json:"first" yaml:"first"`
	Last  int `json:"last" yaml:"last"`
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// Split partitions the range into at most n contiguous, disjoint sub-ranges
// in page order. Earlier sub-ranges receive the remainder pages.
func (r PageRange) Split(n int) []PageRange {
	total := r.Len()
	if total == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}

	size, extra := total/n, total%n
	out := make([]PageRange, 0, n)
	first := r.First
	for i := 0; i < n; i++ {
		count := size
		if i < extra {
			count++
		}
		out = append(out, PageRange{First: first, Last: first + count - 1})
		first += count
	}
	return out
}

// Job is a single call to the external conversion engine.
type Job struct {
	Source      string    `json:"source" yaml:"source"`
	Destination string    `json:"destination" yaml:"destination"`
	Pages       PageRange `json:"pages" yaml:"pages"`
}

// SourceInfo describes a source PDF.
type SourceInfo struct {
	Path      string `json:"path" yaml:"path"`
	Name      string `json:"name" yaml:"name"`
	Size      int64  `json:"size" yaml:"size"`
	Pages     int    `json:"pages" yaml:"pages"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Encrypted bool   `json:"encrypted" yaml:"encrypted"`
}

// HistoryEntry is one journaled conversion attempt.
type HistoryEntry struct {
	ID          string           `json:"id" yaml:"id"`
	BatchID     string           `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`
	Source      string           `json:"source" yaml:"source"`
	Destination string           `json:"destination" yaml:"destination"`
	Pages       int              `json:"pages" yaml:"pages"`
	Status      ConversionStatus `json:"status" yaml:"status"`
	ErrorKind   string           `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error       string           `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt   time.Time        `json:"started_at" yaml:"started_at"`
	Duration    time.Duration    `json:"duration" yaml:"duration"`
}

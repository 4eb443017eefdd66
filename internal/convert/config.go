// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

// Config is an immutable, validated conversion configuration. The zero value
// is not meaningful; build one with NewConfig or DefaultConfig. Two Configs
// are equal (==) when all their settings are equal.
type Config struct {
	startPage       int
	endPage         int
	hasEnd          bool
	overwrite       bool
	createBackup    bool
	verbose         bool
	logFile         string
	multiProcessing bool
	cpuCount        int
	hasCPUCount     bool
}

// DefaultConfig converts every page, with verbose output and nothing else
// enabled.
func DefaultConfig() Config {
	return Config{verbose: true}
}

// NewConfig validates opts. Every violation is reported in a single
// InvalidConfiguration error.
func NewConfig(opts types.ConversionOptions) (Config, error) {
	var problems []string
	if opts.StartPage < 0 {
		problems = append(problems, fmt.Sprintf("start_page must be >= 0, got %d", opts.StartPage))
	}
	if opts.EndPage != nil && *opts.EndPage < opts.StartPage {
		problems = append(problems, fmt.Sprintf("end_page (%d) must be >= start_page (%d)", *opts.EndPage, opts.StartPage))
	}
	if opts.CPUCount != nil && *opts.CPUCount <= 0 {
		problems = append(problems, fmt.Sprintf("cpu_count must be > 0, got %d", *opts.CPUCount))
	}
	if len(problems) > 0 {
		return Config{}, newError(InvalidConfiguration, "", strings.Join(problems, "; "), nil)
	}

	c := Config{
		startPage:       opts.StartPage,
		overwrite:       opts.Overwrite,
		createBackup:    opts.CreateBackup,
		verbose:         opts.Verbose,
		logFile:         opts.LogFile,
		multiProcessing: opts.MultiProcessing,
	}
	if opts.EndPage != nil {
		c.endPage, c.hasEnd = *opts.EndPage, true
	}
	if opts.CPUCount != nil {
		c.cpuCount, c.hasCPUCount = *opts.CPUCount, true
	}
	return c, nil
}

func (c Config) StartPage() int { return c.startPage }

// EndPage returns the last page to convert and whether one was set.
func (c Config) EndPage() (int, bool) { return c.endPage, c.hasEnd }

func (c Config) Overwrite() bool       { return c.overwrite }
func (c Config) CreateBackup() bool    { return c.createBackup }
func (c Config) Verbose() bool         { return c.verbose }
func (c Config) LogFile() string       { return c.logFile }
func (c Config) MultiProcessing() bool { return c.multiProcessing }

// CPUCount returns the requested worker count and whether one was set.
func (c Config) CPUCount() (int, bool) { return c.cpuCount, c.hasCPUCount }

// Options returns the plain, serializable form of c.
func (c Config) Options() types.ConversionOptions {
	opts := types.ConversionOptions{
		StartPage:       c.startPage,
		Overwrite:       c.overwrite,
		CreateBackup:    c.createBackup,
		Verbose:         c.verbose,
		LogFile:         c.logFile,
		MultiProcessing: c.multiProcessing,
	}
	if c.hasEnd {
		end := c.endPage
		opts.EndPage = &end
	}
	if c.hasCPUCount {
		n := c.cpuCount
		opts.CPUCount = &n
	}
	return opts
}

// Range resolves the configured pages against a source with the given page
// count. An end page past the last page is clamped; a start page past it is
// an InvalidConfiguration error.
func (c Config) Range(pages int) (types.PageRange, error) {
	last := pages - 1
	if c.startPage > last {
		return types.PageRange{}, newError(InvalidConfiguration, "",
			fmt.Sprintf("start_page %d is beyond the last page %d", c.startPage, last), nil)
	}
	r := types.PageRange{First: c.startPage, Last: last}
	if c.hasEnd && c.endPage < last {
		r.Last = c.endPage
	}
	return r, nil
}

// Workers returns how many parallel workers to use for a range of pages
// pages long: the configured CPU count (or every CPU), never more than
// the number of pages and never fewer than one.
func (c Config) Workers(pages int) int {
	n := runtime.NumCPU()
	if c.hasCPUCount {
		n = c.cpuCount
	}
	if n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (c Config) String() string {
	end := "last"
	if c.hasEnd {
		end = fmt.Sprint(c.endPage)
	}
	cpus := "auto"
	if c.hasCPUCount {
		cpus = fmt.Sprint(c.cpuCount)
	}
	return fmt.Sprintf("pages=%d..%s overwrite=%t backup=%t verbose=%t multi_processing=%t cpu_count=%s",
		c.startPage, end, c.overwrite, c.createBackup, c.verbose, c.multiProcessing, cpus)
}

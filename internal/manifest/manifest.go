// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest loads batch conversion manifests: a YAML file listing
// jobs, each inheriting conversion options from a shared defaults block.
//
//	defaults:
//	  overwrite: true
//	jobs:
//	  - source: a.pdf
//	  - source: b.pdf
//	    destination: out/b.docx
//	    start_page: 2
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfdocx/internal/convert"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

type document struct {
	Defaults yaml.Node   `yaml:"defaults"`
	Jobs     []yaml.Node `yaml:"jobs"`
}

type job struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`

	types.ConversionOptions `yaml:",inline"`
}

// Load reads the manifest at path. Relative source and destination paths
// resolve against the manifest's directory. base supplies options that
// neither the defaults block nor a job sets.
func Load(path string, base types.ConversionOptions) ([]convert.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	reqs, err := Parse(data, base)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range reqs {
		reqs[i].Source = resolve(dir, reqs[i].Source)
		reqs[i].Destination = resolve(dir, reqs[i].Destination)
	}
	return reqs, nil
}

// Parse decodes manifest data without resolving paths.
func Parse(data []byte, base types.ConversionOptions) ([]convert.Request, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid("empty manifest")
		}
		return nil, invalid(fmt.Sprintf("parsing YAML: %v", err))
	}

	defaults := base
	if !doc.Defaults.IsZero() {
		if err := decodeStrict(&doc.Defaults, &defaults); err != nil {
			return nil, invalid(fmt.Sprintf("defaults: %v", err))
		}
	}
	if len(doc.Jobs) == 0 {
		return nil, invalid("no jobs")
	}

	reqs := make([]convert.Request, 0, len(doc.Jobs))
	for i := range doc.Jobs {
		j := job{ConversionOptions: cloneOptions(defaults)}
		if err := decodeStrict(&doc.Jobs[i], &j); err != nil {
			return nil, invalid(fmt.Sprintf("job %d: %v", i, err))
		}
		if j.Source == "" {
			return nil, invalid(fmt.Sprintf("job %d: missing source", i))
		}
		cfg, err := convert.NewConfig(j.ConversionOptions)
		if err != nil {
			var cerr *convert.Error
			msg := err.Error()
			if errors.As(err, &cerr) {
				msg = cerr.Message
			}
			return nil, &convert.Error{
				Kind:    convert.InvalidConfiguration,
				Path:    j.Source,
				Page:    convert.NoPage,
				Message: fmt.Sprintf("job %d: %s", i, msg),
			}
		}
		reqs = append(reqs, convert.Request{Source: j.Source, Destination: j.Destination, Config: &cfg})
	}
	return reqs, nil
}

// decodeStrict decodes node into out, rejecting keys out does not declare.
// Node.Decode has no KnownFields switch, so the node is re-encoded and read
// back through a strict decoder.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// cloneOptions copies opts so a job's decode cannot write through the
// shared pointer fields of the defaults.
func cloneOptions(opts types.ConversionOptions) types.ConversionOptions {
	if opts.EndPage != nil {
		end := *opts.EndPage
		opts.EndPage = &end
	}
	if opts.CPUCount != nil {
		n := *opts.CPUCount
		opts.CPUCount = &n
	}
	return opts
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func invalid(msg string) error {
	return &convert.Error{Kind: convert.InvalidConfiguration, Page: convert.NoPage, Message: msg}
}

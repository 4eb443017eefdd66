// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfdocx/internal/convert"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

const sample = `
defaults:
  overwrite: true
  end_page: 9
jobs:
  - source: a.pdf
  - source: sub/b.pdf
    destination: out/b.docx
    start_page: 2
  - source: /abs/c.pdf
    end_page: null
    multi_processing: true
    cpu_count: 2
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, sample)
	dir := filepath.Dir(path)

	reqs, err := Load(path, types.ConversionOptions{Verbose: true})
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, filepath.Join(dir, "a.pdf"), reqs[0].Source)
	assert.Empty(t, reqs[0].Destination)
	assert.Equal(t, filepath.Join(dir, "sub", "b.pdf"), reqs[1].Source)
	assert.Equal(t, filepath.Join(dir, "out", "b.docx"), reqs[1].Destination)
	assert.Equal(t, "/abs/c.pdf", reqs[2].Source)

	first := reqs[0].Config
	require.NotNil(t, first)
	assert.True(t, first.Overwrite())
	assert.True(t, first.Verbose(), "base options apply when the manifest is silent")
	end, ok := first.EndPage()
	assert.True(t, ok)
	assert.Equal(t, 9, end)

	second := reqs[1].Config
	assert.Equal(t, 2, second.StartPage())
	end, _ = second.EndPage()
	assert.Equal(t, 9, end)

	third := reqs[2].Config
	_, ok = third.EndPage()
	assert.False(t, ok, "null end_page clears the default")
	assert.True(t, third.MultiProcessing())
	n, _ := third.CPUCount()
	assert.Equal(t, 2, n)

	// Later jobs must not alter the defaults seen by earlier ones.
	end, _ = first.EndPage()
	assert.Equal(t, 9, end)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{name: "empty", data: "", wantMsg: "empty manifest"},
		{name: "no jobs", data: "defaults: {overwrite: true}\n", wantMsg: "no jobs"},
		{name: "unknown top-level key", data: "job: []\n", wantMsg: "parsing YAML"},
		{name: "missing source", data: "jobs:\n  - destination: x.docx\n", wantMsg: "job 0: missing source"},
		{name: "bad type", data: "jobs:\n  - source: a.pdf\n    start_page: many\n", wantMsg: "job 0"},
		{
			name:    "invalid range",
			data:    "jobs:\n  - source: a.pdf\n  - source: b.pdf\n    start_page: 5\n    end_page: 1\n",
			wantMsg: "job 1: end_page (1) must be >= start_page (5)",
		},
		{name: "unknown job key", data: "jobs:\n  - source: a.pdf\n    strat_page: 4\n", wantMsg: "job 0: "},
		{name: "unknown job key in later job", data: "jobs:\n  - source: a.pdf\n  - source: b.pdf\n    overwite: true\n", wantMsg: "job 1: "},
		{name: "unknown defaults key", data: "defaults:\n  strat_page: 4\njobs:\n  - source: a.pdf\n", wantMsg: "defaults: "},
		{name: "invalid defaults", data: "defaults: {cpu_count: 0}\njobs:\n  - source: a.pdf\n", wantMsg: "cpu_count must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), types.ConversionOptions{})
			require.Error(t, err)
			assert.Equal(t, convert.InvalidConfiguration, convert.KindOf(err))
			assert.True(t, strings.Contains(err.Error(), tt.wantMsg), "error %q does not mention %q", err, tt.wantMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), types.ConversionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manifest")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelSelection(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "verbose emits debug and info", verbose: true, wantDebug: true, wantInfo: true},
		{name: "quiet emits warnings only", verbose: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := New(Options{Verbose: tt.verbose, Console: &buf, NoColor: true})
			defer r.Close()

			r.Debug().Msg("debug-line")
			r.Info().Msg("info-line")
			r.Warn().Msg("warn-line")
			r.Error().Msg("error-line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug-line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info-line"))
			assert.Contains(t, out, "warn-line")
			assert.Contains(t, out, "error-line")
		})
	}
}

func TestNew_LogFileDuplicatesRecords(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "convert.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0o755))
	require.NoError(t, os.WriteFile(logPath, []byte("{\"previous\":true}\n"), 0o644))

	var buf bytes.Buffer
	r := New(Options{Verbose: true, LogFile: logPath, Console: &buf, NoColor: true})
	r.Info().Msg("first")
	r.Warn().Msg("second")
	require.NoError(t, r.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "{\"previous\":true}\n"), "log file should be appended, not truncated")
	assert.Contains(t, content, `"message":"first"`)
	assert.Contains(t, content, `"message":"second"`)
	assert.Contains(t, buf.String(), "first")
}

func TestNew_LogFileOpenFailureFallsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var buf bytes.Buffer
	r := New(Options{Verbose: false, LogFile: filepath.Join(blocker, "x.log"), Console: &buf, NoColor: true})
	defer r.Close()

	assert.Contains(t, buf.String(), "log file unavailable")

	r.Error().Msg("still-logged")
	assert.Contains(t, buf.String(), "still-logged")
}

func TestClose_Idempotent(t *testing.T) {
	r := New(Options{LogFile: filepath.Join(t.TempDir(), "a.log"), Console: &bytes.Buffer{}})
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.NoError(t, Nop().Close())
}

func TestWith_AddsField(t *testing.T) {
	var buf bytes.Buffer
	r := New(Options{Verbose: true, Console: &buf, NoColor: true})
	r.With("source", "a.pdf").Info().Msg("hello")
	assert.Contains(t, buf.String(), "source=a.pdf")
}

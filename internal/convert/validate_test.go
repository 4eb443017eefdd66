// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

// fakeInspector reports a fixed page count, or an error.
type fakeInspector struct {
	pages int
	err   error
}

func (f fakeInspector) Inspect(path string) (types.SourceInfo, error) {
	if f.err != nil {
		return types.SourceInfo{}, f.err
	}
	return types.SourceInfo{Path: path, Name: filepath.Base(path), Size: 42, Pages: f.pages, Version: "1.7"}, nil
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustConfig(t *testing.T, opts types.ConversionOptions) Config {
	t.Helper()
	cfg, err := NewConfig(opts)
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string) (src, dst string)
		opts     types.ConversionOptions
		insp     fakeInspector
		wantKind Kind
	}{
		{
			name: "valid",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "a.pdf"), "pdf"), filepath.Join(dir, "a.docx")
			},
			insp: fakeInspector{pages: 3},
		},
		{
			name: "missing source",
			setup: func(t *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "nope.pdf"), filepath.Join(dir, "a.docx")
			},
			insp:     fakeInspector{pages: 3},
			wantKind: SourceNotFound,
		},
		{
			name: "source is a directory",
			setup: func(t *testing.T, dir string) (string, string) {
				src := filepath.Join(dir, "folder.pdf")
				require.NoError(t, os.Mkdir(src, 0o755))
				return src, filepath.Join(dir, "a.docx")
			},
			insp:     fakeInspector{pages: 3},
			wantKind: SourceNotFound,
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "a.txt"), "text"), filepath.Join(dir, "a.docx")
			},
			insp:     fakeInspector{pages: 3},
			wantKind: UnsupportedSourceType,
		},
		{
			name: "uppercase extension accepted",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "A.PDF"), "pdf"), filepath.Join(dir, "a.docx")
			},
			insp: fakeInspector{pages: 1},
		},
		{
			name: "unreadable PDF",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "a.pdf"), "junk"), filepath.Join(dir, "a.docx")
			},
			insp:     fakeInspector{err: errors.New("no header")},
			wantKind: UnsupportedSourceType,
		},
		{
			name: "no pages",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "a.pdf"), "pdf"), filepath.Join(dir, "a.docx")
			},
			insp:     fakeInspector{pages: 0},
			wantKind: UnsupportedSourceType,
		},
		{
			name: "destination exists",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "a.pdf"), "pdf"), writeFile(t, filepath.Join(dir, "a.docx"), "old")
			},
			insp:     fakeInspector{pages: 3},
			wantKind: DestinationExists,
		},
		{
			name: "destination exists with overwrite",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "a.pdf"), "pdf"), writeFile(t, filepath.Join(dir, "a.docx"), "old")
			},
			opts: types.ConversionOptions{Overwrite: true},
			insp: fakeInspector{pages: 3},
		},
		{
			name: "missing parent directory",
			setup: func(t *testing.T, dir string) (string, string) {
				return writeFile(t, filepath.Join(dir, "a.pdf"), "pdf"), filepath.Join(dir, "missing", "a.docx")
			},
			insp:     fakeInspector{pages: 3},
			wantKind: DestinationUnwritable,
		},
		{
			name: "parent is a file",
			setup: func(t *testing.T, dir string) (string, string) {
				parent := writeFile(t, filepath.Join(dir, "file"), "x")
				return writeFile(t, filepath.Join(dir, "a.pdf"), "pdf"), filepath.Join(parent, "a.docx")
			},
			insp:     fakeInspector{pages: 3},
			wantKind: DestinationUnwritable,
		},
		{
			name: "destination is a directory",
			setup: func(t *testing.T, dir string) (string, string) {
				dst := filepath.Join(dir, "out.docx")
				require.NoError(t, os.Mkdir(dst, 0o755))
				return writeFile(t, filepath.Join(dir, "a.pdf"), "pdf"), dst
			},
			opts:     types.ConversionOptions{Overwrite: true},
			insp:     fakeInspector{pages: 3},
			wantKind: DestinationUnwritable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src, dst := tt.setup(t, dir)

			_, err := validate(src, dst, mustConfig(t, tt.opts), tt.insp)
			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err), "error: %v", err)
		})
	}
}

func TestValidate_LeavesNoProbeBehind(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.pdf"), "pdf")

	_, err := validate(src, filepath.Join(dir, "a.docx"), DefaultConfig(), fakeInspector{pages: 1})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.pdf", entries[0].Name())
}

func TestValidate_BackupBeforeOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.pdf"), "pdf")
	dst := writeFile(t, filepath.Join(dir, "a.docx"), "original")
	cfg := mustConfig(t, types.ConversionOptions{Overwrite: true, CreateBackup: true})

	v, err := validate(src, dst, cfg, fakeInspector{pages: 1})
	require.NoError(t, err)
	assert.Equal(t, dst+".bak", v.backup)

	data, err := os.ReadFile(v.backup)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestBackup_Numbering(t *testing.T) {
	dir := t.TempDir()
	dst := writeFile(t, filepath.Join(dir, "a.docx"), "v1")

	first, err := Backup(dst)
	require.NoError(t, err)
	assert.Equal(t, dst+".bak", first)

	require.NoError(t, os.WriteFile(dst, []byte("v2"), 0o644))
	second, err := Backup(dst)
	require.NoError(t, err)
	assert.Equal(t, dst+".bak.1", second)

	require.NoError(t, os.WriteFile(dst, []byte("v3"), 0o644))
	third, err := Backup(dst)
	require.NoError(t, err)
	assert.Equal(t, dst+".bak.2", third)

	for path, want := range map[string]string{first: "v1", second: "v2", third: "v3"} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(data), path)
	}
}

func TestBackup_PreservesModeAndTime(t *testing.T) {
	dir := t.TempDir()
	dst := writeFile(t, filepath.Join(dir, "a.docx"), "content")
	require.NoError(t, os.Chmod(dst, 0o600))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(dst, mtime, mtime))

	bak, err := Backup(dst)
	require.NoError(t, err)

	st, err := os.Stat(bak)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
	assert.True(t, st.ModTime().Equal(mtime), "mtime = %v, want %v", st.ModTime(), mtime)
}

func TestBackup_MetadataFailureRemovesCopy(t *testing.T) {
	tests := []struct {
		name  string
		patch func(t *testing.T)
		want  string
	}{
		{
			name: "mode",
			patch: func(t *testing.T) {
				orig := chmod
				chmod = func(string, os.FileMode) error { return errors.New("read-only filesystem") }
				t.Cleanup(func() { chmod = orig })
			},
			want: "setting mode",
		},
		{
			name: "times",
			patch: func(t *testing.T) {
				orig := chtimes
				chtimes = func(string, time.Time, time.Time) error { return errors.New("read-only filesystem") }
				t.Cleanup(func() { chtimes = orig })
			},
			want: "setting times",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dst := writeFile(t, filepath.Join(dir, "a.docx"), "content")
			tt.patch(t)

			_, err := Backup(dst)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			_, statErr := os.Stat(dst + ".bak")
			assert.True(t, os.IsNotExist(statErr), "partial backup left behind")
		})
	}
}

func TestBackup_NoFreeName(t *testing.T) {
	dir := t.TempDir()
	dst := writeFile(t, filepath.Join(dir, "a.docx"), "content")
	occupyBackupNames(t, dst)

	_, err := Backup(dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no free backup name")
}

// occupyBackupNames creates every backup name Backup would try for path.
func occupyBackupNames(t *testing.T, path string) {
	t.Helper()
	writeFile(t, path+".bak", "old backup")
	for i := 1; i < maxBackups; i++ {
		writeFile(t, fmt.Sprintf("%s.bak.%d", path, i), "old backup")
	}
}

func TestBackup_MissingFile(t *testing.T) {
	_, err := Backup(filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
}

func TestDestinationFor(t *testing.T) {
	tests := map[string]string{
		"report.pdf":         "report.docx",
		"dir/Report.PDF":     "dir/Report.docx",
		"archive.tar.pdf":    "archive.tar.docx",
		"no-extension":       "no-extension.docx",
		"/abs/path/scan.pdf": "/abs/path/scan.docx",
	}
	for in, want := range tests {
		if got := DestinationFor(in); got != want {
			t.Errorf("DestinationFor(%q) = %q, want %q", in, got, want)
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

// Inspector reads a source PDF's metadata.
type Inspector interface {
	Inspect(path string) (types.SourceInfo, error)
}

// DestinationFor derives the default destination for source: the same path
// with its extension replaced by .docx.
func DestinationFor(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".docx"
}

// validation is the result of a successful environment check.
type validation struct {
	info   types.SourceInfo
	backup string // backup file created, if any
}

// validate checks source and destination against cfg in a fixed order and
// takes the backup when one is due.
func validate(source, dest string, cfg Config, insp Inspector) (validation, error) {
	var v validation

	if err := checkSource(source); err != nil {
		return v, err
	}

	if !strings.EqualFold(filepath.Ext(source), ".pdf") {
		return v, newError(UnsupportedSourceType, source, "expected a .pdf file", nil)
	}
	info, err := insp.Inspect(source)
	if err != nil {
		return v, newError(UnsupportedSourceType, source, "not a readable PDF", err)
	}
	if info.Pages <= 0 {
		return v, newError(UnsupportedSourceType, source, "PDF has no pages", nil)
	}
	v.info = info

	st, statErr := os.Stat(dest)
	exists := statErr == nil
	if exists && !cfg.Overwrite() {
		return v, newError(DestinationExists, dest, "use overwrite to replace it", nil)
	}
	if exists && st.IsDir() {
		return v, newError(DestinationUnwritable, dest, "destination is a directory", nil)
	}
	if err := checkWritableDir(filepath.Dir(dest)); err != nil {
		return v, newError(DestinationUnwritable, dest, "", err)
	}

	if exists && cfg.CreateBackup() {
		bak, err := Backup(dest)
		if err != nil {
			return v, newError(BackupFailed, dest, "", err)
		}
		v.backup = bak
	}
	return v, nil
}

func checkSource(source string) error {
	st, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(SourceNotFound, source, "no such file", nil)
		}
		return newError(SourceNotFound, source, "", err)
	}
	if !st.Mode().IsRegular() {
		return newError(SourceNotFound, source, "not a regular file", nil)
	}
	f, err := os.Open(source)
	if err != nil {
		return newError(SourceNotFound, source, "not readable", err)
	}
	return f.Close()
}

// checkWritableDir verifies dir exists, is a directory, and accepts new files.
func checkWritableDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("parent directory: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("parent %s is not a directory", dir)
	}
	probe, err := os.CreateTemp(dir, ".pdfdocx-probe-*")
	if err != nil {
		return fmt.Errorf("parent directory not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

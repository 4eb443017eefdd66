// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// maxBackups bounds the search for a free backup name.
const maxBackups = 1000

// Replaced in tests.
var (
	chmod   = os.Chmod
	chtimes = os.Chtimes
)

// Backup copies path to the first free name among path.bak, path.bak.1,
// path.bak.2 and so on, preserving its mode and modification time. It never
// replaces an existing backup. It returns the backup path.
func Backup(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	st, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	for i := 0; i < maxBackups; i++ {
		name := path + ".bak"
		if i > 0 {
			name = fmt.Sprintf("%s.bak.%d", path, i)
		}
		dst, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, st.Mode().Perm())
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating backup %s: %w", name, err)
		}
		if err := finishBackup(dst, src, name, st); err != nil {
			os.Remove(name)
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("no free backup name for %s after %d attempts", path, maxBackups)
}

// finishBackup fills the created backup file and copies the source's mode
// and modification time onto it.
func finishBackup(dst *os.File, src io.Reader, name string, st fs.FileInfo) error {
	if err := copyInto(dst, src, name); err != nil {
		return err
	}
	if err := chmod(name, st.Mode().Perm()); err != nil {
		return fmt.Errorf("setting mode on %s: %w", name, err)
	}
	if err := chtimes(name, st.ModTime(), st.ModTime()); err != nil {
		return fmt.Errorf("setting times on %s: %w", name, err)
	}
	return nil
}

func copyInto(dst *os.File, src io.Reader, name string) error {
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("writing backup %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("writing backup %s: %w", name, err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspect reads source PDF metadata (page count, header version,
// encryption) with pdfcpu. It never modifies the file.
package inspect

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

var disableConfigDir sync.Once

// File opens the PDF at path and returns its SourceInfo. A file that pdfcpu
// cannot parse, or that has no pages, is an error.
func File(path string) (types.SourceInfo, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	st, err := os.Stat(path)
	if err != nil {
		return types.SourceInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return types.SourceInfo{}, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return types.SourceInfo{}, fmt.Errorf("parsing PDF %s: %w", path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return types.SourceInfo{}, fmt.Errorf("determining page count of %s: %w", path, err)
	}
	if ctx.PageCount == 0 {
		return types.SourceInfo{}, fmt.Errorf("PDF %s has no pages", path)
	}

	info := types.SourceInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      st.Size(),
		Pages:     ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	return info, nil
}

// PDFCPU satisfies convert.Inspector using File.
type PDFCPU struct{}

// Inspect returns the SourceInfo for path.
func (PDFCPU) Inspect(path string) (types.SourceInfo, error) {
	return File(path)
}

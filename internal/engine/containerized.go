// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/pdiddy/pdfdocx/internal/container"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

const (
	mountIn  = "/in"
	mountOut = "/out"
)

// Containerized runs pdf2docx inside a container image. The source directory
// is mounted read-only at /in and the destination directory at /out.
type Containerized struct {
	runtime container.Runtime
	image   string
	extra   []string
}

// NewContainerized creates an engine that uses the given container runtime
// to run image (DefaultImage when empty). It verifies that the image exists
// locally before returning.
func NewContainerized(rt container.Runtime, image string, extra []string) (*Containerized, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("pdf2docx image not available in %s: %w", rt.Name(), err)
	}
	return &Containerized{runtime: rt, image: image, extra: extra}, nil
}

// Name implements Engine.
func (c *Containerized) Name() string { return c.runtime.Name() + ":" + c.image }

// Convert implements Engine.
func (c *Containerized) Convert(ctx context.Context, job types.Job) error {
	src, err := filepath.Abs(job.Source)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", job.Source, err)
	}
	dst, err := filepath.Abs(job.Destination)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", job.Destination, err)
	}

	mounts := []container.Mount{
		{Source: filepath.Dir(src), Target: mountIn, ReadOnly: true},
		{Source: filepath.Dir(dst), Target: mountOut},
	}
	args := Args(
		path.Join(mountIn, filepath.Base(src)),
		path.Join(mountOut, filepath.Base(dst)),
		job.Pages,
		c.extra,
	)

	var stderr bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, mounts, args, io.Discard, &stderr); err != nil {
		return commandError(c.Name(), job, err, stderr.Bytes())
	}
	return nil
}

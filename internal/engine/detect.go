// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"

	"github.com/pdiddy/pdfdocx/internal/container"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

// Detect builds the engine selected by cfg. With BackendAuto (or an empty
// backend) a local binary is preferred and a container image is the fallback.
func Detect(cfg types.EngineConfig) (Engine, error) {
	return detect(cfg, osRunner{}, container.DetectRuntime)
}

func detect(cfg types.EngineConfig, r runner, detectRuntime func() (container.Runtime, error)) (Engine, error) {
	local := newLocal(cfg.Binary, cfg.Args, r)

	switch cfg.Backend {
	case types.BackendLocal:
		if !local.Available() {
			return nil, fmt.Errorf("%s not found on PATH", local.bin)
		}
		return local, nil

	case types.BackendContainer:
		rt, err := detectRuntime()
		if err != nil {
			return nil, err
		}
		return NewContainerized(rt, cfg.Image, cfg.Args)

	case types.BackendAuto, "":
		if local.Available() {
			return local, nil
		}
		rt, rtErr := detectRuntime()
		if rtErr != nil {
			return nil, fmt.Errorf("no conversion engine: %s not found on PATH and %w", local.bin, rtErr)
		}
		eng, err := NewContainerized(rt, cfg.Image, cfg.Args)
		if err != nil {
			return nil, fmt.Errorf("no conversion engine: %s not found on PATH and %w", local.bin, err)
		}
		return eng, nil

	default:
		return nil, fmt.Errorf("unknown engine backend %q (must be auto, local, or container)", cfg.Backend)
	}
}

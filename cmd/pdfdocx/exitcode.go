// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/pdfdocx/internal/convert"
)

// Process exit codes.
const (
	exitOK          = 0
	exitGeneric     = 1
	exitInterrupted = 130
)

var kindExitCodes = map[convert.Kind]int{
	convert.InvalidConfiguration:  2,
	convert.SourceNotFound:        3,
	convert.UnsupportedSourceType: 4,
	convert.DestinationExists:     5,
	convert.DestinationUnwritable: 6,
	convert.BackupFailed:          7,
	convert.ConversionEngineError: 8,
	convert.ProgressCallbackError: 9,
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	if code, ok := kindExitCodes[convert.KindOf(err)]; ok {
		return code
	}
	return exitGeneric
}

// batchFailure reports that some items of a batch failed. Each failure was
// already printed with the summary.
type batchFailure struct {
	failed, total int
}

func (e *batchFailure) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

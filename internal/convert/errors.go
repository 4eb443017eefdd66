// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
)

// Kind classifies a conversion failure.
type Kind string

const (
	InvalidConfiguration  Kind = "InvalidConfiguration"
	SourceNotFound        Kind = "SourceNotFound"
	UnsupportedSourceType Kind = "UnsupportedSourceType"
	DestinationExists     Kind = "DestinationExists"
	DestinationUnwritable Kind = "DestinationUnwritable"
	BackupFailed          Kind = "BackupFailed"
	ConversionEngineError Kind = "ConversionEngineError"
	ProgressCallbackError Kind = "ProgressCallbackError"
)

// NoPage marks an error that is not tied to a page.
const NoPage = -1

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind    Kind
	Path    string // offending file, if any
	Page    int    // page index for engine failures, NoPage otherwise
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Kind == ConversionEngineError && e.Page != NoPage {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrInvalidConfiguration  = &Error{Kind: InvalidConfiguration, Page: NoPage}
	ErrSourceNotFound        = &Error{Kind: SourceNotFound, Page: NoPage}
	ErrUnsupportedSourceType = &Error{Kind: UnsupportedSourceType, Page: NoPage}
	ErrDestinationExists     = &Error{Kind: DestinationExists, Page: NoPage}
	ErrDestinationUnwritable = &Error{Kind: DestinationUnwritable, Page: NoPage}
	ErrBackupFailed          = &Error{Kind: BackupFailed, Page: NoPage}
	ErrConversionEngine      = &Error{Kind: ConversionEngineError, Page: NoPage}
	ErrProgressCallback      = &Error{Kind: ProgressCallbackError, Page: NoPage}
)

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, path, msg string, err error) *Error {
	return &Error{Kind: kind, Path: path, Page: NoPage, Message: msg, Err: err}
}

func engineError(page int, path string, err error) *Error {
	return &Error{Kind: ConversionEngineError, Path: path, Page: page, Err: err}
}

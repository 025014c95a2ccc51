package modcut

import (
	"errors"
	"strings"
)

// Error is the modcut error domain type.
//
// Errors coming from modcut components should be able to be inspected as
// ([errors.As]) an *Error at some point in the error chain.
//
// Components should create an Error at the system boundary (e.g. opening an
// archive, invoking an external tool) and intermediate layers should not wrap
// in another Error except to add additional [ErrorKind] information. That is
// to say, use [fmt.Errorf] with a "%w" verb in preference to creating a
// containing Error.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrInputNotFound,
		ErrCorruptArchive,
		ErrMalformedClass,
		ErrMissingModule,
		ErrStaticDepFailure,
		ErrToolUnavailable,
		ErrAnalysisFailure:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is enables [errors.Is].
//
// It compares the error kind. Callers should compare against a declared
// [ErrorKind] over a specific error.
func (e *Error) Is(kind error) bool {
	switch kind {
	case ErrRecoverable:
		switch e.Kind {
		case ErrCorruptArchive, ErrMalformedClass:
			return true
		default:
			return false
		}
	case ErrFatal:
		switch e.Kind {
		case ErrCorruptArchive, ErrMalformedClass:
			return false
		default:
			return true
		}
	default:
	}
	return errors.Is(e.Kind, kind)
}

// Unwrap enables [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind represents classes of errors to be checked against.
//
// If a caller is unsure which kind to use, ErrAnalysisFailure should be used
// for anything bubbling up out of the orchestrator and ErrCorruptArchive for
// anything bubbling up out of a single archive's processing.
type ErrorKind string

// Defined error kinds, matching spec §7.
var (
	// ErrInputNotFound: discovery input path does not exist. Fatal.
	ErrInputNotFound = ErrorKind("input not found")
	// ErrCorruptArchive: archive cannot be opened or is truncated. Recoverable:
	// the archive is skipped with a warning.
	ErrCorruptArchive = ErrorKind("corrupt archive")
	// ErrMalformedClass: class-file parse failure on one entry. Recoverable:
	// the entry is skipped.
	ErrMalformedClass = ErrorKind("malformed class")
	// ErrMissingModule: the resolver needs a platform module that the running
	// platform doesn't have. Fatal.
	ErrMissingModule = ErrorKind("missing module")
	// ErrStaticDepFailure: the external static-dependency tool exited nonzero.
	// Fatal.
	ErrStaticDepFailure = ErrorKind("static dep failure")
	// ErrToolUnavailable: the static-dep tool or linker tool isn't present on
	// the running platform. Fatal at construction time.
	ErrToolUnavailable = ErrorKind("tool unavailable")
	// ErrAnalysisFailure: composite, wraps the first fatal error from any
	// parallel orchestrator task.
	ErrAnalysisFailure = ErrorKind("analysis failure")

	// ErrFatal and ErrRecoverable are only used for [Error.Is] comparisons:
	// ErrRecoverable matches ErrCorruptArchive and ErrMalformedClass, and
	// ErrFatal matches every other kind.
	ErrFatal       = ErrorKind("fatal")
	ErrRecoverable = ErrorKind("recoverable")
)

// Error implements error.
func (e ErrorKind) Error() string {
	return string(e)
}

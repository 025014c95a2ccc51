package classfile

import "fmt"

// localError is the error type returned from this package, grounded on the
// same shape java/jar/errors.go in the teacher repo uses for its own
// sentinel-wrapping errors.
type localError struct {
	inner error
	msg   string
}

func (e *localError) Error() string {
	switch {
	case e.inner == nil && e.msg == "":
		panic("programmer error: no error or message")
	case e.inner == nil:
		return "classfile: " + e.msg
	case e.msg == "":
		return fmt.Sprintf("classfile: %v", e.inner)
	default:
		return fmt.Sprintf("classfile: %s: %v", e.msg, e.inner)
	}
}

func (e *localError) Unwrap() error { return e.inner }

// ErrMalformed is a sentinel usable with errors.Is. Every error this package
// returns while parsing wraps it, matching spec §4.1's MalformedClass
// contract: callers see an error, never a panic, and skip the entry.
var ErrMalformed = &localError{msg: "malformed class file"}

func (e *localError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(msg string) error {
	return &localError{msg: msg, inner: ErrMalformed}
}

func malformedf(format string, args ...any) error {
	return &localError{msg: fmt.Sprintf(format, args...), inner: ErrMalformed}
}

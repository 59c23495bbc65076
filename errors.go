package pdfeval

import (
	"errors"
	"fmt"
)

var (
	// ErrCircularReference is returned when resolving an object requires
	// resolving that same object again.
	ErrCircularReference = errors.New("circular reference")

	// ErrNotFound is returned by an XRef for references that do not exist.
	ErrNotFound = errors.New("object not found")
)

// A FormatError reports structurally invalid PDF data.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	return "malformed PDF: " + e.Msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// Errorf returns a *FormatError with the formatted message. A %w verb in
// format becomes the wrapped cause.
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return &FormatError{Msg: err.Error(), Err: errors.Unwrap(err)}
}

// Wrap returns a *FormatError with the given message and cause.
func Wrap(err error, msg string) error {
	return &FormatError{Msg: msg + ": " + err.Error(), Err: err}
}

// IsFormatError reports whether err is, or wraps, a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// A MissingDataError is returned while a document is loaded progressively
// and the bytes for an object have not arrived yet. Begin and End give the
// byte range when the XRef knows it.
type MissingDataError struct {
	Ref        Ref
	Begin, End int64
}

func (e *MissingDataError) Error() string {
	if e.End > e.Begin {
		return fmt.Sprintf("missing data for %v (bytes %d-%d)", e.Ref, e.Begin, e.End)
	}
	return fmt.Sprintf("missing data for %v", e.Ref)
}

// IsMissingData reports whether err is, or wraps, a *MissingDataError.
func IsMissingData(err error) bool {
	var me *MissingDataError
	return errors.As(err, &me)
}

// An UnsupportedError reports a valid PDF construct this package does not
// handle.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return "unsupported PDF feature: " + e.Feature
}

// Package errclass defines the stable error classes surfaced to users of the
// icon studio, both over HTTP and on the command line.
package errclass

import (
	"errors"
	"fmt"
)

// Error is a machine-readable error class with a short user-facing message
// and an optional detail line (usually the underlying cause).
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Details == "":
		return e.Code
	case e.Details == "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Details)
	}
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// WithMessage returns a copy of e with a specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Details: e.Details}
}

// WithMessagef returns a copy of e with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details}
}

// WithDetailsf returns a copy of e carrying formatted details.
func (e *Error) WithDetailsf(format string, args ...any) *Error {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// Wrap returns a copy of e whose details are taken from cause.
// A nil cause leaves the details empty.
func (e *Error) Wrap(cause error) *Error {
	if cause == nil {
		return e.WithDetails("")
	}
	return e.WithDetails(cause.Error())
}

// Error classes.
var (
	// ErrGenerationFailure: the generative service failed or returned
	// unusable content. History is left untouched.
	ErrGenerationFailure = &Error{Code: "E_GENERATION_FAILURE", Message: "Generation Failed"}
	// ErrLoadFailure: a source image or artifact could not be decoded.
	ErrLoadFailure = &Error{Code: "E_LOAD_FAILURE", Message: "Image could not be loaded"}
	// ErrSurfaceUnavailable: no drawing surface of the requested size.
	ErrSurfaceUnavailable = &Error{Code: "E_SURFACE_UNAVAILABLE", Message: "Rendering surface unavailable"}
	// ErrExtractionFallback is soft: the response had no <svg> fragment and
	// was cleaned up best-effort instead.
	ErrExtractionFallback = &Error{Code: "E_EXTRACTION_FALLBACK", Message: "Response contained no strict SVG fragment"}

	ErrInvalidRequest    = &Error{Code: "E_INVALID_REQUEST", Message: "Invalid request"}
	ErrSuperseded        = &Error{Code: "E_SUPERSEDED", Message: "Superseded by a newer request"}
	ErrNotFound          = &Error{Code: "E_NOT_FOUND", Message: "Not found"}
	ErrUnsupportedFormat = &Error{Code: "E_UNSUPPORTED_FORMAT", Message: "Unsupported format"}
	ErrInternal          = &Error{Code: "E_INTERNAL", Message: "An unexpected error occurred"}
)

// As returns the *Error in err's chain, or ErrInternal wrapped around err
// when there is none. A nil err yields nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.Wrap(err)
}

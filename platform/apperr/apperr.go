// Package apperr carries typed domain errors from the service layer to the
// HTTP boundary. Services return these instead of raw status codes; httpkit
// maps the kind onto the response status.
package apperr

import "net/http"

// Kind classifies a domain error. The set is deliberately small: only the
// outcomes the quote, lead, and automation flows actually produce.
type Kind int

const (
	// KindUnknown is the zero kind, reported for non-domain errors.
	KindUnknown Kind = iota
	// KindNotFound covers lookups that matched no row in the tenant's scope.
	KindNotFound
	// KindValidation covers semantically invalid input that passed binding.
	KindValidation
	// KindConflict covers state transitions the current state forbids, such
	// as sending an already accepted quote.
	KindConflict
	// KindGone covers quotes past their valid-until date.
	KindGone
	// KindInternal covers misconfiguration and infrastructure failures.
	KindInternal
)

// Error is a domain error with a kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus maps the kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindGone:
		return http.StatusGone
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a domain error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// GetKind returns the error's kind, or KindUnknown for non-domain errors.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

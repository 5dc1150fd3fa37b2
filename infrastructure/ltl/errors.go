package ltl

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies pipeline failures so callers can react without parsing
// messages.
type Kind string

const (
	KindReferenceLoad  Kind = "reference_load"
	KindMalformedInput Kind = "malformed_input"
	KindEmptyResult    Kind = "empty_result"
	KindComputation    Kind = "computation"
)

// Error is the structured error returned at the pipeline boundary.
type Error struct {
	Kind    Kind   `json:"kind"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
	// PurchaseOrders lists the offending orders of a computation error.
	PurchaseOrders []string `json:"purchase_orders,omitempty"`
	Err            error    `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error aborts the run. Empty results are
// warnings.
func (e *Error) Fatal() bool {
	return e.Kind != KindEmptyResult
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// AsError converts err into an *Error. Errors that carry no kind are
// reported as computation failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindComputation, Message: "processing failed", Err: err}
}

func referenceError(source, format string, args ...any) *Error {
	return &Error{Kind: KindReferenceLoad, Source: source, Message: fmt.Sprintf(format, args...)}
}

func malformedInput(source, format string, args ...any) *Error {
	return &Error{Kind: KindMalformedInput, Source: source, Message: fmt.Sprintf(format, args...)}
}

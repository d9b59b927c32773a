// Package apperr is the error taxonomy shared by every layer. Callers classify
// failures with errors.Is against a Kind and read the short, user-facing message
// with Message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. A Kind is itself an error so it can be used as an
// errors.Is target.
type Kind string

const (
	Validation Kind = "validation"
	NotFound   Kind = "not_found"
	Conflict   Kind = "conflict"
	Auth       Kind = "auth"
	Upstream   Kind = "upstream"
	Storage    Kind = "storage"
)

func (k Kind) Error() string { return string(k) }

// Error carries a Kind, a short message safe to show to clients and, optionally,
// the pipeline stage that failed and the underlying cause.
type Error struct {
	Kind  Kind
	Stage string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// AtStage wraps err as a failure of the named pipeline stage.
func AtStage(kind Kind, stage, msg string, err error) error {
	return &Error{Kind: kind, Stage: stage, Msg: msg, Err: err}
}

// KindOf returns the Kind of the outermost classified error in the chain, or the
// empty Kind when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}

// StageOf returns the first stage recorded in the chain.
func StageOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Stage != "" {
			return e.Stage
		}
		err = e.Err
	}
	return ""
}

// Message returns the client-facing message for err. Unclassified errors never
// leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	var k Kind
	if errors.As(err, &k) {
		return string(k)
	}
	return "internal error"
}

package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies turn-level failures.
type ErrorKind string

const (
	// ErrRouting covers malformed input rejected before any model cost.
	ErrRouting ErrorKind = "routing"
	// ErrProvider covers LLM call failures on the router's own reasoning.
	ErrProvider ErrorKind = "provider"
	// ErrTool covers tool invocation failures. These never escape the
	// supervisor loop; the kind exists so tools report classified errors.
	ErrTool ErrorKind = "tool"
	// ErrBudgetExceeded marks a turn that hit the step budget. The core
	// reports exhaustion as an incomplete successful response; the kind
	// exists for callers that treat incomplete turns as failures.
	ErrBudgetExceeded ErrorKind = "budget_exceeded"
	// ErrPersistence covers checkpoint read/write failures.
	ErrPersistence ErrorKind = "persistence"
)

// TurnError is the classified error carried through the orchestration core.
type TurnError struct {
	Kind      ErrorKind
	Transient bool
	Msg       string
	Err       error
}

func (e *TurnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

func NewRoutingError(format string, args ...any) *TurnError {
	return &TurnError{Kind: ErrRouting, Msg: fmt.Sprintf(format, args...)}
}

func NewProviderError(transient bool, msg string, err error) *TurnError {
	return &TurnError{Kind: ErrProvider, Transient: transient, Msg: msg, Err: err}
}

func NewToolError(tool string, err error) *TurnError {
	return &TurnError{Kind: ErrTool, Msg: fmt.Sprintf("tool %s failed", tool), Err: err}
}

func NewPersistenceError(msg string, err error) *TurnError {
	return &TurnError{Kind: ErrPersistence, Msg: msg, Err: err}
}

// ErrorKindOf extracts the kind of a classified error, or an empty kind for
// unclassified errors.
func ErrorKindOf(err error) ErrorKind {
	var te *TurnError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsTransient reports whether a classified error is worth retrying.
func IsTransient(err error) bool {
	var te *TurnError
	if errors.As(err, &te) {
		return te.Transient
	}
	return false
}

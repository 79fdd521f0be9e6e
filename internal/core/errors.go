package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
//
// These are faults: conditions that stop a run before a report can be
// produced. Ontology content problems are never returned as errors; they are
// recorded as Violations.
var (
	// ErrTableNotFound indicates a table file that does not exist or cannot be opened.
	ErrTableNotFound = errors.New("table not found")

	// ErrMalformedTable indicates a file that cannot be parsed as a template table.
	ErrMalformedTable = errors.New("malformed table")

	// ErrMissingColumn indicates a header without a column the table's schema requires.
	ErrMissingColumn = errors.New("missing required column")

	// ErrUnknownTable indicates a reference to a table key that is not registered.
	ErrUnknownTable = errors.New("unknown table")

	// ErrDuplicateTable indicates two definitions sharing one key.
	ErrDuplicateTable = errors.New("duplicate table")

	// ErrDependencyCycle indicates table definitions whose dependencies form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// LoadError describes a table that could not be loaded.
// It unwraps to both the sentinel Kind and the underlying cause.
type LoadError struct {
	Table string // Table key
	Path  string // File the table was read from
	Kind  error  // One of the sentinel errors above
	Err   error  // Underlying cause, may be nil
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("table %s (%s): %v", e.Table, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// GraphError describes an invalid set of table dependencies.
type GraphError struct {
	Kind error  // ErrUnknownTable, ErrDuplicateTable or ErrDependencyCycle
	Msg  string // Deterministic description
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

package validation

import (
	"errors"
	"fmt"
)

// Kind classifies a validation finding.
type Kind int

const (
	// SchemaViolation marks a value that fails generic schema conformance.
	SchemaViolation Kind = iota

	// ExtraParameters marks a schema whose required list names properties
	// absent from its properties object.
	ExtraParameters

	// ParameterDuplicate marks two parameters in one list sharing a
	// (name, location) pair.
	ParameterDuplicate

	// UnresolvableParameter marks a URL template placeholder with no
	// matching declared path parameter.
	UnresolvableParameter

	// DuplicateOperationID marks an operationId repeated across the
	// document.
	DuplicateOperationID
)

func (k Kind) String() string {
	switch k {
	case SchemaViolation:
		return "schema violation"
	case ExtraParameters:
		return "extra required properties"
	case ParameterDuplicate:
		return "duplicate parameter"
	case UnresolvableParameter:
		return "unresolvable path parameter"
	case DuplicateOperationID:
		return "duplicate operation ID"
	}

	return "unknown"
}

// Error is a single validation finding. Findings are immutable once
// produced and are never fatal to a pass.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ErrorSink receives findings during a validation pass. Returning false
// stops the traversal, which is how Validate implements its fail-fast
// contract.
type ErrorSink func(err *Error) bool

// Sentinel errors for reference-chain guards, checked with errors.Is.
// These surface on the fatal path, never as findings.
var (
	// ErrCircularReference indicates a reference chain that revisits a
	// target it already passed through.
	ErrCircularReference = errors.New("circular reference")

	// ErrReferenceDepth indicates a reference chain longer than the
	// dereferencer's depth bound.
	ErrReferenceDepth = errors.New("reference chain too deep")
)

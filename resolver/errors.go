package resolver

import "errors"

// Sentinel errors for use with errors.Is. Resolution failures are fatal to
// a validation pass, they are never reported as findings.
var (
	// ErrMalformedReference indicates a $ref string that cannot be parsed.
	ErrMalformedReference = errors.New("malformed reference")

	// ErrUnknownScheme indicates a reference to a URI scheme with no
	// registered handler.
	ErrUnknownScheme = errors.New("unknown reference scheme")

	// ErrMissingTarget indicates a reference whose document or pointer
	// target does not exist.
	ErrMissingTarget = errors.New("missing reference target")
)

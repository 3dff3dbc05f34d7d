// Package errs defines the sentinel error kinds used across the
// analysis pipeline, matched against with errors.Is at the API layer.
package errs

import "errors"

// Sentinel error kinds, per the error-handling design: InvalidRequest
// is fatal and surfaced; ProviderUnavailable and NumericDegenerate are
// recovered locally and logged; Cancelled is returned cleanly with no
// partial output; InternalInvariantViolated is a self-check failure
// that should never occur with a correct implementation.
var (
	ErrInvalidRequest            = errors.New("invalid request")
	ErrProviderUnavailable        = errors.New("provider unavailable")
	ErrNumericDegenerate          = errors.New("numeric degenerate")
	ErrCancelled                  = errors.New("cancelled")
	ErrInternalInvariantViolated = errors.New("internal invariant violated")
)

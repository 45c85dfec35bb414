package split

import "errors"

// Error categories. A wrong split silently corrupts every downstream
// experiment result, so nothing below is ever downgraded to a warning.
var (
	// ErrConfig marks unsatisfiable configurations: too few samples for the
	// requested stratification, no groups left for a partition, or fractions
	// outside [0, 1]. Not retryable.
	ErrConfig = errors.New("split: configuration error")

	// ErrInvariant marks a postcondition failure after a split was
	// constructed. It indicates a logic bug and must abort the run.
	ErrInvariant = errors.New("split: invariant violation")

	// ErrInput marks a malformed or incomplete label table.
	ErrInput = errors.New("split: input error")
)

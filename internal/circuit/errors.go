package circuit

import "errors"

var (
	// ErrInvalidConfiguration reports bad register sizes or mismatched operand
	// dimensions. It is raised before any operation is emitted.
	ErrInvalidConfiguration = errors.New("circuit: invalid configuration")

	// ErrMalformed reports an operation whose qubit list does not fit its gate
	// kind or the circuit's declared width.
	ErrMalformed = errors.New("circuit: malformed operation")

	// ErrNotInvertible is returned when inverting a circuit that contains a
	// measurement.
	ErrNotInvertible = errors.New("circuit: operation is not invertible")
)

package statevec

import "errors"

// Sentinel errors returned by gate application. Callers match them with
// errors.Is. Validation happens before any amplitude is touched, so a
// rejected call leaves the vector unchanged.
var (
	// ErrQubitOutOfRange is returned when a qubit index is negative or >= NumQubits.
	ErrQubitOutOfRange = errors.New("statevec: qubit index out of range")

	// ErrDuplicateQubit is returned when the same qubit is named twice in one
	// gate application (e.g. control == target).
	ErrDuplicateQubit = errors.New("statevec: duplicate qubit in gate application")

	// ErrMatrixSize is returned when the flattened gate matrix length does not
	// match 4^k for the k qubits named. Unitarity is never checked.
	ErrMatrixSize = errors.New("statevec: gate matrix size does not match qubit count")
)

package sim

import "errors"

var (
	// ErrUnknownGate is returned for an unrecognized gate name or a call whose
	// qubit or parameter count does not match the named gate.
	ErrUnknownGate = errors.New("sim: unknown gate")

	// ErrInstanceNotFound is returned for a mutating operation against a
	// destroyed or never-issued handle.
	ErrInstanceNotFound = errors.New("sim: simulator instance not found")

	// ErrNegativeQubits is returned by Create for a negative qubit count.
	ErrNegativeQubits = errors.New("sim: qubit count must be >= 0")
)

package sim

import (
	"fmt"
	"strings"

	"qsimterm/gates"
)

// gateSpec is a resolved gate: its matrix and how many qubits it consumes.
type gateSpec struct {
	matrix gates.Matrix
	arity  int
}

// paramCount maps each parametrized gate name to the number of angles it
// consumes; every other recognized name takes none.
var paramCount = map[string]int{
	"RX": 1, "RY": 1, "RZ": 1,
	"P": 1, "PHASE": 1,
	"U3":     3,
	"CP":     1,
	"CPHASE": 1,
}

// resolve maps a gate name (case-insensitive) and its parameters to a
// catalog matrix. Extra parameters beyond the gate's count are ignored;
// missing ones are an ErrUnknownGate arity failure.
func resolve(name string, params []float64) (gateSpec, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if want := paramCount[upper]; len(params) < want {
		return gateSpec{}, fmt.Errorf("%w: %s needs %d parameter(s), got %d", ErrUnknownGate, name, want, len(params))
	}

	switch upper {
	case "I", "ID":
		return gateSpec{gates.Identity(), 1}, nil
	case "H":
		return gateSpec{gates.Hadamard(), 1}, nil
	case "X":
		return gateSpec{gates.PauliX(), 1}, nil
	case "Y":
		return gateSpec{gates.PauliY(), 1}, nil
	case "Z":
		return gateSpec{gates.PauliZ(), 1}, nil
	case "S":
		return gateSpec{gates.S(), 1}, nil
	case "T":
		return gateSpec{gates.T(), 1}, nil
	case "RX":
		return gateSpec{gates.RotationX(params[0]), 1}, nil
	case "RY":
		return gateSpec{gates.RotationY(params[0]), 1}, nil
	case "RZ":
		return gateSpec{gates.RotationZ(params[0]), 1}, nil
	case "P", "PHASE":
		return gateSpec{gates.Phase(params[0]), 1}, nil
	case "U3":
		return gateSpec{gates.U3(params[0], params[1], params[2]), 1}, nil
	case "CNOT", "CX":
		return gateSpec{gates.CNOT(), 2}, nil
	case "CZ":
		return gateSpec{gates.CZ(), 2}, nil
	case "SWAP":
		return gateSpec{gates.SWAP(), 2}, nil
	case "CP", "CPHASE":
		return gateSpec{gates.ControlledPhase(params[0]), 2}, nil
	case "CCX", "TOFFOLI":
		return gateSpec{gates.Toffoli(), 3}, nil
	}
	return gateSpec{}, fmt.Errorf("%w: %q", ErrUnknownGate, name)
}

// Package gates provides the unitary matrix catalog for the simulator.
//
// Every generator is a pure function of its numeric arguments and returns a
// fresh flattened row-major matrix. The sub-basis convention for multi-qubit
// matrices is index = control_bit*2 + target_bit, with the control as the
// higher-order bit; Toffoli extends the same ordering to three bits.
package gates

import (
	"math"
	"math/cmplx"
)

// Matrix is a square complex matrix of dimension 2^k, flattened row-major.
// Generators produce unitaries; the engine does not verify U†U = I.
type Matrix []complex128

// Dim returns the side length of the matrix (2^k for a k-qubit gate).
func (m Matrix) Dim() int {
	d := 1
	for d*d < len(m) {
		d++
	}
	return d
}

// ──────────────────────────── Fixed 2×2 gates ────────────────────────────

// Identity returns the 2×2 identity gate.
func Identity() Matrix {
	return Matrix{
		1, 0,
		0, 1,
	}
}

// PauliX returns the bit-flip (NOT) gate.
func PauliX() Matrix {
	return Matrix{
		0, 1,
		1, 0,
	}
}

// PauliY returns the Pauli-Y gate.
func PauliY() Matrix {
	return Matrix{
		0, -1i,
		1i, 0,
	}
}

// PauliZ returns the phase-flip gate.
func PauliZ() Matrix {
	return Matrix{
		1, 0,
		0, -1,
	}
}

// Hadamard returns the Hadamard gate.
func Hadamard() Matrix {
	h := complex(1/math.Sqrt2, 0)
	return Matrix{
		h, h,
		h, -h,
	}
}

// S returns the phase gate (phase i on |1⟩).
func S() Matrix {
	return Matrix{
		1, 0,
		0, 1i,
	}
}

// T returns the π/8 gate (phase e^{iπ/4} on |1⟩).
func T() Matrix {
	return Matrix{
		1, 0,
		0, cmplx.Exp(complex(0, math.Pi/4)),
	}
}

// ──────────────────────────── Parametrized 2×2 gates ────────────────────────────

// Phase returns the phase-shift gate diag(1, e^{iφ}).
func Phase(phi float64) Matrix {
	return Matrix{
		1, 0,
		0, cmplx.Exp(complex(0, phi)),
	}
}

// RotationX returns a rotation of theta radians about the X axis.
func RotationX(theta float64) Matrix {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return Matrix{
		c, js,
		js, c,
	}
}

// RotationY returns a rotation of theta radians about the Y axis.
func RotationY(theta float64) Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Matrix{
		c, -s,
		s, c,
	}
}

// RotationZ returns a rotation of theta radians about the Z axis.
func RotationZ(theta float64) Matrix {
	e := cmplx.Exp(complex(0, theta/2))
	return Matrix{
		cmplx.Conj(e), 0,
		0, e,
	}
}

// U3 returns the general single-qubit unitary U3(θ, φ, λ). Every fixed and
// parametrized 2×2 gate above is a special case of it.
func U3(theta, phi, lambda float64) Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	eiPhi := cmplx.Exp(complex(0, phi))
	eiLambda := cmplx.Exp(complex(0, lambda))
	return Matrix{
		c, -eiLambda * s,
		eiPhi * s, eiPhi * eiLambda * c,
	}
}

// QFTRotation returns the controlled-rotation angle gate R_k = RZ(2π/2^k)
// used when building Quantum Fourier Transform circuits.
func QFTRotation(k int) Matrix {
	return RotationZ(2 * math.Pi / float64(int(1)<<k))
}

// ──────────────────────────── Two-qubit gates ────────────────────────────

// CNOT returns the controlled-NOT gate: flips the target when the control is 1.
func CNOT() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	}
}

// CZ returns the controlled-Z gate.
func CZ() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, -1,
	}
}

// SWAP returns the gate exchanging the two qubits.
func SWAP() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
}

// ControlledPhase generalizes CZ with an arbitrary phase e^{iφ} on |11⟩
// instead of −1. ControlledPhase(π) equals CZ; ControlledPhase(0) equals
// the identity.
func ControlledPhase(phi float64) Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, cmplx.Exp(complex(0, phi)),
	}
}

// ──────────────────────────── Three-qubit gates ────────────────────────────

// Toffoli returns the doubly-controlled NOT gate: the target (lowest sub-basis
// bit) flips only when both control bits are 1, so |110⟩ ↔ |111⟩.
func Toffoli() Matrix {
	m := make(Matrix, 64)
	for i := 0; i < 6; i++ {
		m[i*8+i] = 1
	}
	m[6*8+7] = 1
	m[7*8+6] = 1
	return m
}

// ──────────────────────────── Non-unitary operators ────────────────────────────

// MeasurementZ returns the projector onto |1⟩ (outcome true) or |0⟩
// (outcome false). It is not unitary: applying it collapses the target
// qubit, after which the state needs an explicit Normalize.
func MeasurementZ(outcome bool) Matrix {
	if outcome {
		return Matrix{
			0, 0,
			0, 1,
		}
	}
	return Matrix{
		1, 0,
		0, 0,
	}
}

// ──────────────────────────── Helpers ────────────────────────────

// Dagger returns the conjugate transpose of m. For a unitary gate the result
// is its inverse.
func Dagger(m Matrix) Matrix {
	d := m.Dim()
	out := make(Matrix, len(m))
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			out[c*d+r] = cmplx.Conj(m[r*d+c])
		}
	}
	return out
}

// Package statevec implements the state-vector engine: an n-qubit register
// held as a dense vector of 2^n complex amplitudes, mutated in place by
// unitary gate applications.
//
// Qubit 0 is the least-significant bit of the basis index. A Vector is a
// plain mutable value with no internal locking; distinct vectors are fully
// independent, and concurrent mutation of one vector needs external
// exclusion by the caller.
package statevec

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"qsimterm/gates"
)

// Vector is an n-qubit register: Amplitudes[i] is the coefficient of
// computational basis state i, with len(Amplitudes) == 2^NumQubits.
type Vector struct {
	Amplitudes []complex128
	NumQubits  int
}

// New allocates a register of numQubits qubits initialized to |00...0⟩.
// numQubits == 0 yields a valid single-amplitude register.
func New(numQubits int) *Vector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &Vector{Amplitudes: amps, NumQubits: numQubits}
}

// Clone returns an independent copy of the register.
func (v *Vector) Clone() *Vector {
	amps := make([]complex128, len(v.Amplitudes))
	copy(amps, v.Amplitudes)
	return &Vector{Amplitudes: amps, NumQubits: v.NumQubits}
}

func (v *Vector) checkQubits(qubits ...int) error {
	for i, q := range qubits {
		if q < 0 || q >= v.NumQubits {
			return fmt.Errorf("%w: qubit %d with %d qubits", ErrQubitOutOfRange, q, v.NumQubits)
		}
		for _, p := range qubits[:i] {
			if p == q {
				return fmt.Errorf("%w: qubit %d", ErrDuplicateQubit, q)
			}
		}
	}
	return nil
}

// parallelThreshold is the vector length above which gate loops are split
// across workers. Every base index owns a disjoint pair/quadruple of slots,
// and all workers read the pre-update buffer, so the split cannot change
// results.
const parallelThreshold = 1 << 14

func forEachBase(size int, body func(lo, hi int)) {
	if size < parallelThreshold {
		body(0, size)
		return
	}
	workers := runtime.NumCPU()
	chunk := (size + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < size; lo += chunk {
		hi := min(lo+chunk, size)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			body(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// ApplySingle applies a 2×2 gate to one qubit. For every basis pair differing
// only in the target bit, both new amplitudes are computed from the
// pre-update values via a second buffer.
func (v *Vector) ApplySingle(gate gates.Matrix, qubit int) error {
	if err := v.checkQubits(qubit); err != nil {
		return err
	}
	if len(gate) != 4 {
		return fmt.Errorf("%w: got %d entries, want 4", ErrMatrixSize, len(gate))
	}

	old := v.Amplitudes
	bit := 1 << qubit
	next := make([]complex128, len(old))
	forEachBase(len(old), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if i&bit == 0 {
				j := i | bit
				next[i] = gate[0]*old[i] + gate[1]*old[j]
				next[j] = gate[2]*old[i] + gate[3]*old[j]
			}
		}
	})
	v.Amplitudes = next
	return nil
}

// ApplyTwo applies a 4×4 gate to a control/target pair. The flattened matrix
// is indexed by sub-basis index control_bit*2 + target_bit, matching the
// gates package convention.
func (v *Vector) ApplyTwo(gate gates.Matrix, control, target int) error {
	if err := v.checkQubits(control, target); err != nil {
		return err
	}
	if len(gate) != 16 {
		return fmt.Errorf("%w: got %d entries, want 16", ErrMatrixSize, len(gate))
	}

	old := v.Amplitudes
	cBit := 1 << control
	tBit := 1 << target
	next := make([]complex128, len(old))
	forEachBase(len(old), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if i&cBit == 0 && i&tBit == 0 {
				i00 := i
				i01 := i | tBit
				i10 := i | cBit
				i11 := i | cBit | tBit

				a00 := old[i00]
				a01 := old[i01]
				a10 := old[i10]
				a11 := old[i11]

				next[i00] = gate[0]*a00 + gate[1]*a01 + gate[2]*a10 + gate[3]*a11
				next[i01] = gate[4]*a00 + gate[5]*a01 + gate[6]*a10 + gate[7]*a11
				next[i10] = gate[8]*a00 + gate[9]*a01 + gate[10]*a10 + gate[11]*a11
				next[i11] = gate[12]*a00 + gate[13]*a01 + gate[14]*a10 + gate[15]*a11
			}
		}
	})
	v.Amplitudes = next
	return nil
}

// ApplyGate applies a 2^k×2^k gate to k distinct qubits with the same
// gather-multiply-scatter pattern as ApplyTwo. qubits[0] is the
// highest-order bit of the sub-basis index and qubits[k-1] the lowest, so
// ApplyGate(m, control, target) agrees with ApplyTwo(m, control, target)
// and a Toffoli call is ApplyGate(gates.Toffoli(), c1, c2, target).
func (v *Vector) ApplyGate(gate gates.Matrix, qubits ...int) error {
	if err := v.checkQubits(qubits...); err != nil {
		return err
	}
	k := len(qubits)
	d := 1 << k
	if len(gate) != d*d {
		return fmt.Errorf("%w: got %d entries, want %d for %d qubits", ErrMatrixSize, len(gate), d*d, k)
	}

	// Bit mask per sub-basis state, independent of the base index.
	masks := make([]int, d)
	allBits := 0
	for j, q := range qubits {
		allBits |= 1 << q
		for s := 0; s < d; s++ {
			if s&(1<<(k-1-j)) != 0 {
				masks[s] |= 1 << q
			}
		}
	}

	old := v.Amplitudes
	next := make([]complex128, len(old))
	forEachBase(len(old), func(lo, hi int) {
		in := make([]complex128, d)
		for i := lo; i < hi; i++ {
			if i&allBits != 0 {
				continue
			}
			for s := 0; s < d; s++ {
				in[s] = old[i|masks[s]]
			}
			for r := 0; r < d; r++ {
				var sum complex128
				row := gate[r*d:]
				for s := 0; s < d; s++ {
					sum += row[s] * in[s]
				}
				next[i|masks[r]] = sum
			}
		}
	})
	v.Amplitudes = next
	return nil
}

// Probabilities returns |amplitude|² for every basis index. The result sums
// to 1 within float tolerance for a normalized state.
func (v *Vector) Probabilities() []float64 {
	probs := make([]float64, len(v.Amplitudes))
	for i, a := range v.Amplitudes {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Measure draws shots independent samples from the register's probability
// distribution and returns observed counts keyed by bitstring, qubit n−1
// first. The register is never collapsed; successive calls sample the same
// fixed distribution. rng must not be nil.
func (v *Vector) Measure(rng *rand.Rand, shots int) map[string]int {
	cumulative := make([]float64, len(v.Amplitudes))
	sum := 0.0
	for i, a := range v.Amplitudes {
		sum += real(a)*real(a) + imag(a)*imag(a)
		cumulative[i] = sum
	}

	results := make(map[string]int)
	for shot := 0; shot < shots; shot++ {
		u := rng.Float64()
		state := sort.Search(len(cumulative), func(i int) bool {
			return cumulative[i] > u
		})
		if state == len(cumulative) {
			// Rounding left every cumulative value <= u.
			state = 0
		}
		results[fmt.Sprintf("%0*b", v.NumQubits, state)]++
	}
	return results
}

// Fidelity returns |⟨v|other⟩|², the squared inner product of the two
// registers. Registers of different qubit counts have fidelity exactly 0 by
// definition rather than being an error.
func (v *Vector) Fidelity(other *Vector) float64 {
	if v.NumQubits != other.NumQubits {
		return 0.0
	}
	var overlap complex128
	for i, a := range v.Amplitudes {
		overlap += cmplx.Conj(a) * other.Amplitudes[i]
	}
	return real(overlap)*real(overlap) + imag(overlap)*imag(overlap)
}

// Normalize rescales the vector to unit norm. It is a no-op on the zero
// vector and is never invoked implicitly; callers use it to correct
// accumulated float drift or to renormalize after a projector.
func (v *Vector) Normalize() {
	sum := 0.0
	for _, a := range v.Amplitudes {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	norm := math.Sqrt(sum)
	if norm > 0 {
		inv := complex(1/norm, 0)
		for i := range v.Amplitudes {
			v.Amplitudes[i] *= inv
		}
	}
}

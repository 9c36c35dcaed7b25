// Package sim is the host-side surface around the statevec engine: it owns a
// handle→register table and resolves gate names through the gates catalog.
// The engine itself only ever sees exclusively-owned register values.
package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"qsimterm/statevec"
)

// Handle identifies one live register in a Registry. Handles are
// generation-checked: destroying a register bumps its slot's generation, so
// a stale handle fails cleanly instead of reaching a recycled register.
type Handle struct {
	slot int
	gen  uint64
}

type slot struct {
	vec *statevec.Vector // nil while the slot sits on the free list
	gen uint64
}

// Registry is a process-local table of simulator instances. All methods are
// safe for concurrent use; a single mutex serializes every operation, which
// also provides the one-writer-per-register exclusion the engine requires.
type Registry struct {
	mu    sync.Mutex
	slots []slot
	free  []int
	rng   *rand.Rand
}

// NewRegistry returns an empty registry. Measurement sampling draws from
// rng; passing a seeded generator makes the whole pipeline reproducible.
// A nil rng falls back to a time-seeded one.
func NewRegistry(rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{rng: rng}
}

// Create allocates a register of numQubits qubits in |00...0⟩ and returns
// its handle. numQubits must be >= 0; zero is a valid degenerate register.
func (r *Registry) Create(numQubits int) (Handle, error) {
	if numQubits < 0 {
		return Handle{}, fmt.Errorf("%w: got %d", ErrNegativeQubits, numQubits)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	vec := statevec.New(numQubits)
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[idx].vec = vec
		return Handle{slot: idx, gen: r.slots[idx].gen}, nil
	}
	r.slots = append(r.slots, slot{vec: vec})
	return Handle{slot: len(r.slots) - 1}, nil
}

// lookup resolves a handle to its register; callers must hold r.mu.
func (r *Registry) lookup(h Handle) *statevec.Vector {
	if h.slot < 0 || h.slot >= len(r.slots) {
		return nil
	}
	s := r.slots[h.slot]
	if s.vec == nil || s.gen != h.gen {
		return nil
	}
	return s.vec
}

// Apply resolves name through the gate catalog and applies it to the named
// qubits. Unrecognized names and arity mismatches fail with ErrUnknownGate
// before the register is touched.
func (r *Registry) Apply(h Handle, name string, qubits []int, params []float64) error {
	g, err := resolve(name, params)
	if err != nil {
		return err
	}
	if len(qubits) < g.arity {
		return fmt.Errorf("%w: %s needs %d qubit(s), got %d", ErrUnknownGate, name, g.arity, len(qubits))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	vec := r.lookup(h)
	if vec == nil {
		return ErrInstanceNotFound
	}
	switch g.arity {
	case 1:
		return vec.ApplySingle(g.matrix, qubits[0])
	case 2:
		return vec.ApplyTwo(g.matrix, qubits[0], qubits[1])
	default:
		return vec.ApplyGate(g.matrix, qubits[:g.arity]...)
	}
}

// Measure samples shots measurement outcomes from the register. An absent
// handle resolves to an empty result rather than an error.
func (r *Registry) Measure(h Handle, shots int) map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := r.lookup(h)
	if vec == nil {
		return map[string]int{}
	}
	return vec.Measure(r.rng, shots)
}

// Probabilities returns the per-basis-state probabilities of the register,
// or nil for an absent handle.
func (r *Registry) Probabilities(h Handle) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := r.lookup(h)
	if vec == nil {
		return nil
	}
	return vec.Probabilities()
}

// Fidelity returns the squared overlap of two registers. Absent handles and
// mismatched register sizes both resolve to 0.0.
func (r *Registry) Fidelity(a, b Handle) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	va := r.lookup(a)
	vb := r.lookup(b)
	if va == nil || vb == nil {
		return 0.0
	}
	return va.Fidelity(vb)
}

// Normalize rescales the register to unit norm. Reports whether the handle
// was live.
func (r *Registry) Normalize(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := r.lookup(h)
	if vec == nil {
		return false
	}
	vec.Normalize()
	return true
}

// Clone copies the register behind h into a fresh instance and returns its
// handle, for snapshot-and-compare workflows. Reports false for an absent
// handle.
func (r *Registry) Clone(h Handle) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := r.lookup(h)
	if vec == nil {
		return Handle{}, false
	}

	clone := vec.Clone()
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[idx].vec = clone
		return Handle{slot: idx, gen: r.slots[idx].gen}, true
	}
	r.slots = append(r.slots, slot{vec: clone})
	return Handle{slot: len(r.slots) - 1}, true
}

// NumQubits returns the register's qubit count, or false for an absent handle.
func (r *Registry) NumQubits(h Handle) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := r.lookup(h)
	if vec == nil {
		return 0, false
	}
	return vec.NumQubits, true
}

// Destroy releases the register and invalidates its handle. Reports whether
// the handle was live. Later operations on the same handle fail cleanly even
// after the slot is reused.
func (r *Registry) Destroy(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(h) == nil {
		return false
	}
	r.slots[h.slot].vec = nil
	r.slots[h.slot].gen++
	r.free = append(r.free, h.slot)
	return true
}

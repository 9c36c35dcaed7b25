package statevec

import (
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsimterm/gates"
)

const tol = 1e-10

func assertAmplitudesEqual(t *testing.T, want, got []complex128) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, 0, cmplx.Abs(want[i]-got[i]), tol, "amplitude %d: want %v, got %v", i, want[i], got[i])
	}
}

func TestNew(t *testing.T) {
	v := New(3)
	require.Len(t, v.Amplitudes, 8)
	assert.Equal(t, 3, v.NumQubits)
	assert.Equal(t, complex128(1), v.Amplitudes[0])
	for i := 1; i < 8; i++ {
		assert.Equal(t, complex128(0), v.Amplitudes[i])
	}
}

func TestNewZeroQubits(t *testing.T) {
	v := New(0)
	require.Len(t, v.Amplitudes, 1)
	assert.Equal(t, complex128(1), v.Amplitudes[0])

	probs := v.Probabilities()
	require.Equal(t, []float64{1}, probs)

	counts := v.Measure(rand.New(rand.NewSource(7)), 50)
	assert.Equal(t, map[string]int{"0": 50}, counts)
}

func TestCloneIndependence(t *testing.T) {
	v := New(2)
	c := v.Clone()
	require.NoError(t, v.ApplySingle(gates.PauliX(), 0))
	assert.Equal(t, complex128(1), c.Amplitudes[0], "clone must not see later mutations")
	assert.Equal(t, complex128(1), v.Amplitudes[1])
}

func TestHadamardProbabilities(t *testing.T) {
	v := New(1)
	require.NoError(t, v.ApplySingle(gates.Hadamard(), 0))

	probs := v.Probabilities()
	assert.InDelta(t, 0.5, probs[0], tol)
	assert.InDelta(t, 0.5, probs[1], tol)
}

func TestBellState(t *testing.T) {
	v := New(2)
	require.NoError(t, v.ApplySingle(gates.Hadamard(), 0))
	require.NoError(t, v.ApplyTwo(gates.CNOT(), 0, 1))

	probs := v.Probabilities()
	assert.InDelta(t, 0.5, probs[0], tol)
	assert.InDelta(t, 0, probs[1], tol)
	assert.InDelta(t, 0, probs[2], tol)
	assert.InDelta(t, 0.5, probs[3], tol)
}

func TestBellStateMeasurement(t *testing.T) {
	v := New(2)
	require.NoError(t, v.ApplySingle(gates.Hadamard(), 0))
	require.NoError(t, v.ApplyTwo(gates.CNOT(), 0, 1))

	counts := v.Measure(rand.New(rand.NewSource(42)), 1000)

	total := 0
	for bits, n := range counts {
		total += n
		assert.Contains(t, []string{"00", "11"}, bits, "bell state must never yield %q", bits)
	}
	assert.Equal(t, 1000, total)
	// Both outcomes have probability 0.5; 1000 shots put each well inside
	// 500 ± 100 for this fixed seed.
	assert.InDelta(t, 500, counts["00"], 100)
	assert.InDelta(t, 500, counts["11"], 100)
}

func TestMeasureDoesNotCollapse(t *testing.T) {
	v := New(1)
	require.NoError(t, v.ApplySingle(gates.Hadamard(), 0))
	before := append([]complex128(nil), v.Amplitudes...)

	v.Measure(rand.New(rand.NewSource(1)), 100)
	assertAmplitudesEqual(t, before, v.Amplitudes)
}

func TestMeasureSeededReproducible(t *testing.T) {
	build := func() *Vector {
		v := New(3)
		require.NoError(t, v.ApplySingle(gates.Hadamard(), 0))
		require.NoError(t, v.ApplySingle(gates.RotationY(0.9), 2))
		return v
	}
	a := build().Measure(rand.New(rand.NewSource(99)), 500)
	b := build().Measure(rand.New(rand.NewSource(99)), 500)
	assert.Equal(t, a, b)
}

func TestMeasureBitstringOrder(t *testing.T) {
	// X on qubit 0 of a 3-qubit register: basis state 001, qubit 2 first.
	v := New(3)
	require.NoError(t, v.ApplySingle(gates.PauliX(), 0))
	counts := v.Measure(rand.New(rand.NewSource(5)), 10)
	assert.Equal(t, map[string]int{"001": 10}, counts)

	// X on qubit 2: basis state 100.
	v = New(3)
	require.NoError(t, v.ApplySingle(gates.PauliX(), 2))
	counts = v.Measure(rand.New(rand.NewSource(5)), 10)
	assert.Equal(t, map[string]int{"100": 10}, counts)
}

func TestIdentityLeavesVector(t *testing.T) {
	v := New(2)
	require.NoError(t, v.ApplySingle(gates.RotationY(1.1), 0))
	require.NoError(t, v.ApplySingle(gates.RotationX(-0.3), 1))
	before := append([]complex128(nil), v.Amplitudes...)

	require.NoError(t, v.ApplySingle(gates.Identity(), 0))
	require.NoError(t, v.ApplySingle(gates.Identity(), 1))
	assertAmplitudesEqual(t, before, v.Amplitudes)
}

// scrambled returns a 3-qubit register pushed out of any special-case state.
func scrambled(t *testing.T) *Vector {
	t.Helper()
	v := New(3)
	require.NoError(t, v.ApplySingle(gates.Hadamard(), 0))
	require.NoError(t, v.ApplySingle(gates.RotationY(0.7), 1))
	require.NoError(t, v.ApplySingle(gates.U3(0.4, -1.2, 2.0), 2))
	require.NoError(t, v.ApplyTwo(gates.CNOT(), 0, 2))
	return v
}

func TestGateDaggerRoundTrip(t *testing.T) {
	singles := []struct {
		name string
		m    gates.Matrix
	}{
		{"I", gates.Identity()},
		{"X", gates.PauliX()},
		{"Y", gates.PauliY()},
		{"Z", gates.PauliZ()},
		{"H", gates.Hadamard()},
		{"S", gates.S()},
		{"T", gates.T()},
		{"Phase", gates.Phase(0.9)},
		{"RX", gates.RotationX(1.3)},
		{"RY", gates.RotationY(-2.1)},
		{"RZ", gates.RotationZ(0.5)},
		{"U3", gates.U3(1.0, 0.2, -0.7)},
	}
	for _, tc := range singles {
		t.Run(tc.name, func(t *testing.T) {
			v := scrambled(t)
			before := append([]complex128(nil), v.Amplitudes...)
			require.NoError(t, v.ApplySingle(tc.m, 1))
			require.NoError(t, v.ApplySingle(gates.Dagger(tc.m), 1))
			assertAmplitudesEqual(t, before, v.Amplitudes)
		})
	}

	doubles := []struct {
		name string
		m    gates.Matrix
	}{
		{"CNOT", gates.CNOT()},
		{"CZ", gates.CZ()},
		{"SWAP", gates.SWAP()},
		{"CPhase", gates.ControlledPhase(2.2)},
	}
	for _, tc := range doubles {
		t.Run(tc.name, func(t *testing.T) {
			v := scrambled(t)
			before := append([]complex128(nil), v.Amplitudes...)
			require.NoError(t, v.ApplyTwo(tc.m, 2, 0))
			require.NoError(t, v.ApplyTwo(gates.Dagger(tc.m), 2, 0))
			assertAmplitudesEqual(t, before, v.Amplitudes)
		})
	}

	t.Run("Toffoli", func(t *testing.T) {
		v := scrambled(t)
		before := append([]complex128(nil), v.Amplitudes...)
		require.NoError(t, v.ApplyGate(gates.Toffoli(), 2, 1, 0))
		require.NoError(t, v.ApplyGate(gates.Dagger(gates.Toffoli()), 2, 1, 0))
		assertAmplitudesEqual(t, before, v.Amplitudes)
	})
}

func TestProbabilitySumAfterSequence(t *testing.T) {
	v := New(4)
	seq := []struct {
		m gates.Matrix
		q int
	}{
		{gates.Hadamard(), 0},
		{gates.RotationX(0.3), 1},
		{gates.T(), 0},
		{gates.U3(2.2, 0.1, -0.9), 3},
		{gates.RotationZ(-1.7), 2},
	}
	for _, s := range seq {
		require.NoError(t, v.ApplySingle(s.m, s.q))
	}
	require.NoError(t, v.ApplyTwo(gates.CNOT(), 0, 3))
	require.NoError(t, v.ApplyTwo(gates.ControlledPhase(0.8), 1, 2))
	require.NoError(t, v.ApplyGate(gates.Toffoli(), 3, 1, 0))

	sum := 0.0
	for _, p := range v.Probabilities() {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestToffoliFlipsOnlyWithBothControls(t *testing.T) {
	// |110⟩ (qubits 2 and 1 set): target qubit 0 must flip to give |111⟩.
	v := New(3)
	require.NoError(t, v.ApplySingle(gates.PauliX(), 2))
	require.NoError(t, v.ApplySingle(gates.PauliX(), 1))
	require.NoError(t, v.ApplyGate(gates.Toffoli(), 2, 1, 0))
	assert.InDelta(t, 1.0, v.Probabilities()[7], tol)

	// Single control set: nothing happens.
	v = New(3)
	require.NoError(t, v.ApplySingle(gates.PauliX(), 2))
	require.NoError(t, v.ApplyGate(gates.Toffoli(), 2, 1, 0))
	assert.InDelta(t, 1.0, v.Probabilities()[4], tol)
}

func TestApplyGateMatchesApplyTwo(t *testing.T) {
	for _, m := range []gates.Matrix{gates.CNOT(), gates.SWAP(), gates.ControlledPhase(1.1)} {
		a := scrambled(t)
		b := a.Clone()
		require.NoError(t, a.ApplyTwo(m, 1, 2))
		require.NoError(t, b.ApplyGate(m, 1, 2))
		assertAmplitudesEqual(t, a.Amplitudes, b.Amplitudes)
	}
}

func TestApplyGateMatchesApplySingle(t *testing.T) {
	m := gates.U3(0.6, 1.9, -0.3)
	a := scrambled(t)
	b := a.Clone()
	require.NoError(t, a.ApplySingle(m, 2))
	require.NoError(t, b.ApplyGate(m, 2))
	assertAmplitudesEqual(t, a.Amplitudes, b.Amplitudes)
}

func TestLargeRegisterParallelPath(t *testing.T) {
	// 15 qubits crosses parallelThreshold, so the worker-split path runs.
	// The specialized and generalized kernels must still agree exactly.
	n := 15
	a := New(n)
	require.NoError(t, a.ApplySingle(gates.Hadamard(), 3))
	require.NoError(t, a.ApplySingle(gates.RotationY(0.4), 12))
	require.NoError(t, a.ApplyTwo(gates.CNOT(), 3, 9))

	b := New(n)
	require.NoError(t, b.ApplyGate(gates.Hadamard(), 3))
	require.NoError(t, b.ApplyGate(gates.RotationY(0.4), 12))
	require.NoError(t, b.ApplyGate(gates.CNOT(), 3, 9))

	assertAmplitudesEqual(t, a.Amplitudes, b.Amplitudes)

	sum := 0.0
	for _, p := range a.Probabilities() {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestFidelity(t *testing.T) {
	a := New(2)
	require.NoError(t, a.ApplySingle(gates.Hadamard(), 0))
	assert.InDelta(t, 1.0, a.Fidelity(a), tol, "fidelity of a state with itself")

	b := New(2)
	f := a.Fidelity(b)
	assert.GreaterOrEqual(t, f, 0.0)
	assert.LessOrEqual(t, f, 1.0+tol)
	assert.InDelta(t, 0.5, f, tol, "|⟨+0|00⟩|² = 1/2")

	// Orthogonal states.
	c := New(2)
	require.NoError(t, c.ApplySingle(gates.PauliX(), 0))
	assert.InDelta(t, 0.0, b.Fidelity(c), tol)
}

func TestFidelityMismatchedSizes(t *testing.T) {
	a := New(2)
	b := New(3)
	assert.Equal(t, 0.0, a.Fidelity(b))
	assert.Equal(t, 0.0, b.Fidelity(a))
}

func TestFidelityGlobalPhaseInvariant(t *testing.T) {
	a := New(1)
	require.NoError(t, a.ApplySingle(gates.Hadamard(), 0))
	b := a.Clone()
	phase := cmplx.Exp(complex(0, 1.23))
	for i := range b.Amplitudes {
		b.Amplitudes[i] *= phase
	}
	assert.InDelta(t, 1.0, a.Fidelity(b), tol)
}

func TestNormalize(t *testing.T) {
	v := New(2)
	for i := range v.Amplitudes {
		v.Amplitudes[i] = complex(float64(i+1), 0)
	}
	v.Normalize()

	sum := 0.0
	for _, p := range v.Probabilities() {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, tol)
}

func TestNormalizeZeroVectorNoOp(t *testing.T) {
	v := New(1)
	v.Amplitudes[0] = 0
	v.Normalize()
	assert.Equal(t, []complex128{0, 0}, v.Amplitudes)
}

func TestProjectorCollapse(t *testing.T) {
	// MeasurementZ plus Normalize performs a partial collapse of one qubit.
	v := New(2)
	require.NoError(t, v.ApplySingle(gates.Hadamard(), 0))
	require.NoError(t, v.ApplyTwo(gates.CNOT(), 0, 1))

	require.NoError(t, v.ApplySingle(gates.MeasurementZ(true), 0))
	v.Normalize()

	probs := v.Probabilities()
	assert.InDelta(t, 1.0, probs[3], tol, "collapsing qubit 0 of a bell pair to 1 leaves |11⟩")
}

func TestValidationLeavesVectorUnchanged(t *testing.T) {
	v := scrambled(t)
	before := append([]complex128(nil), v.Amplitudes...)

	err := v.ApplySingle(gates.Hadamard(), 3)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	err = v.ApplySingle(gates.Hadamard(), -1)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	err = v.ApplyTwo(gates.CNOT(), 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateQubit)

	err = v.ApplyTwo(gates.CNOT(), 0, 5)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	err = v.ApplySingle(gates.CNOT(), 0)
	assert.ErrorIs(t, err, ErrMatrixSize)

	err = v.ApplyGate(gates.Toffoli(), 0, 1)
	assert.ErrorIs(t, err, ErrMatrixSize)

	err = v.ApplyGate(gates.Toffoli(), 0, 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateQubit)

	assertAmplitudesEqual(t, before, v.Amplitudes)
}

func TestMeasureCountsSumToShots(t *testing.T) {
	v := scrambled(t)
	probs := v.Probabilities()
	counts := v.Measure(rand.New(rand.NewSource(123)), 2048)

	total := 0
	for bits, n := range counts {
		total += n
		assert.Positive(t, n, "zero counts must be omitted")

		idx := 0
		for _, b := range bits {
			idx <<= 1
			if b == '1' {
				idx |= 1
			}
		}
		assert.Greater(t, probs[idx], 0.0, "observed %q has zero probability", bits)
	}
	assert.Equal(t, 2048, total)
}

func TestNormIsPreservedWithoutNormalize(t *testing.T) {
	v := New(2)
	for i := 0; i < 50; i++ {
		require.NoError(t, v.ApplySingle(gates.RotationX(0.1*float64(i)), i%2))
		require.NoError(t, v.ApplyTwo(gates.CNOT(), i%2, 1-i%2))
	}
	sum := 0.0
	for _, p := range v.Probabilities() {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

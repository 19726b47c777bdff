package qpe

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermphase/internal/circuit"
	"qtermphase/internal/sim"
	"qtermphase/internal/unitary"
)

func run(t *testing.T, cfg Config, reps int) *Outcome {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	out, err := p.Run(context.Background(), sim.NewSimulator(sim.WithSeed(1)), reps)
	require.NoError(t, err)
	return out
}

func TestPauliZGivesOneHalf(t *testing.T) {
	out := run(t, Config{CountingQubits: 3, Eigenstate: "1", Unitary: unitary.PauliZ()}, 1000)

	mode, ok := out.Histogram.Mode()
	require.True(t, ok)
	assert.Equal(t, "100", mode.Outcome)
	assert.Greater(t, float64(mode.Count)/1000, 0.9)
	assert.Equal(t, 1000, out.Histogram.Total())
	assert.InDelta(t, 0.5, out.Estimate().Phase, 1e-12)
	require.NotNil(t, out.Expected)
	assert.InDelta(t, 0.5, *out.Expected, 1e-12)
}

func TestIdentityConcentratesOnZero(t *testing.T) {
	out := run(t, Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.Identity(1)}, 500)
	assert.Equal(t, Histogram{"00": 500}, out.Histogram)
}

func TestExactPhases(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		eigenstate string
		u          *unitary.Unitary
		want       string
	}{
		{"T", 3, "1", unitary.T(), "001"},
		{"S", 3, "1", unitary.S(), "010"},
		{"S one bit short", 1, "1", unitary.S(), ""},
		{"Z on |0>", 3, "0", unitary.PauliZ(), "000"},
		{"CZ on |11>", 2, "11", unitary.CZ(), "10"},
		{"phase 5/16", 4, "1", unitary.Phase(2 * math.Pi * 5 / 16), "0101"},
		{"phase 7/8", 3, "1", unitary.Phase(2 * math.Pi * 7 / 8), "111"},
		{"identity on two qubits", 3, "01", unitary.Identity(2), "000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, Config{CountingQubits: tt.n, Eigenstate: tt.eigenstate, Unitary: tt.u}, 200)
			assert.Equal(t, 200, out.Histogram.Total())
			if tt.want == "" {
				// 1/4 is not representable in one bit; outcomes split.
				assert.Len(t, out.Histogram, 2)
				return
			}
			assert.Equal(t, Histogram{tt.want: 200}, out.Histogram)
		})
	}
}

func TestDiagonalTwoQubitOperandOrder(t *testing.T) {
	// Eigenstate "10" selects operand index 2.
	u, err := unitary.Diagonal("D", 0, 0.125, 0.75, 0.5)
	require.NoError(t, err)
	out := run(t, Config{CountingQubits: 3, Eigenstate: "10", Unitary: u}, 100)
	assert.Equal(t, Histogram{"110": 100}, out.Histogram)
}

func TestInexactPhaseModeIsNearest(t *testing.T) {
	phi := 0.3
	out := run(t, Config{CountingQubits: 4, Eigenstate: "1", Unitary: unitary.Phase(2 * math.Pi * phi)}, 2000)
	mode, ok := out.Histogram.Mode()
	require.True(t, ok)
	assert.Equal(t, Nearest(phi, 4), mode.Outcome)
	assert.Equal(t, 2000, out.Histogram.Total())
}

func TestCircuitLayout(t *testing.T) {
	p, err := New(Config{CountingQubits: 3, Eigenstate: "1", Unitary: unitary.PauliZ()})
	require.NoError(t, err)
	require.NoError(t, p.Build())

	c := p.Circuit()
	assert.Equal(t, 4, c.NumQubits())
	assert.Equal(t, []circuit.Qubit{0, 1, 2}, p.Counting().Qubits())
	assert.Equal(t, []circuit.Qubit{3}, p.Eigenstate().Qubits())

	assert.Equal(t, 1, c.Count(circuit.GateX))
	assert.Equal(t, 3+3, c.Count(circuit.GateH))
	assert.Equal(t, 3, c.Count(circuit.GateCUPower))
	assert.Equal(t, 3, c.Count(circuit.GateCPhase))
	assert.Equal(t, 1, c.Count(circuit.GateSwap))
	assert.Equal(t, 1, c.Count(circuit.GateMeasure))

	ops := c.Operations()
	assert.Equal(t, circuit.PauliX(3), ops[0])
	for i := range 3 {
		cu := ops[4+i]
		assert.Equal(t, circuit.GateCUPower, cu.Kind)
		assert.Equal(t, float64(int(1)<<i), cu.Exponent)
		assert.Equal(t, []circuit.Qubit{circuit.Qubit(i), 3}, cu.Qubits)
	}
	last := ops[len(ops)-1]
	assert.Equal(t, circuit.Measure(DefaultChannel, []circuit.Qubit{2, 1, 0}), last)
}

func TestStageOrder(t *testing.T) {
	p, err := New(Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.PauliZ()})
	require.NoError(t, err)

	require.NoError(t, p.Prepare())
	require.NoError(t, p.Superpose())
	before := p.Circuit().Len()

	p2, err := New(Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.PauliZ()})
	require.NoError(t, err)
	require.NoError(t, p2.Prepare())
	prepared := p2.Circuit().Len()
	err = p2.Evolve()
	assert.ErrorIs(t, err, ErrSequenceViolation)
	assert.Equal(t, prepared, p2.Circuit().Len())
	assert.Equal(t, StagePrepared, p2.Stage())

	// Repeating a stage is also a violation.
	assert.ErrorIs(t, p.Superpose(), ErrSequenceViolation)
	assert.ErrorIs(t, p.Prepare(), ErrSequenceViolation)
	assert.ErrorIs(t, p.Measure(), ErrSequenceViolation)
	assert.ErrorIs(t, p.Uncompute(), ErrSequenceViolation)
	assert.Equal(t, before, p.Circuit().Len())

	require.NoError(t, p.Evolve())
	require.NoError(t, p.Uncompute())
	require.NoError(t, p.Measure())
	assert.Equal(t, StageMeasured, p.Stage())
	assert.ErrorIs(t, p.Build(), ErrSequenceViolation)
}

func TestRunMidwayIsViolation(t *testing.T) {
	p, err := New(Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.PauliZ()})
	require.NoError(t, err)
	require.NoError(t, p.Prepare())
	_, err = p.Run(context.Background(), sim.NewSimulator(), 10)
	assert.ErrorIs(t, err, ErrSequenceViolation)
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no counting qubits", Config{CountingQubits: 0, Eigenstate: "1", Unitary: unitary.PauliZ()}},
		{"negative counting qubits", Config{CountingQubits: -2, Eigenstate: "1", Unitary: unitary.PauliZ()}},
		{"no unitary", Config{CountingQubits: 2, Eigenstate: "1"}},
		{"empty eigenstate", Config{CountingQubits: 2, Unitary: unitary.PauliZ()}},
		{"not binary", Config{CountingQubits: 2, Eigenstate: "2", Unitary: unitary.PauliZ()}},
		{"too many eigenstate qubits", Config{CountingQubits: 2, Eigenstate: "10", Unitary: unitary.PauliZ()}},
		{"too few eigenstate qubits", Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.CZ()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			assert.ErrorIs(t, err, circuit.ErrInvalidConfiguration)
			assert.Nil(t, p)
		})
	}
}

type failingBackend struct{ err error }

func (f failingBackend) Name() string { return "failing" }

func (f failingBackend) Submit(context.Context, *circuit.Circuit, int) (*sim.Result, error) {
	return nil, f.err
}

func TestBackendErrorsPassThrough(t *testing.T) {
	p, err := New(Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.PauliZ()})
	require.NoError(t, err)

	want := errors.New("quota exceeded")
	_, err = p.Run(context.Background(), failingBackend{err: want}, 10)
	assert.Same(t, want, err)

	_, err = p.Run(context.Background(), sim.NewSimulator(), 0)
	assert.ErrorIs(t, err, sim.ErrBackend)
}

func TestIndependentRunsShareNothing(t *testing.T) {
	a, err := New(Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.PauliZ()})
	require.NoError(t, err)
	b, err := New(Config{CountingQubits: 2, Eigenstate: "1", Unitary: unitary.PauliZ()})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, a.Build())
	assert.Equal(t, StageNew, b.Stage())
	assert.Equal(t, 0, b.Circuit().Len())
}

package unitary

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewRejectsBadShapes(t *testing.T) {
	_, err := New("rect", mat.NewCDense(2, 4, nil))
	assert.ErrorIs(t, err, ErrDimension)

	_, err = New("three", identity(3))
	assert.ErrorIs(t, err, ErrDimension)

	_, err = New("scaled", mat.NewCDense(2, 2, []complex128{2, 0, 0, 2}))
	assert.ErrorIs(t, err, ErrNotUnitary)
}

func TestQubitsFromDimension(t *testing.T) {
	assert.Equal(t, 1, PauliZ().Qubits())
	assert.Equal(t, 2, CZ().Qubits())
	assert.Equal(t, 3, Identity(3).Qubits())
	assert.Equal(t, 8, Identity(3).Dim())
}

func TestIntegerPowers(t *testing.T) {
	z := PauliZ()

	z2, err := z.Pow(2)
	require.NoError(t, err)
	assert.InDelta(t, 1, real(z2.At(1, 1)), 1e-12)

	s4, err := S().Pow(4)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		assert.InDelta(t, 0, cmplx.Abs(s4.At(i, i)-1), 1e-12)
	}

	// T^-1 is the adjoint.
	tInv, err := T().Pow(-1)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(tInv.At(1, 1)-cmplx.Exp(complex(0, -math.Pi/4))), 1e-12)

	id, err := T().Pow(0)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), id.At(1, 1))
}

func TestNonDiagonalPowers(t *testing.T) {
	x, err := New("X", mat.NewCDense(2, 2, []complex128{0, 1, 1, 0}))
	require.NoError(t, err)
	assert.False(t, x.IsDiagonal())

	x3, err := x.Pow(3)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 0), x3.At(0, 1))
	assert.Equal(t, complex(0, 0), x3.At(0, 0))

	_, err = x.Pow(0.5)
	assert.ErrorIs(t, err, ErrFractionalPower)
}

func TestFractionalPowerOfDiagonal(t *testing.T) {
	half, err := PauliZ().Pow(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(half.At(1, 1)-1i), 1e-12)
}

func TestEigenphase(t *testing.T) {
	tests := []struct {
		name  string
		u     *Unitary
		basis int
		want  float64
	}{
		{"Z on |1>", PauliZ(), 1, 0.5},
		{"Z on |0>", PauliZ(), 0, 0},
		{"S on |1>", S(), 1, 0.25},
		{"T on |1>", T(), 1, 0.125},
		{"CZ on |11>", CZ(), 3, 0.5},
		{"phase -pi/2", Phase(-math.Pi / 2), 1, 0.75},
	}
	for _, tt := range tests {
		got, ok := tt.u.Eigenphase(tt.basis)
		require.True(t, ok, tt.name)
		assert.InDelta(t, tt.want, got, 1e-12, tt.name)
	}

	x, _ := New("X", mat.NewCDense(2, 2, []complex128{0, 1, 1, 0}))
	_, ok := x.Eigenphase(0)
	assert.False(t, ok)
}

func TestDiagonal(t *testing.T) {
	u, err := Diagonal("D", 0, 0.25, 0.5, 0.75)
	require.NoError(t, err)
	assert.Equal(t, 2, u.Qubits())
	phi, ok := u.Eigenphase(2)
	require.True(t, ok)
	assert.InDelta(t, 0.5, phi, 1e-12)

	_, err = Diagonal("bad", 0, 0.5, 0.25)
	assert.ErrorIs(t, err, ErrDimension)
}

func TestParse(t *testing.T) {
	for _, name := range Names {
		u, err := Parse(name, 1)
		require.NoError(t, err, name)
		assert.NotNil(t, u)
	}

	id, err := Parse("identity", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, id.Qubits())

	p, err := Parse("phase(3*pi/4)", 1)
	require.NoError(t, err)
	phi, _ := p.Eigenphase(1)
	assert.InDelta(t, 0.375, phi, 1e-12)

	_, err = Parse("hadamard", 1)
	assert.Error(t, err)
	_, err = Parse("phase(nope)", 1)
	assert.Error(t, err)
}

func TestAdjointInvertsAndMatrixCopies(t *testing.T) {
	tg := T()
	adj := tg.Adjoint()
	assert.Equal(t, "T†", adj.Name())

	prod := mul(tg.Matrix(), adj.Matrix())
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			assert.InDelta(t, 0, cmplx.Abs(prod.At(i, j)-want), 1e-12)
		}
	}

	m := tg.Matrix()
	m.Set(0, 0, 5)
	assert.Equal(t, complex(1, 0), tg.At(0, 0))
}

// Package unitary holds the square unitary matrices phase estimation is run
// against. Matrices are stored as gonum complex dense matrices; row and column
// indices are big-endian over the operand qubits, so the first qubit an
// operation lists is the most significant bit of the index.
package unitary

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimension is returned for matrices that are not square with a
	// power-of-two side.
	ErrDimension = errors.New("unitary: matrix must be square with a power-of-two dimension")

	// ErrNotUnitary is returned when U†U differs from the identity by more
	// than the package tolerance.
	ErrNotUnitary = errors.New("unitary: matrix is not unitary")

	// ErrFractionalPower is returned when a non-integer power is requested of
	// a matrix that is not diagonal.
	ErrFractionalPower = errors.New("unitary: fractional power of a non-diagonal matrix")
)

// Tolerance bounds the entrywise deviation accepted by the unitarity check.
const Tolerance = 1e-9

// Unitary is an immutable unitary operator on Qubits() qubits.
type Unitary struct {
	name   string
	qubits int
	m      *mat.CDense
}

// New validates m and returns it as a Unitary. The matrix is copied.
func New(name string, m mat.CMatrix) (*Unitary, error) {
	r, c := m.Dims()
	if r != c || r == 0 || r&(r-1) != 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrDimension, r, c)
	}
	if !isUnitary(m) {
		return nil, fmt.Errorf("%w: %s", ErrNotUnitary, name)
	}
	d := mat.NewCDense(r, c, nil)
	d.Copy(m)
	return &Unitary{
		name:   name,
		qubits: bits.TrailingZeros(uint(r)),
		m:      d,
	}, nil
}

// MustNew is like New but panics on error. Intended for package-level
// catalog entries whose matrices are known to be valid.
func MustNew(name string, m mat.CMatrix) *Unitary {
	u, err := New(name, m)
	if err != nil {
		panic(err)
	}
	return u
}

// Name returns the display name, including any applied power.
func (u *Unitary) Name() string { return u.name }

// Qubits returns the number of qubits the operator acts on.
func (u *Unitary) Qubits() int { return u.qubits }

// Dim returns the matrix side, 2^Qubits().
func (u *Unitary) Dim() int { return 1 << u.qubits }

// At returns the matrix entry at row i, column j.
func (u *Unitary) At(i, j int) complex128 { return u.m.At(i, j) }

// Matrix returns a copy of the underlying matrix.
func (u *Unitary) Matrix() *mat.CDense {
	d := mat.NewCDense(u.Dim(), u.Dim(), nil)
	d.Copy(u.m)
	return d
}

// IsDiagonal reports whether every off-diagonal entry is zero within Tolerance.
func (u *Unitary) IsDiagonal() bool {
	n := u.Dim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && cmplx.Abs(u.m.At(i, j)) > Tolerance {
				return false
			}
		}
	}
	return true
}

// Adjoint returns the conjugate transpose, which is also the inverse.
func (u *Unitary) Adjoint() *Unitary {
	d := mat.NewCDense(u.Dim(), u.Dim(), nil)
	d.Copy(u.m.H())
	return &Unitary{name: u.name + "†", qubits: u.qubits, m: d}
}

// Pow returns u raised to the power e. Integer powers work for every
// unitary, negative ones through the adjoint. Non-integer powers are only
// defined here for diagonal unitaries and use the principal branch of each
// eigenvalue's phase.
func (u *Unitary) Pow(e float64) (*Unitary, error) {
	name := u.name + "^" + strconv.FormatFloat(e, 'g', -1, 64)
	if e == math.Trunc(e) && math.Abs(e) < 1<<62 {
		return &Unitary{name: name, qubits: u.qubits, m: u.intPow(int64(e))}, nil
	}
	if !u.IsDiagonal() {
		return nil, fmt.Errorf("%w: %s^%g", ErrFractionalPower, u.name, e)
	}
	n := u.Dim()
	d := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		z := u.m.At(i, i)
		d.Set(i, i, cmplx.Rect(cmplx.Abs(z), cmplx.Phase(z)*e))
	}
	return &Unitary{name: name, qubits: u.qubits, m: d}, nil
}

// intPow computes u^k by repeated squaring.
func (u *Unitary) intPow(k int64) *mat.CDense {
	base := mat.CMatrix(u.m)
	if k < 0 {
		base = u.m.H()
		k = -k
	}
	result := identity(u.Dim())
	sq := mat.NewCDense(u.Dim(), u.Dim(), nil)
	sq.Copy(base)
	for k > 0 {
		if k&1 == 1 {
			result = mul(result, sq)
		}
		k >>= 1
		if k > 0 {
			sq = mul(sq, sq)
		}
	}
	return result
}

// Eigenphase returns φ in [0, 1) such that u|basis⟩ = e^{2πiφ}|basis⟩.
// It reports false when u is not diagonal or basis is out of range, since
// only then is a computational basis state guaranteed to be an eigenstate.
func (u *Unitary) Eigenphase(basis int) (float64, bool) {
	if basis < 0 || basis >= u.Dim() || !u.IsDiagonal() {
		return 0, false
	}
	phi := cmplx.Phase(u.m.At(basis, basis)) / (2 * math.Pi)
	if phi < 0 {
		phi++
	}
	if phi >= 1 {
		phi--
	}
	return phi, true
}

func (u *Unitary) String() string {
	return fmt.Sprintf("%s(%d qubit)", u.name, u.qubits)
}

// identity returns the n×n identity matrix.
func identity(n int) *mat.CDense {
	d := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

// mul returns a·b for square matrices of equal size.
func mul(a, b mat.CMatrix) *mat.CDense {
	n, _ := a.Dims()
	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.Set(i, j, out.At(i, j)+aik*b.At(k, j))
			}
		}
	}
	return out
}

// isUnitary checks U†U = I entrywise within Tolerance.
func isUnitary(m mat.CMatrix) bool {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum complex128
			for k := 0; k < n; k++ {
				sum += cmplx.Conj(m.At(k, i)) * m.At(k, j)
			}
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(sum-want) > Tolerance {
				return false
			}
		}
	}
	return true
}

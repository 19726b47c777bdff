package unitary

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/mat"

	"qtermphase/internal/angle"
)

// Identity returns the identity on the given number of qubits.
func Identity(qubits int) *Unitary {
	if qubits < 1 {
		qubits = 1
	}
	return MustNew("I", identity(1<<qubits))
}

// PauliZ returns Z = diag(1, -1). |1⟩ has eigenphase 1/2.
func PauliZ() *Unitary {
	return MustNew("Z", mat.NewCDense(2, 2, []complex128{1, 0, 0, -1}))
}

// S returns diag(1, i). |1⟩ has eigenphase 1/4.
func S() *Unitary {
	return MustNew("S", mat.NewCDense(2, 2, []complex128{1, 0, 0, 1i}))
}

// T returns diag(1, e^{iπ/4}). |1⟩ has eigenphase 1/8.
func T() *Unitary {
	return MustNew("T", mat.NewCDense(2, 2, []complex128{1, 0, 0, cmplx.Exp(complex(0, math.Pi/4))}))
}

// Phase returns diag(1, e^{iθ}).
func Phase(theta float64) *Unitary {
	return MustNew("P("+angle.Format(theta)+")", mat.NewCDense(2, 2, []complex128{1, 0, 0, cmplx.Exp(complex(0, theta))}))
}

// CZ returns the two-qubit controlled-Z, diag(1, 1, 1, -1).
func CZ() *Unitary {
	d := identity(4)
	d.Set(3, 3, -1)
	return MustNew("CZ", d)
}

// Diagonal returns diag(e^{2πiφ_0}, e^{2πiφ_1}, ...) for eigenphases given in
// turns. The number of phases must be a power of two.
func Diagonal(name string, phases ...float64) (*Unitary, error) {
	n := len(phases)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d phases", ErrDimension, n)
	}
	d := mat.NewCDense(n, n, nil)
	for i, phi := range phases {
		d.Set(i, i, cmplx.Exp(complex(0, 2*math.Pi*phi)))
	}
	return New(name, d)
}

// Names lists the specs accepted by Parse, in menu order.
var Names = []string{"z", "s", "t", "identity", "cz", "phase(pi/2)"}

// Parse resolves a unitary spec: "z", "s", "t", "cz", "identity" (on the
// given number of qubits), or "phase(<angle>)" with an angle such as "pi/4".
func Parse(spec string, qubits int) (*Unitary, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	switch s {
	case "z":
		return PauliZ(), nil
	case "s":
		return S(), nil
	case "t":
		return T(), nil
	case "cz":
		return CZ(), nil
	case "i", "identity":
		return Identity(qubits), nil
	}
	if strings.HasPrefix(s, "phase(") && strings.HasSuffix(s, ")") {
		theta, ok := angle.Parse(s[len("phase(") : len(s)-1])
		if !ok {
			return nil, fmt.Errorf("unitary: bad phase angle in %q", spec)
		}
		return Phase(theta), nil
	}
	return nil, fmt.Errorf("unitary: unknown unitary %q", spec)
}

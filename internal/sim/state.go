package sim

import (
	"fmt"
	"math"
	"math/cmplx"

	"qtermphase/internal/circuit"
	"qtermphase/internal/unitary"
)

// StateVector holds 2^NumQubits amplitudes. Qubit q is bit 1<<q of the
// amplitude index.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0…0⟩ over numQubits qubits.
func NewStateVector(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]complex128, n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// BasisState returns |index⟩ over numQubits qubits.
func BasisState(numQubits, index int) *StateVector {
	s := NewStateVector(numQubits)
	s.Amplitudes[0] = 0
	s.Amplitudes[index] = 1
	return s
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Apply evolves the state by one unitary operation. Measurements are not
// unitary and are handled by the sampler, so they are rejected here.
func (s *StateVector) Apply(op circuit.Operation) error {
	if err := op.Validate(s.NumQubits); err != nil {
		return err
	}
	q := func(i int) int { return int(op.Qubits[i]) }
	switch op.Kind {
	case circuit.GateH:
		s.applyH(q(0))
	case circuit.GateX:
		s.applyX(q(0))
	case circuit.GateSwap:
		s.applySWAP(q(0), q(1))
	case circuit.GateCPhase:
		s.applyCPhase(q(0), q(1), op.Exponent)
	case circuit.GateCUPower:
		u, err := op.Unitary.Pow(op.Exponent)
		if err != nil {
			return err
		}
		targets := make([]int, len(op.Qubits)-1)
		for i := range targets {
			targets[i] = q(i + 1)
		}
		s.applyControlledUnitary(q(0), targets, u)
	default:
		return fmt.Errorf("%s is not a unitary operation", op.Kind)
	}
	return nil
}

func (s *StateVector) applyH(q int) {
	hFactor := complex(1.0/math.Sqrt2, 0)
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = hFactor * (a + b)
			s.Amplitudes[j] = hFactor * (a - b)
		}
	}
}

func (s *StateVector) applyX(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	n := len(s.Amplitudes)
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := 0; i < n; i++ {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i & ^bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// applyCPhase multiplies every amplitude with both bits set by e^{-iπt}.
func (s *StateVector) applyCPhase(target, control int, t float64) {
	n := len(s.Amplitudes)
	mask := 1<<target | 1<<control
	phase := cmplx.Exp(complex(0, -math.Pi*t))
	for i := 0; i < n; i++ {
		if i&mask == mask {
			s.Amplitudes[i] *= phase
		}
	}
}

// applyControlledUnitary applies u to targets on every branch where control
// is set. targets[0] is the most significant bit of u's index.
func (s *StateVector) applyControlledUnitary(control int, targets []int, u *unitary.Unitary) {
	m := len(targets)
	dim := 1 << m
	cBit := 1 << control
	var tMask int
	offsets := make([]int, dim)
	for k := range dim {
		for j, t := range targets {
			if k&(1<<(m-1-j)) != 0 {
				offsets[k] |= 1 << t
			}
		}
	}
	for _, t := range targets {
		tMask |= 1 << t
	}

	in := make([]complex128, dim)
	n := len(s.Amplitudes)
	for base := 0; base < n; base++ {
		if base&cBit == 0 || base&tMask != 0 {
			continue
		}
		for k := range dim {
			in[k] = s.Amplitudes[base|offsets[k]]
		}
		for r := range dim {
			var sum complex128
			for c := range dim {
				if in[c] != 0 {
					sum += u.At(r, c) * in[c]
				}
			}
			s.Amplitudes[base|offsets[r]] = sum
		}
	}
}

// Probabilities returns |amplitude|² per basis index.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		probs[i] = real(amp * cmplx.Conj(amp))
	}
	return probs
}

// Marginal returns the outcome distribution of a joint measurement of qubits.
// Index k of the result has qubits[0] as its most significant bit.
func (s *StateVector) Marginal(qubits []circuit.Qubit) []float64 {
	out := make([]float64, 1<<len(qubits))
	for i, p := range s.Probabilities() {
		out[outcomeKey(i, qubits)] += p
	}
	return out
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the single-qubit marginals.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, prob := range s.Probabilities() {
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}
	return probs
}

// outcomeKey reads the bits of basis index i at qubits, most significant first.
func outcomeKey(i int, qubits []circuit.Qubit) int {
	key := 0
	for _, q := range qubits {
		key <<= 1
		if i&(1<<int(q)) != 0 {
			key |= 1
		}
	}
	return key
}

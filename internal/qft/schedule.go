// Package qft builds the quantum Fourier transform over a register: the
// controlled-phase rotation schedule, the bit-reversal swaps, and the exact
// inverse used by phase estimation.
package qft

import (
	"fmt"
	"math"

	"qtermphase/internal/circuit"
)

// Schedule is the rotation table for an n-qubit transform. Entry (i, j) is
// populated for j < i only.
type Schedule struct {
	n int
}

// NewSchedule returns the schedule for n qubits.
func NewSchedule(n int) (Schedule, error) {
	if n <= 0 {
		return Schedule{}, fmt.Errorf("%w: transform needs at least one qubit, got %d", circuit.ErrInvalidConfiguration, n)
	}
	return Schedule{n: n}, nil
}

// Size returns n.
func (s Schedule) Size() int { return s.n }

// Exponent returns the controlled-phase exponent between target i and
// control j, -2/2^(i-j+1). It reports false outside the populated triangle.
func (s Schedule) Exponent(i, j int) (float64, bool) {
	if i < 0 || i >= s.n || j < 0 || j >= i {
		return 0, false
	}
	return -2.0 / math.Exp2(float64(i-j+1)), true
}

// Angle returns the rotation angle θ(i, j) = -2π/2^(i-j+1) in radians.
func (s Schedule) Angle(i, j int) (float64, bool) {
	e, ok := s.Exponent(i, j)
	return math.Pi * e, ok
}

// Rotations returns the number of populated entries, n(n-1)/2.
func (s Schedule) Rotations() int { return s.n * (s.n - 1) / 2 }

// Swaps returns the bit-reversal pairs (k, n-1-k) for k < n/2.
func (s Schedule) Swaps() [][2]int {
	pairs := make([][2]int, 0, s.n/2)
	for k := range s.n / 2 {
		pairs = append(pairs, [2]int{k, s.n - 1 - k})
	}
	return pairs
}

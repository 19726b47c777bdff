package qft

import (
	"fmt"

	"qtermphase/internal/circuit"
)

// Builder emits the transform over a register one target qubit at a time.
// A Builder is single use.
type Builder struct {
	reg      circuit.Register
	schedule Schedule
	next     int
	swapped  bool
}

// NewBuilder returns a builder for reg. Empty registers are rejected.
func NewBuilder(reg circuit.Register) (*Builder, error) {
	s, err := NewSchedule(reg.Size())
	if err != nil {
		return nil, err
	}
	return &Builder{reg: reg, schedule: s}, nil
}

// Schedule returns the rotation table the builder follows.
func (b *Builder) Schedule() Schedule { return b.schedule }

// Done reports whether every step and the swaps have been emitted.
func (b *Builder) Done() bool { return b.swapped }

// Step emits the rotations onto the next target qubit i (controls j = 0..i-1
// ascending) followed by a Hadamard on i. It reports false once every target
// has been processed.
func (b *Builder) Step(c *circuit.Circuit) (bool, error) {
	i := b.next
	if i >= b.schedule.Size() {
		return false, nil
	}
	ops := make([]circuit.Operation, 0, i+1)
	for j := 0; j < i; j++ {
		e, _ := b.schedule.Exponent(i, j)
		ops = append(ops, circuit.ControlledPhase(b.reg.Qubit(i), b.reg.Qubit(j), e))
	}
	ops = append(ops, circuit.Hadamard(b.reg.Qubit(i)))
	if err := c.Append(ops...); err != nil {
		return false, err
	}
	b.next++
	return true, nil
}

// Swaps emits the bit-reversal swaps. All steps must have run first.
func (b *Builder) Swaps(c *circuit.Circuit) error {
	if b.next < b.schedule.Size() {
		return fmt.Errorf("%w: swaps requested after %d of %d steps", circuit.ErrInvalidConfiguration, b.next, b.schedule.Size())
	}
	if b.swapped {
		return nil
	}
	ops := make([]circuit.Operation, 0, b.schedule.Size()/2)
	for _, p := range b.schedule.Swaps() {
		ops = append(ops, circuit.SwapQubits(b.reg.Qubit(p[0]), b.reg.Qubit(p[1])))
	}
	if err := c.Append(ops...); err != nil {
		return err
	}
	b.swapped = true
	return nil
}

// Run emits every remaining step and then the swaps.
func (b *Builder) Run(c *circuit.Circuit) error {
	for {
		more, err := b.Step(c)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return b.Swaps(c)
}

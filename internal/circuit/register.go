package circuit

import (
	"fmt"
	"slices"
)

// Register is a named, ordered group of qubits. Index 0 is the first qubit
// handed out for the register.
type Register struct {
	Name   string
	qubits []Qubit
}

// Size returns the number of qubits in the register.
func (r Register) Size() int { return len(r.qubits) }

// Qubit returns the i-th qubit. It panics when i is out of range, like a
// slice index.
func (r Register) Qubit(i int) Qubit { return r.qubits[i] }

// Qubits returns a copy of the register's qubits in index order.
func (r Register) Qubits() []Qubit { return slices.Clone(r.qubits) }

// Context hands out fresh qubit identifiers. Each Allocate call returns a
// contiguous block that never overlaps an earlier one.
type Context struct {
	next      int
	registers []Register
}

// NewContext returns an empty allocation context.
func NewContext() *Context {
	return &Context{}
}

// Allocate reserves size fresh qubits under name.
func (c *Context) Allocate(name string, size int) (Register, error) {
	if size < 1 {
		return Register{}, fmt.Errorf("%w: register %q needs at least one qubit, got %d", ErrInvalidConfiguration, name, size)
	}
	r := Register{Name: name, qubits: make([]Qubit, size)}
	for i := range size {
		r.qubits[i] = Qubit(c.next + i)
	}
	c.next += size
	c.registers = append(c.registers, r)
	return r, nil
}

// NumQubits returns how many qubits have been handed out so far.
func (c *Context) NumQubits() int { return c.next }

// Registers returns the allocated registers in allocation order.
func (c *Context) Registers() []Register {
	return slices.Clone(c.registers)
}

// Lookup returns the register owning q.
func (c *Context) Lookup(q Qubit) (Register, int, bool) {
	for _, r := range c.registers {
		if i := slices.Index(r.qubits, q); i >= 0 {
			return r, i, true
		}
	}
	return Register{}, 0, false
}

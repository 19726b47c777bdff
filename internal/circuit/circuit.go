package circuit

import (
	"fmt"
	"slices"
	"strings"
)

// Circuit is an ordered list of operations over a fixed number of qubits.
// Order of appends is the order of application.
type Circuit struct {
	numQubits int
	ops       []Operation
}

// New returns an empty circuit over numQubits qubits.
func New(numQubits int) *Circuit {
	return &Circuit{numQubits: numQubits}
}

// NumQubits returns the declared width.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Len returns the number of operations.
func (c *Circuit) Len() int { return len(c.ops) }

// At returns the i-th operation.
func (c *Circuit) At(i int) Operation { return c.ops[i].Clone() }

// Append validates op against the circuit width and appends it. Nothing is
// appended when validation fails.
func (c *Circuit) Append(ops ...Operation) error {
	for _, op := range ops {
		if err := op.Validate(c.numQubits); err != nil {
			return err
		}
	}
	for _, op := range ops {
		c.ops = append(c.ops, op.Clone())
	}
	return nil
}

// Extend appends every operation of other, in order.
func (c *Circuit) Extend(other *Circuit) error {
	return c.Append(other.ops...)
}

// Operations returns a copy of the operation list.
func (c *Circuit) Operations() []Operation {
	out := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		out[i] = op.Clone()
	}
	return out
}

// Clone returns an independent copy.
func (c *Circuit) Clone() *Circuit {
	return &Circuit{numQubits: c.numQubits, ops: c.Operations()}
}

// Inverse returns the circuit that undoes c: operations in reverse order, each
// replaced by its inverse. Circuits containing measurements are rejected.
func (c *Circuit) Inverse() (*Circuit, error) {
	inv := &Circuit{numQubits: c.numQubits, ops: make([]Operation, 0, len(c.ops))}
	for _, op := range slices.Backward(c.ops) {
		r, err := op.Inverse()
		if err != nil {
			return nil, err
		}
		inv.ops = append(inv.ops, r)
	}
	return inv, nil
}

// Remap returns a copy over numQubits qubits with every operand passed
// through fn. The result is validated against the new width.
func (c *Circuit) Remap(numQubits int, fn func(Qubit) Qubit) (*Circuit, error) {
	out := New(numQubits)
	for _, op := range c.ops {
		if err := out.Append(op.Remap(fn)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Count returns how many operations have the given kind.
func (c *Circuit) Count(kind GateKind) int {
	n := 0
	for _, op := range c.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Validate re-checks every operation. Circuits built through Append are
// always valid; this is for circuits assembled by other means.
func (c *Circuit) Validate() error {
	for i, op := range c.ops {
		if err := op.Validate(c.numQubits); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// Channels returns the measurement channel names in order of first use.
func (c *Circuit) Channels() []string {
	var out []string
	for _, op := range c.ops {
		if op.Kind == GateMeasure && !slices.Contains(out, op.Channel) {
			out = append(out, op.Channel)
		}
	}
	return out
}

func (c *Circuit) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "circuit(%d qubits, %d ops)\n", c.numQubits, len(c.ops))
	for i, op := range c.ops {
		fmt.Fprintf(&sb, "%3d  %s\n", i, op)
	}
	return sb.String()
}

package circuit

import (
	"fmt"
	"slices"
	"strings"

	"qtermphase/internal/unitary"
)

// Qubit is an abstract qubit identifier. Identifiers are handed out by a
// Context and carry no hardware meaning.
type Qubit int

// GateKind tags an Operation. The set is closed: backends switch on it.
type GateKind int

const (
	GateH GateKind = iota
	GateX
	GateCPhase
	GateSwap
	GateCUPower
	GateMeasure
)

// String returns the short tag used in diagrams and logs.
func (k GateKind) String() string {
	switch k {
	case GateH:
		return "H"
	case GateX:
		return "X"
	case GateCPhase:
		return "CP"
	case GateSwap:
		return "SWAP"
	case GateCUPower:
		return "CU"
	case GateMeasure:
		return "MEASURE"
	default:
		return fmt.Sprintf("GateKind(%d)", int(k))
	}
}

// Operation is one declared gate application.
//
// For GateCPhase, Qubits is (target, control) and Exponent t applies the phase
// e^{-iπt} to the |11⟩ component. For GateCUPower, Qubits is the control
// followed by the unitary's operand qubits and the gate applies
// Unitary^Exponent when the control is |1⟩. For GateMeasure, Qubits is the
// joint measurement order (first qubit is the most significant bit of the
// outcome) and Channel names the observation.
type Operation struct {
	Kind     GateKind
	Qubits   []Qubit
	Exponent float64
	Unitary  *unitary.Unitary
	Channel  string
}

// Hadamard returns H on q.
func Hadamard(q Qubit) Operation {
	return Operation{Kind: GateH, Qubits: []Qubit{q}}
}

// PauliX returns X on q.
func PauliX(q Qubit) Operation {
	return Operation{Kind: GateX, Qubits: []Qubit{q}}
}

// ControlledPhase returns a controlled-phase rotation between target and
// control with the given exponent.
func ControlledPhase(target, control Qubit, exponent float64) Operation {
	return Operation{Kind: GateCPhase, Qubits: []Qubit{target, control}, Exponent: exponent}
}

// SwapQubits returns SWAP(a, b).
func SwapQubits(a, b Qubit) Operation {
	return Operation{Kind: GateSwap, Qubits: []Qubit{a, b}}
}

// ControlledPower returns a controlled u^exponent acting on targets.
func ControlledPower(u *unitary.Unitary, exponent float64, control Qubit, targets []Qubit) Operation {
	qs := make([]Qubit, 0, len(targets)+1)
	qs = append(qs, control)
	qs = append(qs, targets...)
	return Operation{Kind: GateCUPower, Qubits: qs, Exponent: exponent, Unitary: u}
}

// Measure returns a joint measurement of qubits recorded under channel.
func Measure(channel string, qubits []Qubit) Operation {
	return Operation{Kind: GateMeasure, Qubits: slices.Clone(qubits), Channel: channel}
}

// Clone returns a deep copy of the qubit list. The unitary is shared; it is
// immutable.
func (op Operation) Clone() Operation {
	op.Qubits = slices.Clone(op.Qubits)
	return op
}

// Inverse returns the operation's inverse. H, X and SWAP are self-inverse;
// rotations negate their exponent. Measurements have no inverse.
func (op Operation) Inverse() (Operation, error) {
	inv := op.Clone()
	switch op.Kind {
	case GateH, GateX, GateSwap:
	case GateCPhase, GateCUPower:
		inv.Exponent = -op.Exponent
	default:
		return Operation{}, fmt.Errorf("%w: %s", ErrNotInvertible, op.Kind)
	}
	return inv, nil
}

// Remap returns a copy with every qubit passed through fn.
func (op Operation) Remap(fn func(Qubit) Qubit) Operation {
	out := op.Clone()
	for i, q := range out.Qubits {
		out.Qubits[i] = fn(q)
	}
	return out
}

// Control returns the controlling qubit of a controlled operation.
func (op Operation) Control() (Qubit, bool) {
	switch op.Kind {
	case GateCPhase:
		return op.Qubits[1], true
	case GateCUPower:
		return op.Qubits[0], true
	}
	return 0, false
}

// Validate checks the qubit list against the gate's arity and numQubits.
func (op Operation) Validate(numQubits int) error {
	want := 0
	switch op.Kind {
	case GateH, GateX:
		want = 1
	case GateCPhase, GateSwap:
		want = 2
	case GateCUPower:
		if op.Unitary == nil {
			return fmt.Errorf("%w: %s without a unitary", ErrMalformed, op.Kind)
		}
		want = op.Unitary.Qubits() + 1
	case GateMeasure:
		if len(op.Qubits) == 0 {
			return fmt.Errorf("%w: measurement of no qubits", ErrMalformed)
		}
		if op.Channel == "" {
			return fmt.Errorf("%w: measurement without a channel", ErrMalformed)
		}
		want = len(op.Qubits)
	default:
		return fmt.Errorf("%w: unknown gate kind %d", ErrMalformed, int(op.Kind))
	}
	if len(op.Qubits) != want {
		return fmt.Errorf("%w: %s expects %d qubits, got %d", ErrMalformed, op.Kind, want, len(op.Qubits))
	}

	seen := make(map[Qubit]bool, len(op.Qubits))
	for _, q := range op.Qubits {
		if q < 0 || int(q) >= numQubits {
			return fmt.Errorf("%w: %s on q[%d] outside %d declared qubits", ErrMalformed, op.Kind, q, numQubits)
		}
		if seen[q] {
			return fmt.Errorf("%w: %s lists q[%d] twice", ErrMalformed, op.Kind, q)
		}
		seen[q] = true
	}
	return nil
}

// String renders the operation for logs, e.g. "CP(-0.5) q[1], q[0]".
func (op Operation) String() string {
	qs := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		qs[i] = fmt.Sprintf("q[%d]", q)
	}
	switch op.Kind {
	case GateCPhase:
		return fmt.Sprintf("%s(%g) %s", op.Kind, op.Exponent, strings.Join(qs, ", "))
	case GateCUPower:
		return fmt.Sprintf("C-%s^%g %s", op.Unitary.Name(), op.Exponent, strings.Join(qs, ", "))
	case GateMeasure:
		return fmt.Sprintf("%s[%s] %s", op.Kind, op.Channel, strings.Join(qs, ", "))
	default:
		return fmt.Sprintf("%s %s", op.Kind, strings.Join(qs, ", "))
	}
}

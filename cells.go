package main

import (
	"fmt"

	"qtermphase/internal/circuit"
)

// grid is the drawable form of a circuit: operations bucketed by layer.
type grid struct {
	numQubits int
	counting  int // the first counting qubits get the counting label style
	layers    [][]circuit.Operation
}

func newGrid(c *circuit.Circuit, counting int) grid {
	g := grid{numQubits: c.NumQubits(), counting: counting}
	ops := c.Operations()
	for _, layer := range c.Layers() {
		col := make([]circuit.Operation, 0, len(layer))
		for _, i := range layer {
			col = append(col, ops[i])
		}
		g.layers = append(g.layers, col)
	}
	return g
}

// opAt returns the operation acting on qubit in the given layer.
func (g grid) opAt(layer, qubit int) *circuit.Operation {
	if layer < 0 || layer >= len(g.layers) {
		return nil
	}
	for i := range g.layers[layer] {
		op := &g.layers[layer][i]
		for _, q := range op.Qubits {
			if int(q) == qubit {
				return op
			}
		}
	}
	return nil
}

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	op          *circuit.Operation
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// cellInfo returns rendering information for the cell at (layer, qubit).
func (g grid) cellInfo(layer, qubit int) cellInfo {
	var info cellInfo

	op := g.opAt(layer, qubit)
	if op != nil {
		info.op = op
		if ctrl, ok := op.Control(); ok && int(ctrl) == qubit {
			info.isControl = true
		}
		switch op.Kind {
		case circuit.GateCPhase, circuit.GateSwap:
			info.isTarget = !info.isControl
		}
	}

	// Vertical connections for multi-qubit gates
	if layer >= 0 && layer < len(g.layers) {
		for _, o := range g.layers[layer] {
			if len(o.Qubits) < 2 || o.Kind == circuit.GateMeasure {
				continue
			}
			minQ, maxQ := int(o.Qubits[0]), int(o.Qubits[0])
			for _, q := range o.Qubits[1:] {
				minQ = min(minQ, int(q))
				maxQ = max(maxQ, int(q))
			}
			if qubit >= minQ && qubit <= maxQ {
				if qubit > minQ {
					info.vertAbove = true
				}
				if qubit < maxQ {
					info.vertBelow = true
				}
				if qubit > minQ && qubit < maxQ && info.op == nil {
					info.passThrough = true
				}
			}
		}
	}

	return info
}

// gateDisplayName returns a short display name for an operation.
func gateDisplayName(op circuit.Operation) string {
	switch op.Kind {
	case circuit.GateMeasure:
		return "M"
	case circuit.GateCUPower:
		return fmt.Sprintf("U^%g", op.Exponent)
	default:
		return op.Kind.String()
	}
}

// controlSymbol returns the wire symbol for the control qubit of a two-qubit gate.
func controlSymbol(kind circuit.GateKind) string {
	if kind == circuit.GateSwap {
		return "×"
	}
	return "●"
}

// targetSymbol returns the wire symbol for the target qubit of a two-qubit gate.
func targetSymbol(kind circuit.GateKind) string {
	switch kind {
	case circuit.GateSwap:
		return "×"
	case circuit.GateCPhase:
		return "P"
	default:
		return "⊕"
	}
}

// Package circuit is the gate-level model the phase-estimation pipeline emits
// into: abstract qubits allocated from a Context, a closed set of gate kinds,
// and an append-only Circuit with inversion, layering and QASM export.
//
// Gate conventions:
//
//	ControlledPhase(target, control, t)   |11⟩ picks up e^{-iπt}
//	ControlledPower(u, e, control, ts...) applies u^e to ts when control is |1⟩
//	Measure(channel, qs)                  qs[0] is the most significant outcome bit
package circuit

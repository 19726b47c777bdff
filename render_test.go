package main

import (
	"strings"
	"testing"

	"qtermphase/internal/circuit"
	"qtermphase/internal/qpe"
	"qtermphase/internal/unitary"
)

func TestPadCenter(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"H", 5, "  H  "},
		{"U^4", 5, " U^4 "},
		{"U^1024", 5, "U^102"},
	}
	for _, tt := range tests {
		if got := padCenter(tt.in, tt.width); got != tt.want {
			t.Errorf("padCenter(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestVisibleLen(t *testing.T) {
	if got := visibleLen("\x1b[1;31mabc\x1b[0m"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := visibleLen("│─┤"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestOverlayAt(t *testing.T) {
	bg := "aaaaa\nbbbbb\nccccc"
	got := overlayAt(bg, "XY", 1, 1)
	want := "aaaaa\nbXYbb\nccccc"
	if got != want {
		t.Errorf("overlayAt = %q, want %q", got, want)
	}
}

func TestGridCells(t *testing.T) {
	c := circuit.New(4)
	ops := []circuit.Operation{
		circuit.PauliX(3),
		circuit.Hadamard(0),
		circuit.ControlledPower(unitary.PauliZ(), 1, 0, []circuit.Qubit{3}),
		circuit.SwapQubits(1, 2),
	}
	if err := c.Append(ops...); err != nil {
		t.Fatalf("append: %v", err)
	}
	g := newGrid(c, 3)
	if len(g.layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(g.layers))
	}

	if info := g.cellInfo(1, 0); info.op == nil || !info.isControl || !info.vertBelow {
		t.Errorf("qubit 0 should hold the control: %+v", info)
	}
	if info := g.cellInfo(1, 1); !info.passThrough {
		t.Errorf("qubit 1 should be a pass-through: %+v", info)
	}
	info := g.cellInfo(1, 3)
	if info.op == nil || info.isControl || info.isTarget || !info.vertAbove {
		t.Fatalf("qubit 3 should hold the boxed power: %+v", info)
	}
	if got := gateDisplayName(*info.op); got != "U^1" {
		t.Errorf("expected U^1, got %q", got)
	}
	if info := g.cellInfo(2, 2); info.op == nil || !info.isTarget {
		t.Errorf("swap should mark both qubits as targets: %+v", info)
	}
	if info := g.cellInfo(5, 0); info.op != nil {
		t.Error("out of range layer should be empty")
	}
}

func TestRenderCellWidth(t *testing.T) {
	c := circuit.New(2)
	if err := c.Append(circuit.Hadamard(0), circuit.ControlledPhase(1, 0, -0.5)); err != nil {
		t.Fatalf("append: %v", err)
	}
	g := newGrid(c, 2)
	for layer := range g.layers {
		for q := range 2 {
			for _, cursor := range []bool{false, true} {
				top, mid, bot := renderCell(g.cellInfo(layer, q), cursor)
				for _, line := range []string{top, mid, bot} {
					if n := visibleLen(line); n != cellW {
						t.Errorf("layer %d qubit %d cursor %v: width %d", layer, q, cursor, n)
					}
				}
			}
		}
	}
}

func TestRenderHistogram(t *testing.T) {
	half := 0.5
	out := &qpe.Outcome{
		CountingQubits: 3,
		Repetitions:    10,
		Histogram:      qpe.Histogram{"100": 8, "011": 2},
		Expected:       &half,
	}
	got := renderHistogram(out, 10)
	if strings.Index(got, "011") > strings.Index(got, "100") {
		t.Error("bins should be in outcome order")
	}
	for _, want := range []string{"0.5000", "80.0%", "expected 0.5"} {
		if !strings.Contains(got, want) {
			t.Errorf("histogram missing %q:\n%s", want, got)
		}
	}

	got = renderHistogram(out, 1)
	if strings.Contains(got, "011") {
		t.Error("row limit should keep only the most frequent bin")
	}
}

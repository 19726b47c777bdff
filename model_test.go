package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"qtermphase/internal/circuit"
	"qtermphase/internal/qpe"
)

func testModel(t *testing.T) Model {
	t.Helper()
	params := runParams{countingQubits: 3, eigenstate: "1", unitary: "z", repetitions: 100}
	m := initialModel(params, newBackend(1, zerolog.Nop()), zerolog.Nop(), t.TempDir()+"/qpe.qasm", t.TempDir()+"/report.json")
	if m.buildErr != nil {
		t.Fatalf("initial model: %v", m.buildErr)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestInitialModelAssemblesCircuit(t *testing.T) {
	m := testModel(t)
	if m.circ == nil {
		t.Fatal("expected an assembled circuit")
	}
	if m.grid.numQubits != 4 {
		t.Errorf("expected 4 qubits, got %d", m.grid.numQubits)
	}
	if got := m.circ.Count(circuit.GateCUPower); got != 3 {
		t.Errorf("expected 3 controlled powers, got %d", got)
	}
}

func TestCountingQubitKeys(t *testing.T) {
	m := press(t, testModel(t), "+")
	if m.params.countingQubits != 4 || m.grid.numQubits != 5 {
		t.Fatalf("after +: counting=%d qubits=%d", m.params.countingQubits, m.grid.numQubits)
	}
	m = press(t, m, "-", "-", "-", "-", "-")
	if m.params.countingQubits != 1 {
		t.Errorf("counting qubits should stop at 1, got %d", m.params.countingQubits)
	}
}

func TestRepetitionKeys(t *testing.T) {
	m := press(t, testModel(t), "]")
	if m.params.repetitions != 1000 {
		t.Errorf("expected 1000 repetitions, got %d", m.params.repetitions)
	}
	m = press(t, m, "[", "[", "[", "[")
	if m.params.repetitions != 1 {
		t.Errorf("expected 1 repetition, got %d", m.params.repetitions)
	}
}

func TestMenuPicksTwoQubitUnitary(t *testing.T) {
	m := press(t, testModel(t), "u")
	if m.focus != focusMenu {
		t.Fatalf("expected menu focus, got %d", m.focus)
	}
	m = press(t, m, "right", "enter")
	if m.focus != focusCircuit {
		t.Fatalf("expected circuit focus, got %d", m.focus)
	}
	if m.params.unitary != "cz" || m.params.eigenstate != "11" {
		t.Errorf("got unitary=%q eigenstate=%q", m.params.unitary, m.params.eigenstate)
	}
	if m.buildErr != nil {
		t.Errorf("unexpected build error: %v", m.buildErr)
	}
}

func TestPhaseShiftPrompt(t *testing.T) {
	m := press(t, testModel(t), "u", "down", "down", "down", "down", "enter")
	if m.focus != focusInputParam {
		t.Fatalf("expected parameter prompt, got focus %d", m.focus)
	}

	m = press(t, m, "p", "i", "/", "/", "enter")
	if m.focus != focusInputParam {
		t.Fatalf("invalid angle should keep the prompt open")
	}

	m = press(t, m, "esc", "u", "down", "down", "down", "down", "enter", "p", "i", "/", "2", "enter")
	if m.focus != focusCircuit {
		t.Fatalf("expected circuit focus, got %d", m.focus)
	}
	if m.params.unitary != "phase(pi/2)" {
		t.Errorf("expected phase(pi/2), got %q", m.params.unitary)
	}
}

func TestEigenstateWidthMismatch(t *testing.T) {
	m := press(t, testModel(t), "e", "1", "0", "enter")
	if m.params.eigenstate != "10" {
		t.Fatalf("expected eigenstate 10, got %q", m.params.eigenstate)
	}
	if !errors.Is(m.buildErr, circuit.ErrInvalidConfiguration) {
		t.Errorf("expected invalid configuration, got %v", m.buildErr)
	}
	if m.circ != nil {
		t.Error("circuit should be cleared")
	}

	m = press(t, m, "r")
	if m.running {
		t.Error("run should be refused while the configuration is invalid")
	}
}

func TestEigenstatePromptIgnoresNonBits(t *testing.T) {
	m := press(t, testModel(t), "e", "2", "x", "0")
	if m.input != "0" {
		t.Errorf("expected input 0, got %q", m.input)
	}
}

func TestRunDeliversOutcome(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(Model)
	if !m.running || cmd == nil {
		t.Fatal("expected a running estimation")
	}

	msg := m.runCmd()()
	next, _ = m.Update(msg)
	m = next.(Model)
	if m.running {
		t.Error("running flag should clear")
	}
	if m.outcome == nil {
		t.Fatal("expected an outcome")
	}
	if got := m.outcome.Histogram; len(got) != 1 || got["100"] != 100 {
		t.Errorf("expected all shots on 100, got %v", got)
	}

	m = press(t, m, "+")
	if m.outcome != nil {
		t.Error("changing parameters should drop the outcome")
	}
}

func TestSaveReportNeedsRun(t *testing.T) {
	m := testModel(t)
	m.saveReport()
	if !strings.Contains(m.statusMsg, "Run first") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}

	m.outcome = &qpe.Outcome{Histogram: qpe.Histogram{"100": 1}, CountingQubits: 3, Repetitions: 1}
	m.saveReport()
	if !strings.HasPrefix(m.statusMsg, "Saved ") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
	m.saveQASM()
	if !strings.HasPrefix(m.statusMsg, "Saved ") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
}

func TestViewRendersPanels(t *testing.T) {
	m := testModel(t)
	if got := m.View(); got != "Loading..." {
		t.Fatalf("expected loading view before the first resize, got %q", got)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 180, Height: 50})
	m = next.(Model)

	view := m.View()
	for _, want := range []string{"Phase Estimation", "QASM", "Outcomes", "Press r to run", "c[0]", "e[0]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(t, m, "u")
	if !strings.Contains(m.View(), "Choose Unitary") {
		t.Error("menu overlay missing")
	}
}

func TestStaleRunResultIsDropped(t *testing.T) {
	m := testModel(t)
	msg := m.runCmd()()
	m = press(t, m, "+")
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.outcome != nil {
		t.Error("a result for old parameters should be dropped")
	}
}

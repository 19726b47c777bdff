package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"qtermphase/internal/circuit"
	"qtermphase/internal/qpe"
	"qtermphase/internal/report"
	"qtermphase/internal/sim"
)

const (
	maxCountingQubits = 12
	maxRepetitions    = 1_000_000
	runTimeout        = 30 * time.Second
	defaultReportPath = "qpe-report.json"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusInputParam
	focusInputEigenstate
)

// runResultMsg carries a finished estimation back into Update.
type runResultMsg struct {
	params  runParams
	outcome *qpe.Outcome
	qasm    string
	err     error
}

// Model represents the TUI application state.
type Model struct {
	params  runParams
	backend sim.Backend
	log     zerolog.Logger

	circ     *circuit.Circuit // nil when params do not assemble
	grid     grid
	buildErr error
	outcome  *qpe.Outcome
	running  bool

	cursorQubit int
	cursorStep  int
	width       int
	height      int
	qasmView    viewport.Model
	focus       focus
	statusMsg   string // transient status message (e.g. save confirmation)

	qasmPath   string
	reportPath string

	// Menu state
	menuCat  int
	menuItem int

	// Prompt state
	input string
}

func initialModel(params runParams, backend sim.Backend, log zerolog.Logger, qasmPath, reportPath string) Model {
	if reportPath == "" {
		reportPath = defaultReportPath
	}
	m := Model{
		params:     params,
		backend:    backend,
		log:        log,
		qasmView:   viewport.New(40, 20),
		focus:      focusCircuit,
		qasmPath:   qasmPath,
		reportPath: reportPath,
	}
	m.rebuild()
	return m
}

// rebuild reassembles the circuit after a parameter change. A previous
// outcome no longer describes the circuit and is dropped.
func (m *Model) rebuild() {
	m.outcome = nil
	circ, err := m.params.assemble(m.log)
	if err != nil {
		m.circ, m.grid, m.buildErr = nil, grid{}, err
		m.qasmView.SetContent(errorStyle.Render(err.Error()))
		m.cursorQubit, m.cursorStep = 0, 0
		return
	}
	m.circ, m.buildErr = circ, nil
	m.grid = newGrid(circ, m.params.countingQubits)
	m.qasmView.SetContent(circ.ToQASM())
	m.cursorQubit = min(m.cursorQubit, m.grid.numQubits-1)
	m.cursorStep = min(m.cursorStep, max(len(m.grid.layers)-1, 0))
}

// runCmd estimates the phase off the UI goroutine.
func (m Model) runCmd() tea.Cmd {
	params, backend, log := m.params, m.backend, m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		out, circ, err := estimate(ctx, backend, params, log)
		if err != nil {
			return runResultMsg{params: params, err: err}
		}
		return runResultMsg{params: params, outcome: out, qasm: circ.ToQASM()}
	}
}

// applyUnitary switches to the unitary described by item. The eigenstate is
// reset to all ones when its width no longer matches.
func (m *Model) applyUnitary(item menuItem, param string) {
	m.params.unitary = item.unitarySpec(param)
	if len(m.params.eigenstate) != item.qubits {
		m.params.eigenstate = strings.Repeat("1", item.qubits)
	}
	m.rebuild()
	if m.buildErr == nil {
		m.statusMsg = fmt.Sprintf("Unitary %s", m.params.unitary)
	}
}

func (m *Model) saveQASM() {
	if m.circ == nil {
		m.statusMsg = "Nothing to save"
		return
	}
	if err := os.WriteFile(m.qasmPath, []byte(m.circ.ToQASM()), 0644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + m.qasmPath
}

func (m *Model) saveReport() {
	if m.outcome == nil || m.circ == nil {
		m.statusMsg = "Run first (r)"
		return
	}
	if err := report.Write(m.reportPath, report.FromOutcome(m.outcome, m.circ.ToQASM())); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + m.reportPath
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.qasmView.Width = max(msg.Width/3-6, 20)
		ctrlH := 6
		rightH := (msg.Height - ctrlH - 4) / 2
		m.qasmView.Height = max(rightH-6, 4)

	case runResultMsg:
		m.running = false
		if msg.params != m.params {
			// Parameters changed while the run was in flight.
			break
		}
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Run error: %v", msg.err)
			m.log.Error().Err(msg.err).Msg("run failed")
			break
		}
		m.outcome = msg.outcome
		m.qasmView.SetContent(msg.qasm)
		m.statusMsg = fmt.Sprintf("Ran %d shots", msg.outcome.Repetitions)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
			case "ctrl+s":
				m.saveQASM()
			case "ctrl+e":
				m.saveReport()
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.grid.numQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorStep > 0 {
					m.cursorStep--
				}
			case "right", "l":
				if m.cursorStep < len(m.grid.layers)-1 {
					m.cursorStep++
				}
			case "+", "=":
				if m.params.countingQubits < maxCountingQubits {
					m.params.countingQubits++
					m.rebuild()
				}
			case "-":
				if m.params.countingQubits > 1 {
					m.params.countingQubits--
					m.rebuild()
				}
			case "]":
				m.params.repetitions = min(m.params.repetitions*10, maxRepetitions)
			case "[":
				m.params.repetitions = max(m.params.repetitions/10, 1)
			case "a", "u":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "e":
				m.input = ""
				m.focus = focusInputEigenstate
			case "r":
				if m.running {
					break
				}
				if m.buildErr != nil {
					m.statusMsg = "Fix the configuration first"
					break
				}
				m.running = true
				m.statusMsg = "Running..."
				cmds = append(cmds, m.runCmd())
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				cat := unitaryMenu[m.menuCat]
				if m.menuItem < len(cat.items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(unitaryMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := unitaryMenu[m.menuCat].items[m.menuItem]
				if item.needsParams {
					m.input = ""
					m.focus = focusInputParam
					break
				}
				m.applyUnitary(item, "")
				m.focus = focusCircuit
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.input = ""
			case "backspace":
				if len(m.input) > 0 {
					m.input = m.input[:len(m.input)-1]
				}
			case "enter":
				if _, ok := parsePhase(m.input); !ok {
					m.statusMsg = "Invalid angle, use a number or pi expression (e.g. pi/2, 3*pi/4)"
					break
				}
				m.applyUnitary(unitaryMenu[m.menuCat].items[m.menuItem], m.input)
				m.input = ""
				m.focus = focusCircuit
			default:
				if acceptsInputKey(key, false) {
					m.input += key
				}
			}

		case focusInputEigenstate:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.input = ""
			case "backspace":
				if len(m.input) > 0 {
					m.input = m.input[:len(m.input)-1]
				}
			case "enter":
				if !isBitstring(m.input) {
					m.statusMsg = "Eigenstate must be a bitstring"
					break
				}
				m.params.eigenstate = m.input
				m.rebuild()
				m.input = ""
				m.focus = focusCircuit
			default:
				if acceptsInputKey(key, true) {
					m.input += key
				}
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
			default:
				var cmd tea.Cmd
				m.qasmView, cmd = m.qasmView.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	rightWidth := m.width / 3
	circuitWidth := m.width - rightWidth - 4
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)
	qasmHeight := circuitHeight / 2
	histHeight := circuitHeight - qasmHeight

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	rightCol := lipgloss.JoinVertical(lipgloss.Left,
		m.renderQASMPanel(rightWidth, qasmHeight-2),
		m.renderHistogramPanel(rightWidth, histHeight-2),
	)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, rightCol)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderPrompt("Phase Angle", "Examples: pi/2, 3*pi/4, 1.57"), 2, 2)
	case focusInputEigenstate:
		hint := fmt.Sprintf("One bit per unitary qubit, currently %s", m.params.eigenstate)
		frame = overlayAt(frame, m.renderPrompt("Eigenstate", hint), 2, 2)
	}

	return frame
}

// renderPrompt renders a one-line input overlay.
func (m Model) renderPrompt(title, hint string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Value: %s_", m.input)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(hint))
	if m.statusMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.statusMsg))
	}
	return menuBorderStyle.Render(sb.String())
}

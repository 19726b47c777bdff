package main

import (
	"fmt"
	"slices"
	"strings"

	"qtermphase/internal/qpe"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW (11) visual characters wide.
func renderCell(info cellInfo, cursor bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	if cursor {
		bdr := cursorBoxStyle
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")

		switch {
		case info.op != nil && info.isControl:
			sym := controlSymbol(info.op.Kind)
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.op != nil && info.isTarget:
			sym := targetSymbol(info.op.Kind)
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.op != nil:
			name := padCenter(gateDisplayName(*info.op), gateNameW)
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(name) + "├─" + bdr.Render("║")
		case info.passThrough:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	switch {
	case info.op != nil && (info.isControl || info.isTarget):
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		sym := targetSymbol(info.op.Kind)
		if info.isControl {
			sym = controlSymbol(info.op.Kind)
		}
		mid = strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}

	case info.op != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(*info.op), gateNameW)

		// Boxes of a multi-qubit target register join vertically.
		topEdge, botEdge := "┌"+strings.Repeat("─", gateNameW)+"┐", "└"+strings.Repeat("─", gateNameW)+"┘"
		if info.vertAbove {
			topEdge = "┌" + strings.Repeat("─", gateNameW/2) + "┴" + strings.Repeat("─", gateNameW-gateNameW/2-1) + "┐"
		}
		if info.vertBelow {
			botEdge = "└" + strings.Repeat("─", gateNameW/2) + "┬" + strings.Repeat("─", gateNameW-gateNameW/2-1) + "┘"
		}
		top = strings.Repeat(" ", margin) + gateStyle.Render(topEdge) + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render(botEdge) + strings.Repeat(" ", rightMargin)

	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow

	default:
		// Empty wire
		top = emptyRow
		mid = strings.Repeat("─", cellW)
		bot = emptyRow
	}

	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s  %s\n\n", titleStyle.Render("Phase Estimation"),
		dimStyle.Render(fmt.Sprintf("U=%s  |%s⟩  n=%d  shots=%d",
			m.params.unitary, m.params.eigenstate, m.params.countingQubits, m.params.repetitions)))

	if m.buildErr != nil {
		sb.WriteString(errorStyle.Render(m.buildErr.Error()))
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render("  Press e to change the eigenstate or u to pick another unitary"))
		return circuitStyle.Width(width).Height(height).Render(sb.String())
	}

	// How many layers fit
	availWidth := width - labelVisualW - 4
	maxSteps := max(availWidth/cellW, 1)

	startStep := 0
	if m.cursorStep >= maxSteps {
		startStep = m.cursorStep - maxSteps + 1
	}
	endStep := min(startStep+maxSteps, len(m.grid.layers))

	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing layers %d-%d of %d\n", startStep, endStep-1, len(m.grid.layers))
	}

	// Layer number header
	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < endStep; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	// Render each qubit as 3 lines
	for qubit := range m.grid.numQubits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := m.qubitLabel(qubit) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < endStep; step++ {
			cursor := step == m.cursorStep && qubit == m.cursorQubit && m.focus != focusQASM
			top, mid, bot := renderCell(m.grid.cellInfo(step, qubit), cursor)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Status line
	fmt.Fprintf(&sb, "\n  Layer %d, Qubit %d", m.cursorStep, m.cursorQubit)
	if op := m.grid.opAt(m.cursorStep, m.cursorQubit); op != nil {
		fmt.Fprintf(&sb, "  %s", dimStyle.Render(op.String()))
	}
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// qubitLabel names counting qubits c[i] and eigenstate qubits e[j].
func (m Model) qubitLabel(qubit int) string {
	if qubit < m.grid.counting {
		return qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("c[%d]", qubit)))
	}
	return eigenLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("e[%d]", qubit-m.grid.counting)))
}

// renderQASMPanel renders the read-only QASM view.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmView.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderHistogramPanel renders the outcome histogram and phase estimate.
func (m Model) renderHistogramPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Outcomes"))
	sb.WriteString("\n\n")

	switch {
	case m.running:
		sb.WriteString(dimStyle.Render("Running..."))
	case m.outcome == nil:
		sb.WriteString(dimStyle.Render("Press r to run"))
	default:
		sb.WriteString(renderHistogram(m.outcome, max(height-4, 1)))
	}

	return histStyle.Width(width).Height(height).Render(sb.String())
}

// renderHistogram draws one bar per outcome, in outcome order, followed by
// the estimate. At most rows bars are shown, the most frequent first.
func renderHistogram(out *qpe.Outcome, rows int) string {
	var sb strings.Builder

	bins := out.Histogram.Sorted()
	if len(bins) == 0 {
		return dimStyle.Render("No outcomes")
	}
	mode := bins[0].Outcome
	peak := bins[0].Count
	if len(bins) > rows {
		bins = bins[:rows]
	}
	slices.SortFunc(bins, func(a, b qpe.Bin) int { return strings.Compare(a.Outcome, b.Outcome) })

	for _, b := range bins {
		w := max(b.Count*histBarW/peak, 1)
		bar := strings.Repeat("█", w) + strings.Repeat(" ", histBarW-w)
		style := barStyle
		if b.Outcome == mode {
			style = modeBarStyle
		}
		fmt.Fprintf(&sb, "%s %s %5d  %.4f\n", b.Outcome, style.Render(bar), b.Count, b.Phase)
	}

	est := out.Estimate()
	fmt.Fprintf(&sb, "\nφ ≈ %s  (0.%s₂, %.1f%%)", activeGateStyle.Render(fmt.Sprintf("%.6g", est.Phase)), est.Mode, est.ModeFrequency*100)
	if out.Expected != nil {
		fmt.Fprintf(&sb, "  expected %.6g", *out.Expected)
	}
	return sb.String()
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qubit  ←→/hl Layer  +/- Counting qubits  [/] Shots")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("u"))
	sb.WriteString(" Unitary  ")
	sb.WriteString(activeGateStyle.Render("e"))
	sb.WriteString(" Eigenstate\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("r Run  Tab Switch focus  ^S Save QASM  ^E Save report  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
// It properly handles ANSI escape sequences in the background line.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix strings.Builder
	var suffix strings.Builder

	col := 0
	i := 0
	inEsc := false

	// Collect prefix: everything up to visible column x
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			inEsc = true
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				if inEsc && runes[i] != '\x1b' && runes[i] != '[' && ((runes[i] >= 'A' && runes[i] <= 'Z') || (runes[i] >= 'a' && runes[i] <= 'z')) {
					inEsc = false
					i++
					break
				}
				i++
			}
		} else {
			prefix.WriteRune(runes[i])
			col++
			i++
		}
	}

	// Pad prefix if bg line is shorter than x
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip over ovWidth visible columns in the background
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				i++
				if i > 0 && runes[i-1] != '\x1b' && runes[i-1] != '[' && ((runes[i-1] >= 'A' && runes[i-1] <= 'Z') || (runes[i-1] >= 'a' && runes[i-1] <= 'z')) {
					break
				}
			}
		} else {
			skipped++
			i++
		}
	}

	// Collect suffix: rest of the background line
	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}

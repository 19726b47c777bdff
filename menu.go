package main

import (
	"fmt"
	"strings"
)

// parameterHint provides a hint for parameter input
type parameterHint struct {
	required bool
	example  string
}

// menuItem represents a single unitary choice in the menu.
type menuItem struct {
	name        string
	spec        string // unitary.Parse spec; phase items get their angle appended
	qubits      int
	symbol      string
	needsParams bool
	paramHint   parameterHint
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// unitaryMenu defines the unitary picker categories and items.
var unitaryMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Pauli-Z", spec: "z", qubits: 1, symbol: "Z"},
			{name: "Phase (S)", spec: "s", qubits: 1, symbol: "S"},
			{name: "T Gate", spec: "t", qubits: 1, symbol: "T"},
			{name: "Identity", spec: "identity", qubits: 1, symbol: "I"},
			{name: "Phase Shift", spec: "phase", qubits: 1, symbol: "P", needsParams: true, paramHint: parameterHint{required: true, example: "pi/4"}},
		},
	},
	{
		name: "Two Qubit",
		items: []menuItem{
			{name: "Controlled-Z", spec: "cz", qubits: 2, symbol: "●─●"},
			{name: "Identity", spec: "identity", qubits: 2, symbol: "I⊗I"},
		},
	},
}

// unitarySpec returns the spec string for item, filling in param for phase
// items.
func (item menuItem) unitarySpec(param string) string {
	if item.needsParams {
		return fmt.Sprintf("%s(%s)", item.spec, strings.TrimSpace(param))
	}
	return item.spec
}

// renderMenu renders the floating unitary-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Choose Unitary"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range unitaryMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(unitaryMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 32)))
	sb.WriteString("\n")

	// Items in the selected category
	cat := unitaryMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-14s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-14s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsParams {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint.example)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"qtermphase/internal/angle"
	"qtermphase/internal/circuit"
	"qtermphase/internal/qpe"
	"qtermphase/internal/unitary"
)

// runParams are the knobs shared by the explorer and headless mode.
type runParams struct {
	countingQubits int
	eigenstate     string
	unitary        string
	repetitions    int
}

// pipeline resolves the unitary and returns a fresh, unbuilt pipeline.
func (p runParams) pipeline(log zerolog.Logger) (*qpe.Pipeline, error) {
	u, err := unitary.Parse(p.unitary, len(p.eigenstate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", circuit.ErrInvalidConfiguration, err)
	}
	return qpe.New(qpe.Config{
		CountingQubits: p.countingQubits,
		Eigenstate:     p.eigenstate,
		Unitary:        u,
	}, qpe.WithLogger(log))
}

// assemble builds the full circuit for display without running it.
func (p runParams) assemble(log zerolog.Logger) (*circuit.Circuit, error) {
	pl, err := p.pipeline(log)
	if err != nil {
		return nil, err
	}
	if err := pl.Build(); err != nil {
		return nil, err
	}
	return pl.Circuit(), nil
}

// parsePhase parses the phase-shift input. Exactly one angle is accepted.
func parsePhase(input string) (float64, bool) {
	vals := angle.ParseList(input)
	if len(vals) != 1 {
		return 0, false
	}
	return vals[0], true
}

// isBitstring reports whether s is a non-empty string of 0s and 1s.
func isBitstring(s string) bool {
	return s != "" && strings.Trim(s, "01") == ""
}

// acceptsInputKey filters keys typed into the parameter and eigenstate
// prompts.
func acceptsInputKey(key string, bitsOnly bool) bool {
	if len(key) != 1 {
		return false
	}
	ch := key[0]
	if bitsOnly {
		return ch == '0' || ch == '1'
	}
	return (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' || ch == 'e' || ch == 'E' || ch == '+' ||
		ch == 'p' || ch == 'i' || ch == '*' || ch == '/'
}

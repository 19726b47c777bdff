// Package sim is the state-vector backend phase estimation circuits are
// submitted to.
package sim

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrBackend wraps every failure reported by a backend: malformed circuits,
// non-positive repetition counts and unknown channels.
var ErrBackend = errors.New("sim: backend error")

// Counts maps an integer measurement outcome to how often it was observed.
type Counts map[int]int

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Keys returns the observed outcomes in ascending order.
func (c Counts) Keys() []int {
	return slices.Sorted(maps.Keys(c))
}

// Result is the outcome of one submission.
type Result struct {
	Backend     string
	Repetitions int
	// Counts holds one histogram per measurement channel.
	Counts map[string]Counts
	// Widths holds the number of qubits measured on each channel.
	Widths map[string]int
}

// Histogram returns the counts recorded under channel.
func (r *Result) Histogram(channel string) (Counts, error) {
	c, ok := r.Counts[channel]
	if !ok {
		return nil, fmt.Errorf("%w: no measurement channel %q", ErrBackend, channel)
	}
	return c, nil
}

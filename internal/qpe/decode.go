package qpe

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"qtermphase/internal/sim"
)

// ErrDecode is returned for outcome keys that do not fit the register width.
var ErrDecode = errors.New("qpe: outcome does not fit the counting register")

// Histogram maps an n-bit outcome string, most significant counting qubit
// first, to its count.
type Histogram map[string]int

// Bin is one histogram entry with its decoded phase.
type Bin struct {
	Outcome string
	Count   int
	Phase   float64
}

// FormatKey renders key as a width-bit binary string, left-zero-padded.
func FormatKey(key, width int) string {
	return fmt.Sprintf("%0*b", width, key)
}

// Decode renders every integer key at exactly width bits. Keys outside
// [0, 2^width) are rejected rather than widened.
func Decode(counts sim.Counts, width int) (Histogram, error) {
	if width < 1 {
		return nil, fmt.Errorf("%w: width %d", ErrDecode, width)
	}
	h := make(Histogram, len(counts))
	for key, n := range counts {
		if key < 0 || key >= 1<<width {
			return nil, fmt.Errorf("%w: key %d at width %d", ErrDecode, key, width)
		}
		h[FormatKey(key, width)] += n
	}
	return h, nil
}

// BinaryFraction returns 0.b1b2…bn for bits "b1b2…bn".
func BinaryFraction(bits string) (float64, error) {
	v, scale := 0.0, 0.5
	for _, b := range bits {
		switch b {
		case '0':
		case '1':
			v += scale
		default:
			return 0, fmt.Errorf("%w: %q is not a bitstring", ErrDecode, bits)
		}
		scale /= 2
	}
	return v, nil
}

// Nearest returns the n-bit outcome closest to phase phi, wrapping 1 to 0.
func Nearest(phi float64, n int) string {
	size := 1 << n
	k := int(math.Round(phi*float64(size))) % size
	if k < 0 {
		k += size
	}
	return FormatKey(k, n)
}

// Total returns the sum of all counts.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Sorted returns the bins by descending count, ties broken by outcome.
func (h Histogram) Sorted() []Bin {
	bins := make([]Bin, 0, len(h))
	for outcome, count := range h {
		phase, _ := BinaryFraction(outcome)
		bins = append(bins, Bin{Outcome: outcome, Count: count, Phase: phase})
	}
	slices.SortFunc(bins, func(a, b Bin) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Outcome, b.Outcome)
	})
	return bins
}

// Mode returns the most frequent outcome.
func (h Histogram) Mode() (Bin, bool) {
	bins := h.Sorted()
	if len(bins) == 0 {
		return Bin{}, false
	}
	return bins[0], true
}

// Estimate summarises a histogram as a phase.
type Estimate struct {
	Mode          string  `json:"mode" msgpack:"mode"`
	Phase         float64 `json:"phase" msgpack:"phase"`
	ModeFrequency float64 `json:"mode_frequency" msgpack:"mode_frequency"`
	Mean          float64 `json:"mean" msgpack:"mean"`
	StdDev        float64 `json:"std_dev" msgpack:"std_dev"`
}

// Estimate returns the modal phase and the count-weighted mean and standard
// deviation of the decoded phases. The mean does not wrap around 1.
func (h Histogram) Estimate() (Estimate, bool) {
	bins := h.Sorted()
	if len(bins) == 0 {
		return Estimate{}, false
	}
	phases := make([]float64, len(bins))
	weights := make([]float64, len(bins))
	total := 0
	for i, b := range bins {
		phases[i] = b.Phase
		weights[i] = float64(b.Count)
		total += b.Count
	}
	est := Estimate{
		Mode:          bins[0].Outcome,
		Phase:         bins[0].Phase,
		ModeFrequency: float64(bins[0].Count) / float64(total),
	}
	if total > 1 {
		est.Mean, est.StdDev = stat.MeanStdDev(phases, weights)
	} else {
		est.Mean = bins[0].Phase
	}
	return est, true
}

// Outcome is the decoded result of one run.
type Outcome struct {
	RunID          uuid.UUID
	Backend        string
	Unitary        string
	Eigenstate     string
	CountingQubits int
	Repetitions    int
	Histogram      Histogram
	// Expected is the exact eigenphase when it is known.
	Expected *float64
}

// Estimate summarises the outcome's histogram.
func (o *Outcome) Estimate() Estimate {
	est, _ := o.Histogram.Estimate()
	return est
}

package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"qtermphase/internal/circuit"
)

// DefaultMaxQubits bounds the state vector at 2^24 amplitudes.
const DefaultMaxQubits = 24

// Backend executes a circuit and returns measurement counts.
type Backend interface {
	Name() string
	Submit(ctx context.Context, c *circuit.Circuit, repetitions int) (*Result, error)
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSeed makes sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
}

// WithLogger sets the logger used for submissions.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) {
		s.log = log
	}
}

// WithMaxQubits caps the circuit width the simulator accepts.
func WithMaxQubits(n int) Option {
	return func(s *Simulator) {
		s.maxQubits = n
	}
}

// Simulator is an exact state-vector backend. It evolves the unitary part of
// a circuit once and samples every repetition from the final distribution,
// so all measurements must come after the last unitary operation.
//
// Simulator is safe for concurrent use.
type Simulator struct {
	mu        sync.Mutex
	src       rand.Source
	log       zerolog.Logger
	maxQubits int
}

// NewSimulator returns a simulator seeded from the runtime's random source
// unless WithSeed is given.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		src:       rand.NewPCG(rand.Uint64(), rand.Uint64()),
		log:       zerolog.Nop(),
		maxQubits: DefaultMaxQubits,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Name() string { return "statevector" }

// Simulate evolves |0…0⟩ through every unitary operation of c and returns the
// final state. Measurements are skipped; a unitary operation after a
// measurement is an error.
func (s *Simulator) Simulate(ctx context.Context, c *circuit.Circuit) (*StateVector, error) {
	if c.NumQubits() < 1 || c.NumQubits() > s.maxQubits {
		return nil, fmt.Errorf("%w: %d qubits outside 1..%d", ErrBackend, c.NumQubits(), s.maxQubits)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	state := NewStateVector(c.NumQubits())
	measured := false
	for i, op := range c.Operations() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if op.Kind == circuit.GateMeasure {
			measured = true
			continue
		}
		if measured {
			return nil, fmt.Errorf("%w: operation %d (%s) follows a measurement", ErrBackend, i, op.Kind)
		}
		if err := state.Apply(op); err != nil {
			return nil, fmt.Errorf("%w: operation %d: %w", ErrBackend, i, err)
		}
	}
	return state, nil
}

// Submit runs c and samples repetitions outcomes for every measurement
// channel. Each repetition draws one basis state, so outcomes on different
// channels are jointly consistent.
func (s *Simulator) Submit(ctx context.Context, c *circuit.Circuit, repetitions int) (*Result, error) {
	if repetitions <= 0 {
		return nil, fmt.Errorf("%w: repetitions must be positive, got %d", ErrBackend, repetitions)
	}
	start := time.Now()

	state, err := s.Simulate(ctx, c)
	if err != nil {
		return nil, err
	}

	var measurements []circuit.Operation
	seen := make(map[string]bool)
	for _, op := range c.Operations() {
		if op.Kind != circuit.GateMeasure {
			continue
		}
		if seen[op.Channel] {
			return nil, fmt.Errorf("%w: channel %q measured twice", ErrBackend, op.Channel)
		}
		seen[op.Channel] = true
		measurements = append(measurements, op)
	}
	if len(measurements) == 0 {
		return nil, fmt.Errorf("%w: circuit has no measurements", ErrBackend)
	}

	probs := state.Probabilities()
	total := floats.Sum(probs)
	if total <= 0 {
		return nil, fmt.Errorf("%w: state has zero norm", ErrBackend)
	}
	floats.Scale(1/total, probs)

	result := &Result{
		Backend:     s.Name(),
		Repetitions: repetitions,
		Counts:      make(map[string]Counts, len(measurements)),
		Widths:      make(map[string]int, len(measurements)),
	}
	for _, op := range measurements {
		result.Counts[op.Channel] = make(Counts)
		result.Widths[op.Channel] = len(op.Qubits)
	}

	s.mu.Lock()
	dist := distuv.NewCategorical(probs, s.src)
	for range repetitions {
		idx := int(dist.Rand())
		for _, op := range measurements {
			result.Counts[op.Channel][outcomeKey(idx, op.Qubits)]++
		}
	}
	s.mu.Unlock()

	s.log.Debug().
		Int("qubits", c.NumQubits()).
		Int("operations", c.Len()).
		Int("repetitions", repetitions).
		Dur("elapsed", time.Since(start)).
		Msg("circuit sampled")
	return result, nil
}

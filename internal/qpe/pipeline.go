// Package qpe assembles and runs quantum phase estimation circuits: eigenstate
// preparation, superposition of the counting register, controlled unitary
// powers, the inverse Fourier transform and a joint measurement, followed by
// decoding of the outcome histogram into binary fractions.
package qpe

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"qtermphase/internal/circuit"
	"qtermphase/internal/qft"
	"qtermphase/internal/sim"
	"qtermphase/internal/unitary"
)

// ErrSequenceViolation is returned when a stage is invoked out of order or
// more than once. The circuit is left as it was before the call.
var ErrSequenceViolation = errors.New("qpe: stage invoked out of sequence")

// DefaultChannel is the measurement channel used when Config.Channel is empty.
const DefaultChannel = "result"

// Stage is the last stage a pipeline has completed.
type Stage int

const (
	StageNew Stage = iota
	StagePrepared
	StageSuperposed
	StageEvolved
	StageUncomputed
	StageMeasured
)

func (s Stage) String() string {
	switch s {
	case StageNew:
		return "new"
	case StagePrepared:
		return "prepared"
	case StageSuperposed:
		return "superposed"
	case StageEvolved:
		return "evolved"
	case StageUncomputed:
		return "uncomputed"
	case StageMeasured:
		return "measured"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Config describes one estimation run.
type Config struct {
	// CountingQubits is the precision in bits.
	CountingQubits int
	// Eigenstate is a bitstring; bit i prepares eigenstate qubit i, which is
	// operand i (most significant first) of Unitary.
	Eigenstate string
	Unitary    *unitary.Unitary
	Channel    string
}

// Validate checks the configuration before any operation is emitted.
func (c Config) Validate() error {
	if c.CountingQubits < 1 {
		return fmt.Errorf("%w: need at least one counting qubit, got %d", circuit.ErrInvalidConfiguration, c.CountingQubits)
	}
	if c.Unitary == nil {
		return fmt.Errorf("%w: no unitary", circuit.ErrInvalidConfiguration)
	}
	if c.Eigenstate == "" {
		return fmt.Errorf("%w: empty eigenstate", circuit.ErrInvalidConfiguration)
	}
	for _, b := range c.Eigenstate {
		if b != '0' && b != '1' {
			return fmt.Errorf("%w: eigenstate %q is not a bitstring", circuit.ErrInvalidConfiguration, c.Eigenstate)
		}
	}
	if len(c.Eigenstate) != c.Unitary.Qubits() {
		return fmt.Errorf("%w: eigenstate has %d qubits but %s acts on %d",
			circuit.ErrInvalidConfiguration, len(c.Eigenstate), c.Unitary.Name(), c.Unitary.Qubits())
	}
	return nil
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage events.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// Pipeline owns one circuit and walks it through the five stages. A Pipeline
// is single use and not safe for concurrent use; independent runs should use
// independent pipelines.
type Pipeline struct {
	ID uuid.UUID

	cfg      Config
	counting circuit.Register
	eigen    circuit.Register
	circ     *circuit.Circuit
	stage    Stage
	log      zerolog.Logger
}

// New validates cfg and allocates the counting register (qubits 0..n-1)
// followed by the eigenstate register.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}

	ctx := circuit.NewContext()
	counting, err := ctx.Allocate("counting", cfg.CountingQubits)
	if err != nil {
		return nil, err
	}
	eigen, err := ctx.Allocate("eigenstate", len(cfg.Eigenstate))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		ID:       uuid.New(),
		cfg:      cfg,
		counting: counting,
		eigen:    eigen,
		circ:     circuit.New(ctx.NumQubits()),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("run_id", p.ID.String()).Logger()
	return p, nil
}

// Config returns the configuration with defaults applied.
func (p *Pipeline) Config() Config { return p.cfg }

// Stage returns the last completed stage.
func (p *Pipeline) Stage() Stage { return p.stage }

// Counting returns the counting register.
func (p *Pipeline) Counting() circuit.Register { return p.counting }

// Eigenstate returns the eigenstate register.
func (p *Pipeline) Eigenstate() circuit.Register { return p.eigen }

// Circuit returns a copy of the circuit assembled so far.
func (p *Pipeline) Circuit() *circuit.Circuit { return p.circ.Clone() }

func (p *Pipeline) expect(from, to Stage) error {
	if p.stage != from {
		return fmt.Errorf("%w: cannot reach %s from %s, expected %s", ErrSequenceViolation, to, p.stage, from)
	}
	return nil
}

// advance appends ops and moves from one stage to the next, or fails without
// touching the circuit.
func (p *Pipeline) advance(from, to Stage, ops []circuit.Operation) error {
	if err := p.expect(from, to); err != nil {
		return err
	}
	if err := p.circ.Append(ops...); err != nil {
		return err
	}
	p.stage = to
	p.log.Debug().Stringer("stage", to).Int("operations", len(ops)).Msg("stage complete")
	return nil
}

// Prepare applies X to every eigenstate qubit whose bit is 1.
func (p *Pipeline) Prepare() error {
	var ops []circuit.Operation
	for i, b := range p.cfg.Eigenstate {
		if b == '1' {
			ops = append(ops, circuit.PauliX(p.eigen.Qubit(i)))
		}
	}
	return p.advance(StageNew, StagePrepared, ops)
}

// Superpose applies H to every counting qubit.
func (p *Pipeline) Superpose() error {
	ops := make([]circuit.Operation, 0, p.counting.Size())
	for _, q := range p.counting.Qubits() {
		ops = append(ops, circuit.Hadamard(q))
	}
	return p.advance(StagePrepared, StageSuperposed, ops)
}

// Evolve applies U^(2^i) to the eigenstate register controlled on counting
// qubit i, for i ascending.
func (p *Pipeline) Evolve() error {
	targets := p.eigen.Qubits()
	ops := make([]circuit.Operation, 0, p.counting.Size())
	for i := range p.counting.Size() {
		ops = append(ops, circuit.ControlledPower(p.cfg.Unitary, float64(uint64(1)<<i), p.counting.Qubit(i), targets))
	}
	return p.advance(StageSuperposed, StageEvolved, ops)
}

// Uncompute applies the inverse transform to the counting register. Transform
// qubit k lands on counting qubit n-1-k, so the transform's most significant
// input is the qubit that controlled the largest power.
func (p *Pipeline) Uncompute() error {
	if err := p.expect(StageEvolved, StageUncomputed); err != nil {
		return err
	}
	n := p.counting.Size()
	comp, err := qft.NewComposer(n, qft.WithLogger(p.log))
	if err != nil {
		return err
	}
	if err := comp.Build(); err != nil {
		return err
	}
	inv, err := comp.Inverse()
	if err != nil {
		return err
	}
	mapped, err := inv.Remap(p.circ.NumQubits(), func(q circuit.Qubit) circuit.Qubit {
		return p.counting.Qubit(n - 1 - int(q))
	})
	if err != nil {
		return err
	}
	return p.advance(StageEvolved, StageUncomputed, mapped.Operations())
}

// Measure jointly measures the counting register on the configured channel,
// most significant counting qubit first.
func (p *Pipeline) Measure() error {
	qs := p.counting.Qubits()
	order := make([]circuit.Qubit, len(qs))
	for i, q := range qs {
		order[len(qs)-1-i] = q
	}
	return p.advance(StageUncomputed, StageMeasured, []circuit.Operation{circuit.Measure(p.cfg.Channel, order)})
}

// Build runs all five stages from a new pipeline.
func (p *Pipeline) Build() error {
	for _, stage := range []func() error{p.Prepare, p.Superpose, p.Evolve, p.Uncompute, p.Measure} {
		if err := stage(); err != nil {
			return err
		}
	}
	p.log.Debug().Int("qubits", p.circ.NumQubits()).Int("operations", p.circ.Len()).Msg("circuit assembled")
	return nil
}

// Run builds the circuit if needed, submits a copy to backend and decodes the
// channel's counts. Backend errors are returned unchanged.
func (p *Pipeline) Run(ctx context.Context, backend sim.Backend, repetitions int) (*Outcome, error) {
	if p.stage == StageNew {
		if err := p.Build(); err != nil {
			return nil, err
		}
	}
	if p.stage != StageMeasured {
		return nil, fmt.Errorf("%w: run requires %s, pipeline is at %s", ErrSequenceViolation, StageMeasured, p.stage)
	}

	res, err := backend.Submit(ctx, p.circ.Clone(), repetitions)
	if err != nil {
		return nil, err
	}
	counts, err := res.Histogram(p.cfg.Channel)
	if err != nil {
		return nil, err
	}
	hist, err := Decode(counts, p.counting.Size())
	if err != nil {
		return nil, err
	}
	if total := hist.Total(); total != repetitions {
		return nil, fmt.Errorf("%w: %d outcomes for %d repetitions", sim.ErrBackend, total, repetitions)
	}

	out := &Outcome{
		RunID:          p.ID,
		Backend:        res.Backend,
		Unitary:        p.cfg.Unitary.Name(),
		Eigenstate:     p.cfg.Eigenstate,
		CountingQubits: p.counting.Size(),
		Repetitions:    repetitions,
		Histogram:      hist,
	}
	if phi, ok := p.ExpectedPhase(); ok {
		out.Expected = &phi
	}
	ev := p.log.Info().Str("backend", res.Backend).Int("repetitions", repetitions)
	if mode, ok := hist.Mode(); ok {
		ev = ev.Str("mode", mode.Outcome).Float64("phase", mode.Phase)
	}
	ev.Msg("phase estimated")
	return out, nil
}

// ExpectedPhase returns the exact eigenphase of the unitary on the configured
// eigenstate, when the unitary is diagonal.
func (p *Pipeline) ExpectedPhase() (float64, bool) {
	idx, err := strconv.ParseUint(p.cfg.Eigenstate, 2, 0)
	if err != nil {
		return 0, false
	}
	return p.cfg.Unitary.Eigenphase(int(idx))
}

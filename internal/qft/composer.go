package qft

import (
	"fmt"
	"math/bits"

	"github.com/rs/zerolog"

	"qtermphase/internal/circuit"
)

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger that receives per-step debug events.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Composer) {
		c.log = log
	}
}

// Composer owns the forward transform circuit over its own n-qubit register
// (qubits 0..n-1) and derives the inverse from it.
type Composer struct {
	reg     circuit.Register
	builder *Builder
	forward *circuit.Circuit
	log     zerolog.Logger
}

// NewComposer returns a composer for an n-qubit transform.
func NewComposer(n int, opts ...Option) (*Composer, error) {
	ctx := circuit.NewContext()
	reg, err := ctx.Allocate("transform", n)
	if err != nil {
		return nil, err
	}
	b, err := NewBuilder(reg)
	if err != nil {
		return nil, err
	}
	c := &Composer{
		reg:     reg,
		builder: b,
		forward: circuit.New(ctx.NumQubits()),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// QubitsForSignal returns log2(length) for a power-of-two signal length.
func QubitsForSignal(length int) (int, error) {
	if length < 2 || length&(length-1) != 0 {
		return 0, fmt.Errorf("%w: signal length %d is not a power of two", circuit.ErrInvalidConfiguration, length)
	}
	return bits.TrailingZeros(uint(length)), nil
}

// Register returns the transform register.
func (c *Composer) Register() circuit.Register { return c.reg }

// Step runs one builder step on the forward circuit.
func (c *Composer) Step() (bool, error) {
	more, err := c.builder.Step(c.forward)
	if more {
		c.log.Debug().Int("step", c.builder.next-1).Int("operations", c.forward.Len()).Msg("transform step")
	}
	return more, err
}

// Build runs the builder to completion, swaps included.
func (c *Composer) Build() error {
	if err := c.builder.Run(c.forward); err != nil {
		return err
	}
	c.log.Debug().Int("qubits", c.reg.Size()).Int("operations", c.forward.Len()).Msg("transform built")
	return nil
}

// Done reports whether the forward circuit is complete.
func (c *Composer) Done() bool { return c.builder.Done() }

// Forward returns a copy of the completed forward circuit.
func (c *Composer) Forward() (*circuit.Circuit, error) {
	if !c.Done() {
		return nil, fmt.Errorf("%w: forward transform not built", circuit.ErrInvalidConfiguration)
	}
	return c.forward.Clone(), nil
}

// Inverse returns the forward circuit reversed with every rotation negated.
func (c *Composer) Inverse() (*circuit.Circuit, error) {
	if !c.Done() {
		return nil, fmt.Errorf("%w: inverse requested before the forward transform was built", circuit.ErrInvalidConfiguration)
	}
	return c.forward.Inverse()
}

// Demo returns a circuit that prepares the basis state named by basis (bit k
// sets qubit k) and applies the forward transform to it.
func Demo(n int, basis string) (*circuit.Circuit, error) {
	if len(basis) != n {
		return nil, fmt.Errorf("%w: basis %q has %d bits, want %d", circuit.ErrInvalidConfiguration, basis, len(basis), n)
	}
	comp, err := NewComposer(n)
	if err != nil {
		return nil, err
	}
	if err := comp.Build(); err != nil {
		return nil, err
	}
	fwd, _ := comp.Forward()

	c := circuit.New(n)
	for k, b := range basis {
		switch b {
		case '0':
		case '1':
			if err := c.Append(circuit.PauliX(comp.Register().Qubit(k))); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: basis %q is not a bitstring", circuit.ErrInvalidConfiguration, basis)
		}
	}
	if err := c.Extend(fwd); err != nil {
		return nil, err
	}
	return c, nil
}

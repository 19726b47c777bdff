package main

import (
	"context"

	"github.com/rs/zerolog"

	"qtermphase/internal/circuit"
	"qtermphase/internal/qpe"
	"qtermphase/internal/sim"
)

// newBackend returns the local simulator. A zero seed samples from the
// runtime's random source.
func newBackend(seed uint64, log zerolog.Logger) *sim.Simulator {
	opts := []sim.Option{sim.WithLogger(log)}
	if seed != 0 {
		opts = append(opts, sim.WithSeed(seed))
	}
	return sim.NewSimulator(opts...)
}

// estimate assembles a fresh pipeline for params and runs it on backend.
func estimate(ctx context.Context, backend sim.Backend, params runParams, log zerolog.Logger) (*qpe.Outcome, *circuit.Circuit, error) {
	pl, err := params.pipeline(log)
	if err != nil {
		return nil, nil, err
	}
	if err := pl.Build(); err != nil {
		return nil, nil, err
	}
	out, err := pl.Run(ctx, backend, params.repetitions)
	if err != nil {
		return nil, nil, err
	}
	return out, pl.Circuit(), nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"qtermphase/internal/config"
	"qtermphase/internal/qpe"
	"qtermphase/internal/report"
)

// runHeadless runs one estimation and prints the histogram to w.
func runHeadless(ctx context.Context, cfg *config.Config, log zerolog.Logger, w io.Writer) error {
	params := paramsFromConfig(cfg)
	out, circ, err := estimate(ctx, newBackend(cfg.Seed, log), params, log)
	if err != nil {
		return err
	}
	printOutcome(w, out)

	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, report.FromOutcome(out, circ.ToQASM())); err != nil {
			return err
		}
		log.Info().Str("path", cfg.ReportPath).Msg("report written")
	}
	return nil
}

func paramsFromConfig(cfg *config.Config) runParams {
	return runParams{
		countingQubits: cfg.CountingQubits,
		eigenstate:     cfg.Eigenstate,
		unitary:        cfg.Unitary,
		repetitions:    cfg.Repetitions,
	}
}

// printOutcome writes a plain-text histogram, one line per observed outcome
// in outcome order, and the estimate.
func printOutcome(w io.Writer, out *qpe.Outcome) {
	fmt.Fprintf(w, "U=%s eigenstate=|%s> counting=%d shots=%d backend=%s\n",
		out.Unitary, out.Eigenstate, out.CountingQubits, out.Repetitions, out.Backend)

	bins := out.Histogram.Sorted()
	if len(bins) == 0 {
		return
	}
	peak := bins[0].Count
	slices.SortFunc(bins, func(a, b qpe.Bin) int { return strings.Compare(a.Outcome, b.Outcome) })
	for _, b := range bins {
		w1 := max(b.Count*histBarW/peak, 1)
		fmt.Fprintf(w, "%s  %-*s %6d  %.6f\n", b.Outcome, histBarW, strings.Repeat("#", w1), b.Count, b.Phase)
	}

	est := out.Estimate()
	fmt.Fprintf(w, "phase: %g (0.%s binary, mode frequency %.1f%%)\n", est.Phase, est.Mode, est.ModeFrequency*100)
	fmt.Fprintf(w, "mean: %.6g  stddev: %.6g\n", est.Mean, est.StdDev)
	if out.Expected != nil {
		fmt.Fprintf(w, "expected: %.6g\n", *out.Expected)
	}
}

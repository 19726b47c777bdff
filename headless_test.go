package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"qtermphase/internal/config"
	"qtermphase/internal/report"
)

func TestRunHeadlessWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.msgpack")
	cfg := &config.Config{
		CountingQubits: 3,
		Eigenstate:     "1",
		Unitary:        "t",
		Repetitions:    50,
		Seed:           7,
		ReportPath:     path,
	}

	var buf bytes.Buffer
	if err := runHeadless(context.Background(), cfg, zerolog.Nop(), &buf); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"U=T", "001", "phase: 0.125", "expected: 0.125"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	r, err := report.Read(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if r.Histogram["001"] != 50 || len(r.Histogram) != 1 {
		t.Errorf("unexpected histogram %v", r.Histogram)
	}
	if !strings.Contains(r.QASM, "OPENQASM 2.0;") {
		t.Error("report should carry the circuit")
	}
}

func TestRunHeadlessBadUnitary(t *testing.T) {
	cfg := &config.Config{CountingQubits: 2, Eigenstate: "1", Unitary: "cz", Repetitions: 10}
	var buf bytes.Buffer
	if err := runHeadless(context.Background(), cfg, zerolog.Nop(), &buf); err == nil {
		t.Fatal("expected an error for a width mismatch")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got %q", buf.String())
	}
}

func TestRunFlags(t *testing.T) {
	var buf bytes.Buffer
	err := run([]string{"--headless", "-n", "2", "-u", "z", "-e", "1", "-r", "10", "--seed", "3", "--log-level", "error"}, &buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "10  ") {
		t.Errorf("expected outcome 10 in output:\n%s", buf.String())
	}

	if err := run([]string{"--help"}, &buf); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}

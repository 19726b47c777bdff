// Package report persists the result of an estimation run as JSON or
// MessagePack, chosen by file extension.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"qtermphase/internal/qpe"
)

// Format is a report encoding.
type Format int

const (
	JSON Format = iota
	MsgPack
)

// FormatFor picks the encoding from a file name: .msgpack and .mpk are
// MessagePack, everything else is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return MsgPack
	default:
		return JSON
	}
}

// Report is the persisted form of a run.
type Report struct {
	RunID          string         `json:"run_id" msgpack:"run_id"`
	CreatedAt      time.Time      `json:"created_at" msgpack:"created_at"`
	Backend        string         `json:"backend" msgpack:"backend"`
	Unitary        string         `json:"unitary" msgpack:"unitary"`
	Eigenstate     string         `json:"eigenstate" msgpack:"eigenstate"`
	CountingQubits int            `json:"counting_qubits" msgpack:"counting_qubits"`
	Repetitions    int            `json:"repetitions" msgpack:"repetitions"`
	Histogram      map[string]int `json:"histogram" msgpack:"histogram"`
	Estimate       qpe.Estimate   `json:"estimate" msgpack:"estimate"`
	Expected       *float64       `json:"expected,omitempty" msgpack:"expected,omitempty"`
	QASM           string         `json:"qasm,omitempty" msgpack:"qasm,omitempty"`
}

// FromOutcome builds a report for o. qasm may be empty.
func FromOutcome(o *qpe.Outcome, qasm string) Report {
	hist := make(map[string]int, len(o.Histogram))
	for k, v := range o.Histogram {
		hist[k] = v
	}
	return Report{
		RunID:          o.RunID.String(),
		CreatedAt:      time.Now().UTC(),
		Backend:        o.Backend,
		Unitary:        o.Unitary,
		Eigenstate:     o.Eigenstate,
		CountingQubits: o.CountingQubits,
		Repetitions:    o.Repetitions,
		Histogram:      hist,
		Estimate:       o.Estimate(),
		Expected:       o.Expected,
		QASM:           qasm,
	}
}

// Encode writes r to w in the given format.
func Encode(w io.Writer, f Format, r Report) error {
	switch f {
	case MsgPack:
		return msgpack.NewEncoder(w).Encode(&r)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(&r)
	}
}

// Decode reads a report in the given format.
func Decode(rd io.Reader, f Format) (Report, error) {
	var r Report
	var err error
	switch f {
	case MsgPack:
		err = msgpack.NewDecoder(rd).Decode(&r)
	default:
		err = json.NewDecoder(rd).Decode(&r)
	}
	if err != nil {
		return Report{}, fmt.Errorf("report: decode: %w", err)
	}
	return r, nil
}

// Write encodes r into path, replacing any existing file.
func Write(path string, r Report) error {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatFor(path), r); err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("report: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, FormatFor(path))
}

package circuit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"qtermphase/internal/angle"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex    = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	twoQubitRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	twoQubitParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + angle.Pattern + `)\s*\)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex       = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	qregRegex          = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
	cregRegex          = regexp.MustCompile(`creg\s+(\w+)\[(\d+)\]`)
	cuCommentRegex     = regexp.MustCompile(`^//\s*cu\s+`)
)

// ToQASM generates OpenQASM 2.0 output. Controlled phases become cu1 with
// angle -π·exponent. Controlled unitary powers have no qelib1 form and are
// written as comments. Each measurement channel gets its own creg whose bit 0
// holds the most significant qubit of the joint outcome.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", max(c.numQubits, 1))

	cregs := make(map[string]int)
	for _, op := range c.ops {
		if op.Kind == GateMeasure {
			cregs[op.Channel] = max(cregs[op.Channel], len(op.Qubits))
		}
	}
	for _, ch := range c.Channels() {
		fmt.Fprintf(&sb, "creg %s[%d];\n", ch, cregs[ch])
	}
	sb.WriteString("\n")

	for _, op := range c.ops {
		switch op.Kind {
		case GateH:
			fmt.Fprintf(&sb, "h q[%d];\n", op.Qubits[0])
		case GateX:
			fmt.Fprintf(&sb, "x q[%d];\n", op.Qubits[0])
		case GateSwap:
			fmt.Fprintf(&sb, "swap q[%d], q[%d];\n", op.Qubits[0], op.Qubits[1])
		case GateCPhase:
			fmt.Fprintf(&sb, "cu1(%s) q[%d], q[%d];\n", angle.Format(-math.Pi*op.Exponent), op.Qubits[1], op.Qubits[0])
		case GateCUPower:
			qs := make([]string, len(op.Qubits))
			for i, q := range op.Qubits {
				qs[i] = fmt.Sprintf("q[%d]", q)
			}
			fmt.Fprintf(&sb, "// cu %s^%s %s\n", op.Unitary.Name(), strconv.FormatFloat(op.Exponent, 'g', -1, 64), strings.Join(qs, ", "))
		case GateMeasure:
			for i, q := range op.Qubits {
				fmt.Fprintf(&sb, "measure q[%d] -> %s[%d];\n", q, op.Channel, i)
			}
		}
	}
	return sb.String()
}

// ParseQASM parses the subset of OpenQASM 2.0 that ToQASM emits for circuits
// without controlled unitaries: h, x, swap, cu1 and measure. Consecutive
// measurements into the same creg form one joint measurement ordered by bit
// index.
func ParseQASM(qasm string) (*Circuit, error) {
	c := New(0)
	var pending *Operation
	flush := func() {
		if pending != nil {
			c.ops = append(c.ops, *pending)
			pending = nil
		}
	}

	for n, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if cuCommentRegex.MatchString(line) {
			return nil, fmt.Errorf("%w: line %d: controlled unitary has no QASM form", ErrMalformed, n+1)
		}
		if strings.HasPrefix(line, "//") ||
			strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") {
			continue
		}
		if matches := qregRegex.FindStringSubmatch(line); matches != nil {
			size, _ := strconv.Atoi(matches[2])
			c.numQubits = size
			continue
		}
		if cregRegex.MatchString(line) {
			continue
		}

		// Measurement: "measure q[0] -> result[0];"
		if matches := measureRegex.FindStringSubmatch(line); matches != nil {
			q, _ := strconv.Atoi(matches[1])
			ch := matches[2]
			bit, _ := strconv.Atoi(matches[3])
			if pending == nil || pending.Channel != ch || bit != len(pending.Qubits) {
				flush()
				if bit != 0 {
					return nil, fmt.Errorf("%w: line %d: measurement into %s[%d] does not start a joint outcome", ErrMalformed, n+1, ch, bit)
				}
				op := Measure(ch, nil)
				pending = &op
			}
			pending.Qubits = append(pending.Qubits, Qubit(q))
			continue
		}
		flush()

		var op Operation
		if matches := twoQubitParamRegex.FindStringSubmatch(line); matches != nil {
			theta, ok := angle.Parse(matches[2])
			if !ok || strings.ToLower(matches[1]) != "cu1" {
				return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, n+1, line)
			}
			control, _ := strconv.Atoi(matches[3])
			target, _ := strconv.Atoi(matches[4])
			op = ControlledPhase(Qubit(target), Qubit(control), -theta/math.Pi)
		} else if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
			if strings.ToLower(matches[1]) != "swap" {
				return nil, fmt.Errorf("%w: line %d: unsupported gate %q", ErrMalformed, n+1, matches[1])
			}
			a, _ := strconv.Atoi(matches[2])
			b, _ := strconv.Atoi(matches[3])
			op = SwapQubits(Qubit(a), Qubit(b))
		} else if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
			q, _ := strconv.Atoi(matches[2])
			switch strings.ToLower(matches[1]) {
			case "h":
				op = Hadamard(Qubit(q))
			case "x":
				op = PauliX(Qubit(q))
			default:
				return nil, fmt.Errorf("%w: line %d: unsupported gate %q", ErrMalformed, n+1, matches[1])
			}
		} else {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, n+1, line)
		}
		c.ops = append(c.ops, op)
	}
	flush()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

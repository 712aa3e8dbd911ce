// Package smt drives an external SMT solver over SMT-LIB 2 text.
//
// The solver binary (z3 by default) is run as a subprocess per query with
// the script piped to stdin. Each query carries a hard wall-clock timeout:
// the solver is told its budget via -T and the process is additionally
// killed through the command context, so a stuck solver can never block a
// check. A query is issued exactly once; timeouts and solver-reported
// unknowns are surfaced as StatusUnknown, never retried.
package smt

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tinylang/tscheck/internal/logic"
)

// Status is the solver's answer to a satisfiability query.
type Status int

const (
	// StatusUnknown means the solver timed out or could not decide.
	StatusUnknown Status = iota
	// StatusSat means the asserted formulas are satisfiable.
	StatusSat
	// StatusUnsat means the asserted formulas are unsatisfiable.
	StatusUnsat
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	case StatusUnknown:
		return "unknown"
	default:
		return "?"
	}
}

// Result is the outcome of a CheckSat call. Model is populated only for
// StatusSat and maps variable names to the solver's witness values.
type Result struct {
	Status Status
	Model  map[string]int64
}

// DefaultPath is the solver binary consulted when none is configured.
const DefaultPath = "z3"

// ErrSolverNotFound reports a missing solver binary.
var ErrSolverNotFound = errors.New("smt: solver binary not found on PATH")

// Solver checks satisfiability of formulas with a fixed per-query timeout.
type Solver struct {
	path    string
	timeout time.Duration
}

// New returns a Solver using the given binary and per-query timeout.
// An empty path selects DefaultPath; a non-positive timeout defaults to
// one second.
func New(path string, timeout time.Duration) *Solver {
	if path == "" {
		path = DefaultPath
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Solver{path: path, timeout: timeout}
}

// CheckSat asserts the conjunction of formulas and asks the solver for a
// verdict. The error return covers operational failures (missing binary,
// unparseable output); timeouts and indeterminate answers are not errors.
func (s *Solver) CheckSat(ctx context.Context, formulas ...logic.Formula) (Result, error) {
	path, err := exec.LookPath(s.path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrSolverNotFound, s.path)
	}

	script := Script(formulas...)

	ctx, cancel := context.WithTimeout(ctx, s.timeout+time.Second)
	defer cancel()

	seconds := int(math.Ceil(s.timeout.Seconds()))
	cmd := exec.CommandContext(ctx, path, "-in", fmt.Sprintf("-T:%d", seconds))
	cmd.Stdin = strings.NewReader(script)
	// Killing the direct child is not enough when the solver binary is a
	// wrapper script: a descendant can keep the stdout pipe open and hold
	// Wait hostage. WaitDelay abandons the pipes once the context deadline
	// has passed, keeping the wall-clock budget hard.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return Result{Status: StatusUnknown}, nil
	}

	out := stdout.String()
	switch firstLine(out) {
	case "unsat":
		return Result{Status: StatusUnsat}, nil
	case "sat":
		model, err := parseModel(out)
		if err != nil {
			return Result{}, fmt.Errorf("smt: parsing model: %w", err)
		}
		return Result{Status: StatusSat, Model: model}, nil
	case "unknown", "timeout":
		return Result{Status: StatusUnknown}, nil
	}

	if runErr != nil {
		return Result{}, fmt.Errorf("smt: running %s: %w (stderr: %s)", s.path, runErr, strings.TrimSpace(stderr.String()))
	}
	return Result{}, fmt.Errorf("smt: unexpected solver output %q", firstLine(out))
}

// Script renders the SMT-LIB 2 query for the conjunction of formulas:
// declarations for every free variable, one assert per formula, check-sat
// and get-model.
func Script(formulas ...logic.Formula) string {
	var sb strings.Builder

	seen := make(map[string]bool)
	for _, f := range formulas {
		for _, name := range logic.Vars(f) {
			if seen[name] {
				continue
			}
			seen[name] = true
			sb.WriteString("(declare-const ")
			sb.WriteString(logic.SMTSymbol(name))
			sb.WriteString(" Int)\n")
		}
	}

	for _, f := range formulas {
		sb.WriteString("(assert ")
		sb.WriteString(logic.SMT(f))
		sb.WriteString(")\n")
	}

	sb.WriteString("(check-sat)\n")
	sb.WriteString("(get-model)\n")
	return sb.String()
}

func firstLine(out string) string {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line
		}
	}
	return ""
}

// parseModel extracts integer bindings from z3's get-model output, e.g.
//
//	(
//	  (define-fun x () Int 3)
//	  (define-fun |#steps| () Int (- 1))
//	)
//
// Non-integer definitions are skipped.
func parseModel(out string) (map[string]int64, error) {
	model := make(map[string]int64)

	rest := out
	for {
		idx := strings.Index(rest, "define-fun")
		if idx < 0 {
			return model, nil
		}
		rest = rest[idx+len("define-fun"):]
		name, after, ok := readSymbol(rest)
		if !ok {
			return nil, fmt.Errorf("malformed define-fun near %q", clip(rest))
		}
		segment := after
		if next := strings.Index(segment, "define-fun"); next >= 0 {
			segment = segment[:next]
		}
		if val, ok := readIntValue(segment); ok {
			model[name] = val
		}
		rest = after
	}
}

func readSymbol(s string) (name, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t\n")
	if s == "" {
		return "", "", false
	}
	if s[0] == '|' {
		end := strings.IndexByte(s[1:], '|')
		if end < 0 {
			return "", "", false
		}
		return s[1 : 1+end], s[2+end:], true
	}
	end := strings.IndexAny(s, " \t\n()")
	if end <= 0 {
		return "", "", false
	}
	return s[:end], s[end:], true
}

// readIntValue scans past "() Int" and reads either a literal or a
// negated literal "(- n)".
func readIntValue(s string) (int64, bool) {
	intIdx := strings.Index(s, "Int")
	if intIdx < 0 {
		return 0, false
	}
	s = strings.TrimLeft(s[intIdx+len("Int"):], " \t\n")

	negative := false
	if strings.HasPrefix(s, "(-") {
		negative = true
		s = strings.TrimLeft(s[2:], " \t\n")
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func clip(s string) string {
	const max = 40
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

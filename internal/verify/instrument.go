// Package verify implements the bounded step-count verifier: the
// instrumentation pass that threads a decrementing step counter through a
// program, the box (weakest liberal precondition) transformer of dynamic
// logic with bounded loop unrolling, and the check driver that turns a
// program and a step bound into one satisfiability query.
package verify

import (
	"errors"
	"fmt"

	"github.com/tinylang/tscheck/internal/lang"
)

// ErrUnknownNode reports a program tree containing a node outside the
// seven recognized kinds. It marks a contract violation by the caller and
// is never recovered from.
var ErrUnknownNode = errors.New("verify: unrecognized program node")

// decrement is the statement #steps := #steps - 1.
func decrement() lang.Prog {
	return lang.Assign(lang.StepCounter, lang.Diff{L: lang.V(lang.StepCounter), R: lang.Int(1)})
}

// Instrument rewrites p to maintain the remaining-step counter: the result
// first sets lang.StepCounter to stepBound, then mirrors p with every leaf
// statement prefixed by a counter decrement. The instrumented program is
// observationally equivalent to p on all user variables; only the reserved
// counter differs, decreasing by exactly one per executed leaf statement.
// The counter is never clamped, so a run past the budget drives it
// negative, which is what the verification condition looks for.
func Instrument(p lang.Prog, stepBound int64) (lang.Prog, error) {
	body, err := addInstrumentation(p)
	if err != nil {
		return nil, err
	}
	init := lang.Assign(lang.StepCounter, lang.Int(stepBound))
	return lang.Seq{First: init, Second: body}, nil
}

func addInstrumentation(p lang.Prog) (lang.Prog, error) {
	switch n := p.(type) {
	case lang.Skip, lang.Asgn, lang.Output, lang.Abort:
		return lang.Seq{First: decrement(), Second: n}, nil

	case lang.Seq:
		first, err := addInstrumentation(n.First)
		if err != nil {
			return nil, err
		}
		second, err := addInstrumentation(n.Second)
		if err != nil {
			return nil, err
		}
		return lang.Seq{First: first, Second: second}, nil

	case lang.If:
		then, err := addInstrumentation(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := addInstrumentation(n.Else)
		if err != nil {
			return nil, err
		}
		return lang.If{Cond: n.Cond, Then: then, Else: els}, nil

	case lang.While:
		body, err := addInstrumentation(n.Body)
		if err != nil {
			return nil, err
		}
		return lang.While{Cond: n.Cond, Body: body}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownNode, p)
	}
}

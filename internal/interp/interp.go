// Package interp provides a direct interpreter for tinyscript programs.
//
// The interpreter implements the trace semantics the verifier reasons
// about symbolically: every skip, assignment, output and abort statement
// costs exactly one step, while sequencing, branching and looping are
// free. It backs the `tscheck run` command and the optional witness
// confirmation step of the verifier.
package interp

import (
	"fmt"

	"github.com/tinylang/tscheck/internal/lang"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	// OutcomeFinished means the program terminated normally.
	OutcomeFinished Outcome = iota
	// OutcomeAborted means an abort statement was executed.
	OutcomeAborted
	// OutcomeOutOfSteps means the step budget was exhausted mid-run.
	OutcomeOutOfSteps
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeAborted:
		return "aborted"
	case OutcomeOutOfSteps:
		return "out of steps"
	default:
		return "?"
	}
}

// State maps variable names to integer values. Unbound variables read as 0,
// matching the solver's freedom to pick any model value: callers that care
// seed the state explicitly.
type State struct {
	vars    map[string]int64
	outputs []int64
	steps   int
}

// NewState returns an empty state.
func NewState() *State {
	return &State{vars: make(map[string]int64)}
}

// Get returns the value bound to name, or 0 when unbound.
func (s *State) Get(name string) int64 {
	return s.vars[name]
}

// Set binds name to val.
func (s *State) Set(name string, val int64) {
	s.vars[name] = val
}

// Steps returns the number of steps executed so far.
func (s *State) Steps() int {
	return s.steps
}

// Outputs returns the values emitted by output statements, in order.
func (s *State) Outputs() []int64 {
	return s.outputs
}

// Vars returns a copy of the variable bindings.
func (s *State) Vars() map[string]int64 {
	out := make(map[string]int64, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// Run executes p against st, mutating st in place, and reports how the run
// ended. maxSteps bounds the number of executed leaf statements; a
// non-positive bound means the very first step already overruns.
func Run(p lang.Prog, st *State, maxSteps int) (Outcome, error) {
	return exec(p, st, maxSteps)
}

func exec(p lang.Prog, st *State, maxSteps int) (Outcome, error) {
	switch n := p.(type) {
	case lang.Skip:
		return step(st, maxSteps)

	case lang.Asgn:
		if out, err := step(st, maxSteps); out != OutcomeFinished || err != nil {
			return out, err
		}
		st.Set(n.Name, evalTerm(n.Expr, st))
		return OutcomeFinished, nil

	case lang.Output:
		if out, err := step(st, maxSteps); out != OutcomeFinished || err != nil {
			return out, err
		}
		st.outputs = append(st.outputs, evalTerm(n.Expr, st))
		return OutcomeFinished, nil

	case lang.Abort:
		if out, err := step(st, maxSteps); out != OutcomeFinished || err != nil {
			return out, err
		}
		return OutcomeAborted, nil

	case lang.Seq:
		if out, err := exec(n.First, st, maxSteps); out != OutcomeFinished || err != nil {
			return out, err
		}
		return exec(n.Second, st, maxSteps)

	case lang.If:
		if evalBool(n.Cond, st) {
			return exec(n.Then, st, maxSteps)
		}
		return exec(n.Else, st, maxSteps)

	case lang.While:
		for evalBool(n.Cond, st) {
			before := st.steps
			if out, err := exec(n.Body, st, maxSteps); out != OutcomeFinished || err != nil {
				return out, err
			}
			// A zero-step iteration leaves the state untouched, so the
			// condition can never change: the loop is silently infinite.
			if st.steps == before {
				return OutcomeFinished, fmt.Errorf("interp: loop body %s makes no progress", n.Body)
			}
		}
		return OutcomeFinished, nil

	default:
		return OutcomeFinished, fmt.Errorf("interp: unrecognized program node %T", p)
	}
}

func step(st *State, maxSteps int) (Outcome, error) {
	if st.steps >= maxSteps {
		return OutcomeOutOfSteps, nil
	}
	st.steps++
	return OutcomeFinished, nil
}

func evalTerm(t lang.Term, st *State) int64 {
	switch n := t.(type) {
	case lang.Const:
		return n.Val
	case lang.Var:
		return st.Get(n.Name)
	case lang.Sum:
		return evalTerm(n.L, st) + evalTerm(n.R, st)
	case lang.Diff:
		return evalTerm(n.L, st) - evalTerm(n.R, st)
	case lang.Prod:
		return evalTerm(n.L, st) * evalTerm(n.R, st)
	default:
		return 0
	}
}

func evalBool(b lang.BoolExpr, st *State) bool {
	switch n := b.(type) {
	case lang.BoolConst:
		return n.Val
	case lang.Lt:
		return evalTerm(n.L, st) < evalTerm(n.R, st)
	case lang.Eq:
		return evalTerm(n.L, st) == evalTerm(n.R, st)
	case lang.Not:
		return !evalBool(n.F, st)
	case lang.And:
		return evalBool(n.L, st) && evalBool(n.R, st)
	case lang.Or:
		return evalBool(n.L, st) || evalBool(n.R, st)
	case lang.Implies:
		return !evalBool(n.L, st) || evalBool(n.R, st)
	default:
		return false
	}
}

package verify

import (
	"context"
	"time"

	"github.com/tinylang/tscheck/internal/interp"
	"github.com/tinylang/tscheck/internal/lang"
	"github.com/tinylang/tscheck/internal/logic"
	"github.com/tinylang/tscheck/internal/smt"
	"github.com/tinylang/tscheck/internal/types"
)

// Options tunes a single Check call.
type Options struct {
	// StepBound is the step budget the program must stay within.
	StepBound int64
	// MaxDepth bounds loop unrolling in the box transformer.
	MaxDepth int
	// Timeout is the wall-clock budget for the one solver query.
	Timeout time.Duration
	// SolverPath overrides the solver binary (default: z3 on PATH).
	SolverPath string
	// Strict selects the depth-exceeded policy: states still inside a
	// loop at the unrolling horizon count as violations. Clearing it
	// treats them as benign, trading soundness of Satisfies for fewer
	// horizon artifacts.
	Strict bool
	// ConfirmWitness replays the solver's model through the interpreter
	// before reporting a violation. A confirmed overrun stays Violates;
	// an unconfirmed one (typically an artifact of the depth-exceeded
	// approximation) is downgraded to Unknown. Off by default: the
	// unconfirmed Violates verdict is conservative but sound for the
	// "flag anything that might overrun" reading.
	ConfirmWitness bool
}

// DefaultOptions mirror the knobs the original analysis ran with.
func DefaultOptions() Options {
	return Options{
		StepBound: 100,
		MaxDepth:  10,
		Timeout:   time.Second,
		Strict:    true,
	}
}

// Outcome carries the verdict of one check plus the satisfying state, when
// the solver produced one.
type Outcome struct {
	Verdict types.Verdict
	// Witness holds the solver's model for the user variables when the
	// verdict is Violates (or an unconfirmed Unknown). Nil otherwise.
	Witness map[string]int64
}

// Check decides whether any execution of p can exceed opts.StepBound steps.
//
// The question is turned into one satisfiability query: instrument p with
// the step counter, compute W = [instrumented p](-1 < #steps) under the
// configured depth-exceeded policy, and ask the solver for a state
// satisfying !W.
//
//	unsat   -> Satisfies: no modeled execution drives the counter negative.
//	sat     -> Violates: some pre-state overruns the budget (or reaches the
//	           unrolling horizon, which the strict policy also flags).
//	unknown -> Unknown: solver timeout or indeterminate answer.
//
// With Options.Strict set, Check is sound for Satisfies. A sat answer
// within MaxDepth unrollings is a genuine overrun; one caused purely by
// depth exhaustion is a conservative flag, which Options.ConfirmWitness
// can tighten.
func Check(ctx context.Context, p lang.Prog, opts Options) (Outcome, error) {
	instrumented, err := Instrument(p, opts.StepBound)
	if err != nil {
		return Outcome{}, err
	}

	// -1 < #steps: the counter never goes negative.
	post, err := logic.EncodeFormula(lang.Lt{
		L: lang.Const{Val: -1},
		R: lang.Var{Name: lang.StepCounter},
	})
	if err != nil {
		return Outcome{}, err
	}

	weakestPre, err := Box(instrumented, post, opts.MaxDepth, opts.Strict)
	if err != nil {
		return Outcome{}, err
	}

	solver := smt.New(opts.SolverPath, opts.Timeout)
	res, err := solver.CheckSat(ctx, logic.Not(weakestPre))
	if err != nil {
		return Outcome{}, err
	}

	switch res.Status {
	case smt.StatusUnsat:
		return Outcome{Verdict: types.VerdictSatisfies}, nil

	case smt.StatusSat:
		witness := userBindings(res.Model)
		if !opts.ConfirmWitness {
			return Outcome{Verdict: types.VerdictViolates, Witness: witness}, nil
		}
		if confirmOverrun(p, witness, opts.StepBound) {
			return Outcome{Verdict: types.VerdictViolates, Witness: witness}, nil
		}
		return Outcome{Verdict: types.VerdictUnknown, Witness: witness}, nil

	default:
		return Outcome{Verdict: types.VerdictUnknown}, nil
	}
}

// userBindings strips instrumentation variables from a solver model.
func userBindings(model map[string]int64) map[string]int64 {
	if model == nil {
		return nil
	}
	out := make(map[string]int64, len(model))
	for name, val := range model {
		if lang.IsSystemVar(name) {
			continue
		}
		out[name] = val
	}
	return out
}

// confirmOverrun replays p from the witness state and reports whether the
// run genuinely exhausts the step budget. Interpreter failures count as
// unconfirmed.
func confirmOverrun(p lang.Prog, witness map[string]int64, stepBound int64) bool {
	st := interp.NewState()
	for name, val := range witness {
		st.Set(name, val)
	}
	outcome, err := interp.Run(p, st, int(stepBound))
	if err != nil {
		return false
	}
	return outcome == interp.OutcomeOutOfSteps
}

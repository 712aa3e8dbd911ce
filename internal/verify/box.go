package verify

import (
	"fmt"

	"github.com/tinylang/tscheck/internal/lang"
	"github.com/tinylang/tscheck/internal/logic"
)

// Box applies the axioms of dynamic logic to turn the box formula
// [p] post into an equivalent box-free formula over integer arithmetic:
// the weakest condition on the pre-state under which post holds in every
// state p can terminate in.
//
// Loops are handled by the loop axiom,
//
//	[while q do a done] P  <->  [if q then a; while q do a done else skip endif] P
//
// applied up to maxDepth times. Once the unrolling budget is exhausted the
// depth-exceeded policy takes over: with strict true any state still inside
// the loop is treated as violating (the formula is false there), otherwise
// as benign (true). Strict is the sound choice when the caller is hunting
// for violations past the unrolling horizon.
//
// The result is passed through logic.Simplify before being returned.
// Box is pure: it never mutates p or post.
func Box(p lang.Prog, post logic.Formula, maxDepth int, strict bool) (logic.Formula, error) {
	f, err := box(p, post, maxDepth, strict)
	if err != nil {
		return nil, err
	}
	return logic.Simplify(f), nil
}

func box(p lang.Prog, post logic.Formula, maxDepth int, strict bool) (logic.Formula, error) {
	switch n := p.(type) {
	case lang.Skip:
		return post, nil

	// [x := e] P(x)  <->  P(e)
	case lang.Asgn:
		e, err := logic.EncodeTerm(n.Expr)
		if err != nil {
			return nil, err
		}
		return logic.Substitute(post, n.Name, e), nil

	// Output writes no state variable considered here.
	case lang.Output:
		return post, nil

	// Abort propagates the postcondition unchanged. This mirrors the
	// policy's view of abort as a stop, not a budget violation; the
	// generic one-step cost is still charged by the instrumentation.
	case lang.Abort:
		return post, nil

	// [a; b] P  <->  [a]([b] P)
	case lang.Seq:
		inner, err := box(n.Second, post, maxDepth, strict)
		if err != nil {
			return nil, err
		}
		return box(n.First, inner, maxDepth, strict)

	// [if q then a else b endif] P  <->  (q -> [a] P) && (!q -> [b] P)
	case lang.If:
		q, err := logic.EncodeFormula(n.Cond)
		if err != nil {
			return nil, err
		}
		thenF, err := box(n.Then, post, maxDepth, strict)
		if err != nil {
			return nil, err
		}
		elseF, err := box(n.Else, post, maxDepth, strict)
		if err != nil {
			return nil, err
		}
		return logic.And(
			logic.Implies(q, thenF),
			logic.Implies(logic.Not(q), elseF),
		), nil

	// One application of the loop axiom, spending one unit of depth.
	// The original loop node is re-embedded inside the unrolled if.
	// Depth exhaustion is decided here, at the unrolling site: states
	// that are still inside a loop once the budget is spent fall under
	// the policy constant, while loop-free remainders of the program
	// keep their exact semantics.
	case lang.While:
		if maxDepth < 1 {
			if strict {
				return logic.False(), nil
			}
			return logic.True(), nil
		}
		unrolled := lang.If{
			Cond: n.Cond,
			Then: lang.Seq{First: n.Body, Second: n},
			Else: lang.Skip{},
		}
		return box(unrolled, post, maxDepth-1, strict)

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownNode, p)
	}
}

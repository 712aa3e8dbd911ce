package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinylang/tscheck/internal/lang"
	"github.com/tinylang/tscheck/internal/logic"
)

const defaultDepth = 10

// post builds an irreducible postcondition over the given variable, so
// simplification cannot blur structural comparisons.
func post(name string) logic.Formula {
	return logic.Lt(logic.Var(name), logic.Var("bound"))
}

func TestBoxSkipIsIdentity(t *testing.T) {
	t.Parallel()
	p := post("x")
	got, err := Box(lang.Skip{}, p, defaultDepth, true)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestBoxOutputAndAbortPropagate(t *testing.T) {
	t.Parallel()
	p := post("x")

	got, err := Box(lang.Output{Expr: lang.Var{Name: "x"}}, p, defaultDepth, true)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got, err = Box(lang.Abort{}, p, defaultDepth, true)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestBoxAssignSubstitutes(t *testing.T) {
	t.Parallel()
	// [x := y + 1](x < bound)  ==  (y + 1 < bound)
	asgn := lang.Asgn{Name: "x", Expr: lang.Sum{L: lang.Var{Name: "y"}, R: lang.Const{Val: 1}}}
	got, err := Box(asgn, post("x"), defaultDepth, true)
	require.NoError(t, err)
	want := logic.Lt(logic.Add(logic.Var("y"), logic.Int(1)), logic.Var("bound"))
	assert.Equal(t, want, got)

	// Variables other than the target are untouched.
	got, err = Box(asgn, post("z"), defaultDepth, true)
	require.NoError(t, err)
	assert.Equal(t, post("z"), got)
}

func TestBoxSeqComposes(t *testing.T) {
	t.Parallel()
	a := lang.Asgn{Name: "x", Expr: lang.Sum{L: lang.Var{Name: "y"}, R: lang.Const{Val: 1}}}
	b := lang.Asgn{Name: "y", Expr: lang.Diff{L: lang.Var{Name: "x"}, R: lang.Const{Val: 2}}}
	p := logic.Lt(logic.Var("x"), logic.Var("y"))

	composed, err := Box(lang.Seq{First: a, Second: b}, p, defaultDepth, true)
	require.NoError(t, err)

	inner, err := Box(b, p, defaultDepth, true)
	require.NoError(t, err)
	outer, err := Box(a, inner, defaultDepth, true)
	require.NoError(t, err)

	assert.Equal(t, outer, composed)
}

func TestBoxIf(t *testing.T) {
	t.Parallel()
	// [if 0 < x then y := 1 else y := 2 endif](y < bound)
	prog := mustParse(t, "if 0 < x then y := 1 else y := 2 endif")
	got, err := Box(prog, post("y"), defaultDepth, true)
	require.NoError(t, err)

	q := logic.Lt(logic.Int(0), logic.Var("x"))
	want := logic.And(
		logic.Implies(q, logic.Lt(logic.Int(1), logic.Var("bound"))),
		logic.Implies(logic.Not(q), logic.Lt(logic.Int(2), logic.Var("bound"))),
	)
	assert.Equal(t, want, got)
}

func TestBoxWhileUnrollsAndTerminates(t *testing.T) {
	t.Parallel()
	prog := mustParse(t, "while 0 < x do x := x - 1 done")

	for depth := 0; depth <= 6; depth++ {
		got, err := Box(prog, post("x"), depth, true)
		require.NoError(t, err, "depth %d", depth)
		require.NotNil(t, got, "depth %d", depth)
	}
}

func TestBoxDepthExceedPolicy(t *testing.T) {
	t.Parallel()
	loop := lang.While{Cond: lang.True(), Body: lang.Skip{}}

	strict, err := Box(loop, post("x"), 0, true)
	require.NoError(t, err)
	assert.Equal(t, logic.False(), strict)

	lenient, err := Box(loop, post("x"), 0, false)
	require.NoError(t, err)
	assert.Equal(t, logic.True(), lenient)
}

// A loop whose guard is constantly false exits on the first unrolling,
// so the postcondition survives untouched and no depth is consumed past it.
func TestBoxWhileFalseIsIdentity(t *testing.T) {
	t.Parallel()
	loop := lang.While{Cond: lang.False(), Body: lang.Assign("x", lang.Int(1))}
	p := post("x")

	for _, depth := range []int{1, 3} {
		got, err := Box(loop, p, depth, true)
		require.NoError(t, err)
		assert.Equal(t, p, got, "depth %d", depth)
	}
}

func TestBoxInfiniteLoopStrictCollapsesToFalse(t *testing.T) {
	t.Parallel()
	// Every unrolling of while true re-enters the loop, so under the
	// strict policy the weakest precondition is unsatisfiable at any depth.
	loop := mustParse(t, "while true do skip done")
	for _, depth := range []int{1, 2, 5} {
		got, err := Box(loop, post("x"), depth, true)
		require.NoError(t, err)
		assert.Equal(t, logic.False(), got, "depth %d", depth)
	}
}

func TestBoxResultIsSimplified(t *testing.T) {
	t.Parallel()
	// [x := 2](x < 5) folds to a constant once substituted.
	got, err := Box(lang.Asgn{Name: "x", Expr: lang.Const{Val: 2}}, logic.Lt(logic.Var("x"), logic.Int(5)), defaultDepth, true)
	require.NoError(t, err)
	assert.Equal(t, logic.True(), got)
}

func TestBoxRejectsUnknownNode(t *testing.T) {
	t.Parallel()
	_, err := Box(nil, post("x"), defaultDepth, true)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

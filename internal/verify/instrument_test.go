package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinylang/tscheck/internal/interp"
	"github.com/tinylang/tscheck/internal/lang"
)

func mustParse(t *testing.T, src string) lang.Prog {
	t.Helper()
	prog, err := lang.Parse(src)
	require.NoError(t, err)
	return prog
}

func TestInstrumentShape(t *testing.T) {
	t.Parallel()

	instrumented, err := Instrument(lang.Skip{}, 5)
	require.NoError(t, err)

	want := lang.Seq{
		First: lang.Asgn{Name: lang.StepCounter, Expr: lang.Const{Val: 5}},
		Second: lang.Seq{
			First: lang.Asgn{
				Name: lang.StepCounter,
				Expr: lang.Diff{L: lang.Var{Name: lang.StepCounter}, R: lang.Const{Val: 1}},
			},
			Second: lang.Skip{},
		},
	}
	assert.Equal(t, lang.Prog(want), instrumented)
}

func TestInstrumentWrapsEveryLeaf(t *testing.T) {
	t.Parallel()

	prog := mustParse(t, "if x < 1 then output x; abort else while true do skip done endif")
	instrumented, err := Instrument(prog, 9)
	require.NoError(t, err)

	leaves := 0
	decrements := 0
	var walk func(p lang.Prog)
	walk = func(p lang.Prog) {
		switch n := p.(type) {
		case lang.Skip, lang.Output, lang.Abort:
			leaves++
		case lang.Asgn:
			if n.Name == lang.StepCounter {
				if _, isDiff := n.Expr.(lang.Diff); isDiff {
					decrements++
					return
				}
			}
			leaves++
		case lang.Seq:
			walk(n.First)
			walk(n.Second)
		case lang.If:
			walk(n.Then)
			walk(n.Else)
		case lang.While:
			walk(n.Body)
		}
	}
	walk(instrumented)

	assert.Equal(t, 3, leaves, "output, abort and skip survive instrumentation")
	assert.Equal(t, 3, decrements, "one decrement per leaf")
}

// Instrumentation must not change behavior on user variables; the counter
// must end at exactly stepBound minus the steps the original program takes.
func TestInstrumentObservationalEquivalence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"straight line", "x := 3; y := x * 2; output y"},
		{"branching", "x := 4; if x < 2 then y := 1 else y := 2 endif"},
		{"loop", "x := 5; while 0 < x do x := x - 1; y := y + x done"},
	}

	const stepBound = 1000

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prog := mustParse(t, tt.src)

			plain := interp.NewState()
			outcome, err := interp.Run(prog, plain, stepBound)
			require.NoError(t, err)
			require.Equal(t, interp.OutcomeFinished, outcome)

			instrumented, err := Instrument(prog, stepBound)
			require.NoError(t, err)

			traced := interp.NewState()
			outcome, err = interp.Run(instrumented, traced, 10*stepBound)
			require.NoError(t, err)
			require.Equal(t, interp.OutcomeFinished, outcome)

			for name, val := range plain.Vars() {
				assert.Equal(t, val, traced.Get(name), "user variable %s", name)
			}
			assert.Equal(t, plain.Outputs(), traced.Outputs())
			assert.Equal(t,
				int64(stepBound-plain.Steps()),
				traced.Get(lang.StepCounter),
				"counter decreases by exactly one per original step")
		})
	}
}

func TestInstrumentRejectsUnknownNode(t *testing.T) {
	t.Parallel()
	// A nil node is the one malformed tree callers can actually build,
	// since the Prog interface is sealed inside the lang package.
	_, err := Instrument(nil, 10)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

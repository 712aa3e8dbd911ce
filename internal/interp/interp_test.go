package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinylang/tscheck/internal/lang"
)

func mustParse(t *testing.T, src string) lang.Prog {
	t.Helper()
	prog, err := lang.Parse(src)
	require.NoError(t, err)
	return prog
}

func TestRun(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		src       string
		initial   map[string]int64
		maxSteps  int
		outcome   Outcome
		wantSteps int
		wantVars  map[string]int64
		wantOut   []int64
	}{
		{
			name:      "skip costs one step",
			src:       "skip",
			maxSteps:  10,
			outcome:   OutcomeFinished,
			wantSteps: 1,
		},
		{
			name:      "countdown loop",
			src:       "x := 3; while 0 < x do x := x - 1 done",
			maxSteps:  100,
			outcome:   OutcomeFinished,
			wantSteps: 4,
			wantVars:  map[string]int64{"x": 0},
		},
		{
			name:      "structural nodes are free",
			src:       "if true then skip else skip endif",
			maxSteps:  10,
			outcome:   OutcomeFinished,
			wantSteps: 1,
		},
		{
			name:      "output emits and costs a step",
			src:       "x := 2; output x * 21",
			maxSteps:  10,
			outcome:   OutcomeFinished,
			wantSteps: 2,
			wantOut:   []int64{42},
		},
		{
			name:      "abort halts the run",
			src:       "abort; x := 1",
			maxSteps:  10,
			outcome:   OutcomeAborted,
			wantSteps: 1,
			wantVars:  map[string]int64{"x": 0},
		},
		{
			name:     "budget exhaustion",
			src:      "while true do skip done",
			maxSteps: 5,
			outcome:  OutcomeOutOfSteps,
		},
		{
			name:      "zero budget overruns immediately",
			src:       "skip",
			maxSteps:  0,
			outcome:   OutcomeOutOfSteps,
			wantSteps: 0,
		},
		{
			name:      "initial state drives branches",
			src:       "if x == 7 then y := 1 else y := 2 endif",
			initial:   map[string]int64{"x": 7},
			maxSteps:  10,
			outcome:   OutcomeFinished,
			wantSteps: 1,
			wantVars:  map[string]int64{"y": 1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st := NewState()
			for name, val := range tt.initial {
				st.Set(name, val)
			}

			outcome, err := Run(mustParse(t, tt.src), st, tt.maxSteps)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, outcome)

			if tt.outcome == OutcomeFinished || tt.outcome == OutcomeAborted {
				assert.Equal(t, tt.wantSteps, st.Steps())
			}
			for name, val := range tt.wantVars {
				assert.Equal(t, val, st.Get(name), "variable %s", name)
			}
			assert.Equal(t, tt.wantOut, st.Outputs())
		})
	}
}

func TestRunSilentInfiniteLoop(t *testing.T) {
	t.Parallel()
	// The inner loop never runs, so the outer loop makes no progress and
	// would spin forever without consuming budget.
	prog := mustParse(t, "while true do while false do skip done done")
	_, err := Run(prog, NewState(), 100)
	assert.Error(t, err)
}

func TestUnboundVariablesReadAsZero(t *testing.T) {
	t.Parallel()
	st := NewState()
	outcome, err := Run(mustParse(t, "y := x + 1"), st, 10)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinished, outcome)
	assert.Equal(t, int64(1), st.Get("y"))
}

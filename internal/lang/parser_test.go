package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatements(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want Prog
	}{
		{
			name: "skip",
			src:  "skip",
			want: Skip{},
		},
		{
			name: "abort",
			src:  "abort",
			want: Abort{},
		},
		{
			name: "assignment",
			src:  "x := 3",
			want: Asgn{Name: "x", Expr: Const{Val: 3}},
		},
		{
			name: "output",
			src:  "output x + 1",
			want: Output{Expr: Sum{L: Var{Name: "x"}, R: Const{Val: 1}}},
		},
		{
			name: "sequence is right nested",
			src:  "x := 1; y := 2; skip",
			want: Seq{
				First: Asgn{Name: "x", Expr: Const{Val: 1}},
				Second: Seq{
					First:  Asgn{Name: "y", Expr: Const{Val: 2}},
					Second: Skip{},
				},
			},
		},
		{
			name: "if",
			src:  "if x < 1 then skip else abort endif",
			want: If{
				Cond: Lt{L: Var{Name: "x"}, R: Const{Val: 1}},
				Then: Skip{},
				Else: Abort{},
			},
		},
		{
			name: "while",
			src:  "while 0 < x do x := x - 1 done",
			want: While{
				Cond: Lt{L: Const{Val: 0}, R: Var{Name: "x"}},
				Body: Asgn{Name: "x", Expr: Diff{L: Var{Name: "x"}, R: Const{Val: 1}}},
			},
		},
		{
			name: "greater-than desugars to flipped less-than",
			src:  "while x > 0 do skip done",
			want: While{
				Cond: Lt{L: Const{Val: 0}, R: Var{Name: "x"}},
				Body: Skip{},
			},
		},
		{
			name: "less-or-equal desugars via negation",
			src:  "if x <= y then skip else skip endif",
			want: If{
				Cond: Not{F: Lt{L: Var{Name: "y"}, R: Var{Name: "x"}}},
				Then: Skip{},
				Else: Skip{},
			},
		},
		{
			name: "comments are ignored",
			src:  "x := 1 // set up\n; skip",
			want: Seq{First: Asgn{Name: "x", Expr: Const{Val: 1}}, Second: Skip{}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	t.Parallel()
	prog, err := Parse("x := 1 + 2 * 3")
	require.NoError(t, err)
	want := Asgn{Name: "x", Expr: Sum{
		L: Const{Val: 1},
		R: Prod{L: Const{Val: 2}, R: Const{Val: 3}},
	}}
	assert.Equal(t, Prog(want), prog)
}

func TestParseConditionPrecedence(t *testing.T) {
	t.Parallel()
	f, err := ParseFormula("!x < 1 && true || y == 2")
	require.NoError(t, err)
	want := Or{
		L: And{
			L: Not{F: Lt{L: Var{Name: "x"}, R: Const{Val: 1}}},
			R: BoolConst{Val: true},
		},
		R: Eq{L: Var{Name: "y"}, R: Const{Val: 2}},
	}
	assert.Equal(t, BoolExpr(want), f)
}

func TestParseParenthesizedComparison(t *testing.T) {
	t.Parallel()
	f, err := ParseFormula("(x + 1) < y")
	require.NoError(t, err)
	want := Lt{L: Sum{L: Var{Name: "x"}, R: Const{Val: 1}}, R: Var{Name: "y"}}
	assert.Equal(t, BoolExpr(want), f)

	f, err = ParseFormula("((x < y))")
	require.NoError(t, err)
	assert.Equal(t, BoolExpr(Lt{L: Var{Name: "x"}, R: Var{Name: "y"}}), f)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"reserved identifier", "#steps := 1"},
		{"missing assign", "x 3"},
		{"unterminated if", "if x < 1 then skip else skip"},
		{"unterminated while", "while true do skip"},
		{"trailing garbage", "skip skip"},
		{"empty", ""},
		{"bad character", "x := 3 @"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()
	srcs := []string{
		"x := 3; while 0 < x do x := x - 1 done",
		"if x == 0 then output x else abort endif",
		"while true do skip done",
	}
	for _, src := range srcs {
		prog, err := Parse(src)
		require.NoError(t, err)

		again, err := Parse(prog.String())
		require.NoError(t, err, "pretty-printed form must reparse: %s", prog)
		assert.Equal(t, prog, again)
	}
}

func TestIsSystemVar(t *testing.T) {
	t.Parallel()
	assert.True(t, IsSystemVar(StepCounter))
	assert.False(t, IsSystemVar("steps"))
	assert.False(t, IsSystemVar("x"))
}

func TestSeqOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Prog(Skip{}), SeqOf())
	assert.Equal(t, Prog(Abort{}), SeqOf(Abort{}))
	assert.Equal(t,
		Prog(Seq{First: Skip{}, Second: Seq{First: Abort{}, Second: Skip{}}}),
		SeqOf(Skip{}, Abort{}, Skip{}),
	)
}

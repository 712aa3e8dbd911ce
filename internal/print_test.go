package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/tinylang/tscheck/internal/types"
)

func init() {
	color.NoColor = true
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	t.Run("verdict with witness", func(t *testing.T) {
		t.Parallel()
		got := FormatReport(types.Report{
			Filename: "loop.tinyscript",
			Verdict:  types.VerdictViolates,
			Witness:  map[string]int64{"n": 7, "m": -1},
			Elapsed:  12 * time.Millisecond,
		})
		assert.Equal(t,
			"loop.tinyscript: Violates (12ms)\n"+
				"  witness: m = -1, n = 7\n",
			got)
	})

	t.Run("error short-circuits the verdict", func(t *testing.T) {
		t.Parallel()
		got := FormatReport(types.Report{
			Filename: "broken.tinyscript",
			Err:      "parse: unexpected token",
		})
		assert.Equal(t, "broken.tinyscript: error: parse: unexpected token\n", got)
	})

	t.Run("no witness line when empty", func(t *testing.T) {
		t.Parallel()
		got := FormatReport(types.Report{
			Filename: "ok.tinyscript",
			Verdict:  types.VerdictSatisfies,
			Elapsed:  3 * time.Millisecond,
		})
		assert.NotContains(t, got, "witness")
	})
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	got := FormatSummary(types.Summary{Satisfies: 2, Violates: 1, Unknown: 0})
	assert.Equal(t, "satisfies=2, violates=1, unknown=0\n", got)

	got = FormatSummary(types.Summary{Satisfies: 1, Errors: 2})
	assert.Equal(t, "satisfies=1, violates=0, unknown=0, errors=2\n", got)
}

func TestPrintReports(t *testing.T) {
	t.Parallel()

	reports := []types.Report{
		{Filename: "a.tinyscript", Verdict: types.VerdictSatisfies, Elapsed: time.Millisecond},
		{Filename: "b.tinyscript", Verdict: types.VerdictViolates, Elapsed: time.Millisecond},
	}

	var b strings.Builder
	PrintReports(&b, reports)
	out := b.String()

	assert.Contains(t, out, "a.tinyscript: Satisfies")
	assert.Contains(t, out, "b.tinyscript: Violates")
	assert.True(t, strings.HasSuffix(out, "satisfies=1, violates=1, unknown=0\n"))
}

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinylang/tscheck/internal/interp"
)

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.tinyscript")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestApplyBindings(t *testing.T) {
	t.Parallel()

	t.Run("valid bindings", func(t *testing.T) {
		t.Parallel()
		st := interp.NewState()
		require.NoError(t, applyBindings(st, "x=3, y = -1"))
		assert.Equal(t, int64(3), st.Get("x"))
		assert.Equal(t, int64(-1), st.Get("y"))
	})

	t.Run("malformed binding", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, applyBindings(interp.NewState(), "x"))
		assert.Error(t, applyBindings(interp.NewState(), "x=three"))
	})

	t.Run("reserved variable", func(t *testing.T) {
		t.Parallel()
		err := applyBindings(interp.NewState(), "#steps=1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserved")
	})
}

func TestDumpStage(t *testing.T) {
	t.Parallel()
	path := writeProgram(t, "x := 1; while 0 < x do x := x - 1 done")

	t.Run("ast round-trips the source", func(t *testing.T) {
		t.Parallel()
		out, err := dumpStage(path, "ast", 100, 10, "")
		require.NoError(t, err)
		assert.Contains(t, out, "while (0 < x) do")
	})

	t.Run("instrumented form carries the counter", func(t *testing.T) {
		t.Parallel()
		out, err := dumpStage(path, "instrumented", 100, 10, "")
		require.NoError(t, err)
		assert.Contains(t, out, "#steps := 100")
		assert.Contains(t, out, "#steps := (#steps - 1)")
	})

	t.Run("vc is a solver script", func(t *testing.T) {
		t.Parallel()
		out, err := dumpStage(path, "vc", 100, 10, "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "(declare-const"))
		assert.Contains(t, out, "(check-sat)")
	})

	t.Run("custom postcondition", func(t *testing.T) {
		t.Parallel()
		out, err := dumpStage(path, "wp", 100, 10, "x == 0 && y < 5")
		require.NoError(t, err)
		assert.Contains(t, out, "y")

		_, err = dumpStage(path, "wp", 100, 10, "x <")
		assert.Error(t, err)
	})

	t.Run("unknown stage", func(t *testing.T) {
		t.Parallel()
		_, err := dumpStage(path, "tokens", 100, 10, "")
		assert.Error(t, err)
	})

	t.Run("parse error surfaces", func(t *testing.T) {
		t.Parallel()
		bad := writeProgram(t, "while do done")
		_, err := dumpStage(bad, "ast", 100, 10, "")
		assert.Error(t, err)
	})
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".tscheck.yaml")

	got, err := initConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "step-bound: 100")
	assert.Contains(t, string(content), "max-depth: 10")
}

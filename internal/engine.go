package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinylang/tscheck/internal/lang"
	"github.com/tinylang/tscheck/internal/types"
	"github.com/tinylang/tscheck/internal/verify"
)

// SourceExt is the file extension the engine recognizes.
const SourceExt = ".tinyscript"

// Engine runs the step-budget check over source files.
type Engine struct {
	opts        verify.Options
	ignorePaths []string
}

// NewEngine creates an engine with the given verification options.
func NewEngine(opts verify.Options) *Engine {
	return &Engine{opts: opts}
}

// IgnorePath excludes files whose path contains the given fragment.
func (e *Engine) IgnorePath(path string) {
	e.ignorePaths = append(e.ignorePaths, path)
}

func (e *Engine) ignored(filename string) bool {
	for _, p := range e.ignorePaths {
		if p != "" && strings.Contains(filename, p) {
			return true
		}
	}
	return false
}

// Check verifies a single file and returns its report. Parse and I/O
// failures are recorded in the report rather than returned: a broken
// file must not abort a directory run.
func (e *Engine) Check(ctx context.Context, filename string) types.Report {
	src, err := os.ReadFile(filename)
	if err != nil {
		return types.Report{Filename: filename, Err: err.Error()}
	}
	return e.CheckSource(ctx, filename, src)
}

// CheckSource verifies source text directly. The filename is used for
// reporting only.
func (e *Engine) CheckSource(ctx context.Context, filename string, src []byte) types.Report {
	report := types.Report{Filename: filename}

	prog, err := lang.Parse(string(src))
	if err != nil {
		report.Err = err.Error()
		return report
	}

	start := time.Now()
	outcome, err := verify.Check(ctx, prog, e.opts)
	report.Elapsed = time.Since(start)
	if err != nil {
		report.Err = err.Error()
		return report
	}

	report.Verdict = outcome.Verdict
	report.Witness = outcome.Witness
	return report
}

// CollectFiles walks a path and returns the source files under it, in
// walk order. A path naming a single source file is returned as-is.
func (e *Engine) CollectFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	if !info.IsDir() {
		if !strings.HasSuffix(root, SourceExt) {
			return nil, fmt.Errorf("engine: %s is not a %s file", root, SourceExt)
		}
		if e.ignored(root) {
			return nil, nil
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, SourceExt) {
			return nil
		}
		if e.ignored(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("engine: walking %s: %w", root, err)
	}
	return files, nil
}

package check

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tinylang/tscheck/internal"
	"github.com/tinylang/tscheck/internal/types"
	"github.com/tinylang/tscheck/internal/verify"
)

// Engine is the checking surface the command layer drives.
type Engine interface {
	Check(ctx context.Context, filename string) types.Report
	CheckSource(ctx context.Context, filename string, src []byte) types.Report
	CollectFiles(root string) ([]string, error)
	IgnorePath(path string)
}

// Config represents the checker configuration, usually loaded from a
// .tscheck.yaml file.
type Config struct {
	Name           string   `yaml:"name"`
	StepBound      int64    `yaml:"step-bound"`
	MaxDepth       int      `yaml:"max-depth"`
	Timeout        string   `yaml:"timeout"`
	SolverPath     string   `yaml:"solver-path,omitempty"`
	Strict         bool     `yaml:"strict"`
	ConfirmWitness bool     `yaml:"confirm-witness"`
	IgnorePaths    []string `yaml:"ignore-paths,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	defaults := verify.DefaultOptions()
	return Config{
		Name:      "tscheck",
		StepBound: defaults.StepBound,
		MaxDepth:  defaults.MaxDepth,
		Timeout:   defaults.Timeout.String(),
		Strict:    defaults.Strict,
	}
}

// Options converts the configuration into verification options.
func (c Config) Options() (verify.Options, error) {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return verify.Options{}, fmt.Errorf("config: invalid timeout %q: %w", c.Timeout, err)
	}
	return verify.Options{
		StepBound:      c.StepBound,
		MaxDepth:       c.MaxDepth,
		Timeout:        timeout,
		SolverPath:     c.SolverPath,
		Strict:         c.Strict,
		ConfirmWitness: c.ConfirmWitness,
	}, nil
}

// LoadConfig reads a configuration file, overlaying it on the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return config, nil
}

// New builds an engine from a configuration file path ("" for defaults).
func New(configPath string) (*internal.Engine, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	opts, err := config.Options()
	if err != nil {
		return nil, err
	}

	engine := internal.NewEngine(opts)
	for _, p := range config.IgnorePaths {
		engine.IgnorePath(p)
	}
	return engine, nil
}

// ProcessFiles checks every path and returns the reports in path order.
func ProcessFiles(ctx context.Context, logger *zap.Logger, engine Engine, paths []string) ([]types.Report, error) {
	var allReports []types.Report
	for _, path := range paths {
		reports, err := ProcessPath(ctx, logger, engine, path)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allReports = append(allReports, reports...)
	}
	return allReports, nil
}

// ProcessPath checks a single file or every source file under a
// directory. Directory runs fan out over NumCPU workers; each solver
// query is an independent subprocess, so files parallelize cleanly.
func ProcessPath(ctx context.Context, logger *zap.Logger, engine Engine, path string) ([]types.Report, error) {
	files, err := engine.CollectFiles(path)
	if err != nil {
		return nil, err
	}

	if len(files) <= 1 {
		reports := make([]types.Report, 0, len(files))
		for _, f := range files {
			reports = append(reports, engine.Check(ctx, f))
		}
		return reports, nil
	}

	reports := make([]types.Report, len(files))
	sem := make(chan struct{}, runtime.NumCPU())
	done := make(chan int, len(files))

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	for i, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		go func(i int, f string) {
			defer func() { <-sem }()
			reports[i] = engine.Check(ctx, f)
			_ = bar.Add(1)
			done <- i
		}(i, f)
	}

	for range files {
		<-done
	}
	fmt.Println()

	return reports, nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinylang/tscheck/check"
	"github.com/tinylang/tscheck/internal"
	"github.com/tinylang/tscheck/internal/types"
)

var (
	stepBound       int64
	maxDepth        int
	solverPath      string
	confirmWitness  bool
	ignorePaths     string
	checkJsonOutput bool
	outPath         string
	watchMode       bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check that programs stay within their step budget",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := buildEngine(cmd)
		if err != nil {
			logger.Fatal("Failed to initialize check engine", zap.Error(err))
		}

		if ignorePaths != "" {
			for _, path := range strings.Split(ignorePaths, ",") {
				engine.IgnorePath(strings.TrimSpace(path))
			}
		}

		runCheckProcess(ctx, logger, engine, args, checkJsonOutput, outPath)

		if watchMode {
			watchPaths(logger, engine, args)
		}
	},
}

func init() {
	checkCmd.Flags().Int64Var(&stepBound, "steps", 0, "Step budget programs must stay within")
	checkCmd.Flags().IntVar(&maxDepth, "depth", 0, "Maximum loop unrolling depth")
	checkCmd.Flags().StringVar(&solverPath, "solver", "", "Path to the SMT solver binary")
	checkCmd.Flags().BoolVar(&confirmWitness, "confirm-witness", false, "Replay violation witnesses through the interpreter")
	checkCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output reports in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	checkCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Keep re-checking files as they change")
}

// buildEngine loads the configuration and overlays any flags set on the
// command line.
func buildEngine(cmd *cobra.Command) (*internal.Engine, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(".tscheck.yaml"); err == nil {
			path = ".tscheck.yaml"
		}
	}

	config, err := check.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("steps") {
		config.StepBound = stepBound
	}
	if cmd.Flags().Changed("depth") {
		config.MaxDepth = maxDepth
	}
	if cmd.Flags().Changed("solver") {
		config.SolverPath = solverPath
	}
	if cmd.Flags().Changed("confirm-witness") {
		config.ConfirmWitness = confirmWitness
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

func runCheckProcess(ctx context.Context, logger *zap.Logger, engine check.Engine, paths []string, isJson bool, jsonOutput string) {
	reports, err := check.ProcessFiles(ctx, logger, engine, paths)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	printReports(logger, reports, isJson, jsonOutput)

	summary := types.Summarize(reports)
	if !watchMode && (summary.Violates > 0 || summary.Errors > 0) {
		os.Exit(1)
	}
}

func printReports(logger *zap.Logger, reports []types.Report, isJson bool, jsonOutput string) {
	if !isJson {
		internal.PrintReports(os.Stdout, reports)
		return
	}

	d, err := json.Marshal(struct {
		Reports []types.Report `json:"reports"`
		Summary types.Summary  `json:"summary"`
	}{Reports: reports, Summary: types.Summarize(reports)})
	if err != nil {
		logger.Error("Error marshalling reports to JSON", zap.Error(err))
		return
	}

	if jsonOutput == "" {
		fmt.Println(string(d))
		return
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}

// watchPaths blocks, re-checking files under the given paths as they
// change. The overall run timeout does not apply here.
func watchPaths(logger *zap.Logger, engine *internal.Engine, paths []string) {
	watcher, err := internal.NewWatcher(engine, os.Stdout)
	if err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			logger.Fatal("Failed to watch path", zap.String("path", path), zap.Error(err))
		}
	}
	fmt.Println("watching for changes...")
	if err := watcher.Run(context.Background()); err != nil && err != context.Canceled {
		logger.Error("Watcher stopped", zap.Error(err))
	}
}

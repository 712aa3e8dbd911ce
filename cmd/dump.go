package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinylang/tscheck/internal/lang"
	"github.com/tinylang/tscheck/internal/logic"
	"github.com/tinylang/tscheck/internal/smt"
	"github.com/tinylang/tscheck/internal/verify"
)

var (
	dumpSteps  int64
	dumpDepth  int
	dumpKind   string
	dumpPost   string
	dumpOutput string
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print intermediate stages of the analysis",
	Long: `Prints the parsed program, its instrumented form, the weakest
precondition, or the solver query derived from a file.
Example) tscheck dump --what vc prog.tinyscript`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide exactly one file")
			os.Exit(1)
		}
		out, err := dumpStage(args[0], dumpKind, dumpSteps, dumpDepth, dumpPost)
		if err != nil {
			logger.Error("Dump failed", zap.String("file", args[0]), zap.Error(err))
			os.Exit(1)
		}
		if dumpOutput == "" {
			fmt.Print(out)
			return
		}
		if err := os.WriteFile(dumpOutput, []byte(out), 0o644); err != nil {
			logger.Error("Failed to write output file", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	dumpCmd.Flags().Int64Var(&dumpSteps, "steps", 100, "Step budget used for instrumentation")
	dumpCmd.Flags().IntVar(&dumpDepth, "depth", 10, "Maximum loop unrolling depth")
	dumpCmd.Flags().StringVar(&dumpKind, "what", "ast", "Stage to print: ast, instrumented, wp or vc")
	dumpCmd.Flags().StringVar(&dumpPost, "post", "", "Postcondition for the wp/vc stages (default: the counter stays non-negative)")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Output path (default: stdout)")
}

func dumpStage(filename, kind string, steps int64, depth int, postSrc string) (string, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	prog, err := lang.Parse(string(src))
	if err != nil {
		return "", err
	}

	if kind == "ast" {
		return prog.String() + "\n", nil
	}

	instrumented, err := verify.Instrument(prog, steps)
	if err != nil {
		return "", err
	}
	if kind == "instrumented" {
		return instrumented.String() + "\n", nil
	}

	post, err := postcondition(postSrc)
	if err != nil {
		return "", err
	}
	wp, err := verify.Box(instrumented, post, depth, true)
	if err != nil {
		return "", err
	}

	switch kind {
	case "wp":
		return logic.SMT(wp) + "\n", nil
	case "vc":
		return smt.Script(logic.Not(wp)), nil
	default:
		return "", fmt.Errorf("unknown stage %q, want ast, instrumented, wp or vc", kind)
	}
}

// postcondition parses the user-supplied condition, defaulting to the
// verifier's own: the step counter never goes negative.
func postcondition(src string) (logic.Formula, error) {
	if src == "" {
		return logic.EncodeFormula(lang.Lt{
			L: lang.Const{Val: -1},
			R: lang.Var{Name: lang.StepCounter},
		})
	}
	cond, err := lang.ParseFormula(src)
	if err != nil {
		return nil, err
	}
	return logic.EncodeFormula(cond)
}

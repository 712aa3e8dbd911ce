package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinylang/tscheck/internal/interp"
	"github.com/tinylang/tscheck/internal/lang"
)

var (
	runSteps int
	runVars  string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a program concretely under a step budget",
	Long: `Runs a single program in the interpreter and prints its outputs,
final outcome and step count.
Example) tscheck run prog.tinyscript --steps 100 --set "n=3,m=7"`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide exactly one file")
			os.Exit(1)
		}
		if err := runProgram(args[0], runSteps, runVars); err != nil {
			logger.Error("Run failed", zap.String("file", args[0]), zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().IntVar(&runSteps, "steps", 100, "Step budget for the run")
	runCmd.Flags().StringVar(&runVars, "set", "", "Comma-separated initial variable bindings, e.g. \"x=3,y=-1\"")
}

func runProgram(filename string, steps int, vars string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	prog, err := lang.Parse(string(src))
	if err != nil {
		return err
	}

	st := interp.NewState()
	if vars != "" {
		if err := applyBindings(st, vars); err != nil {
			return err
		}
	}

	outcome, err := interp.Run(prog, st, steps)
	if err != nil {
		return err
	}

	for _, out := range st.Outputs() {
		fmt.Println(out)
	}
	fmt.Printf("%s after %d steps\n", outcome, st.Steps())
	return nil
}

func applyBindings(st *interp.State, vars string) error {
	for _, binding := range strings.Split(vars, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(binding), "=")
		if !ok {
			return fmt.Errorf("malformed binding %q, want name=value", binding)
		}
		name = strings.TrimSpace(name)
		if lang.IsSystemVar(name) {
			return fmt.Errorf("variable %s is reserved", name)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("malformed binding %q: %w", binding, err)
		}
		st.Set(name, v)
	}
	return nil
}

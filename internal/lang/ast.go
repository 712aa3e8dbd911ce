package lang

import (
	"fmt"
	"strings"
)

// Prog represents a tinyscript program node.
// The language is closed: exactly seven variants implement this interface
// (Skip, Asgn, Output, Abort, Seq, If, While). Transformations over Prog
// switch exhaustively on these and treat anything else as a contract
// violation.
type Prog interface {
	isProg()
	String() string
}

// Skip is the no-op statement. It costs one step at runtime.
type Skip struct{}

func (Skip) isProg() {}
func (Skip) String() string {
	return "skip"
}

// Asgn assigns the value of Expr to the variable Name. One step.
type Asgn struct {
	Name string
	Expr Term
}

func (Asgn) isProg() {}
func (s Asgn) String() string {
	return s.Name + " := " + s.Expr.String()
}

// Output evaluates Expr and emits it as an observable effect. One step.
type Output struct {
	Expr Term
}

func (Output) isProg() {}
func (s Output) String() string {
	return "output " + s.Expr.String()
}

// Abort halts execution signalling failure. One step.
type Abort struct{}

func (Abort) isProg() {}
func (Abort) String() string {
	return "abort"
}

// Seq runs First and then Second. Structural, no step cost of its own.
type Seq struct {
	First  Prog
	Second Prog
}

func (Seq) isProg() {}
func (s Seq) String() string {
	return s.First.String() + "; " + s.Second.String()
}

// If branches on Cond. Structural, no step cost of its own.
type If struct {
	Cond BoolExpr
	Then Prog
	Else Prog
}

func (If) isProg() {}
func (s If) String() string {
	return "if " + s.Cond.String() + " then " + s.Then.String() +
		" else " + s.Else.String() + " endif"
}

// While repeats Body as long as Cond holds. Structural; all step cost
// comes from executions of the body.
type While struct {
	Cond BoolExpr
	Body Prog
}

func (While) isProg() {}
func (s While) String() string {
	return "while " + s.Cond.String() + " do " + s.Body.String() + " done"
}

// Term represents an integer-valued tinyscript expression.
type Term interface {
	isTerm()
	String() string
}

// Const is an integer constant.
type Const struct {
	Val int64
}

func (Const) isTerm() {}
func (t Const) String() string {
	return fmt.Sprintf("%d", t.Val)
}

// Var is a reference to a named integer variable.
type Var struct {
	Name string
}

func (Var) isTerm() {}
func (t Var) String() string {
	return t.Name
}

// Sum is L + R.
type Sum struct {
	L, R Term
}

func (Sum) isTerm() {}
func (t Sum) String() string {
	return "(" + t.L.String() + " + " + t.R.String() + ")"
}

// Diff is L - R.
type Diff struct {
	L, R Term
}

func (Diff) isTerm() {}
func (t Diff) String() string {
	return "(" + t.L.String() + " - " + t.R.String() + ")"
}

// Prod is L * R.
type Prod struct {
	L, R Term
}

func (Prod) isTerm() {}
func (t Prod) String() string {
	return "(" + t.L.String() + " * " + t.R.String() + ")"
}

// BoolExpr represents a tinyscript condition.
type BoolExpr interface {
	isBoolExpr()
	String() string
}

// BoolConst is the constant true or false.
type BoolConst struct {
	Val bool
}

func (BoolConst) isBoolExpr() {}
func (b BoolConst) String() string {
	return fmt.Sprintf("%t", b.Val)
}

// Lt is the comparison L < R.
type Lt struct {
	L, R Term
}

func (Lt) isBoolExpr() {}
func (b Lt) String() string {
	return "(" + b.L.String() + " < " + b.R.String() + ")"
}

// Eq is the comparison L == R.
type Eq struct {
	L, R Term
}

func (Eq) isBoolExpr() {}
func (b Eq) String() string {
	return "(" + b.L.String() + " == " + b.R.String() + ")"
}

// Not is the negation of F.
type Not struct {
	F BoolExpr
}

func (Not) isBoolExpr() {}
func (b Not) String() string {
	return "(!" + b.F.String() + ")"
}

// And is the conjunction of L and R.
type And struct {
	L, R BoolExpr
}

func (And) isBoolExpr() {}
func (b And) String() string {
	return "(" + b.L.String() + " && " + b.R.String() + ")"
}

// Or is the disjunction of L and R.
type Or struct {
	L, R BoolExpr
}

func (Or) isBoolExpr() {}
func (b Or) String() string {
	return "(" + b.L.String() + " || " + b.R.String() + ")"
}

// Implies is the implication L -> R.
type Implies struct {
	L, R BoolExpr
}

func (Implies) isBoolExpr() {}
func (b Implies) String() string {
	return "(" + b.L.String() + " -> " + b.R.String() + ")"
}

// SystemVarPrefix marks variable names reserved for instrumentation.
// The parser rejects identifiers carrying it, so instrumented programs can
// never collide with user variables.
const SystemVarPrefix = "#"

// StepCounter is the reserved variable holding the remaining step budget
// in instrumented programs.
const StepCounter = SystemVarPrefix + "steps"

// IsSystemVar reports whether name belongs to the reserved namespace.
func IsSystemVar(name string) bool {
	return strings.HasPrefix(name, SystemVarPrefix)
}

// Helper constructors. They keep program-building code (tests, the
// instrumentation pass) close to the concrete syntax.

// SeqOf folds stmts into a right-nested sequence.
// An empty call yields Skip, a single statement is returned as-is.
func SeqOf(stmts ...Prog) Prog {
	if len(stmts) == 0 {
		return Skip{}
	}
	result := stmts[len(stmts)-1]
	for i := len(stmts) - 2; i >= 0; i-- {
		result = Seq{First: stmts[i], Second: result}
	}
	return result
}

// Assign creates an assignment statement.
func Assign(name string, e Term) Prog {
	return Asgn{Name: name, Expr: e}
}

// Int creates an integer constant term.
func Int(v int64) Term {
	return Const{Val: v}
}

// V creates a variable reference term.
func V(name string) Term {
	return Var{Name: name}
}

// True and False create the boolean constants.
func True() BoolExpr  { return BoolConst{Val: true} }
func False() BoolExpr { return BoolConst{Val: false} }

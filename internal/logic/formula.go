// Package logic implements the term and formula algebra the verifier
// composes its verification conditions in, together with the encoder that
// maps tinyscript expressions into it.
//
// The algebra is quantifier-free integer arithmetic with boolean
// connectives. Formulas and terms are immutable trees; every operation
// builds a new tree. The verifier core never constructs solver input
// directly: it obtains formulas from EncodeTerm/EncodeFormula and combines
// them with the connective constructors here.
package logic

import (
	"fmt"
	"sort"
	"strings"
)

// Term is an integer-valued solver term.
type Term interface {
	isTerm()
	String() string
}

// IntVal is an integer constant term.
type IntVal struct {
	Val int64
}

func (IntVal) isTerm() {}
func (t IntVal) String() string {
	return fmt.Sprintf("%d", t.Val)
}

// IntVar is a free integer variable.
type IntVar struct {
	Name string
}

func (IntVar) isTerm() {}
func (t IntVar) String() string {
	return t.Name
}

// ArithOp identifies an arithmetic operator.
type ArithOp int

const (
	_ ArithOp = iota
	OpAdd
	OpSub
	OpMul
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	default:
		return "?"
	}
}

// Arith is a binary arithmetic term.
type Arith struct {
	Op   ArithOp
	L, R Term
}

func (Arith) isTerm() {}
func (t Arith) String() string {
	return "(" + t.L.String() + " " + t.Op.String() + " " + t.R.String() + ")"
}

// Formula is a boolean solver formula.
type Formula interface {
	isFormula()
	String() string
}

// BoolVal is the constant true or false formula.
type BoolVal struct {
	Val bool
}

func (BoolVal) isFormula() {}
func (f BoolVal) String() string {
	return fmt.Sprintf("%t", f.Val)
}

// CmpOp identifies a comparison operator.
type CmpOp int

const (
	_ CmpOp = iota
	OpLt
	OpEq
)

func (op CmpOp) String() string {
	switch op {
	case OpLt:
		return "<"
	case OpEq:
		return "="
	default:
		return "?"
	}
}

// Cmp compares two integer terms.
type Cmp struct {
	Op   CmpOp
	L, R Term
}

func (Cmp) isFormula() {}
func (f Cmp) String() string {
	return "(" + f.L.String() + " " + f.Op.String() + " " + f.R.String() + ")"
}

// ConnOp identifies a boolean connective.
type ConnOp int

const (
	_ ConnOp = iota
	OpAnd
	OpOr
	OpImplies
)

func (op ConnOp) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpImplies:
		return "=>"
	default:
		return "?"
	}
}

// Conn joins two formulas with a boolean connective.
type Conn struct {
	Op   ConnOp
	L, R Formula
}

func (Conn) isFormula() {}
func (f Conn) String() string {
	return "(" + f.L.String() + " " + f.Op.String() + " " + f.R.String() + ")"
}

// Neg is the negation of a formula.
type Neg struct {
	F Formula
}

func (Neg) isFormula() {}
func (f Neg) String() string {
	return "(not " + f.F.String() + ")"
}

// Constructors. Box-style callers read better with these than with struct
// literals.

func True() Formula  { return BoolVal{Val: true} }
func False() Formula { return BoolVal{Val: false} }

func And(l, r Formula) Formula     { return Conn{Op: OpAnd, L: l, R: r} }
func Or(l, r Formula) Formula      { return Conn{Op: OpOr, L: l, R: r} }
func Implies(l, r Formula) Formula { return Conn{Op: OpImplies, L: l, R: r} }
func Not(f Formula) Formula        { return Neg{F: f} }

func Lt(l, r Term) Formula { return Cmp{Op: OpLt, L: l, R: r} }
func Eq(l, r Term) Formula { return Cmp{Op: OpEq, L: l, R: r} }

func Add(l, r Term) Term { return Arith{Op: OpAdd, L: l, R: r} }
func Sub(l, r Term) Term { return Arith{Op: OpSub, L: l, R: r} }
func Mul(l, r Term) Term { return Arith{Op: OpMul, L: l, R: r} }

func Int(v int64) Term     { return IntVal{Val: v} }
func Var(name string) Term { return IntVar{Name: name} }

// Substitute replaces every occurrence of the variable name in f with the
// term t. The algebra has no binders, so substitution is purely syntactic.
func Substitute(f Formula, name string, t Term) Formula {
	switch n := f.(type) {
	case BoolVal:
		return n
	case Cmp:
		return Cmp{Op: n.Op, L: substTerm(n.L, name, t), R: substTerm(n.R, name, t)}
	case Conn:
		return Conn{Op: n.Op, L: Substitute(n.L, name, t), R: Substitute(n.R, name, t)}
	case Neg:
		return Neg{F: Substitute(n.F, name, t)}
	default:
		return f
	}
}

func substTerm(in Term, name string, t Term) Term {
	switch n := in.(type) {
	case IntVal:
		return n
	case IntVar:
		if n.Name == name {
			return t
		}
		return n
	case Arith:
		return Arith{Op: n.Op, L: substTerm(n.L, name, t), R: substTerm(n.R, name, t)}
	default:
		return in
	}
}

// Vars returns the free variables of f, sorted, each reported once.
func Vars(f Formula) []string {
	seen := make(map[string]bool)
	collectFormulaVars(f, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectFormulaVars(f Formula, seen map[string]bool) {
	switch n := f.(type) {
	case Cmp:
		collectTermVars(n.L, seen)
		collectTermVars(n.R, seen)
	case Conn:
		collectFormulaVars(n.L, seen)
		collectFormulaVars(n.R, seen)
	case Neg:
		collectFormulaVars(n.F, seen)
	}
}

func collectTermVars(t Term, seen map[string]bool) {
	switch n := t.(type) {
	case IntVar:
		seen[n.Name] = true
	case Arith:
		collectTermVars(n.L, seen)
		collectTermVars(n.R, seen)
	}
}

// SMT renders f as an SMT-LIB 2 expression. Symbols that are not simple
// SMT-LIB symbols (the reserved step counter starts with '#') are |-quoted.
func SMT(f Formula) string {
	var sb strings.Builder
	writeFormula(&sb, f)
	return sb.String()
}

func writeFormula(sb *strings.Builder, f Formula) {
	switch n := f.(type) {
	case BoolVal:
		sb.WriteString(n.String())
	case Cmp:
		sb.WriteString("(")
		sb.WriteString(n.Op.String())
		sb.WriteString(" ")
		writeTerm(sb, n.L)
		sb.WriteString(" ")
		writeTerm(sb, n.R)
		sb.WriteString(")")
	case Conn:
		sb.WriteString("(")
		sb.WriteString(n.Op.String())
		sb.WriteString(" ")
		writeFormula(sb, n.L)
		sb.WriteString(" ")
		writeFormula(sb, n.R)
		sb.WriteString(")")
	case Neg:
		sb.WriteString("(not ")
		writeFormula(sb, n.F)
		sb.WriteString(")")
	}
}

func writeTerm(sb *strings.Builder, t Term) {
	switch n := t.(type) {
	case IntVal:
		if n.Val < 0 {
			fmt.Fprintf(sb, "(- %d)", -n.Val)
			return
		}
		fmt.Fprintf(sb, "%d", n.Val)
	case IntVar:
		sb.WriteString(SMTSymbol(n.Name))
	case Arith:
		sb.WriteString("(")
		sb.WriteString(n.Op.String())
		sb.WriteString(" ")
		writeTerm(sb, n.L)
		sb.WriteString(" ")
		writeTerm(sb, n.R)
		sb.WriteString(")")
	}
}

// SMTSymbol renders a variable name as an SMT-LIB symbol, |-quoting it when
// it contains characters outside the simple-symbol alphabet.
func SMTSymbol(name string) string {
	if isSimpleSymbol(name) {
		return name
	}
	return "|" + name + "|"
}

func isSimpleSymbol(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		case strings.IndexByte("~!@$%^&*_-+=<>.?/", c) >= 0:
		default:
			return false
		}
	}
	return true
}

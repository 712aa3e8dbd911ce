package logic

import (
	"fmt"

	"github.com/tinylang/tscheck/internal/lang"
)

// EncodeTerm maps a tinyscript term to a solver term.
func EncodeTerm(t lang.Term) (Term, error) {
	switch n := t.(type) {
	case lang.Const:
		return IntVal{Val: n.Val}, nil
	case lang.Var:
		return IntVar{Name: n.Name}, nil
	case lang.Sum:
		return encodeArith(OpAdd, n.L, n.R)
	case lang.Diff:
		return encodeArith(OpSub, n.L, n.R)
	case lang.Prod:
		return encodeArith(OpMul, n.L, n.R)
	default:
		return nil, fmt.Errorf("logic: unrecognized term node %T", t)
	}
}

func encodeArith(op ArithOp, l, r lang.Term) (Term, error) {
	el, err := EncodeTerm(l)
	if err != nil {
		return nil, err
	}
	er, err := EncodeTerm(r)
	if err != nil {
		return nil, err
	}
	return Arith{Op: op, L: el, R: er}, nil
}

// EncodeFormula maps a tinyscript condition to a solver formula.
func EncodeFormula(b lang.BoolExpr) (Formula, error) {
	switch n := b.(type) {
	case lang.BoolConst:
		return BoolVal{Val: n.Val}, nil
	case lang.Lt:
		return encodeCmp(OpLt, n.L, n.R)
	case lang.Eq:
		return encodeCmp(OpEq, n.L, n.R)
	case lang.Not:
		f, err := EncodeFormula(n.F)
		if err != nil {
			return nil, err
		}
		return Neg{F: f}, nil
	case lang.And:
		return encodeConn(OpAnd, n.L, n.R)
	case lang.Or:
		return encodeConn(OpOr, n.L, n.R)
	case lang.Implies:
		return encodeConn(OpImplies, n.L, n.R)
	default:
		return nil, fmt.Errorf("logic: unrecognized condition node %T", b)
	}
}

func encodeCmp(op CmpOp, l, r lang.Term) (Formula, error) {
	el, err := EncodeTerm(l)
	if err != nil {
		return nil, err
	}
	er, err := EncodeTerm(r)
	if err != nil {
		return nil, err
	}
	return Cmp{Op: op, L: el, R: er}, nil
}

func encodeConn(op ConnOp, l, r lang.BoolExpr) (Formula, error) {
	el, err := EncodeFormula(l)
	if err != nil {
		return nil, err
	}
	er, err := EncodeFormula(r)
	if err != nil {
		return nil, err
	}
	return Conn{Op: op, L: el, R: er}, nil
}

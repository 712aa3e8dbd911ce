package logic

// Simplify rewrites f into an equisatisfiable, usually smaller formula.
// It folds constant subterms, short-circuits connectives against boolean
// constants and drops double negations. Simplify is idempotent and never
// changes the set of satisfying assignments.
func Simplify(f Formula) Formula {
	switch n := f.(type) {
	case BoolVal:
		return n

	case Cmp:
		l := simplifyTerm(n.L)
		r := simplifyTerm(n.R)
		lv, lok := l.(IntVal)
		rv, rok := r.(IntVal)
		if lok && rok {
			switch n.Op {
			case OpLt:
				return BoolVal{Val: lv.Val < rv.Val}
			case OpEq:
				return BoolVal{Val: lv.Val == rv.Val}
			}
		}
		return Cmp{Op: n.Op, L: l, R: r}

	case Conn:
		l := Simplify(n.L)
		r := Simplify(n.R)
		if lv, ok := l.(BoolVal); ok {
			switch n.Op {
			case OpAnd:
				if !lv.Val {
					return False()
				}
				return r
			case OpOr:
				if lv.Val {
					return True()
				}
				return r
			case OpImplies:
				if !lv.Val {
					return True()
				}
				return r
			}
		}
		if rv, ok := r.(BoolVal); ok {
			switch n.Op {
			case OpAnd:
				if !rv.Val {
					return False()
				}
				return l
			case OpOr:
				if rv.Val {
					return True()
				}
				return l
			case OpImplies:
				if rv.Val {
					return True()
				}
				return Simplify(Neg{F: l})
			}
		}
		return Conn{Op: n.Op, L: l, R: r}

	case Neg:
		inner := Simplify(n.F)
		switch iv := inner.(type) {
		case BoolVal:
			return BoolVal{Val: !iv.Val}
		case Neg:
			return iv.F
		}
		return Neg{F: inner}

	default:
		return f
	}
}

func simplifyTerm(t Term) Term {
	switch n := t.(type) {
	case IntVal, IntVar:
		return t
	case Arith:
		l := simplifyTerm(n.L)
		r := simplifyTerm(n.R)
		lv, lok := l.(IntVal)
		rv, rok := r.(IntVal)
		if lok && rok {
			switch n.Op {
			case OpAdd:
				return IntVal{Val: lv.Val + rv.Val}
			case OpSub:
				return IntVal{Val: lv.Val - rv.Val}
			case OpMul:
				return IntVal{Val: lv.Val * rv.Val}
			}
		}
		// x + 0, 0 + x, x - 0, x * 1, 1 * x keep their variable side.
		if rok {
			switch {
			case rv.Val == 0 && (n.Op == OpAdd || n.Op == OpSub):
				return l
			case rv.Val == 0 && n.Op == OpMul:
				return IntVal{Val: 0}
			case rv.Val == 1 && n.Op == OpMul:
				return l
			}
		}
		if lok {
			switch {
			case lv.Val == 0 && n.Op == OpAdd:
				return r
			case lv.Val == 0 && n.Op == OpMul:
				return IntVal{Val: 0}
			case lv.Val == 1 && n.Op == OpMul:
				return r
			}
		}
		return Arith{Op: n.Op, L: l, R: r}
	default:
		return t
	}
}

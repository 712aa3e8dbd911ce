package lang

import (
	"fmt"
	"strconv"
)

// Parser builds a Prog from a token stream.
//
// Grammar:
//
//	prog   := stmt (';' stmt)*
//	stmt   := 'skip' | 'abort' | 'output' term | ident ':=' term
//	        | 'if' bexpr 'then' prog 'else' prog 'endif'
//	        | 'while' bexpr 'do' prog 'done'
//	bexpr  := bor ('->' bexpr)?
//	bor    := band ('||' band)*
//	band   := bunary ('&&' bunary)*
//	bunary := '!' bunary | 'true' | 'false' | '(' bexpr ')' | comparison
//	comp   := term ('<'|'<='|'=='|'>'|'>=') term
//	term   := factor (('+'|'-') factor)*
//	factor := atom ('*' atom)*
//	atom   := int | ident | '(' term ')'
//
// The >, >= and <= comparisons are desugared at parse time so the model
// keeps only the Lt/Eq comparison kernel.
type Parser struct {
	tokens   []Token
	position int
}

// Parse parses a complete tinyscript source text into a program.
func Parse(src string) (Prog, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	prog, err := p.parseProg()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Kind != TokenEOF {
		return nil, p.errorf(tok, "unexpected %q after program", tok.Text)
	}
	return prog, nil
}

// ParseFormula parses a standalone condition, e.g. a postcondition supplied
// on the command line.
func ParseFormula(src string) (BoolExpr, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	f, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Kind != TokenEOF {
		return nil, p.errorf(tok, "unexpected %q after condition", tok.Text)
	}
	return f, nil
}

func (p *Parser) current() Token {
	return p.tokens[p.position]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.position]
	if tok.Kind != TokenEOF {
		p.position++
	}
	return tok
}

func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s, found %q", what, tok.Text)
	}
	return p.next(), nil
}

func (p *Parser) expectKeyword(kw string) error {
	tok := p.current()
	if tok.Kind != TokenKeyword || tok.Text != kw {
		return p.errorf(tok, "expected %q, found %q", kw, tok.Text)
	}
	p.next()
	return nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return fmt.Errorf("%d:%d: %s", tok.Line, tok.Col, fmt.Sprintf(format, args...))
}

func (p *Parser) parseProg() (Prog, error) {
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	stmts := []Prog{stmt}
	for p.current().Kind == TokenSemi {
		p.next()
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return SeqOf(stmts...), nil
}

func (p *Parser) parseStmt() (Prog, error) {
	tok := p.current()
	switch {
	case tok.Kind == TokenKeyword && tok.Text == "skip":
		p.next()
		return Skip{}, nil

	case tok.Kind == TokenKeyword && tok.Text == "abort":
		p.next()
		return Abort{}, nil

	case tok.Kind == TokenKeyword && tok.Text == "output":
		p.next()
		e, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Output{Expr: e}, nil

	case tok.Kind == TokenKeyword && tok.Text == "if":
		return p.parseIf()

	case tok.Kind == TokenKeyword && tok.Text == "while":
		return p.parseWhile()

	case tok.Kind == TokenIdent:
		p.next()
		if _, err := p.expect(TokenAssign, "':='"); err != nil {
			return nil, err
		}
		e, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Asgn{Name: tok.Text, Expr: e}, nil
	}
	return nil, p.errorf(tok, "expected statement, found %q", tok.Text)
}

func (p *Parser) parseIf() (Prog, error) {
	p.next() // if
	cond, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	then, err := p.parseProg()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	els, err := p.parseProg()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("endif"); err != nil {
		return nil, err
	}
	return If{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseWhile() (Prog, error) {
	p.next() // while
	cond, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body, err := p.parseProg()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("done"); err != nil {
		return nil, err
	}
	return While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseBoolExpr() (BoolExpr, error) {
	left, err := p.parseBoolOr()
	if err != nil {
		return nil, err
	}
	if p.current().Kind == TokenArrow {
		p.next()
		right, err := p.parseBoolExpr() // right-associative
		if err != nil {
			return nil, err
		}
		return Implies{L: left, R: right}, nil
	}
	return left, nil
}

func (p *Parser) parseBoolOr() (BoolExpr, error) {
	left, err := p.parseBoolAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == TokenOr {
		p.next()
		right, err := p.parseBoolAnd()
		if err != nil {
			return nil, err
		}
		left = Or{L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseBoolAnd() (BoolExpr, error) {
	left, err := p.parseBoolUnary()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == TokenAnd {
		p.next()
		right, err := p.parseBoolUnary()
		if err != nil {
			return nil, err
		}
		left = And{L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseBoolUnary() (BoolExpr, error) {
	tok := p.current()
	switch {
	case tok.Kind == TokenNot:
		p.next()
		f, err := p.parseBoolUnary()
		if err != nil {
			return nil, err
		}
		return Not{F: f}, nil

	case tok.Kind == TokenKeyword && tok.Text == "true":
		p.next()
		return BoolConst{Val: true}, nil

	case tok.Kind == TokenKeyword && tok.Text == "false":
		p.next()
		return BoolConst{Val: false}, nil

	case tok.Kind == TokenLParen:
		// Parenthesis may open either a nested condition or the left term
		// of a comparison. Try the condition first and backtrack.
		save := p.position
		p.next()
		f, err := p.parseBoolExpr()
		if err == nil {
			if _, cerr := p.expect(TokenRParen, "')'"); cerr == nil {
				return f, nil
			}
		}
		p.position = save
		return p.parseComparison()
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (BoolExpr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	tok := p.current()
	switch tok.Kind {
	case TokenLt:
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Lt{L: left, R: right}, nil
	case TokenLe:
		// a <= b  ~>  !(b < a)
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Not{F: Lt{L: right, R: left}}, nil
	case TokenGt:
		// a > b  ~>  b < a
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Lt{L: right, R: left}, nil
	case TokenGe:
		// a >= b  ~>  !(a < b)
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Not{F: Lt{L: left, R: right}}, nil
	case TokenEq:
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Eq{L: left, R: right}, nil
	}
	return nil, p.errorf(tok, "expected comparison operator, found %q", tok.Text)
}

func (p *Parser) parseTerm() (Term, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		switch p.current().Kind {
		case TokenPlus:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = Sum{L: left, R: right}
		case TokenMinus:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = Diff{L: left, R: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseFactor() (Term, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == TokenStar {
		p.next()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = Prod{L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAtom() (Term, error) {
	tok := p.current()
	switch tok.Kind {
	case TokenInt:
		p.next()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid integer literal %q", tok.Text)
		}
		return Const{Val: v}, nil

	case TokenMinus:
		p.next()
		inner, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		if c, ok := inner.(Const); ok {
			return Const{Val: -c.Val}, nil
		}
		return Diff{L: Const{Val: 0}, R: inner}, nil

	case TokenIdent:
		p.next()
		return Var{Name: tok.Text}, nil

	case TokenLParen:
		p.next()
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, p.errorf(tok, "expected term, found %q", tok.Text)
}

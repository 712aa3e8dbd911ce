package lang

import (
	"fmt"
	"unicode"
)

// TokenKind classifies lexical tokens of tinyscript source.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenInt
	TokenKeyword // skip, abort, output, if, then, else, endif, while, do, done, true, false
	TokenAssign  // :=
	TokenSemi    // ;
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // *
	TokenLt      // <
	TokenLe      // <=
	TokenGt      // >
	TokenGe      // >=
	TokenEq      // ==
	TokenNot     // !
	TokenAnd     // &&
	TokenOr      // ||
	TokenArrow   // ->
	TokenLParen  // (
	TokenRParen  // )
)

// Token is a single lexical token with its source position.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

var keywords = map[string]bool{
	"skip":   true,
	"abort":  true,
	"output": true,
	"if":     true,
	"then":   true,
	"else":   true,
	"endif":  true,
	"while":  true,
	"do":     true,
	"done":   true,
	"true":   true,
	"false":  true,
}

// Lexer scans tinyscript source and produces tokens.
type Lexer struct {
	input    string
	position int
	line     int
	col      int
}

// NewLexer returns a new Lexer over the given source text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize scans the whole input. It stops at the first lexical error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for l.position < len(l.input) {
		c := l.input[l.position]
		switch {
		case c == '/' && l.peek() == '/':
			l.skipLineComment()

		case isSpace(c):
			l.advance()

		case unicode.IsDigit(rune(c)):
			tokens = append(tokens, l.lexInt())

		case isIdentStart(c):
			tokens = append(tokens, l.lexIdent())

		default:
			tok, err := l.lexSymbol()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
	tokens = append(tokens, Token{Kind: TokenEOF, Line: l.line, Col: l.col})
	return tokens, nil
}

func (l *Lexer) peek() byte {
	if l.position+1 < len(l.input) {
		return l.input[l.position+1]
	}
	return 0
}

func (l *Lexer) advance() {
	if l.input[l.position] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.position++
}

func (l *Lexer) skipLineComment() {
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.advance()
	}
}

func (l *Lexer) lexInt() Token {
	start, line, col := l.position, l.line, l.col
	for l.position < len(l.input) && unicode.IsDigit(rune(l.input[l.position])) {
		l.advance()
	}
	return Token{Kind: TokenInt, Text: l.input[start:l.position], Line: line, Col: col}
}

func (l *Lexer) lexIdent() Token {
	start, line, col := l.position, l.line, l.col
	for l.position < len(l.input) && isIdentPart(l.input[l.position]) {
		l.advance()
	}
	text := l.input[start:l.position]
	kind := TokenIdent
	if keywords[text] {
		kind = TokenKeyword
	}
	return Token{Kind: kind, Text: text, Line: line, Col: col}
}

func (l *Lexer) lexSymbol() (Token, error) {
	line, col := l.line, l.col
	c := l.input[l.position]

	two := func(kind TokenKind, text string) Token {
		l.advance()
		l.advance()
		return Token{Kind: kind, Text: text, Line: line, Col: col}
	}
	one := func(kind TokenKind, text string) Token {
		l.advance()
		return Token{Kind: kind, Text: text, Line: line, Col: col}
	}

	switch c {
	case ':':
		if l.peek() == '=' {
			return two(TokenAssign, ":="), nil
		}
	case ';':
		return one(TokenSemi, ";"), nil
	case '+':
		return one(TokenPlus, "+"), nil
	case '-':
		if l.peek() == '>' {
			return two(TokenArrow, "->"), nil
		}
		return one(TokenMinus, "-"), nil
	case '*':
		return one(TokenStar, "*"), nil
	case '<':
		if l.peek() == '=' {
			return two(TokenLe, "<="), nil
		}
		return one(TokenLt, "<"), nil
	case '>':
		if l.peek() == '=' {
			return two(TokenGe, ">="), nil
		}
		return one(TokenGt, ">"), nil
	case '=':
		if l.peek() == '=' {
			return two(TokenEq, "=="), nil
		}
	case '!':
		return one(TokenNot, "!"), nil
	case '&':
		if l.peek() == '&' {
			return two(TokenAnd, "&&"), nil
		}
	case '|':
		if l.peek() == '|' {
			return two(TokenOr, "||"), nil
		}
	case '(':
		return one(TokenLParen, "("), nil
	case ')':
		return one(TokenRParen, ")"), nil
	case '#':
		return Token{}, fmt.Errorf("%d:%d: identifiers starting with %q are reserved", line, col, SystemVarPrefix)
	}
	return Token{}, fmt.Errorf("%d:%d: unexpected character %q", line, col, string(c))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

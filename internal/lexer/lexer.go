// Package lexer turns KERA source text into a token stream for the parser.
package lexer

import (
	"fmt"

	"martianoff/kera/keraerr"
)

// Lex scans input and returns its tokens, ending with a TokenEOF token.
// Scanning continues past bad characters; every problem is collected so the
// caller can report all of them at once.
func Lex(input string) ([]Token, error) {
	lx := &lexer{input: input, line: 1, col: 1}
	for {
		lx.skipSpaceAndComments()
		if lx.pos >= len(lx.input) {
			lx.emit(TokenEOF, "")
			break
		}
		ch := lx.peek()
		switch {
		case isIdentStart(ch):
			lx.lexIdentOrKeyword()
		case isDigit(ch):
			lx.lexInt()
		case ch == '"':
			lx.lexString()
		default:
			lx.lexPunct()
		}
	}
	if len(lx.errors) > 0 {
		return lx.tokens, &keraerr.MultiError{Errors: lx.errors}
	}
	return lx.tokens, nil
}

type lexer struct {
	input  string
	pos    int
	line   int
	col    int
	tokens []Token
	errors []error
}

func (lx *lexer) peek() byte { return lx.input[lx.pos] }

func (lx *lexer) next() byte {
	ch := lx.input[lx.pos]
	lx.pos++
	if ch == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return ch
}

func (lx *lexer) emit(k Kind, text string) {
	col := lx.col - len(text)
	if k == TokenEOF {
		col = lx.col
	}
	lx.tokens = append(lx.tokens, Token{Kind: k, Text: text, Line: lx.line, Col: col})
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			lx.next()
			continue
		}
		// line comment
		if ch == '/' && lx.pos+1 < len(lx.input) && lx.input[lx.pos+1] == '/' {
			for lx.pos < len(lx.input) && lx.input[lx.pos] != '\n' {
				lx.next()
			}
			continue
		}
		return
	}
}

func (lx *lexer) lexIdentOrKeyword() {
	start := lx.pos
	lx.next()
	for lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
		lx.next()
	}
	text := lx.input[start:lx.pos]
	if kw, ok := keywords[text]; ok {
		lx.emit(kw, text)
		return
	}
	lx.emit(TokenIdent, text)
}

func (lx *lexer) lexInt() {
	start := lx.pos
	for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
		lx.next()
	}
	lx.emit(TokenInt, lx.input[start:lx.pos])
}

func (lx *lexer) lexString() {
	startLine, startCol := lx.line, lx.col
	start := lx.pos
	lx.next() // opening quote
	for lx.pos < len(lx.input) && lx.input[lx.pos] != '"' && lx.input[lx.pos] != '\n' {
		lx.next()
	}
	if lx.pos >= len(lx.input) || lx.input[lx.pos] != '"' {
		lx.errors = append(lx.errors, keraerr.NewSyntaxError(startLine, startCol, "unterminated string literal"))
		lx.tokens = append(lx.tokens, Token{Kind: TokenBad, Text: lx.input[start:lx.pos], Line: startLine, Col: startCol})
		return
	}
	lx.next() // closing quote
	lx.tokens = append(lx.tokens, Token{Kind: TokenString, Text: lx.input[start:lx.pos], Line: startLine, Col: startCol})
}

var puncts = map[byte]Kind{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'<': TokenLAngle,
	'>': TokenRAngle,
	'.': TokenDot,
	',': TokenComma,
	';': TokenSemi,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'&': TokenAmp,
	'=': TokenAssign,
}

func (lx *lexer) lexPunct() {
	line, col := lx.line, lx.col
	ch := lx.next()
	if ch == ':' {
		if lx.pos < len(lx.input) && lx.input[lx.pos] == ':' {
			lx.next()
			lx.tokens = append(lx.tokens, Token{Kind: TokenColonColon, Text: "::", Line: line, Col: col})
			return
		}
		lx.tokens = append(lx.tokens, Token{Kind: TokenColon, Text: ":", Line: line, Col: col})
		return
	}
	if k, ok := puncts[ch]; ok {
		lx.tokens = append(lx.tokens, Token{Kind: k, Text: string(ch), Line: line, Col: col})
		return
	}
	lx.errors = append(lx.errors, keraerr.NewSyntaxError(line, col, fmt.Sprintf("unexpected character %q", ch)))
	lx.tokens = append(lx.tokens, Token{Kind: TokenBad, Text: string(ch), Line: line, Col: col})
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

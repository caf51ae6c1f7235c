// Package parser parses KERA declaration units: capability, type, impl and
// function declarations, and the member-call expressions inside function
// bodies. All syntax errors of a unit are collected into one MultiError so
// a single pass reports everything.
package parser

import (
	"fmt"
	"strings"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/lexer"
	"martianoff/kera/keraerr"
)

// Sigil selects the bracket style of the explicit-capability call form.
// The choice is a surface-syntax parameter, fixed once per pipeline.
type Sigil int

const (
	SigilAngle Sigil = iota // recv.<Cap.Path>::member(args)
	SigilParen              // recv.(Cap.Path)::member(args)
)

// Options configure the parser.
type Options struct {
	CapabilitySigil Sigil
}

// KeraParser parses KERA source into a frontend.Unit.
type KeraParser struct {
	opts Options
}

// NewKeraParser creates a parser with default options (angle sigil).
func NewKeraParser() *KeraParser {
	return &KeraParser{}
}

// NewKeraParserWithOptions creates a parser with explicit options.
func NewKeraParserWithOptions(opts Options) *KeraParser {
	return &KeraParser{opts: opts}
}

var _ frontend.Parser = (*KeraParser)(nil)

// Parse lexes and parses one declaration unit.
func (p *KeraParser) Parse(input string) (*frontend.Unit, error) {
	tokens, lexErr := lexer.Lex(input)
	ps := &parseState{tokens: tokens, opts: p.opts}
	if lexErr != nil {
		if multi, ok := lexErr.(*keraerr.MultiError); ok {
			ps.errors = append(ps.errors, multi.Errors...)
		} else {
			ps.errors = append(ps.errors, lexErr)
		}
	}
	unit := ps.parseUnit()
	if len(ps.errors) > 0 {
		return nil, &keraerr.MultiError{Errors: ps.errors}
	}
	return unit, nil
}

type parseState struct {
	tokens []lexer.Token
	pos    int
	opts   Options
	errors []error
}

func (ps *parseState) cur() lexer.Token  { return ps.tokens[ps.pos] }
func (ps *parseState) peek() lexer.Token { return ps.peekAt(1) }

func (ps *parseState) peekAt(n int) lexer.Token {
	if ps.pos+n < len(ps.tokens) {
		return ps.tokens[ps.pos+n]
	}
	return ps.tokens[len(ps.tokens)-1]
}

func (ps *parseState) advance() lexer.Token {
	t := ps.cur()
	if t.Kind != lexer.TokenEOF {
		ps.pos++
	}
	return t
}

func (ps *parseState) at(k lexer.Kind) bool { return ps.cur().Kind == k }

func (ps *parseState) accept(k lexer.Kind) (lexer.Token, bool) {
	if ps.at(k) {
		return ps.advance(), true
	}
	return lexer.Token{}, false
}

func (ps *parseState) expect(k lexer.Kind) (lexer.Token, bool) {
	if ps.at(k) {
		return ps.advance(), true
	}
	ps.errorf("expected %s, found %s", k, ps.cur().Kind)
	return ps.cur(), false
}

func (ps *parseState) errorf(format string, args ...interface{}) {
	t := ps.cur()
	ps.errors = append(ps.errors, keraerr.NewSyntaxError(t.Line, t.Col, fmt.Sprintf(format, args...)))
}

func (ps *parseState) errorAt(t lexer.Token, msg string) {
	ps.errors = append(ps.errors, keraerr.NewSyntaxError(t.Line, t.Col, msg))
}

// syncDecl skips tokens until a declaration keyword or EOF, recovering from
// a declaration-level error.
func (ps *parseState) syncDecl() {
	for {
		switch ps.cur().Kind {
		case lexer.TokenEOF, lexer.TokenCapability, lexer.TokenType, lexer.TokenImpl, lexer.TokenFn:
			return
		}
		ps.advance()
	}
}

// syncStmt skips to the end of the current statement or block.
func (ps *parseState) syncStmt() {
	for {
		switch ps.cur().Kind {
		case lexer.TokenEOF, lexer.TokenRBrace:
			return
		case lexer.TokenSemi:
			ps.advance()
			return
		}
		ps.advance()
	}
}

func (ps *parseState) parseUnit() *frontend.Unit {
	unit := &frontend.Unit{}
	if _, ok := ps.expect(lexer.TokenPackage); ok {
		if name, ok := ps.expect(lexer.TokenIdent); ok {
			unit.Package = name.Text
		}
	}
	ps.accept(lexer.TokenSemi)

	for !ps.at(lexer.TokenEOF) {
		switch ps.cur().Kind {
		case lexer.TokenCapability:
			if d := ps.parseCapabilityDecl(); d != nil {
				unit.Capabilities = append(unit.Capabilities, d)
			}
		case lexer.TokenType:
			if d := ps.parseTypeDecl(); d != nil {
				unit.Types = append(unit.Types, d)
			}
		case lexer.TokenImpl:
			if d := ps.parseImplDecl(); d != nil {
				unit.Impls = append(unit.Impls, d)
			}
		case lexer.TokenFn:
			if d := ps.parseFnDecl(false); d != nil {
				unit.Funcs = append(unit.Funcs, d)
			}
		default:
			ps.errorf("expected declaration, found %s", ps.cur().Kind)
			ps.syncDecl()
		}
	}
	return unit
}

func (ps *parseState) parseCapabilityDecl() *frontend.CapabilityDecl {
	kw := ps.advance() // 'capability'
	name, ok := ps.expect(lexer.TokenIdent)
	if !ok {
		ps.syncDecl()
		return nil
	}
	decl := &frontend.CapabilityDecl{Name: name.Text, Pos: frontend.Pos{Line: kw.Line, Col: kw.Col}}
	if _, ok := ps.expect(lexer.TokenLBrace); !ok {
		ps.syncDecl()
		return decl
	}
	for !ps.at(lexer.TokenRBrace) && !ps.at(lexer.TokenEOF) {
		if _, ok := ps.expect(lexer.TokenFn); !ok {
			ps.syncStmt()
			continue
		}
		m, ok := ps.expect(lexer.TokenIdent)
		if !ok {
			ps.syncStmt()
			continue
		}
		arity := ps.parseSignatureParams()
		ps.accept(lexer.TokenSemi)
		decl.Methods = append(decl.Methods, frontend.MethodSig{Name: m.Text, Arity: arity})
	}
	ps.expect(lexer.TokenRBrace)
	return decl
}

// parseSignatureParams consumes a parenthesized parameter list and returns
// its arity, ignoring the parameter details.
func (ps *parseState) parseSignatureParams() int {
	if _, ok := ps.expect(lexer.TokenLParen); !ok {
		return 0
	}
	arity := 0
	depth := 1
	seen := false
	for depth > 0 && !ps.at(lexer.TokenEOF) {
		switch ps.cur().Kind {
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
		case lexer.TokenComma:
			if depth == 1 {
				arity++
			}
		default:
			if depth == 1 {
				seen = true
			}
		}
		ps.advance()
	}
	if seen {
		arity++
	}
	return arity
}

func (ps *parseState) parseTypeDecl() *frontend.TypeDecl {
	kw := ps.advance() // 'type'
	name, ok := ps.expect(lexer.TokenIdent)
	if !ok {
		ps.syncDecl()
		return nil
	}
	decl := &frontend.TypeDecl{Name: name.Text, Pos: frontend.Pos{Line: kw.Line, Col: kw.Col}}
	if _, ok := ps.accept(lexer.TokenLAngle); ok {
		for {
			tp, ok := ps.expect(lexer.TokenIdent)
			if !ok {
				break
			}
			decl.TypeParams = append(decl.TypeParams, tp.Text)
			if _, ok := ps.accept(lexer.TokenComma); !ok {
				break
			}
		}
		ps.expect(lexer.TokenRAngle)
	}
	if _, ok := ps.expect(lexer.TokenLBrace); !ok {
		ps.syncDecl()
		return decl
	}
	for !ps.at(lexer.TokenRBrace) && !ps.at(lexer.TokenEOF) {
		switch ps.cur().Kind {
		case lexer.TokenPub, lexer.TokenUse:
			if a := ps.parseAliasDecl(); a != nil {
				decl.Aliases = append(decl.Aliases, a)
			}
		case lexer.TokenFn:
			if m := ps.parseFnDecl(true); m != nil {
				decl.Methods = append(decl.Methods, m)
			}
		default:
			ps.errorf("expected method or alias declaration, found %s", ps.cur().Kind)
			ps.syncStmt()
		}
	}
	ps.expect(lexer.TokenRBrace)
	return decl
}

func (ps *parseState) parseAliasDecl() *frontend.AliasDecl {
	start := ps.cur()
	_, exported := ps.accept(lexer.TokenPub)
	if _, ok := ps.expect(lexer.TokenUse); !ok {
		ps.syncStmt()
		return nil
	}
	path, ok := ps.parseCapPath()
	if !ok {
		ps.syncStmt()
		return nil
	}
	decl := &frontend.AliasDecl{
		Capability: path,
		Exported:   exported,
		Pos:        frontend.Pos{Line: start.Line, Col: start.Col},
	}
	if _, ok := ps.accept(lexer.TokenAs); ok {
		// The reserved direct name is accepted here so the analyzer can
		// reject it with its dedicated diagnostic.
		alias := ps.cur()
		if alias.Kind != lexer.TokenIdent && alias.Kind != lexer.TokenSelf {
			ps.errorf("expected %s, found %s", lexer.TokenIdent, alias.Kind)
			ps.syncStmt()
			return nil
		}
		ps.advance()
		decl.Alias = alias.Text
	} else {
		// Default alias: the capability's base name.
		if i := strings.LastIndexByte(path, '.'); i >= 0 {
			decl.Alias = path[i+1:]
		} else {
			decl.Alias = path
		}
	}
	ps.expect(lexer.TokenSemi)
	return decl
}

func (ps *parseState) parseImplDecl() *frontend.ImplDecl {
	kw := ps.advance() // 'impl'
	path, ok := ps.parseCapPath()
	if !ok {
		ps.syncDecl()
		return nil
	}
	if _, ok := ps.expect(lexer.TokenFor); !ok {
		ps.syncDecl()
		return nil
	}
	name, ok := ps.expect(lexer.TokenIdent)
	if !ok {
		ps.syncDecl()
		return nil
	}
	decl := &frontend.ImplDecl{
		Capability: path,
		TypeName:   name.Text,
		Pos:        frontend.Pos{Line: kw.Line, Col: kw.Col},
	}
	// Type arguments on the implemented-for type add nothing the where
	// clause does not already express; skip them.
	if _, ok := ps.accept(lexer.TokenLAngle); ok {
		for !ps.at(lexer.TokenRAngle) && !ps.at(lexer.TokenEOF) {
			ps.advance()
		}
		ps.expect(lexer.TokenRAngle)
	}
	if ps.at(lexer.TokenWhere) {
		decl.Where = ps.parseWhereClause()
	}
	if _, ok := ps.expect(lexer.TokenLBrace); !ok {
		ps.syncDecl()
		return decl
	}
	for !ps.at(lexer.TokenRBrace) && !ps.at(lexer.TokenEOF) {
		if ps.at(lexer.TokenFn) {
			if m := ps.parseFnDecl(true); m != nil {
				decl.Methods = append(decl.Methods, m)
			}
			continue
		}
		ps.errorf("expected method declaration, found %s", ps.cur().Kind)
		ps.syncStmt()
	}
	ps.expect(lexer.TokenRBrace)
	return decl
}

func (ps *parseState) parseWhereClause() []frontend.Bound {
	ps.advance() // 'where'
	var bounds []frontend.Bound
	for {
		tp, ok := ps.expect(lexer.TokenIdent)
		if !ok {
			return bounds
		}
		if _, ok := ps.expect(lexer.TokenColon); !ok {
			return bounds
		}
		b := frontend.Bound{TypeParam: tp.Text}
		for {
			path, ok := ps.parseCapPath()
			if !ok {
				return bounds
			}
			b.Capabilities = append(b.Capabilities, path)
			if _, ok := ps.accept(lexer.TokenPlus); !ok {
				break
			}
		}
		bounds = append(bounds, b)
		if _, ok := ps.accept(lexer.TokenComma); !ok {
			return bounds
		}
	}
}

// parseFnDecl parses a function or method declaration. Inside type and impl
// blocks the first parameter may be self or &self; a trailing ';' declares
// a signature without a body.
func (ps *parseState) parseFnDecl(method bool) *frontend.FnDecl {
	kw := ps.advance() // 'fn'
	name, ok := ps.expect(lexer.TokenIdent)
	if !ok {
		ps.syncStmt()
		return nil
	}
	decl := &frontend.FnDecl{Name: name.Text, Pos: frontend.Pos{Line: kw.Line, Col: kw.Col}}
	if _, ok := ps.expect(lexer.TokenLParen); !ok {
		ps.syncStmt()
		return decl
	}
	first := true
	for !ps.at(lexer.TokenRParen) && !ps.at(lexer.TokenEOF) {
		if !first {
			if _, ok := ps.expect(lexer.TokenComma); !ok {
				break
			}
		}
		first = false
		if _, ok := ps.accept(lexer.TokenAmp); ok {
			recv, _ := ps.expect(lexer.TokenIdent)
			if !method || recv.Text != "self" {
				ps.errorAt(recv, "'&self' receiver is only allowed as the first parameter of a method")
			}
			decl.ByRef = true
			continue
		}
		pname, ok := ps.expect(lexer.TokenIdent)
		if !ok {
			break
		}
		if method && pname.Text == "self" {
			continue
		}
		ptype, ok := ps.parseTypeText()
		if !ok {
			break
		}
		decl.Params = append(decl.Params, frontend.Param{Name: pname.Text, Type: ptype})
	}
	ps.expect(lexer.TokenRParen)

	if ps.at(lexer.TokenWhere) {
		decl.Where = ps.parseWhereClause()
	}

	if _, ok := ps.accept(lexer.TokenSemi); ok {
		return decl
	}
	if _, ok := ps.expect(lexer.TokenLBrace); !ok {
		ps.syncStmt()
		return decl
	}
	for !ps.at(lexer.TokenRBrace) && !ps.at(lexer.TokenEOF) {
		if call, ok := ps.parseCallStmt(); ok {
			decl.Calls = append(decl.Calls, call)
		} else {
			ps.syncStmt()
		}
	}
	ps.expect(lexer.TokenRBrace)
	return decl
}

// parseCapPath parses a dotted capability path and returns its text.
func (ps *parseState) parseCapPath() (string, bool) {
	head, ok := ps.expect(lexer.TokenIdent)
	if !ok {
		return "", false
	}
	path := head.Text
	for ps.at(lexer.TokenDot) && ps.peek().Kind == lexer.TokenIdent {
		ps.advance()
		seg := ps.advance()
		path += "." + seg.Text
	}
	return path, true
}

// parseTypeText parses a written type (dotted name with optional angle
// bracket arguments) and returns its canonical text.
func (ps *parseState) parseTypeText() (string, bool) {
	path, ok := ps.parseCapPath()
	if !ok {
		return "", false
	}
	if _, ok := ps.accept(lexer.TokenLAngle); ok {
		var args []string
		for {
			arg, ok := ps.parseTypeText()
			if !ok {
				return path, false
			}
			args = append(args, arg)
			if _, ok := ps.accept(lexer.TokenComma); !ok {
				break
			}
		}
		ps.expect(lexer.TokenRAngle)
		path += "<" + strings.Join(args, ", ") + ">"
	}
	return path, true
}

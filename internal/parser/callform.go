package parser

import (
	"strings"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/lexer"
)

// Call-form recognition. After the receiver and the '.' separator, one
// token of lookahead routes to the right form:
//
//	Self            -> explicit-direct   recv.Self::member(args)
//	opening sigil   -> explicit-capability  recv.<Cap.Path>::member(args)
//	Ident then '::' -> explicit-alias    recv.Alias::member(args)
//	anything else   -> plain             recv.member(args)
//
// Classification is purely syntactic; no type information is consulted.

func (ps *parseState) sigilOpen() lexer.Kind {
	if ps.opts.CapabilitySigil == SigilParen {
		return lexer.TokenLParen
	}
	return lexer.TokenLAngle
}

func (ps *parseState) sigilClose() lexer.Kind {
	if ps.opts.CapabilitySigil == SigilParen {
		return lexer.TokenRParen
	}
	return lexer.TokenRAngle
}

// parseCallStmt parses one member-call statement: Receiver '.' CallForm ';'.
func (ps *parseState) parseCallStmt() (frontend.CallIntent, bool) {
	recv, ok := ps.expect(lexer.TokenIdent)
	if !ok {
		return frontend.CallIntent{}, false
	}
	if _, ok := ps.expect(lexer.TokenDot); !ok {
		return frontend.CallIntent{}, false
	}

	intent := frontend.CallIntent{Receiver: recv.Text, Line: recv.Line, Col: recv.Col}

	switch {
	case ps.at(lexer.TokenSelf):
		self := ps.advance()
		if ps.at(ps.sigilOpen()) {
			ps.errorAt(self, "cannot combine 'Self' with a capability path; use Self::member(...) for direct methods or a bracketed capability path on its own")
			return frontend.CallIntent{}, false
		}
		if _, ok := ps.expect(lexer.TokenColonColon); !ok {
			return frontend.CallIntent{}, false
		}
		intent.Qualifier = frontend.Qualifier{Kind: frontend.QualifierDirect}

	case ps.at(ps.sigilOpen()):
		open := ps.advance()
		if ps.at(lexer.TokenSelf) {
			ps.errorAt(open, "capability path cannot be 'Self'; use the Self::member(...) form for direct methods")
			return frontend.CallIntent{}, false
		}
		path, ok := ps.parseCapPath()
		if !ok {
			return frontend.CallIntent{}, false
		}
		if _, ok := ps.expect(ps.sigilClose()); !ok {
			return frontend.CallIntent{}, false
		}
		if _, ok := ps.expect(lexer.TokenColonColon); !ok {
			return frontend.CallIntent{}, false
		}
		intent.Qualifier = frontend.Qualifier{Kind: frontend.QualifierCapability, Path: path}

	case ps.at(lexer.TokenIdent) && ps.peek().Kind == lexer.TokenColonColon:
		alias := ps.advance()
		ps.advance() // '::'
		intent.Qualifier = frontend.Qualifier{Kind: frontend.QualifierAlias, Path: alias.Text}

	case ps.at(lexer.TokenIdent) && ps.peek().Kind == lexer.TokenLParen:
		// Plain form; the member is parsed below.

	default:
		ps.errorf("expected member call after '.', found %s", ps.cur().Kind)
		return frontend.CallIntent{}, false
	}

	member, ok := ps.expect(lexer.TokenIdent)
	if !ok {
		return frontend.CallIntent{}, false
	}
	intent.Member = member.Text

	args, ok := ps.parseArgs()
	if !ok {
		return frontend.CallIntent{}, false
	}
	intent.Args = args
	ps.expect(lexer.TokenSemi)
	return intent, true
}

// parseArgs parses a parenthesized argument list, preserving each argument
// expression as written text in source order.
func (ps *parseState) parseArgs() ([]string, bool) {
	if _, ok := ps.expect(lexer.TokenLParen); !ok {
		return nil, false
	}
	var args []string
	var current []lexer.Token
	depth := 1
	for {
		switch ps.cur().Kind {
		case lexer.TokenEOF:
			ps.errorf("unterminated argument list")
			return nil, false
		case lexer.TokenLParen:
			depth++
			current = append(current, ps.advance())
		case lexer.TokenRParen:
			depth--
			if depth == 0 {
				ps.advance()
				if len(current) > 0 {
					args = append(args, renderTokens(current))
				}
				return args, true
			}
			current = append(current, ps.advance())
		case lexer.TokenComma:
			if depth == 1 {
				ps.advance()
				if len(current) == 0 {
					ps.errorf("empty argument")
					return nil, false
				}
				args = append(args, renderTokens(current))
				current = nil
				continue
			}
			current = append(current, ps.advance())
		default:
			current = append(current, ps.advance())
		}
	}
}

// renderTokens reassembles argument text, spacing only alphanumeric
// neighbors so expressions stay readable.
func renderTokens(tokens []lexer.Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 && wordLike(tokens[i-1]) && wordLike(t) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

func wordLike(t lexer.Token) bool {
	switch t.Kind {
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenString, lexer.TokenSelf:
		return true
	}
	return false
}

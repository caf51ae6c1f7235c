package lexer

// Kind identifies a token class.
type Kind int

const (
	TokenEOF Kind = iota
	TokenBad

	// Literals / identifiers
	TokenIdent
	TokenInt
	TokenString

	// Keywords
	TokenPackage
	TokenCapability
	TokenType
	TokenImpl
	TokenFor
	TokenFn
	TokenUse
	TokenAs
	TokenPub
	TokenWhere
	TokenSelf

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLAngle
	TokenRAngle
	TokenDot
	TokenComma
	TokenSemi
	TokenColon
	TokenColonColon
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenAmp
	TokenAssign
)

var kindNames = map[Kind]string{
	TokenEOF:        "end of file",
	TokenBad:        "invalid token",
	TokenIdent:      "identifier",
	TokenInt:        "integer literal",
	TokenString:     "string literal",
	TokenPackage:    "'package'",
	TokenCapability: "'capability'",
	TokenType:       "'type'",
	TokenImpl:       "'impl'",
	TokenFor:        "'for'",
	TokenFn:         "'fn'",
	TokenUse:        "'use'",
	TokenAs:         "'as'",
	TokenPub:        "'pub'",
	TokenWhere:      "'where'",
	TokenSelf:       "'Self'",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenLBrace:     "'{'",
	TokenRBrace:     "'}'",
	TokenLAngle:     "'<'",
	TokenRAngle:     "'>'",
	TokenDot:        "'.'",
	TokenComma:      "','",
	TokenSemi:       "';'",
	TokenColon:      "':'",
	TokenColonColon: "'::'",
	TokenPlus:       "'+'",
	TokenMinus:      "'-'",
	TokenStar:       "'*'",
	TokenSlash:      "'/'",
	TokenAmp:        "'&'",
	TokenAssign:     "'='",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown token"
}

var keywords = map[string]Kind{
	"package":    TokenPackage,
	"capability": TokenCapability,
	"type":       TokenType,
	"impl":       TokenImpl,
	"for":        TokenFor,
	"fn":         TokenFn,
	"use":        TokenUse,
	"as":         TokenAs,
	"pub":        TokenPub,
	"where":      TokenWhere,
	"Self":       TokenSelf,
}

// Token is one lexical element with its source position (1-based).
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }

package frontend

import (
	"strings"
)

// TypeRef is the identity of a nominal type, optionally instantiated with
// concrete type arguments (e.g. shapes.Grid<int>).
type TypeRef struct {
	Package string
	Name    string
	Args    []TypeRef
}

func (t TypeRef) String() string {
	var sb strings.Builder
	sb.WriteString(t.Key())
	if len(t.Args) > 0 {
		sb.WriteString("<")
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteString(">")
	}
	return sb.String()
}

// Key returns the package-qualified name without type arguments. Two
// instantiations of the same declared type share a key.
func (t TypeRef) Key() string {
	if t.Package != "" {
		return t.Package + "." + t.Name
	}
	return t.Name
}

// Base returns the reference stripped of its type arguments.
func (t TypeRef) Base() TypeRef {
	return TypeRef{Package: t.Package, Name: t.Name}
}

// IsZero reports whether the reference is empty.
func (t TypeRef) IsZero() bool { return t.Name == "" }

var builtinTypes = map[string]bool{
	"int": true, "int32": true, "int64": true,
	"float32": true, "float64": true,
	"string": true, "bool": true, "any": true,
}

// ParseTypeRef parses a written type like "Grid<int, string>" or "geo.Point".
// Unqualified non-builtin names are attributed to pkg. Malformed text yields
// a best-effort reference; the parser has already rejected truly bad syntax.
func ParseTypeRef(text, pkg string) TypeRef {
	text = strings.TrimSpace(text)
	base := text
	var args []TypeRef
	if i := strings.IndexByte(text, '<'); i >= 0 && strings.HasSuffix(text, ">") {
		base = text[:i]
		for _, part := range splitTopLevel(text[i+1 : len(text)-1]) {
			args = append(args, ParseTypeRef(part, pkg))
		}
	}
	ref := TypeRef{Name: base, Args: args}
	if j := strings.LastIndexByte(base, '.'); j >= 0 {
		ref.Package = base[:j]
		ref.Name = base[j+1:]
	} else if pkg != "" && pkg != "main" && pkg != "test" && !builtinTypes[base] {
		ref.Package = pkg
	}
	return ref
}

// splitTopLevel splits comma-separated type arguments, ignoring commas
// nested inside angle brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) != "" {
		parts = append(parts, s[start:])
	}
	return parts
}

// QualifierKind distinguishes the four call forms.
type QualifierKind int

const (
	QualifierNone       QualifierKind = iota // plain member call
	QualifierDirect                          // Self::member(...)
	QualifierCapability                      // <Cap.Path>::member(...)
	QualifierAlias                           // AliasName::member(...)
)

// ReservedDirectName is the keyword denoting "direct methods only". It is
// implicitly present on every type and can never be declared as an alias.
const ReservedDirectName = "Self"

// Qualifier is the disambiguation marker of a call intent. Path holds the
// written capability path or alias name for the explicit forms.
type Qualifier struct {
	Kind QualifierKind
	Path string
}

func (q Qualifier) String() string {
	switch q.Kind {
	case QualifierDirect:
		return ReservedDirectName
	case QualifierCapability:
		return "<" + q.Path + ">"
	case QualifierAlias:
		return q.Path
	}
	return ""
}

// CallIntent is the normalized record of one member-call expression:
// receiver expression text, member name, qualifier, and the argument
// expressions in written order.
type CallIntent struct {
	Receiver  string
	Member    string
	Qualifier Qualifier
	Args      []string
	Line      int
	Col       int
}

// MethodSig describes one method of a capability contract.
type MethodSig struct {
	Name  string
	Arity int
}

// Bound is one applicability constraint: the named type parameter must
// satisfy every listed capability (by written path).
type Bound struct {
	TypeParam    string
	Capabilities []string
}

// Candidate is one callable target considered during resolution.
// Capability is nil for a direct method definition.
type Candidate struct {
	Type       TypeRef
	Capability *TypeRef
	Method     string
	ByRef      bool
}

// Origin names where the candidate comes from: a capability path, or
// "direct" for a direct method definition.
func (c Candidate) Origin() string {
	if c.Capability == nil {
		return "direct"
	}
	return c.Capability.String()
}

// ResolutionResult is the outcome of resolving one call intent: exactly one
// of Target or Failure is set.
type ResolutionResult struct {
	Target  *Candidate
	Failure error
}

// Resolved reports whether resolution found a unique target.
func (r ResolutionResult) Resolved() bool { return r.Failure == nil && r.Target != nil }

// CallSite is a call intent bound to its receiver's type, ready for
// resolution. CallerPkg gates alias visibility.
type CallSite struct {
	Fn        string
	CallerPkg string
	Receiver  TypeRef
	Intent    CallIntent
}

// Resolution pairs a call site with its resolution outcome.
type Resolution struct {
	Site   CallSite
	Result ResolutionResult
}

package frontend

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

// Unit is one parsed declaration unit (a single source file).
type Unit struct {
	Package      string
	Capabilities []*CapabilityDecl
	Types        []*TypeDecl
	Impls        []*ImplDecl
	Funcs        []*FnDecl
}

// CapabilityDecl declares a named contract of method signatures.
type CapabilityDecl struct {
	Name    string
	Methods []MethodSig
	Pos
}

// TypeDecl declares a nominal type with its direct-impl block: direct
// methods and alias declarations.
type TypeDecl struct {
	Name       string
	TypeParams []string
	Aliases    []*AliasDecl
	Methods    []*FnDecl
	Pos
}

// AliasDecl maps an alias name to a capability inside a type's block.
// An omitted 'as' clause aliases the capability under its own base name.
type AliasDecl struct {
	Capability string
	Alias      string
	Exported   bool
	Pos
}

// ImplDecl binds a capability to a type, with optional where-bounds gating
// its applicability per instantiation.
type ImplDecl struct {
	Capability string
	TypeName   string
	Where      []Bound
	Methods    []*FnDecl
	Pos
}

// FnDecl is a method or top-level function. ByRef records an &self
// receiver; Calls holds the member-call expressions of the body in source
// order.
type FnDecl struct {
	Name   string
	ByRef  bool
	Params []Param
	Where  []Bound
	Calls  []CallIntent
	Pos
}

// Param is one typed function parameter.
type Param struct {
	Name string
	Type string
}

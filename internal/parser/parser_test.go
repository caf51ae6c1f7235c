package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kera/internal/frontend"
)

func parse(t *testing.T, input string) *frontend.Unit {
	t.Helper()
	unit, err := NewKeraParser().Parse(input)
	require.NoError(t, err)
	require.NotNil(t, unit)
	return unit
}

func TestParsePackageClause(t *testing.T) {
	unit := parse(t, "package demo")
	assert.Equal(t, "demo", unit.Package)
}

func TestParseCapabilityDecl(t *testing.T) {
	unit := parse(t, `
package demo

capability Reset {
	fn reset(self);
	fn resetTo(self, n int);
}
`)
	require.Len(t, unit.Capabilities, 1)
	cap := unit.Capabilities[0]
	assert.Equal(t, "Reset", cap.Name)
	require.Len(t, cap.Methods, 2)
	assert.Equal(t, frontend.MethodSig{Name: "reset", Arity: 1}, cap.Methods[0])
	assert.Equal(t, frontend.MethodSig{Name: "resetTo", Arity: 2}, cap.Methods[1])
}

func TestParseTypeDeclWithMethodsAndAliases(t *testing.T) {
	unit := parse(t, `
package demo

type Builder {
	pub use Reset as R;
	use Clear;
	fn reset(&self) {}
	fn build(self, n int) {}
}
`)
	require.Len(t, unit.Types, 1)
	decl := unit.Types[0]
	assert.Equal(t, "Builder", decl.Name)

	require.Len(t, decl.Aliases, 2)
	assert.Equal(t, "Reset", decl.Aliases[0].Capability)
	assert.Equal(t, "R", decl.Aliases[0].Alias)
	assert.True(t, decl.Aliases[0].Exported)
	// Without 'as', the capability's base name is the alias.
	assert.Equal(t, "Clear", decl.Aliases[1].Alias)
	assert.False(t, decl.Aliases[1].Exported)

	require.Len(t, decl.Methods, 2)
	assert.True(t, decl.Methods[0].ByRef)
	assert.False(t, decl.Methods[1].ByRef)
	assert.Equal(t, []frontend.Param{{Name: "n", Type: "int"}}, decl.Methods[1].Params)
}

func TestParseGenericTypeDecl(t *testing.T) {
	unit := parse(t, `
package demo

type Pair<A, B> {
	fn swap(self) {}
}
`)
	require.Len(t, unit.Types, 1)
	assert.Equal(t, []string{"A", "B"}, unit.Types[0].TypeParams)
}

func TestParseImplDecl(t *testing.T) {
	unit := parse(t, `
package demo

impl Reset for Builder {
	fn reset(&self) {}
}
`)
	require.Len(t, unit.Impls, 1)
	impl := unit.Impls[0]
	assert.Equal(t, "Reset", impl.Capability)
	assert.Equal(t, "Builder", impl.TypeName)
	require.Len(t, impl.Methods, 1)
	assert.True(t, impl.Methods[0].ByRef)
}

func TestParseImplDeclWithWhereClause(t *testing.T) {
	unit := parse(t, `
package demo

impl Printable for Holder<T> where T: Copy + Display {
	fn show(self) {}
}
`)
	require.Len(t, unit.Impls, 1)
	impl := unit.Impls[0]
	require.Len(t, impl.Where, 1)
	assert.Equal(t, "T", impl.Where[0].TypeParam)
	assert.Equal(t, []string{"Copy", "Display"}, impl.Where[0].Capabilities)
}

func TestParseMethodWhereClause(t *testing.T) {
	unit := parse(t, `
package demo

type Holder<U> {
	fn show(self) where U: Display {}
}
`)
	require.Len(t, unit.Types, 1)
	m := unit.Types[0].Methods[0]
	require.Len(t, m.Where, 1)
	assert.Equal(t, "U", m.Where[0].TypeParam)
	assert.Equal(t, []string{"Display"}, m.Where[0].Capabilities)
}

func TestParseFnWithGenericParamType(t *testing.T) {
	unit := parse(t, `
package demo

fn demo(h Holder<int>, p geo.Point) {}
`)
	require.Len(t, unit.Funcs, 1)
	assert.Equal(t, []frontend.Param{
		{Name: "h", Type: "Holder<int>"},
		{Name: "p", Type: "geo.Point"},
	}, unit.Funcs[0].Params)
}

func TestParseDottedCapabilityPath(t *testing.T) {
	unit := parse(t, `
package demo

capability Dummy { fn x(self); }

type Builder {
	use shapes.Reset as R;
}
`)
	require.Len(t, unit.Types, 1)
	assert.Equal(t, "shapes.Reset", unit.Types[0].Aliases[0].Capability)
	assert.Equal(t, "R", unit.Types[0].Aliases[0].Alias)
}

func TestParseCollectsAllSyntaxErrors(t *testing.T) {
	_, err := NewKeraParser().Parse(`
package demo

capability {
}

type {
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s) occurred")
}

func TestParseMissingPackageClause(t *testing.T) {
	_, err := NewKeraParser().Parse("type Builder {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 'package'")
}

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/parser"
	"martianoff/kera/keraerr"
)

func parse(t *testing.T, input string) *frontend.Unit {
	t.Helper()
	unit, err := parser.NewKeraParser().Parse(input)
	require.NoError(t, err)
	return unit
}

func analyze(t *testing.T, inputs ...string) (frontend.Resolver, []frontend.CallSite, error) {
	t.Helper()
	units := make([]*frontend.Unit, 0, len(inputs))
	for _, input := range inputs {
		units = append(units, parse(t, input))
	}
	return NewKeraAnalyzer().Analyze(units...)
}

func TestAnalyzeBuildsCallSites(t *testing.T) {
	_, sites, err := analyze(t, `
package demo

capability Reset {
	fn reset(self);
}

type Builder {
	fn build(self) {}
}

impl Reset for Builder {
	fn reset(&self) {}
}

fn run(b Builder) {
	b.build();
	b.reset();
}
`)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "run", sites[0].Fn)
	assert.Equal(t, "demo", sites[0].CallerPkg)
	assert.Equal(t, "Builder", sites[0].Receiver.Key())
	assert.Equal(t, "build", sites[0].Intent.Member)
	assert.Equal(t, "reset", sites[1].Intent.Member)
}

func TestAnalyzeBindsSelfReceiver(t *testing.T) {
	_, sites, err := analyze(t, `
package demo

capability Reset {
	fn reset(self);
}

type Builder {
	fn rebuild(&self) {
		self.reset();
	}
}

impl Reset for Builder {
	fn reset(&self) {}
}
`)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Builder", sites[0].Receiver.Key())
	assert.Equal(t, "rebuild", sites[0].Fn)
}

func TestAnalyzeUnknownReceiver(t *testing.T) {
	_, _, err := analyze(t, `
package demo

fn run() {
	ghost.reset();
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown receiver ghost")
}

func TestAnalyzeUnknownCapabilityInImpl(t *testing.T) {
	_, _, err := analyze(t, `
package demo

type Builder {}

impl Ghost for Builder {
	fn spook(self) {}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown capability Ghost")
}

func TestAnalyzeImplMethodOutsideContract(t *testing.T) {
	_, _, err := analyze(t, `
package demo

capability Reset {
	fn reset(self);
}

type Builder {}

impl Reset for Builder {
	fn reset(&self) {}
	fn extra(self) {}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capability Reset has no method extra")
}

func TestAnalyzeAliasRequiresImpl(t *testing.T) {
	_, _, err := analyze(t, `
package demo

capability Reset {
	fn reset(self);
}

type Builder {
	use Reset as R;
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no implementation of capability Reset")
}

func TestAnalyzeReservedAliasName(t *testing.T) {
	_, _, err := analyze(t, `
package demo

capability Reset {
	fn reset(self);
}

type Builder {
	use Reset as Self;
}

impl Reset for Builder {
	fn reset(&self) {}
}
`)
	require.Error(t, err)
	var reserved *keraerr.ReservedNameError
	require.ErrorAs(t, err, &reserved)
}

func TestAnalyzeCollectsAllErrors(t *testing.T) {
	_, _, err := analyze(t, `
package demo

type Builder {}

impl Ghost for Builder {
	fn spook(self) {}
}

fn run() {
	phantom.walk();
}
`)
	require.Error(t, err)
	multi, ok := err.(*keraerr.MultiError)
	require.True(t, ok)
	assert.Len(t, multi.Errors, 2)
}

func TestAnalyzeUnknownCapabilityInWhereClause(t *testing.T) {
	_, _, err := analyze(t, `
package demo

capability Printable {
	fn show(self);
}

type Holder<T> {}

impl Printable for Holder<T> where T: Ghost {
	fn show(self) {}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown capability Ghost in where clause")
}

func TestAnalyzeCrossPackageDeclarations(t *testing.T) {
	resolver, sites, err := analyze(t, `
package caps

capability Reset {
	fn reset(self);
}
`, `
package demo

type Builder {
	pub use caps.Reset as R;
}

impl caps.Reset for Builder {
	fn reset(&self) {}
}

fn run(b Builder) {
	b.R::reset();
}
`)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	res := resolver.Resolve(sites[0])
	require.True(t, res.Resolved())
	require.NotNil(t, res.Target.Capability)
	assert.Equal(t, "caps.Reset", res.Target.Capability.String())
}

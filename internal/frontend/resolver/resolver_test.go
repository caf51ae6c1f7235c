package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/frontend/analyzer"
	"martianoff/kera/internal/parser"
	"martianoff/kera/keraerr"
)

// builderSrc declares the canonical overlap: Builder has a direct reset
// plus two capabilities whose contracts both include reset.
const builderSrc = `
package demo

capability Reset {
	fn reset(self);
}

capability Renew {
	fn reset(self);
	fn renew(self);
}

type Builder {
	pub use Reset as R;
	fn build(self) {}
}

impl Reset for Builder {
	fn reset(&self) {}
}

impl Renew for Builder {
	fn reset(&self) {}
	fn renew(self) {}
}
`

func pipeline(t *testing.T, inputs ...string) (frontend.Resolver, []frontend.CallSite) {
	t.Helper()
	units := make([]*frontend.Unit, 0, len(inputs))
	for _, input := range inputs {
		unit, err := parser.NewKeraParser().Parse(input)
		require.NoError(t, err)
		units = append(units, unit)
	}
	resolver, sites, err := analyzer.NewKeraAnalyzer().Analyze(units...)
	require.NoError(t, err)
	return resolver, sites
}

// resolveOne runs the pipeline over builderSrc plus one driver function and
// returns the outcome of the driver's single call.
func resolveOne(t *testing.T, call string) frontend.ResolutionResult {
	t.Helper()
	resolver, sites := pipeline(t, builderSrc+`
fn drive(b Builder) {
	`+call+`
}
`)
	var driven []frontend.CallSite
	for _, s := range sites {
		if s.Fn == "drive" {
			driven = append(driven, s)
		}
	}
	require.Len(t, driven, 1)
	return resolver.Resolve(driven[0])
}

func TestPlainCallPrefersDirectMethod(t *testing.T) {
	res := resolveOne(t, "b.build();")
	require.True(t, res.Resolved())
	assert.Nil(t, res.Target.Capability)
	assert.Equal(t, "build", res.Target.Method)
}

func TestPlainCallAmbiguousAcrossCapabilities(t *testing.T) {
	res := resolveOne(t, "b.reset();")
	require.False(t, res.Resolved())

	var amb *keraerr.AmbiguousCapabilityMethodError
	require.ErrorAs(t, res.Failure, &amb)
	assert.Equal(t, keraerr.CodeAmbiguousMethod, amb.Code())
	assert.Equal(t, []string{"demo.Renew", "demo.Reset"}, amb.Capabilities)
	assert.Len(t, amb.CandidateList(), 2)
}

func TestPlainCallSingleCapabilityCandidate(t *testing.T) {
	res := resolveOne(t, "b.renew();")
	require.True(t, res.Resolved())
	require.NotNil(t, res.Target.Capability)
	assert.Equal(t, "demo.Renew", res.Target.Capability.String())
}

func TestExplicitCapabilitySelectsOneContract(t *testing.T) {
	res := resolveOne(t, "b.<Reset>::reset();")
	require.True(t, res.Resolved())
	assert.Equal(t, "demo.Reset", res.Target.Capability.String())
	assert.True(t, res.Target.ByRef)
}

func TestExplicitCapabilityNeverFallsBack(t *testing.T) {
	// Reset's contract has no renew; the Renew implementation must not leak in.
	res := resolveOne(t, "b.<Reset>::renew();")
	require.False(t, res.Resolved())

	var unres *keraerr.UnresolvedCapabilityMethodError
	require.ErrorAs(t, res.Failure, &unres)
	assert.Equal(t, keraerr.CodeNoCapabilityMethod, unres.Code())
	assert.Equal(t, "demo.Reset", unres.Capability)
}

func TestDirectFormNeverFallsBack(t *testing.T) {
	// reset exists on two capabilities but not as a direct method.
	res := resolveOne(t, "b.Self::reset();")
	require.False(t, res.Resolved())

	var unres *keraerr.UnresolvedDirectMethodError
	require.ErrorAs(t, res.Failure, &unres)
	assert.Equal(t, keraerr.CodeNoDirectMethod, unres.Code())
	// The capability candidates are carried for the diagnostic.
	assert.Len(t, unres.CandidateList(), 2)
}

func TestDirectFormResolvesDirectMethod(t *testing.T) {
	res := resolveOne(t, "b.Self::build();")
	require.True(t, res.Resolved())
	assert.Nil(t, res.Target.Capability)
}

func TestAliasResolvesLikeExplicitCapability(t *testing.T) {
	viaAlias := resolveOne(t, "b.R::reset();")
	viaCap := resolveOne(t, "b.<Reset>::reset();")
	require.True(t, viaAlias.Resolved())
	require.True(t, viaCap.Resolved())
	assert.Equal(t, viaCap.Target, viaAlias.Target)
}

func TestUnknownAlias(t *testing.T) {
	res := resolveOne(t, "b.Missing::reset();")
	var unknown *keraerr.UnknownAliasError
	require.ErrorAs(t, res.Failure, &unknown)
	assert.Equal(t, keraerr.CodeUnknownAlias, unknown.Code())
}

func TestUnknownCapabilityPath(t *testing.T) {
	res := resolveOne(t, "b.<Ghost>::reset();")
	var unknown *keraerr.UnknownCapabilityError
	require.ErrorAs(t, res.Failure, &unknown)
	assert.Equal(t, keraerr.CodeUnknownCapability, unknown.Code())
}

func TestNoMethodAnywhere(t *testing.T) {
	res := resolveOne(t, "b.vanish();")
	var missing *keraerr.NoMethodFoundError
	require.ErrorAs(t, res.Failure, &missing)
	assert.Equal(t, keraerr.CodeNoMethod, missing.Code())
}

func TestLocalAliasInvisibleAcrossPackages(t *testing.T) {
	resolver, sites := pipeline(t, `
package demo

capability Clear {
	fn clear(self);
}

type Buffer {
	use Clear as C;
}

impl Clear for Buffer {
	fn clear(&self) {}
}
`, `
package other

fn drive(b demo.Buffer) {
	b.C::clear();
}
`)
	require.Len(t, sites, 1)
	res := resolver.Resolve(sites[0])
	require.False(t, res.Resolved())

	var vis *keraerr.VisibilityError
	require.ErrorAs(t, res.Failure, &vis)
	assert.Equal(t, "other", vis.CallerPkg)
}

func TestBoundedGenericApplicability(t *testing.T) {
	resolver, sites := pipeline(t, `
package demo

capability Display {
	fn show(self);
}

capability Printable {
	fn print(self);
}

type Holder<T> {}

impl Display for int {
	fn show(self) {}
}

impl Printable for Holder<T> where T: Display {
	fn print(self) {}
}

fn ok(h Holder<int>) {
	h.print();
}

fn bad(h Holder<string>) {
	h.print();
}
`)
	require.Len(t, sites, 2)

	res := resolver.Resolve(sites[0])
	require.True(t, res.Resolved())
	assert.Equal(t, "demo.Printable", res.Target.Capability.String())

	// string has no Display impl, so the bounded impl is inapplicable and
	// nothing takes its place.
	res = resolver.Resolve(sites[1])
	require.False(t, res.Resolved())
	var missing *keraerr.NoMethodFoundError
	require.ErrorAs(t, res.Failure, &missing)
}

func TestResolveAllPreservesCallOrder(t *testing.T) {
	resolver, sites := pipeline(t, builderSrc+`
fn drive(b Builder) {
	b.build();
	b.reset();
	b.R::reset();
	b.Self::build();
	b.<Renew>::renew();
}
`)
	resolutions := resolver.ResolveAll(sites)
	require.Len(t, resolutions, len(sites))
	for i, r := range resolutions {
		assert.Equal(t, sites[i].Intent.Member, r.Site.Intent.Member)
	}
	assert.True(t, resolutions[0].Result.Resolved())
	assert.False(t, resolutions[1].Result.Resolved())
	assert.True(t, resolutions[2].Result.Resolved())
	assert.True(t, resolutions[3].Result.Resolved())
	assert.True(t, resolutions[4].Result.Resolved())
}

func TestResolveAllWithSingleWorker(t *testing.T) {
	units := []*frontend.Unit{}
	for _, input := range []string{builderSrc + `
fn drive(b Builder) {
	b.build();
	b.R::reset();
}
`} {
		unit, err := parser.NewKeraParser().Parse(input)
		require.NoError(t, err)
		units = append(units, unit)
	}
	resolver, sites, err := analyzer.NewKeraAnalyzerWithWorkers(1).Analyze(units...)
	require.NoError(t, err)

	resolutions := resolver.ResolveAll(sites)
	require.Len(t, resolutions, 2)
	for _, r := range resolutions {
		assert.True(t, r.Result.Resolved())
	}
}

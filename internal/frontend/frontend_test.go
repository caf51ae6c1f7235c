package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/frontend/analyzer"
	"martianoff/kera/internal/parser"
	"martianoff/kera/keraerr"
)

func newFrontend() *frontend.Frontend {
	return frontend.New(parser.NewKeraParser(), analyzer.NewKeraAnalyzer())
}

func TestCheckResolvesAllCalls(t *testing.T) {
	resolutions, err := newFrontend().Check(`
package demo

capability Reset {
	fn reset(self);
}

type Builder {
	pub use Reset as R;
	fn build(self) {}
}

impl Reset for Builder {
	fn reset(&self) {}
}

fn drive(b Builder) {
	b.build();
	b.R::reset();
}
`)
	require.NoError(t, err)
	require.Len(t, resolutions, 2)
	assert.Equal(t, "build", resolutions[0].Site.Intent.Member)
	assert.True(t, resolutions[0].Result.Resolved())
	assert.Equal(t, "reset", resolutions[1].Site.Intent.Member)
	assert.True(t, resolutions[1].Result.Resolved())
}

func TestCheckCarriesResolutionFailuresInResults(t *testing.T) {
	resolutions, err := newFrontend().Check(`
package demo

capability Reset {
	fn reset(self);
}

capability Renew {
	fn reset(self);
}

type Builder {}

impl Reset for Builder {
	fn reset(&self) {}
}

impl Renew for Builder {
	fn reset(&self) {}
}

fn drive(b Builder) {
	b.reset();
}
`)
	// Ambiguity is a per-call outcome, not a pipeline error.
	require.NoError(t, err)
	require.Len(t, resolutions, 1)
	require.False(t, resolutions[0].Result.Resolved())
	var amb *keraerr.AmbiguousCapabilityMethodError
	require.ErrorAs(t, resolutions[0].Result.Failure, &amb)
}

func TestCheckAggregatesSyntaxAndSemanticErrors(t *testing.T) {
	_, err := newFrontend().Check(
		"package broken\ntype {",
		`
package demo

type Builder {}

impl Ghost for Builder {
	fn spook(self) {}
}
`)
	require.Error(t, err)
	multi, ok := err.(*keraerr.MultiError)
	require.True(t, ok)
	require.NotEmpty(t, multi.Errors)
	assert.Contains(t, err.Error(), "unknown capability Ghost")
}

func TestCheckStillResolvesValidUnits(t *testing.T) {
	resolutions, err := newFrontend().Check(
		"package broken\ntype {",
		`
package demo

type Builder {
	fn build(self) {}
}

fn drive(b Builder) {
	b.build();
}
`)
	require.Error(t, err)
	require.Len(t, resolutions, 1)
	assert.True(t, resolutions[0].Result.Resolved())
}

// Package resolver implements member-call resolution: mapping a call
// intent plus its receiver type to exactly one callable target, or to a
// structured failure. Resolution is a pure function of the frozen
// repository and alias registry; argument types never break ties.
package resolver

import (
	"sort"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/frontend/registry"
	"martianoff/kera/keraerr"
)

// KeraResolver resolves call sites against one declaration snapshot.
type KeraResolver struct {
	repo    *registry.Repository
	aliases *registry.AliasRegistry
	workers int
}

// New creates a resolver over the given snapshot with the default worker
// count.
func New(repo *registry.Repository, aliases *registry.AliasRegistry) *KeraResolver {
	return NewWithWorkers(repo, aliases, 0)
}

// NewWithWorkers creates a resolver that fans ResolveAll across n workers.
// n < 1 selects a sensible default.
func NewWithWorkers(repo *registry.Repository, aliases *registry.AliasRegistry, n int) *KeraResolver {
	return &KeraResolver{repo: repo, aliases: aliases, workers: n}
}

var _ frontend.Resolver = (*KeraResolver)(nil)

// Resolve maps one call site to its target or failure.
func (r *KeraResolver) Resolve(site frontend.CallSite) frontend.ResolutionResult {
	recv := site.Receiver
	intent := site.Intent
	name := intent.Member

	switch intent.Qualifier.Kind {
	case frontend.QualifierDirect:
		cands := r.repo.LookupDirect(recv, name)
		if len(cands) == 0 {
			// Never falls back to a capability method, even when one exists;
			// the candidates are attached for the diagnostic only.
			return failure(keraerr.NewUnresolvedDirectMethodError(
				recv.String(), name, candidateRefs(r.repo.LookupPlain(recv, name))))
		}
		return resolved(cands[0])

	case frontend.QualifierAlias:
		cap, err := r.aliases.ResolveAlias(recv, intent.Qualifier.Path, site.CallerPkg)
		if err != nil {
			return failure(err)
		}
		return r.resolveCapability(recv, cap, name)

	case frontend.QualifierCapability:
		info, ok := r.repo.Capability(intent.Qualifier.Path, site.CallerPkg)
		if !ok {
			return failure(keraerr.NewUnknownCapabilityError(recv.String(), intent.Qualifier.Path))
		}
		return r.resolveCapability(recv, info.Ref, name)

	default:
		return r.resolvePlain(recv, name)
	}
}

// resolveCapability handles the explicit-capability and explicit-alias
// forms, which share the same candidate lookup and failure mode.
func (r *KeraResolver) resolveCapability(recv, cap frontend.TypeRef, name string) frontend.ResolutionResult {
	cands := r.repo.LookupCapability(recv, cap.Key(), name)
	if len(cands) == 0 {
		return failure(keraerr.NewUnresolvedCapabilityMethodError(
			recv.String(), cap.String(), name, candidateRefs(r.repo.LookupPlain(recv, name))))
	}
	// Records for one capability exist under disjoint bounds, so at most
	// one is applicable for a given instantiation.
	return resolved(cands[0])
}

func (r *KeraResolver) resolvePlain(recv frontend.TypeRef, name string) frontend.ResolutionResult {
	cands := r.repo.LookupPlain(recv, name)
	switch {
	case len(cands) == 0:
		return failure(keraerr.NewNoMethodFoundError(recv.String(), name))
	case len(cands) == 1:
		return resolved(cands[0])
	}
	// Direct methods win by default; the explicit forms exist to override
	// exactly this precedence.
	for _, c := range cands {
		if c.Capability == nil {
			return resolved(c)
		}
	}
	var caps []string
	seen := make(map[string]bool)
	for _, c := range cands {
		key := c.Capability.String()
		if !seen[key] {
			seen[key] = true
			caps = append(caps, key)
		}
	}
	sort.Strings(caps)
	return failure(keraerr.NewAmbiguousCapabilityMethodError(recv.String(), name, caps, candidateRefs(cands)))
}

func resolved(c frontend.Candidate) frontend.ResolutionResult {
	return frontend.ResolutionResult{Target: &c}
}

func failure(err error) frontend.ResolutionResult {
	return frontend.ResolutionResult{Failure: err}
}

func candidateRefs(cands []frontend.Candidate) []keraerr.CandidateRef {
	refs := make([]keraerr.CandidateRef, 0, len(cands))
	for _, c := range cands {
		refs = append(refs, keraerr.CandidateRef{Origin: c.Origin(), Method: c.Method})
	}
	return refs
}

// Package analyzer runs the declaration pass: it walks parsed units,
// populates the candidate repository and alias registry, validates alias
// and impl declarations, and extracts every member-call site with its
// receiver type bound. All declaration errors are collected so one pass
// reports as much as possible.
package analyzer

import (
	"fmt"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/frontend/registry"
	"martianoff/kera/internal/frontend/resolver"
	"martianoff/kera/keraerr"
)

type keraAnalyzer struct {
	workers int
}

// NewKeraAnalyzer creates a frontend.Analyzer implementation.
func NewKeraAnalyzer() frontend.Analyzer {
	return &keraAnalyzer{}
}

// NewKeraAnalyzerWithWorkers creates an analyzer whose resolvers fan
// resolution across n workers.
func NewKeraAnalyzerWithWorkers(n int) frontend.Analyzer {
	return &keraAnalyzer{workers: n}
}

var _ frontend.Analyzer = (*keraAnalyzer)(nil)

// Analyze builds the resolution snapshot from the units and returns a
// resolver bound to it plus every call site found. The snapshot is frozen
// before the resolver is handed out, so resolution reads immutable state.
func (a *keraAnalyzer) Analyze(units ...*frontend.Unit) (frontend.Resolver, []frontend.CallSite, error) {
	repo := registry.NewRepository()
	aliases := registry.NewAliasRegistry()
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	// 1. Capabilities and types first, so later passes can resolve paths.
	for _, unit := range units {
		for _, cap := range unit.Capabilities {
			ref := frontend.ParseTypeRef(cap.Name, unit.Package)
			collect(repo.DefineCapability(ref, cap.Methods))
		}
		for _, t := range unit.Types {
			ref := frontend.ParseTypeRef(t.Name, unit.Package)
			collect(repo.DefineType(ref, t.TypeParams))
		}
	}

	// 2. Implementation records.
	for _, unit := range units {
		for _, impl := range unit.Impls {
			capInfo, ok := repo.Capability(impl.Capability, unit.Package)
			if !ok {
				collect(keraerr.NewSemanticErrorAt(impl.Line, impl.Col,
					fmt.Sprintf("unknown capability %s", impl.Capability)))
				continue
			}
			typeRef := frontend.ParseTypeRef(impl.TypeName, unit.Package)
			where, whereErrs := a.resolveBounds(repo, impl.Where, unit.Package, impl.Pos)
			errs = append(errs, whereErrs...)
			var methods []registry.MethodDef
			for _, m := range impl.Methods {
				if !capabilityHasMethod(capInfo, m.Name) {
					collect(keraerr.NewSemanticErrorAt(m.Line, m.Col,
						fmt.Sprintf("capability %s has no method %s", capInfo.Ref, m.Name)))
					continue
				}
				methods = append(methods, registry.MethodDef{Name: m.Name, ByRef: m.ByRef})
			}
			collect(repo.DefineImpl(typeRef, capInfo.Ref, where, methods))
		}
	}

	// 3. Direct methods and aliases.
	for _, unit := range units {
		for _, t := range unit.Types {
			typeRef := frontend.ParseTypeRef(t.Name, unit.Package)
			for _, m := range t.Methods {
				where, whereErrs := a.resolveBounds(repo, m.Where, unit.Package, m.Pos)
				errs = append(errs, whereErrs...)
				collect(repo.DefineDirect(typeRef, registry.MethodDef{Name: m.Name, ByRef: m.ByRef, Where: where}))
			}
			for _, al := range t.Aliases {
				capInfo, ok := repo.Capability(al.Capability, unit.Package)
				if !ok {
					collect(keraerr.NewSemanticErrorAt(al.Line, al.Col,
						fmt.Sprintf("unknown capability %s", al.Capability)))
					continue
				}
				if !repo.HasAnyImpl(typeRef, capInfo.Ref.Key()) {
					collect(keraerr.NewSemanticErrorAt(al.Line, al.Col,
						fmt.Sprintf("type %s has no implementation of capability %s", typeRef.Key(), capInfo.Ref)))
					continue
				}
				vis := registry.VisibilityLocal
				if al.Exported {
					vis = registry.VisibilityExported
				}
				collect(aliases.DeclareAlias(typeRef, al.Alias, capInfo.Ref, vis, unit.Package))
			}
		}
	}

	// 4. Call sites, receiver types bound from the enclosing scope.
	var sites []frontend.CallSite
	for _, unit := range units {
		for _, fn := range unit.Funcs {
			s, fnErrs := a.collectCalls(unit, fn, frontend.TypeRef{})
			sites = append(sites, s...)
			errs = append(errs, fnErrs...)
		}
		for _, t := range unit.Types {
			selfRef := frontend.ParseTypeRef(t.Name, unit.Package)
			for _, m := range t.Methods {
				s, fnErrs := a.collectCalls(unit, m, selfRef)
				sites = append(sites, s...)
				errs = append(errs, fnErrs...)
			}
		}
		for _, impl := range unit.Impls {
			selfRef := frontend.ParseTypeRef(impl.TypeName, unit.Package)
			for _, m := range impl.Methods {
				s, fnErrs := a.collectCalls(unit, m, selfRef)
				sites = append(sites, s...)
				errs = append(errs, fnErrs...)
			}
		}
	}

	repo.Freeze()
	aliases.Freeze()

	res := resolver.NewWithWorkers(repo, aliases, a.workers)
	if len(errs) > 0 {
		return res, sites, &keraerr.MultiError{Errors: errs}
	}
	return res, sites, nil
}

// resolveBounds rewrites the written capability paths of a where clause to
// resolved capability keys.
func (a *keraAnalyzer) resolveBounds(repo *registry.Repository, bounds []frontend.Bound, pkg string, pos frontend.Pos) ([]frontend.Bound, []error) {
	var out []frontend.Bound
	var errs []error
	for _, b := range bounds {
		resolved := frontend.Bound{TypeParam: b.TypeParam}
		for _, path := range b.Capabilities {
			info, ok := repo.Capability(path, pkg)
			if !ok {
				errs = append(errs, keraerr.NewSemanticErrorAt(pos.Line, pos.Col,
					fmt.Sprintf("unknown capability %s in where clause", path)))
				continue
			}
			resolved.Capabilities = append(resolved.Capabilities, info.Ref.Key())
		}
		out = append(out, resolved)
	}
	return out, errs
}

// collectCalls binds each call's receiver expression to a type using the
// function's parameter scope (plus self for methods).
func (a *keraAnalyzer) collectCalls(unit *frontend.Unit, fn *frontend.FnDecl, selfRef frontend.TypeRef) ([]frontend.CallSite, []error) {
	scope := make(map[string]frontend.TypeRef, len(fn.Params)+1)
	if !selfRef.IsZero() {
		scope["self"] = selfRef
	}
	for _, p := range fn.Params {
		scope[p.Name] = frontend.ParseTypeRef(p.Type, unit.Package)
	}

	var sites []frontend.CallSite
	var errs []error
	for _, call := range fn.Calls {
		recv, ok := scope[call.Receiver]
		if !ok {
			errs = append(errs, keraerr.NewSemanticErrorAt(call.Line, call.Col,
				fmt.Sprintf("unknown receiver %s in function %s", call.Receiver, fn.Name)))
			continue
		}
		sites = append(sites, frontend.CallSite{
			Fn:        fn.Name,
			CallerPkg: unit.Package,
			Receiver:  recv,
			Intent:    call,
		})
	}
	return sites, errs
}

func capabilityHasMethod(info *registry.CapabilityInfo, name string) bool {
	for _, m := range info.Methods {
		if m.Name == name {
			return true
		}
	}
	return false
}

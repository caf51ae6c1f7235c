package registry

import (
	"sync"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/keraerr"
)

// Visibility gates whether an alias may be used from outside its declaring
// package.
type Visibility int

const (
	VisibilityLocal Visibility = iota
	VisibilityExported
)

// AliasRecord maps an alias name declared on a type to one specific
// capability. It introduces no method bodies of its own.
type AliasRecord struct {
	Type       frontend.TypeRef
	Alias      string
	Capability frontend.TypeRef
	Visibility Visibility
	Package    string
}

// AliasRegistry stores the alias records of every type, keyed by type and
// alias name. Same two-phase lifecycle as the Repository.
//
// Thread-safe: all methods can be called concurrently.
type AliasRegistry struct {
	mu     sync.RWMutex
	frozen bool

	// aliases maps type key -> alias name -> record
	aliases map[string]map[string]*AliasRecord
}

// NewAliasRegistry creates an empty alias registry.
func NewAliasRegistry() *AliasRegistry {
	return &AliasRegistry{aliases: make(map[string]map[string]*AliasRecord)}
}

// Freeze ends the write phase.
func (r *AliasRegistry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// DeclareAlias records alias -> cap on the type. The reserved direct name
// can never be declared, and no two aliases on one type may share a name.
func (r *AliasRegistry) DeclareAlias(typeRef frontend.TypeRef, alias string, cap frontend.TypeRef, vis Visibility, declaringPkg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return keraerr.NewSemanticError("alias registry is frozen; declarations must precede resolution")
	}
	key := typeRef.Key()
	if alias == frontend.ReservedDirectName {
		return keraerr.NewReservedNameError(key, alias)
	}
	if _, ok := r.aliases[key][alias]; ok {
		return keraerr.NewDuplicateAliasError(key, alias)
	}
	if r.aliases[key] == nil {
		r.aliases[key] = make(map[string]*AliasRecord)
	}
	r.aliases[key][alias] = &AliasRecord{
		Type:       typeRef.Base(),
		Alias:      alias,
		Capability: cap,
		Visibility: vis,
		Package:    declaringPkg,
	}
	return nil
}

// ResolveAlias returns the capability an alias refers to on the type.
// Fails with UnknownAliasError if the alias does not exist, or with
// VisibilityError if it is package-local and callerPkg differs from the
// declaring package.
func (r *AliasRegistry) ResolveAlias(typeRef frontend.TypeRef, alias, callerPkg string) (frontend.TypeRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := typeRef.Key()
	rec, ok := r.aliases[key][alias]
	if !ok {
		return frontend.TypeRef{}, keraerr.NewUnknownAliasError(key, alias)
	}
	if rec.Visibility == VisibilityLocal && callerPkg != rec.Package {
		return frontend.TypeRef{}, keraerr.NewVisibilityError(key, alias, callerPkg)
	}
	return rec.Capability, nil
}

// Aliases returns the alias records declared on the type. Used by
// diagnostics to suggest explicit forms.
func (r *AliasRegistry) Aliases(typeRef frontend.TypeRef) []*AliasRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*AliasRecord, 0, len(r.aliases[typeRef.Key()]))
	for _, rec := range r.aliases[typeRef.Key()] {
		out = append(out, rec)
	}
	return out
}

// Package registry holds the per-unit declaration state consulted during
// call resolution: the candidate repository (direct method definitions and
// capability implementation records) and the alias registry.
//
// Both stores follow a strict two-phase lifecycle: a write phase while the
// analyzer processes declarations, then Freeze, then a read-only resolution
// phase. Writes after Freeze are rejected, which keeps resolution a pure
// function of the snapshot.
package registry

import (
	"fmt"
	"sync"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/keraerr"
)

// Instantiation maps a type parameter name to the concrete type argument of
// the receiver at a call site.
type Instantiation map[string]frontend.TypeRef

// MethodDef is one concrete method body attached to a type, either directly
// or through an implementation record. Where carries applicability bounds
// (capability keys, already resolved by the analyzer).
type MethodDef struct {
	Name  string
	ByRef bool
	Where []frontend.Bound
}

// ImplRecord binds one capability to one type under applicability bounds.
type ImplRecord struct {
	Type       frontend.TypeRef
	Capability frontend.TypeRef
	Where      []frontend.Bound
	Methods    map[string]MethodDef
}

// CapabilityInfo describes a declared capability contract.
type CapabilityInfo struct {
	Ref     frontend.TypeRef
	Methods []frontend.MethodSig
}

// Repository is the candidate repository: per-type direct method
// definitions and capability implementation records, plus the declared
// type and capability tables needed to evaluate applicability.
//
// Thread-safe: all methods can be called concurrently.
type Repository struct {
	mu     sync.RWMutex
	frozen bool

	// typeParams maps a type key to its declared type parameter names
	typeParams map[string][]string

	// capabilities maps a capability key to its contract
	capabilities map[string]*CapabilityInfo

	// direct maps type key -> method name -> direct definition
	direct map[string]map[string]MethodDef

	// impls maps type key -> implementation records
	impls map[string][]*ImplRecord
}

// NewRepository creates an empty candidate repository.
func NewRepository() *Repository {
	return &Repository{
		typeParams:   make(map[string][]string),
		capabilities: make(map[string]*CapabilityInfo),
		direct:       make(map[string]map[string]MethodDef),
		impls:        make(map[string][]*ImplRecord),
	}
}

// Freeze ends the write phase. Every Define call afterwards fails.
func (r *Repository) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *Repository) frozenErr() error {
	return keraerr.NewSemanticError("candidate repository is frozen; declarations must precede resolution")
}

// DefineType registers a declared type and its type parameter names.
func (r *Repository) DefineType(ref frontend.TypeRef, params []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return r.frozenErr()
	}
	key := ref.Key()
	if _, ok := r.typeParams[key]; ok {
		return keraerr.NewSemanticError(fmt.Sprintf("type %s is already declared", key))
	}
	r.typeParams[key] = params
	return nil
}

// DefineCapability registers a capability contract.
func (r *Repository) DefineCapability(ref frontend.TypeRef, methods []frontend.MethodSig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return r.frozenErr()
	}
	key := ref.Key()
	if _, ok := r.capabilities[key]; ok {
		return keraerr.NewSemanticError(fmt.Sprintf("capability %s is already declared", key))
	}
	r.capabilities[key] = &CapabilityInfo{Ref: ref, Methods: methods}
	return nil
}

// DefineDirect registers a direct method definition for a type. At most one
// definition per (type, name) pair.
func (r *Repository) DefineDirect(ref frontend.TypeRef, def MethodDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return r.frozenErr()
	}
	key := ref.Key()
	if r.direct[key] == nil {
		r.direct[key] = make(map[string]MethodDef)
	}
	if _, ok := r.direct[key][def.Name]; ok {
		return keraerr.NewSemanticError(fmt.Sprintf("method %s is already defined on type %s", def.Name, key))
	}
	r.direct[key][def.Name] = def
	return nil
}

// DefineImpl registers an implementation record binding capability cap to
// the type, valid under the given bounds.
func (r *Repository) DefineImpl(ref, cap frontend.TypeRef, where []frontend.Bound, methods []MethodDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return r.frozenErr()
	}
	rec := &ImplRecord{
		Type:       ref.Base(),
		Capability: cap,
		Where:      where,
		Methods:    make(map[string]MethodDef, len(methods)),
	}
	for _, m := range methods {
		rec.Methods[m.Name] = m
	}
	key := ref.Key()
	r.impls[key] = append(r.impls[key], rec)
	return nil
}

// Capability resolves a written capability path to its contract. An
// unqualified path is tried in the caller's package first, then as a unique
// bare name across packages.
func (r *Repository) Capability(path, callerPkg string) (*CapabilityInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.capabilityLocked(path, callerPkg)
}

func (r *Repository) capabilityLocked(path, callerPkg string) (*CapabilityInfo, bool) {
	if info, ok := r.capabilities[path]; ok {
		return info, true
	}
	if callerPkg != "" {
		if info, ok := r.capabilities[callerPkg+"."+path]; ok {
			return info, true
		}
	}
	// Unique bare-name match across packages.
	var found *CapabilityInfo
	for _, info := range r.capabilities {
		if info.Ref.Name == path {
			if found != nil {
				return nil, false
			}
			found = info
		}
	}
	return found, found != nil
}

// TypeParams returns the declared type parameter names for a type key.
func (r *Repository) TypeParams(key string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.typeParams[key]
}

// Instantiate binds the receiver's concrete type arguments to the declared
// type parameters positionally.
func (r *Repository) Instantiate(recv frontend.TypeRef) Instantiation {
	params := r.TypeParams(recv.Key())
	inst := make(Instantiation, len(params))
	for i, p := range params {
		if i < len(recv.Args) {
			inst[p] = recv.Args[i]
		}
	}
	return inst
}

// LookupDirect returns the direct method definition for name on the
// receiver, if present and applicable for this instantiation. The per-key
// uniqueness of direct definitions means the result has at most one entry.
func (r *Repository) LookupDirect(recv frontend.TypeRef, name string) []frontend.Candidate {
	inst := r.Instantiate(recv)
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.direct[recv.Key()][name]
	if !ok || !r.applicableLocked(def.Where, inst) {
		return nil
	}
	return []frontend.Candidate{{Type: recv, Method: name, ByRef: def.ByRef}}
}

// LookupCapability returns the candidates supplied by the implementation
// records of exactly the given capability (by key) that are applicable for
// this instantiation and supply the method. It never falls back to another
// capability or to direct definitions.
func (r *Repository) LookupCapability(recv frontend.TypeRef, capKey, name string) []frontend.Candidate {
	inst := r.Instantiate(recv)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []frontend.Candidate
	for _, rec := range r.impls[recv.Key()] {
		if rec.Capability.Key() != capKey {
			continue
		}
		def, ok := rec.Methods[name]
		if !ok || !r.applicableLocked(rec.Where, inst) {
			continue
		}
		capRef := rec.Capability
		out = append(out, frontend.Candidate{Type: recv, Capability: &capRef, Method: name, ByRef: def.ByRef})
	}
	return out
}

// LookupPlain returns the union of the direct definition for name (if
// present and applicable) and every applicable implementation record
// supplying name.
func (r *Repository) LookupPlain(recv frontend.TypeRef, name string) []frontend.Candidate {
	inst := r.Instantiate(recv)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []frontend.Candidate
	if def, ok := r.direct[recv.Key()][name]; ok && r.applicableLocked(def.Where, inst) {
		out = append(out, frontend.Candidate{Type: recv, Method: name, ByRef: def.ByRef})
	}
	for _, rec := range r.impls[recv.Key()] {
		def, ok := rec.Methods[name]
		if !ok || !r.applicableLocked(rec.Where, inst) {
			continue
		}
		capRef := rec.Capability
		out = append(out, frontend.Candidate{Type: recv, Capability: &capRef, Method: name, ByRef: def.ByRef})
	}
	return out
}

// applicableLocked reports whether every bound is satisfied: each bound
// type parameter must be instantiated with a type that has an applicable
// implementation of every required capability.
func (r *Repository) applicableLocked(where []frontend.Bound, inst Instantiation) bool {
	for _, b := range where {
		arg, ok := inst[b.TypeParam]
		if !ok {
			return false
		}
		for _, capKey := range b.Capabilities {
			if !r.hasImplLocked(arg, capKey) {
				return false
			}
		}
	}
	return true
}

func (r *Repository) hasImplLocked(t frontend.TypeRef, capKey string) bool {
	inst := make(Instantiation)
	for i, p := range r.typeParams[t.Key()] {
		if i < len(t.Args) {
			inst[p] = t.Args[i]
		}
	}
	for _, rec := range r.impls[t.Key()] {
		if rec.Capability.Key() == capKey && r.applicableLocked(rec.Where, inst) {
			return true
		}
	}
	return false
}

// HasImpl reports whether the type has any applicable implementation of
// the capability identified by capKey.
func (r *Repository) HasImpl(t frontend.TypeRef, capKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasImplLocked(t, capKey)
}

// HasAnyImpl reports whether the type has an implementation record for the
// capability at all, applicable or not. Alias declarations are validated
// with this: an alias needs a record to refer to, even one whose bounds
// only hold for some instantiations.
func (r *Repository) HasAnyImpl(t frontend.TypeRef, capKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.impls[t.Key()] {
		if rec.Capability.Key() == capKey {
			return true
		}
	}
	return false
}

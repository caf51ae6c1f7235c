package keraerr

import (
	"fmt"
	"strings"
)

// Stable diagnostic codes for resolution failures. External formatters key
// off these, so they must not change between releases.
const (
	CodeDuplicateAlias     = "E_DUP_ALIAS"
	CodeReservedName       = "E_RESERVED"
	CodeUnknownAlias       = "E_UNKNOWN_ALIAS"
	CodeAliasPrivate       = "E_ALIAS_PRIVATE"
	CodeUnknownCapability  = "E_UNKNOWN_CAP"
	CodeNoDirectMethod     = "E_NO_DIRECT"
	CodeNoCapabilityMethod = "E_NO_CAP_METHOD"
	CodeNoMethod           = "E_NO_METHOD"
	CodeAmbiguousMethod    = "E_AMBIGUOUS"
)

// CandidateRef identifies one candidate considered during resolution:
// the method name and its origin, either a capability path or "direct".
type CandidateRef struct {
	Origin string
	Method string
}

func (c CandidateRef) String() string {
	return fmt.Sprintf("%s (from %s)", c.Method, c.Origin)
}

// ResolutionFailure is implemented by every call-resolution and
// alias-declaration failure. It carries everything an external reporter
// needs to render a source-located message.
type ResolutionFailure interface {
	KeraError
	Code() string
	ReceiverType() string
	QualifierText() string
	CandidateList() []CandidateRef
}

// resolutionError is the shared core of all resolution failures.
type resolutionError struct {
	BaseError
	ErrCode    string
	Receiver   string
	Qualifier  string
	Candidates []CandidateRef
}

func (e *resolutionError) Code() string                  { return e.ErrCode }
func (e *resolutionError) ReceiverType() string          { return e.Receiver }
func (e *resolutionError) QualifierText() string         { return e.Qualifier }
func (e *resolutionError) CandidateList() []CandidateRef { return e.Candidates }

func (e *resolutionError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.ErrType, e.ErrCode, e.Msg)
}

func newResolutionError(code, receiver, qualifier, msg string, cands []CandidateRef) resolutionError {
	return resolutionError{
		BaseError:  BaseError{Msg: msg, ErrType: TypeResolution},
		ErrCode:    code,
		Receiver:   receiver,
		Qualifier:  qualifier,
		Candidates: cands,
	}
}

// DuplicateAliasError reports two alias declarations on one type sharing a name.
type DuplicateAliasError struct {
	resolutionError
	Alias string
}

// NewDuplicateAliasError creates a DuplicateAliasError for typeName/alias.
func NewDuplicateAliasError(typeName, alias string) *DuplicateAliasError {
	return &DuplicateAliasError{
		resolutionError: newResolutionError(CodeDuplicateAlias, typeName, alias,
			fmt.Sprintf("alias '%s' is already declared on type %s", alias, typeName), nil),
		Alias: alias,
	}
}

// ReservedNameError reports an alias declaration reusing the reserved direct name.
type ReservedNameError struct {
	resolutionError
	Alias string
}

// NewReservedNameError creates a ReservedNameError for typeName/alias.
func NewReservedNameError(typeName, alias string) *ReservedNameError {
	return &ReservedNameError{
		resolutionError: newResolutionError(CodeReservedName, typeName, alias,
			fmt.Sprintf("'%s' is reserved for direct methods and cannot be declared as an alias on type %s", alias, typeName), nil),
		Alias: alias,
	}
}

// UnknownAliasError reports an alias-qualified call naming an alias the
// receiver type does not declare.
type UnknownAliasError struct {
	resolutionError
	Alias string
}

// NewUnknownAliasError creates an UnknownAliasError for typeName/alias.
func NewUnknownAliasError(typeName, alias string) *UnknownAliasError {
	return &UnknownAliasError{
		resolutionError: newResolutionError(CodeUnknownAlias, typeName, alias,
			fmt.Sprintf("type %s has no alias '%s'", typeName, alias), nil),
		Alias: alias,
	}
}

// VisibilityError reports use of a package-local alias from outside the
// declaring package.
type VisibilityError struct {
	resolutionError
	Alias     string
	CallerPkg string
}

// NewVisibilityError creates a VisibilityError for typeName/alias used from callerPkg.
func NewVisibilityError(typeName, alias, callerPkg string) *VisibilityError {
	return &VisibilityError{
		resolutionError: newResolutionError(CodeAliasPrivate, typeName, alias,
			fmt.Sprintf("alias '%s' on type %s is not exported and cannot be used from package %s", alias, typeName, callerPkg), nil),
		Alias:     alias,
		CallerPkg: callerPkg,
	}
}

// UnknownCapabilityError reports an explicit-capability call naming a
// capability that is not declared in scope.
type UnknownCapabilityError struct {
	resolutionError
	Capability string
}

// NewUnknownCapabilityError creates an UnknownCapabilityError for the path text.
func NewUnknownCapabilityError(receiver, capability string) *UnknownCapabilityError {
	return &UnknownCapabilityError{
		resolutionError: newResolutionError(CodeUnknownCapability, receiver, capability,
			fmt.Sprintf("unknown capability '%s'", capability), nil),
		Capability: capability,
	}
}

// UnresolvedDirectMethodError reports an explicit-direct call naming a method
// absent from (or inapplicable among) the type's direct definitions.
type UnresolvedDirectMethodError struct {
	resolutionError
	Method string
}

// NewUnresolvedDirectMethodError creates the failure for typeName.method.
func NewUnresolvedDirectMethodError(typeName, method string, cands []CandidateRef) *UnresolvedDirectMethodError {
	return &UnresolvedDirectMethodError{
		resolutionError: newResolutionError(CodeNoDirectMethod, typeName, "Self",
			fmt.Sprintf("type %s has no applicable direct method '%s'", typeName, method), cands),
		Method: method,
	}
}

// UnresolvedCapabilityMethodError reports an explicit-capability or
// explicit-alias call where the capability is inapplicable for this
// instantiation or lacks the method. It never substitutes another capability.
type UnresolvedCapabilityMethodError struct {
	resolutionError
	Capability string
	Method     string
}

// NewUnresolvedCapabilityMethodError creates the failure for typeName and capability.method.
func NewUnresolvedCapabilityMethodError(typeName, capability, method string, cands []CandidateRef) *UnresolvedCapabilityMethodError {
	return &UnresolvedCapabilityMethodError{
		resolutionError: newResolutionError(CodeNoCapabilityMethod, typeName, capability,
			fmt.Sprintf("capability %s provides no applicable method '%s' for type %s", capability, method, typeName), cands),
		Capability: capability,
		Method:     method,
	}
}

// NoMethodFoundError reports a plain call with zero candidates.
type NoMethodFoundError struct {
	resolutionError
	Method string
}

// NewNoMethodFoundError creates the failure for typeName.method.
func NewNoMethodFoundError(typeName, method string) *NoMethodFoundError {
	return &NoMethodFoundError{
		resolutionError: newResolutionError(CodeNoMethod, typeName, "",
			fmt.Sprintf("type %s has no method '%s'", typeName, method), nil),
		Method: method,
	}
}

// AmbiguousCapabilityMethodError reports a plain call where two or more
// applicable capability implementations supply the same method name and no
// direct definition breaks the tie.
type AmbiguousCapabilityMethodError struct {
	resolutionError
	Method       string
	Capabilities []string
}

// NewAmbiguousCapabilityMethodError creates the failure naming every contending capability.
func NewAmbiguousCapabilityMethodError(typeName, method string, capabilities []string, cands []CandidateRef) *AmbiguousCapabilityMethodError {
	return &AmbiguousCapabilityMethodError{
		resolutionError: newResolutionError(CodeAmbiguousMethod, typeName, "",
			fmt.Sprintf("ambiguous call to '%s' on type %s: provided by capabilities %s", method, typeName, strings.Join(capabilities, ", ")), cands),
		Method:       method,
		Capabilities: capabilities,
	}
}

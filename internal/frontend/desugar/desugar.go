// Package desugar rewrites resolved member calls into the canonical
// qualified static call form consumed by the rest of the toolchain:
// Qualifier::Member(receiver, args...).
package desugar

import (
	"strings"

	"martianoff/kera/internal/frontend"
)

// CanonicalCall is the desugared form of one resolved member call. The
// receiver appears as the first argument, with an explicit '&' when the
// target takes it by reference, since a static call applies no automatic
// referencing.
type CanonicalCall struct {
	Qualifier string
	Method    string
	Receiver  string
	Args      []string
}

func (c CanonicalCall) String() string {
	var sb strings.Builder
	sb.WriteString(c.Qualifier)
	sb.WriteString("::")
	sb.WriteString(c.Method)
	sb.WriteString("(")
	sb.WriteString(c.Receiver)
	for _, a := range c.Args {
		sb.WriteString(", ")
		sb.WriteString(a)
	}
	sb.WriteString(")")
	return sb.String()
}

// Desugar emits the canonical static call for a resolved target. The
// receiver and argument expressions are carried over verbatim and in
// written order, so the desugared call evaluates exactly like the original
// member-call form.
func Desugar(target frontend.Candidate, intent frontend.CallIntent) CanonicalCall {
	qualifier := target.Type.Base().String()
	if target.Capability != nil {
		qualifier = target.Capability.String()
	}
	receiver := intent.Receiver
	if target.ByRef {
		receiver = "&" + receiver
	}
	return CanonicalCall{
		Qualifier: qualifier,
		Method:    target.Method,
		Receiver:  receiver,
		Args:      intent.Args,
	}
}

// Package diag turns resolution failures into user-facing diagnostics:
// stable code, source position, the candidates considered, and concrete
// explicit-form rewrites the caller can apply.
package diag

import (
	"fmt"
	"strings"

	"martianoff/kera/internal/frontend"
	"martianoff/kera/internal/parser"
	"martianoff/kera/keraerr"
)

// Diagnostic is one renderable resolution failure.
type Diagnostic struct {
	Code        string
	Line        int
	Col         int
	Message     string
	Candidates  []keraerr.CandidateRef
	Suggestions []string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%d: %s: %s", d.Line, d.Col, d.Code, d.Message)
	for _, c := range d.Candidates {
		fmt.Fprintf(&sb, "\n  candidate: %s", c)
	}
	for _, s := range d.Suggestions {
		fmt.Fprintf(&sb, "\n  try: %s", s)
	}
	return sb.String()
}

// Reporter renders diagnostics; the sigil option keeps suggested rewrites
// in the same surface syntax the parser accepted.
type Reporter struct {
	sigil parser.Sigil
}

// NewReporter creates a Reporter for the given capability sigil.
func NewReporter(sigil parser.Sigil) *Reporter {
	return &Reporter{sigil: sigil}
}

// Report maps one resolution outcome to a diagnostic. The second return is
// false when the call resolved and there is nothing to report.
func (r *Reporter) Report(res frontend.Resolution) (Diagnostic, bool) {
	if res.Result.Failure == nil {
		return Diagnostic{}, false
	}
	intent := res.Site.Intent
	d := Diagnostic{
		Line:    intent.Line,
		Col:     intent.Col,
		Message: res.Result.Failure.Error(),
	}
	if rf, ok := res.Result.Failure.(keraerr.ResolutionFailure); ok {
		d.Code = rf.Code()
		d.Candidates = rf.CandidateList()
		d.Suggestions = r.suggestions(intent, rf.CandidateList())
	}
	return d, true
}

// ReportAll renders the diagnostics of every failed resolution, in order.
func (r *Reporter) ReportAll(resolutions []frontend.Resolution) []Diagnostic {
	var out []Diagnostic
	for _, res := range resolutions {
		if d, ok := r.Report(res); ok {
			out = append(out, d)
		}
	}
	return out
}

// suggestions lists the exact explicit-form syntax reaching each candidate
// that was considered.
func (r *Reporter) suggestions(intent frontend.CallIntent, cands []keraerr.CandidateRef) []string {
	var out []string
	for _, c := range cands {
		var qualifier string
		if c.Origin == "direct" {
			qualifier = frontend.ReservedDirectName
		} else if r.sigil == parser.SigilParen {
			qualifier = "(" + c.Origin + ")"
		} else {
			qualifier = "<" + c.Origin + ">"
		}
		out = append(out, fmt.Sprintf("%s.%s::%s(%s)",
			intent.Receiver, qualifier, intent.Member, strings.Join(intent.Args, ", ")))
	}
	return out
}

// Package frontend defines the KERA frontend pipeline: parsing declaration
// units, building the resolution state, and resolving every member call to
// a unique target or a structured failure.
package frontend

import (
	"martianoff/kera/keraerr"
)

// Parser parses KERA source text into a declaration unit.
type Parser interface {
	Parse(input string) (*Unit, error)
}

// Analyzer builds the candidate repository and alias registry from parsed
// units and returns a Resolver bound to that frozen state, together with
// every call site found in the units. Declaration errors are collected, not
// fail-fast; a non-nil error accompanies whatever state could be built.
type Analyzer interface {
	Analyze(units ...*Unit) (Resolver, []CallSite, error)
}

// Resolver maps call sites to resolution outcomes over an immutable
// declaration snapshot.
type Resolver interface {
	Resolve(site CallSite) ResolutionResult
	ResolveAll(sites []CallSite) []Resolution
}

// Frontend orchestrates the check pipeline.
type Frontend struct {
	parser   Parser
	analyzer Analyzer
}

// New creates a Frontend with its dependencies.
func New(parser Parser, analyzer Analyzer) *Frontend {
	return &Frontend{parser: parser, analyzer: analyzer}
}

// Check parses every input, analyzes the declarations, and resolves all
// member calls. Resolutions come back in source order. The error aggregates
// syntax and declaration problems; resolution failures are carried inside
// the individual Resolution values so one pass reports as much as possible.
func (f *Frontend) Check(inputs ...string) ([]Resolution, error) {
	var units []*Unit
	var errs []error
	for _, input := range inputs {
		unit, err := f.parser.Parse(input)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		units = append(units, unit)
	}

	resolver, sites, err := f.analyzer.Analyze(units...)
	if err != nil {
		errs = append(errs, err)
	}

	var resolutions []Resolution
	if resolver != nil {
		resolutions = resolver.ResolveAll(sites)
	}

	if len(errs) > 0 {
		return resolutions, flatten(errs)
	}
	return resolutions, nil
}

func flatten(errs []error) error {
	var all []error
	for _, err := range errs {
		if multi, ok := err.(*keraerr.MultiError); ok {
			all = append(all, multi.Errors...)
			continue
		}
		all = append(all, err)
	}
	if len(all) == 1 {
		return all[0]
	}
	return &keraerr.MultiError{Errors: all}
}

package validator

import "github.com/agentstation/labelsync/pkg/dataset"

// Lookup locates the annotation file of an image stem.
type Lookup interface {
	Label(stem string) (path string, ok bool)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(stem string) (string, bool)

// Label implements Lookup.
func (f LookupFunc) Label(stem string) (string, bool) {
	return f(stem)
}

type candidateLookup map[string]dataset.AnnotationCandidate

// LookupFromCandidates maps each canonical base name to one candidate.
// When several candidates share a base, the newest one wins and ties keep
// the first in listing order, so an unreconciled tree validates the same
// way it would after a default reconcile.
func LookupFromCandidates(candidates []dataset.AnnotationCandidate) Lookup {
	m := make(candidateLookup, len(candidates))
	for _, c := range candidates {
		prev, ok := m[c.Base]
		if !ok || c.ModTime > prev.ModTime {
			m[c.Base] = c
		}
	}
	return m
}

func (m candidateLookup) Label(stem string) (string, bool) {
	c, ok := m[stem]
	if !ok {
		return "", false
	}
	return c.Path, true
}

package graph

import (
	"sort"
	"strings"
)

// Resolver maps base-type and usage names, as written in source, onto the
// type nodes discovered in the same build. It is constructed once per build,
// after the full node set is known, so later-discovered files retroactively
// resolve earlier references.
//
// Resolution is ambiguity-tolerant: an exact fully-qualified match wins,
// then a simple-name match in the referencing type's own namespace, then the
// lexicographically first simple-name match. Names matching nothing stay
// unresolved; the caller keeps the edge with a target id no node answers to.
type Resolver struct {
	byFQN    map[string]*TypeNode
	bySimple map[string][]*TypeNode
	// Ambiguous counts cross-namespace first-lexical-match picks, so
	// callers can surface the heuristic's guesses as warnings.
	Ambiguous int
}

// NewResolver indexes the given type nodes. Candidate lists are sorted by
// full name so the first-lexical-match fallback is deterministic across
// rebuilds.
func NewResolver(types map[string]*TypeNode) *Resolver {
	r := &Resolver{
		byFQN:    make(map[string]*TypeNode, len(types)),
		bySimple: make(map[string][]*TypeNode),
	}
	for _, t := range types {
		r.byFQN[t.FullName] = t
		r.bySimple[t.Name] = append(r.bySimple[t.Name], t)
	}
	for _, candidates := range r.bySimple {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].FullName < candidates[j].FullName
		})
	}
	return r
}

// Resolve maps a referenced name to a known type node. fromNS is the
// namespace of the referencing type. The second result is false when the
// name resolves to nothing in the scanned solution.
func (r *Resolver) Resolve(name, fromNS string) (*TypeNode, bool) {
	name = stripGenericArgs(name)
	if name == "" {
		return nil, false
	}

	if t, ok := r.byFQN[name]; ok {
		return t, true
	}

	simple := name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		simple = name[idx+1:]
	}

	candidates := r.bySimple[simple]
	if len(candidates) == 0 {
		return nil, false
	}

	for _, c := range candidates {
		if c.Namespace == fromNS {
			return c, true
		}
	}

	if len(candidates) > 1 {
		r.Ambiguous++
	}
	return candidates[0], true
}

// TargetID returns the edge target id for a referenced name: the resolved
// node's id, or a type id carrying the written name as an unresolved
// reference.
func (r *Resolver) TargetID(name, fromNS string) (id string, resolved bool, target *TypeNode) {
	if t, ok := r.Resolve(name, fromNS); ok {
		return t.ID, true, t
	}
	return TypeID(stripGenericArgs(name)), false, nil
}

// stripGenericArgs drops a trailing generic argument list:
// "List<Foo>" -> "List".
func stripGenericArgs(name string) string {
	if idx := strings.Index(name, "<"); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

package graph

import "sort"

// SolutionGraph is the assembled typed multigraph. It is populated by a
// single Builder during one Build call and read-only afterwards; every query
// method is safe for concurrent use once Build has returned.
type SolutionGraph struct {
	solution   *SolutionNode
	projects   map[string]*ProjectNode
	files      map[string]*FileNode
	types      map[string]*TypeNode
	namespaces map[string]*NamespaceNode
	packages   map[string]*PackageNode
	edges      []Edge

	// Derived indexes, built once by freeze.
	edgesFrom map[string][]int
	edgesTo   map[string][]int
	typesByNS map[string][]string // namespace -> sorted type ids
	byFQN     map[string]string   // full name -> type id

	diags []Diagnostic
}

func newSolutionGraph() *SolutionGraph {
	return &SolutionGraph{
		projects:   make(map[string]*ProjectNode),
		files:      make(map[string]*FileNode),
		types:      make(map[string]*TypeNode),
		namespaces: make(map[string]*NamespaceNode),
		packages:   make(map[string]*PackageNode),
	}
}

// freeze builds the derived indexes. Called exactly once, by the builder,
// after the last write.
func (g *SolutionGraph) freeze() {
	g.edgesFrom = make(map[string][]int)
	g.edgesTo = make(map[string][]int)
	for i, e := range g.edges {
		g.edgesFrom[e.Source] = append(g.edgesFrom[e.Source], i)
		g.edgesTo[e.Target] = append(g.edgesTo[e.Target], i)
	}

	g.typesByNS = make(map[string][]string)
	g.byFQN = make(map[string]string, len(g.types))
	for id, t := range g.types {
		g.byFQN[t.FullName] = id
		g.typesByNS[t.Namespace] = append(g.typesByNS[t.Namespace], id)
	}
	for _, ids := range g.typesByNS {
		sort.Strings(ids)
	}
}

// --- Node lookups ---

// Solution returns the entry solution node, or nil when the build started
// from a bare project manifest.
func (g *SolutionGraph) Solution() *SolutionNode { return g.solution }

// Node returns the node with the given id and its kind. The second result is
// false for ids with no node behind them, unresolved references included.
func (g *SolutionGraph) Node(id string) (any, bool) {
	if g.solution != nil && g.solution.ID == id {
		return g.solution, true
	}
	if n, ok := g.projects[id]; ok {
		return n, true
	}
	if n, ok := g.files[id]; ok {
		return n, true
	}
	if n, ok := g.types[id]; ok {
		return n, true
	}
	if n, ok := g.namespaces[id]; ok {
		return n, true
	}
	if n, ok := g.packages[id]; ok {
		return n, true
	}
	return nil, false
}

// IsResolved reports whether an edge target id corresponds to a known node.
func (g *SolutionGraph) IsResolved(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// NodeIDsOfKind returns the sorted ids of every node of the given kind.
func (g *SolutionGraph) NodeIDsOfKind(kind NodeKind) []string {
	var ids []string
	switch kind {
	case NodeKindSolution:
		if g.solution != nil {
			ids = append(ids, g.solution.ID)
		}
	case NodeKindProject:
		for id := range g.projects {
			ids = append(ids, id)
		}
	case NodeKindFile:
		for id := range g.files {
			ids = append(ids, id)
		}
	case NodeKindType:
		for id := range g.types {
			ids = append(ids, id)
		}
	case NodeKindNamespace:
		for id := range g.namespaces {
			ids = append(ids, id)
		}
	case NodeKindPackage:
		for id := range g.packages {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Project returns the project node with the given id.
func (g *SolutionGraph) Project(id string) *ProjectNode { return g.projects[id] }

// File returns the file node with the given id.
func (g *SolutionGraph) File(id string) *FileNode { return g.files[id] }

// Type returns the type node with the given id.
func (g *SolutionGraph) Type(id string) *TypeNode { return g.types[id] }

// Namespace returns the namespace node with the given id.
func (g *SolutionGraph) Namespace(id string) *NamespaceNode { return g.namespaces[id] }

// Package returns the package node with the given id.
func (g *SolutionGraph) Package(id string) *PackageNode { return g.packages[id] }

// --- Reverse lookups ---

// ProjectForFile returns the project containing the given file.
func (g *SolutionGraph) ProjectForFile(fileID string) *ProjectNode {
	f := g.files[fileID]
	if f == nil {
		return nil
	}
	return g.projects[f.ProjectID]
}

// FileForType returns the file declaring the given type. Every type node has
// exactly one declaring file.
func (g *SolutionGraph) FileForType(typeID string) *FileNode {
	t := g.types[typeID]
	if t == nil {
		return nil
	}
	return g.files[t.FileID]
}

// TypesInNamespace returns the types declared in the given namespace,
// ordered by id.
func (g *SolutionGraph) TypesInNamespace(ns string) []*TypeNode {
	ids := g.typesByNS[ns]
	out := make([]*TypeNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.types[id])
	}
	return out
}

// TypeByFullName finds a type node by fully-qualified name.
func (g *SolutionGraph) TypeByFullName(fqn string) *TypeNode {
	id, ok := g.byFQN[fqn]
	if !ok {
		return nil
	}
	return g.types[id]
}

// --- Edges ---

// Edges returns a copy of the full edge list.
func (g *SolutionGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// EdgesFrom returns every edge whose source is the given id.
func (g *SolutionGraph) EdgesFrom(id string) []Edge {
	return g.edgesAt(g.edgesFrom[id])
}

// EdgesTo returns every edge whose target is the given id, unresolved
// targets included.
func (g *SolutionGraph) EdgesTo(id string) []Edge {
	return g.edgesAt(g.edgesTo[id])
}

func (g *SolutionGraph) edgesAt(idx []int) []Edge {
	out := make([]Edge, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i])
	}
	return out
}

// --- Aggregates ---

// Statistics returns per-kind node and edge counts.
func (g *SolutionGraph) Statistics() Stats {
	s := Stats{
		Nodes: make(map[NodeKind]int),
		Edges: make(map[EdgeKind]int),
	}
	if g.solution != nil {
		s.Nodes[NodeKindSolution] = 1
	}
	s.Nodes[NodeKindProject] = len(g.projects)
	s.Nodes[NodeKindFile] = len(g.files)
	s.Nodes[NodeKindType] = len(g.types)
	s.Nodes[NodeKindNamespace] = len(g.namespaces)
	s.Nodes[NodeKindPackage] = len(g.packages)
	for _, e := range g.edges {
		s.Edges[e.Kind]++
	}
	return s
}

// Diagnostics returns the recoverable failures recorded during the build.
func (g *SolutionGraph) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(g.diags))
	copy(out, g.diags)
	return out
}

// HasCyclicDependency reports whether the given project participates in a
// project-reference cycle: some chain of references leads from it back to
// itself. Merely depending on a cyclic project does not count. Cycles are a
// legal graph property, discoverable here rather than prevented at
// construction.
func (g *SolutionGraph) HasCyclicDependency(projectID string) bool {
	visited := map[string]bool{}

	var visit func(id string) bool
	visit = func(id string) bool {
		for _, i := range g.edgesFrom[id] {
			e := g.edges[i]
			if e.Kind != EdgeProjectReferencesProject {
				continue
			}
			if e.Target == projectID {
				return true
			}
			if visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			if visit(e.Target) {
				return true
			}
		}
		return false
	}

	return visit(projectID)
}

package analysis

import (
	"fmt"
	"path"
	"strings"

	"github.com/dusk-indust/slngraph/internal/graph"
)

// MoveOp proposes moving (or copying) files or folders to a destination
// folder. Paths are graph-relative, slash-separated.
type MoveOp struct {
	Paths []string
	Dest  string
	Copy  bool
}

// MoveTypeOp proposes moving one type out of its declaring file.
type MoveTypeOp struct {
	TypeFullName string
}

// RenameNamespaceOp proposes renaming a namespace across the solution.
type RenameNamespaceOp struct {
	From string
	To   string
}

// DeleteOp proposes deleting a file. Without Force, the analysis reports an
// error when anything still references the file's types.
type DeleteOp struct {
	Path  string
	Force bool
}

// referencingEdgeKinds are the edge kinds that make a file depend on a type.
var referencingEdgeKinds = map[graph.EdgeKind]bool{
	graph.EdgeTypeUsage:      true,
	graph.EdgeTypeInherits:   true,
	graph.EdgeTypeImplements: true,
}

// AnalyzeMove computes the files affected by moving or copying the given
// files or folders: the moved files themselves, every file referencing a
// type they declare, and, when the destination implies a namespace change,
// every file importing the old namespace.
func AnalyzeMove(g *graph.SolutionGraph, op MoveOp) *ImpactReport {
	verb := "move"
	if op.Copy {
		verb = "copy"
	}
	rb := newReportBuilder(fmt.Sprintf("%s %s -> %s", verb, strings.Join(op.Paths, ", "), op.Dest))

	moved := collectFiles(g, op.Paths, rb)
	for _, f := range moved {
		rb.add(f.Path, "being "+verb+"d")

		for _, t := range declaredTypes(g, f.ID) {
			addReferencingFiles(g, rb, t)
			warnUnresolvedDeps(g, rb, t)
		}

		if implied := impliedNamespace(g, f, op.Dest); implied != "" && implied != f.Namespace && f.Namespace != "" {
			addNamespaceImporters(g, rb, f.Namespace,
				fmt.Sprintf("imports namespace %s, which changes on %s", f.Namespace, verb))
		}
	}

	return rb.report()
}

// AnalyzeMoveType computes the files affected by moving one type: its
// declaring file plus every file referencing it.
func AnalyzeMoveType(g *graph.SolutionGraph, op MoveTypeOp) *ImpactReport {
	rb := newReportBuilder("move type " + op.TypeFullName)

	t := g.TypeByFullName(op.TypeFullName)
	if t == nil {
		rb.errors = append(rb.errors, "type not found: "+op.TypeFullName)
		return rb.report()
	}

	if f := g.FileForType(t.ID); f != nil {
		rb.add(f.Path, "declares "+t.Name)
	}
	addReferencingFiles(g, rb, t)
	warnUnresolvedDeps(g, rb, t)

	return rb.report()
}

// AnalyzeRenameNamespace computes the files affected by renaming a
// namespace: every file declaring it and every file importing it.
func AnalyzeRenameNamespace(g *graph.SolutionGraph, op RenameNamespaceOp) *ImpactReport {
	rb := newReportBuilder(fmt.Sprintf("rename namespace %s -> %s", op.From, op.To))

	found := false
	for _, id := range g.NodeIDsOfKind(graph.NodeKindFile) {
		f := g.File(id)
		if f != nil && f.Namespace == op.From {
			rb.add(f.Path, "declares namespace "+op.From)
			found = true
		}
	}

	nsID := graph.NamespaceID(op.From)
	for _, e := range g.EdgesTo(nsID) {
		if e.Kind != graph.EdgeFileUsesNamespace {
			continue
		}
		if f := g.File(e.Source); f != nil {
			rb.add(f.Path, "imports namespace "+op.From)
			found = true
		}
	}

	if !found {
		rb.warn("namespace not found in graph: " + op.From)
	}

	return rb.report()
}

// AnalyzeDelete computes the files that reference types declared in the
// file being deleted. When references exist and Force is unset, the report
// carries an error instead of silently approving; the analysis itself never
// fails.
func AnalyzeDelete(g *graph.SolutionGraph, op DeleteOp) *ImpactReport {
	rb := newReportBuilder("delete " + op.Path)

	f := g.File(graph.FileID(op.Path))
	if f == nil {
		rb.warn("no file in graph at " + op.Path)
		return rb.report()
	}

	for _, t := range declaredTypes(g, f.ID) {
		addReferencingFiles(g, rb, t)
	}

	if n := len(rb.affected); n > 0 {
		if op.Force {
			rb.warn(fmt.Sprintf("forced delete will break %d referencing file(s)", n))
		} else {
			rb.errors = append(rb.errors,
				fmt.Sprintf("file is referenced elsewhere: %d file(s) depend on types declared in %s", n, op.Path))
		}
	}

	return rb.report()
}

// --- Helpers ---

// collectFiles resolves operation paths to file nodes; a path that is not a
// file is treated as a folder prefix. Paths matching nothing get a warning.
func collectFiles(g *graph.SolutionGraph, paths []string, rb *reportBuilder) []*graph.FileNode {
	var out []*graph.FileNode
	for _, p := range paths {
		p = strings.TrimSuffix(path.Clean(strings.ReplaceAll(p, `\`, "/")), "/")
		if f := g.File(graph.FileID(p)); f != nil {
			out = append(out, f)
			continue
		}
		matched := false
		for _, id := range g.NodeIDsOfKind(graph.NodeKindFile) {
			f := g.File(id)
			if f != nil && strings.HasPrefix(f.Path, p+"/") {
				out = append(out, f)
				matched = true
			}
		}
		if !matched {
			rb.warn("no file or folder in graph at " + p)
		}
	}
	return out
}

// declaredTypes returns the types declared in a file.
func declaredTypes(g *graph.SolutionGraph, fileID string) []*graph.TypeNode {
	var out []*graph.TypeNode
	for _, e := range g.EdgesFrom(fileID) {
		if e.Kind != graph.EdgeFileContainsType {
			continue
		}
		if t := g.Type(e.Target); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// addReferencingFiles records every file that depends on the given type
// through a usage, inherits, or implements edge.
func addReferencingFiles(g *graph.SolutionGraph, rb *reportBuilder, t *graph.TypeNode) {
	for _, e := range g.EdgesTo(t.ID) {
		if !referencingEdgeKinds[e.Kind] {
			continue
		}
		from := g.FileForType(e.Source)
		if from == nil || from.ID == t.FileID {
			continue
		}
		rb.add(from.Path, referenceReason(e, t))
	}
}

func referenceReason(e graph.Edge, t *graph.TypeNode) string {
	switch e.Kind {
	case graph.EdgeTypeInherits:
		return "inherits " + t.Name
	case graph.EdgeTypeImplements:
		return "implements " + t.Name
	default:
		if e.Usage != "" {
			return fmt.Sprintf("uses %s (%s)", t.Name, e.Usage)
		}
		return "uses " + t.Name
	}
}

// warnUnresolvedDeps surfaces dependencies of a type that resolved to
// nothing in the scanned solution; their usages cannot be tracked, so a
// moved type may break consumers the graph does not see.
func warnUnresolvedDeps(g *graph.SolutionGraph, rb *reportBuilder, t *graph.TypeNode) {
	for _, e := range g.EdgesFrom(t.ID) {
		if !referencingEdgeKinds[e.Kind] || g.IsResolved(e.Target) {
			continue
		}
		name := strings.TrimPrefix(e.Target, "type:")
		rb.warn(fmt.Sprintf("%s references %s, which is outside the scanned solution", t.Name, name))
	}
}

// addNamespaceImporters records every file importing the given namespace.
func addNamespaceImporters(g *graph.SolutionGraph, rb *reportBuilder, ns, reason string) {
	for _, e := range g.EdgesTo(graph.NamespaceID(ns)) {
		if e.Kind != graph.EdgeFileUsesNamespace {
			continue
		}
		if f := g.File(e.Source); f != nil {
			rb.add(f.Path, reason)
		}
	}
}

// impliedNamespace derives the namespace a file would land in at the
// destination folder: the owning project's root namespace plus the
// destination's path segments inside the project. Destinations outside the
// file's project imply nothing.
func impliedNamespace(g *graph.SolutionGraph, f *graph.FileNode, dest string) string {
	p := g.ProjectForFile(f.ID)
	if p == nil || dest == "" {
		return ""
	}
	projectDir := path.Dir(p.Path)
	dest = path.Clean(strings.ReplaceAll(dest, `\`, "/"))

	rel := dest
	if projectDir != "." {
		if !strings.HasPrefix(dest+"/", projectDir+"/") {
			return ""
		}
		rel = strings.TrimPrefix(strings.TrimPrefix(dest, projectDir), "/")
	}
	if rel == "." || rel == "" {
		return p.RootNamespace
	}
	return p.RootNamespace + "." + strings.ReplaceAll(rel, "/", ".")
}

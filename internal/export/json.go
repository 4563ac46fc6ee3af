package export

import (
	"sort"
	"time"

	"github.com/dusk-indust/slngraph/internal/graph"
)

// SolutionExport is the top-level JSON export structure.
type SolutionExport struct {
	Entry       string            `json:"entry"`
	ExportedAt  string            `json:"exportedAt"`
	Nodes       map[string]int    `json:"nodes"`
	Edges       map[string]int    `json:"edges"`
	Projects    []ProjectExport   `json:"projects"`
	Diagnostics []DiagnosticEntry `json:"diagnostics,omitempty"`
}

// ProjectExport summarizes one project node.
type ProjectExport struct {
	Name            string          `json:"name"`
	Path            string          `json:"path"`
	Kind            string          `json:"kind"`
	TargetFramework string          `json:"targetFramework,omitempty"`
	Files           int             `json:"files"`
	Types           int             `json:"types"`
	ProjectRefs     []string        `json:"projectRefs,omitempty"`
	Packages        []PackageExport `json:"packages,omitempty"`
	Cyclic          bool            `json:"cyclic,omitempty"`
}

// PackageExport is one package dependency of a project.
type PackageExport struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// DiagnosticEntry mirrors a build diagnostic for the export.
type DiagnosticEntry struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// ExportSolution builds a SolutionExport from a built graph. Projects are
// ordered by id; per-project lists are sorted so repeated exports of the
// same graph are byte-identical apart from the timestamp.
func ExportSolution(g *graph.SolutionGraph, entry string) *SolutionExport {
	stats := g.Statistics()

	out := &SolutionExport{
		Entry:      entry,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Nodes:      make(map[string]int, len(stats.Nodes)),
		Edges:      make(map[string]int, len(stats.Edges)),
	}
	for k, n := range stats.Nodes {
		out.Nodes[string(k)] = n
	}
	for k, n := range stats.Edges {
		out.Edges[string(k)] = n
	}

	for _, pid := range g.NodeIDsOfKind(graph.NodeKindProject) {
		p := g.Project(pid)
		pe := ProjectExport{
			Name:            p.Name,
			Path:            p.Path,
			Kind:            string(p.Kind),
			TargetFramework: p.TargetFramework,
			Cyclic:          g.HasCyclicDependency(pid),
		}

		for _, e := range g.EdgesFrom(pid) {
			switch e.Kind {
			case graph.EdgeProjectContainsFile:
				pe.Files++
				for _, fe := range g.EdgesFrom(e.Target) {
					if fe.Kind == graph.EdgeFileContainsType {
						pe.Types++
					}
				}
			case graph.EdgeProjectReferencesProject:
				name := e.Target
				if ref := g.Project(e.Target); ref != nil {
					name = ref.Name
				}
				pe.ProjectRefs = append(pe.ProjectRefs, name)
			case graph.EdgeProjectReferencesPackage:
				if pkg := g.Package(e.Target); pkg != nil {
					pe.Packages = append(pe.Packages, PackageExport{Name: pkg.Name, Version: pkg.Version})
				}
			}
		}
		sort.Strings(pe.ProjectRefs)
		sort.Slice(pe.Packages, func(i, j int) bool { return pe.Packages[i].Name < pe.Packages[j].Name })

		out.Projects = append(out.Projects, pe)
	}

	for _, d := range g.Diagnostics() {
		out.Diagnostics = append(out.Diagnostics, DiagnosticEntry{Path: d.Path, Message: d.Message})
	}

	return out
}

package export

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/slngraph/internal/graph"
	"github.com/dusk-indust/slngraph/internal/project"
)

// GenerateMermaid produces a Mermaid graph TD diagram of the project layer:
// one node per project, one arrow per project reference. Arrows point at the
// dependency. Projects inside a reference cycle are labeled, and unresolved
// reference targets render as dashed placeholder nodes.
func GenerateMermaid(g *graph.SolutionGraph) string {
	projectIDs := g.NodeIDsOfKind(graph.NodeKindProject)

	// Stable alphanumeric Mermaid ids, assigned in sorted project order.
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(graphID string) string {
		if id, ok := nodeIDs[graphID]; ok {
			return id
		}
		id := fmt.Sprintf("P%d", nextID)
		nextID++
		nodeIDs[graphID] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, pid := range projectIDs {
		p := g.Project(pid)
		label := p.Name
		if p.Kind == project.KindTest {
			label += " (test)"
		}
		if g.HasCyclicDependency(pid) {
			label += " (cyclic)"
		}
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(pid), label))
	}

	type arrow struct {
		src, tgt string
		dashed   bool
	}
	var arrows []arrow
	for _, pid := range projectIDs {
		for _, e := range g.EdgesFrom(pid) {
			if e.Kind != graph.EdgeProjectReferencesProject {
				continue
			}
			arrows = append(arrows, arrow{
				src:    pid,
				tgt:    e.Target,
				dashed: !g.IsResolved(e.Target),
			})
		}
	}
	sort.Slice(arrows, func(i, j int) bool {
		if arrows[i].src != arrows[j].src {
			return arrows[i].src < arrows[j].src
		}
		return arrows[i].tgt < arrows[j].tgt
	})

	for _, a := range arrows {
		if a.dashed {
			// Placeholder node for a manifest entry that resolved to nothing.
			if _, seen := nodeIDs[a.tgt]; !seen {
				sb.WriteString(fmt.Sprintf("  %s[\"%s (missing)\"]\n", getID(a.tgt), shortTarget(a.tgt)))
			}
			sb.WriteString(fmt.Sprintf("  %s -.-> %s\n", getID(a.src), getID(a.tgt)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(a.src), getID(a.tgt)))
	}

	return sb.String()
}

// shortTarget renders an unresolved project id as a readable label.
func shortTarget(id string) string {
	p := strings.TrimPrefix(id, "project:")
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

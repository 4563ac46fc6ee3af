package graph

import (
	"context"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/slngraph/internal/source"
)

const fixtureSolution = `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Acme.Core", "src\Acme.Core\Acme.Core.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Acme.App", "src\Acme.App\Acme.App.csproj", "{22222222-2222-2222-2222-222222222222}"
EndProject
`

const coreManifest = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <RootNamespace>Acme.Core</RootNamespace>
  </PropertyGroup>
  <ItemGroup>
    <PackageReference Include="Newtonsoft.Json" Version="13.0.3" />
  </ItemGroup>
</Project>`

const appManifest = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <RootNamespace>Acme.App</RootNamespace>
  </PropertyGroup>
  <ItemGroup>
    <ProjectReference Include="..\Acme.Core\Acme.Core.csproj" />
  </ItemGroup>
</Project>`

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

// solutionFixture lays out a two-project solution on a memory filesystem.
// Source files carry placeholder content; the stub parser supplies the
// structural models.
func solutionFixture(t *testing.T) (afero.Fs, *source.StubParser) {
	t.Helper()
	fs := afero.NewMemMapFs()

	writeFile(t, fs, "work/Acme.sln", fixtureSolution)
	writeFile(t, fs, "work/src/Acme.Core/Acme.Core.csproj", coreManifest)
	writeFile(t, fs, "work/src/Acme.Core/Services/BaseService.cs", "// stubbed")
	writeFile(t, fs, "work/src/Acme.Core/IRepository.cs", "// stubbed")
	writeFile(t, fs, "work/src/Acme.Core/User.cs", "// stubbed")
	writeFile(t, fs, "work/src/Acme.App/Acme.App.csproj", appManifest)
	writeFile(t, fs, "work/src/Acme.App/UserService.cs", "// stubbed")
	writeFile(t, fs, "work/src/Acme.App/UserRepository.cs", "// stubbed")
	writeFile(t, fs, "work/src/Acme.App/obj/Generated.cs", "// never scanned")

	parser := &source.StubParser{Units: map[string]*source.SourceUnit{
		"src/Acme.Core/Services/BaseService.cs": {
			FileName:  "src/Acme.Core/Services/BaseService.cs",
			Namespace: "Acme.Core",
			Lines:     10,
			Types:     []source.TypeDecl{{Name: "BaseService", Kind: source.TypeKindClass, Visibility: source.VisPublic}},
		},
		"src/Acme.Core/IRepository.cs": {
			FileName:  "src/Acme.Core/IRepository.cs",
			Namespace: "Acme.Core",
			Lines:     5,
			Types:     []source.TypeDecl{{Name: "IRepository", Kind: source.TypeKindInterface, Visibility: source.VisPublic}},
		},
		"src/Acme.Core/User.cs": {
			FileName:  "src/Acme.Core/User.cs",
			Namespace: "Acme.Core",
			Lines:     8,
			Types:     []source.TypeDecl{{Name: "User", Kind: source.TypeKindClass, Visibility: source.VisPublic}},
		},
		"src/Acme.App/UserService.cs": {
			FileName:  "src/Acme.App/UserService.cs",
			Namespace: "Acme.App",
			Lines:     20,
			Usings:    []source.UsingDirective{{Namespace: "Acme.Core", Line: 1}},
			Types: []source.TypeDecl{{
				Name:       "UserService",
				Kind:       source.TypeKindClass,
				Visibility: source.VisPublic,
				BaseTypes:  []string{"BaseService"},
				Refs:       []source.TypeRef{{Name: "User", Context: source.RefParameter, Line: 12}},
			}},
		},
		"src/Acme.App/UserRepository.cs": {
			FileName:  "src/Acme.App/UserRepository.cs",
			Namespace: "Acme.App",
			Lines:     15,
			Usings:    []source.UsingDirective{{Namespace: "Acme.Core", Line: 1}},
			Types: []source.TypeDecl{{
				Name:       "UserRepository",
				Kind:       source.TypeKindClass,
				Visibility: source.VisPublic,
				BaseTypes:  []string{"IRepository"},
				Refs:       []source.TypeRef{{Name: "User", Context: source.RefField, Line: 7}},
			}},
		},
	}}

	return fs, parser
}

func buildFixture(t *testing.T, opts BuildOptions) *SolutionGraph {
	t.Helper()
	fs, parser := solutionFixture(t)
	g, err := NewBuilder(fs, parser, opts).Build(context.Background(), "work/Acme.sln")
	require.NoError(t, err)
	return g
}

func edgesOfKind(g *SolutionGraph, kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.Edges() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func hasEdge(g *SolutionGraph, source, target string, kind EdgeKind) bool {
	for _, e := range g.Edges() {
		if e.Source == source && e.Target == target && e.Kind == kind {
			return true
		}
	}
	return false
}

// --- Topology ---

func TestBuild_SolutionTopology(t *testing.T) {
	g := buildFixture(t, BuildDefault)

	require.NotNil(t, g.Solution())
	assert.Equal(t, "Acme", g.Solution().Name)

	projects := g.NodeIDsOfKind(NodeKindProject)
	assert.Equal(t, []string{
		"project:src/Acme.App/Acme.App.csproj",
		"project:src/Acme.Core/Acme.Core.csproj",
	}, projects)

	for _, pid := range projects {
		assert.True(t, hasEdge(g, g.Solution().ID, pid, EdgeSolutionContainsProject))
	}

	assert.True(t, hasEdge(g,
		"project:src/Acme.App/Acme.App.csproj",
		"project:src/Acme.Core/Acme.Core.csproj",
		EdgeProjectReferencesProject))

	pkg := g.Package(PackageID("Newtonsoft.Json"))
	require.NotNil(t, pkg)
	assert.Equal(t, "13.0.3", pkg.Version)
	assert.True(t, hasEdge(g, "project:src/Acme.Core/Acme.Core.csproj", pkg.ID, EdgeProjectReferencesPackage))

	assert.Len(t, g.NodeIDsOfKind(NodeKindFile), 5, "obj/ subtree is excluded")
	assert.Len(t, g.NodeIDsOfKind(NodeKindType), 5)
}

func TestBuild_TypeEdges(t *testing.T) {
	g := buildFixture(t, BuildDefault)

	svc := g.TypeByFullName("Acme.App.UserService")
	require.NotNil(t, svc)
	base := g.TypeByFullName("Acme.Core.BaseService")
	require.NotNil(t, base)

	assert.True(t, hasEdge(g, svc.ID, base.ID, EdgeTypeInherits),
		"base class resolves across namespaces")

	repo := g.TypeByFullName("Acme.App.UserRepository")
	iface := g.TypeByFullName("Acme.Core.IRepository")
	require.NotNil(t, repo)
	require.NotNil(t, iface)
	assert.True(t, hasEdge(g, repo.ID, iface.ID, EdgeTypeImplements),
		"resolved interface target becomes an implements edge")

	user := g.TypeByFullName("Acme.Core.User")
	require.NotNil(t, user)
	assert.True(t, hasEdge(g, repo.ID, user.ID, EdgeTypeUsage))

	usages := edgesOfKind(g, EdgeTypeUsage)
	require.Len(t, usages, 2)
	for _, e := range usages {
		assert.Equal(t, user.ID, e.Target)
		assert.NotZero(t, e.Line)
	}

	assert.True(t, hasEdge(g, FileID("src/Acme.App/UserService.cs"), NamespaceID("Acme.Core"), EdgeFileUsesNamespace))
	require.NotNil(t, g.Namespace(NamespaceID("Acme.Core")))
}

func TestBuild_EveryTypeHasOneDeclaringFile(t *testing.T) {
	g := buildFixture(t, BuildDefault)

	for _, id := range g.NodeIDsOfKind(NodeKindType) {
		incoming := 0
		for _, e := range g.EdgesTo(id) {
			if e.Kind == EdgeFileContainsType {
				incoming++
			}
		}
		assert.Equal(t, 1, incoming, id)
		require.NotNil(t, g.FileForType(id), id)
	}
}

func TestBuild_FastSkipsUsageEdges(t *testing.T) {
	g := buildFixture(t, BuildFast)

	assert.Empty(t, edgesOfKind(g, EdgeTypeUsage))
	assert.Empty(t, edgesOfKind(g, EdgeFileUsesNamespace))

	// Structural edges survive.
	assert.NotEmpty(t, edgesOfKind(g, EdgeTypeInherits))
	assert.NotEmpty(t, edgesOfKind(g, EdgeTypeImplements))
	assert.Len(t, g.NodeIDsOfKind(NodeKindType), 5)
}

func TestStatistics_MatchStores(t *testing.T) {
	g := buildFixture(t, BuildDefault)
	stats := g.Statistics()

	assert.Equal(t, 1, stats.Nodes[NodeKindSolution])
	for _, kind := range []NodeKind{NodeKindProject, NodeKindFile, NodeKindType, NodeKindNamespace, NodeKindPackage} {
		assert.Equal(t, len(g.NodeIDsOfKind(kind)), stats.Nodes[kind], kind)
	}

	total := 0
	for _, n := range stats.Edges {
		total += n
	}
	assert.Equal(t, len(g.Edges()), total)
}

func TestBuild_Deterministic(t *testing.T) {
	g1 := buildFixture(t, BuildDefault)
	g2 := buildFixture(t, BuildDefault)

	for _, kind := range []NodeKind{NodeKindProject, NodeKindFile, NodeKindType, NodeKindNamespace, NodeKindPackage} {
		assert.Equal(t, g1.NodeIDsOfKind(kind), g2.NodeIDsOfKind(kind))
	}

	e1, e2 := g1.Edges(), g2.Edges()
	sortEdges(e1)
	sortEdges(e2)
	assert.Equal(t, e1, e2)
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Line < b.Line
	})
}

// --- Entry and failure handling ---

func TestBuild_MissingEntryIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := NewBuilder(fs, &source.StubParser{}, BuildDefault)

	_, err := b.Build(context.Background(), "nope/Missing.sln")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = b.Build(context.Background(), "nope/Missing.csproj")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestBuild_UnsupportedEntry(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "work/readme.txt", "hi")

	_, err := NewBuilder(fs, &source.StubParser{}, BuildDefault).Build(context.Background(), "work/readme.txt")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestBuild_MissingReferencedProjectIsRecoverable(t *testing.T) {
	fs, parser := solutionFixture(t)
	require.NoError(t, fs.Remove("work/src/Acme.Core/Acme.Core.csproj"))

	g, err := NewBuilder(fs, parser, BuildDefault).Build(context.Background(), "work/Acme.sln")
	require.NoError(t, err)

	assert.Len(t, g.NodeIDsOfKind(NodeKindProject), 1)

	found := false
	for _, d := range g.Diagnostics() {
		if d.Message == "project manifest not found" {
			found = true
		}
	}
	assert.True(t, found)

	// The declared reference stays as an unresolved edge.
	refs := edgesOfKind(g, EdgeProjectReferencesProject)
	require.Len(t, refs, 1)
	assert.False(t, g.IsResolved(refs[0].Target))
}

func TestBuild_CancelledContext(t *testing.T) {
	fs, parser := solutionFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := NewBuilder(fs, parser, BuildDefault).Build(ctx, "work/Acme.sln")
	require.Error(t, err)
	assert.Nil(t, g, "cancellation never yields a partial graph")
}

func TestBuild_ParseFailureBecomesDiagnostic(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "app/App.csproj", appManifest)
	writeFile(t, fs, "app/Broken.cs", "@@@")

	parser := &source.StubParser{Units: map[string]*source.SourceUnit{
		"Broken.cs": {FileName: "Broken.cs", Failed: true, Diagnostic: "source contains syntax errors"},
	}}

	g, err := NewBuilder(fs, parser, BuildDefault).Build(context.Background(), "app/App.csproj")
	require.NoError(t, err)

	f := g.File(FileID("Broken.cs"))
	require.NotNil(t, f)
	assert.True(t, f.ParseFailed)
	assert.Empty(t, g.NodeIDsOfKind(NodeKindType))
	assert.NotEmpty(t, g.Diagnostics())
}

func TestBuild_DuplicateTypeCollapses(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "app/App.csproj", appManifest)
	writeFile(t, fs, "app/A.cs", "// stubbed")
	writeFile(t, fs, "app/B.cs", "// stubbed")

	decl := source.TypeDecl{Name: "Split", Kind: source.TypeKindClass, Visibility: source.VisPublic}
	parser := &source.StubParser{Units: map[string]*source.SourceUnit{
		"A.cs": {FileName: "A.cs", Namespace: "Acme.App", Types: []source.TypeDecl{decl}},
		"B.cs": {FileName: "B.cs", Namespace: "Acme.App", Types: []source.TypeDecl{decl}},
	}}

	g, err := NewBuilder(fs, parser, BuildDefault).Build(context.Background(), "app/App.csproj")
	require.NoError(t, err)

	assert.Len(t, g.NodeIDsOfKind(NodeKindType), 1)

	found := false
	for _, d := range g.Diagnostics() {
		if d.Message == "duplicate type declaration: Acme.App.Split" {
			found = true
		}
	}
	assert.True(t, found, "second declaration is recorded, not merged")
}

func TestBuild_UnresolvedBaseHeuristic(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "app/App.csproj", appManifest)
	writeFile(t, fs, "app/Handlers.cs", "// stubbed")

	parser := &source.StubParser{Units: map[string]*source.SourceUnit{
		"Handlers.cs": {
			FileName:  "Handlers.cs",
			Namespace: "Acme.App",
			Types: []source.TypeDecl{{
				Name:      "Handler",
				Kind:      source.TypeKindClass,
				BaseTypes: []string{"ControllerBase", "IDisposable"},
			}},
		},
	}}

	g, err := NewBuilder(fs, parser, BuildDefault).Build(context.Background(), "app/App.csproj")
	require.NoError(t, err)

	h := g.TypeByFullName("Acme.App.Handler")
	require.NotNil(t, h)

	assert.True(t, hasEdge(g, h.ID, TypeID("ControllerBase"), EdgeTypeInherits))
	assert.True(t, hasEdge(g, h.ID, TypeID("IDisposable"), EdgeTypeImplements),
		"I-prefix convention classifies unresolved bases")
	assert.False(t, g.IsResolved(TypeID("ControllerBase")))
	assert.False(t, g.IsResolved(TypeID("IDisposable")))
}

func TestBuild_ExtraExcludes(t *testing.T) {
	fs, parser := solutionFixture(t)
	writeFile(t, fs, "work/src/Acme.App/Legacy/Old.cs", "// stubbed")

	g, err := NewBuilder(fs, parser, BuildDefault, "Legacy/").Build(context.Background(), "work/Acme.sln")
	require.NoError(t, err)
	assert.Nil(t, g.File(FileID("src/Acme.App/Legacy/Old.cs")))
}

func TestHasCyclicDependency(t *testing.T) {
	g := newSolutionGraph()
	for _, name := range []string{"a", "b", "c", "d"} {
		id := ProjectID(name + ".csproj")
		g.projects[id] = &ProjectNode{ID: id, Name: name}
	}
	link := func(from, to string) {
		g.edges = append(g.edges, Edge{
			Source: ProjectID(from + ".csproj"),
			Target: ProjectID(to + ".csproj"),
			Kind:   EdgeProjectReferencesProject,
		})
	}
	link("a", "b")
	link("b", "c")
	link("c", "a")
	link("d", "a")
	g.freeze()

	assert.True(t, g.HasCyclicDependency(ProjectID("a.csproj")))
	assert.True(t, g.HasCyclicDependency(ProjectID("b.csproj")))
	assert.True(t, g.HasCyclicDependency(ProjectID("c.csproj")))
	assert.False(t, g.HasCyclicDependency(ProjectID("d.csproj")), "pointing into a cycle is not being in one")
}

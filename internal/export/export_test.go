package export

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/slngraph/internal/graph"
	"github.com/dusk-indust/slngraph/internal/source"
)

const testSolution = `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Core", "Core\Core.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "App\App.csproj", "{22222222-2222-2222-2222-222222222222}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App.Tests", "Tests\App.Tests.csproj", "{33333333-3333-3333-3333-333333333333}"
EndProject
`

const testCoreManifest = `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="Serilog" Version="3.1.1" />
  </ItemGroup>
</Project>`

const testAppManifest = `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <ProjectReference Include="..\Core\Core.csproj" />
    <ProjectReference Include="..\Missing\Missing.csproj" />
  </ItemGroup>
</Project>`

const testTestsManifest = `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <ProjectReference Include="..\App\App.csproj" />
    <PackageReference Include="xunit" Version="2.9.0" />
  </ItemGroup>
</Project>`

func exportFixture(t *testing.T) *graph.SolutionGraph {
	t.Helper()
	fs := afero.NewMemMapFs()
	write := func(path, content string) {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	write("repo/All.sln", testSolution)
	write("repo/Core/Core.csproj", testCoreManifest)
	write("repo/Core/Logger.cs", "// stubbed")
	write("repo/App/App.csproj", testAppManifest)
	write("repo/Tests/App.Tests.csproj", testTestsManifest)

	parser := &source.StubParser{Units: map[string]*source.SourceUnit{
		"Core/Logger.cs": {
			FileName:  "Core/Logger.cs",
			Namespace: "Core",
			Types:     []source.TypeDecl{{Name: "Logger", Kind: source.TypeKindClass}},
		},
	}}

	g, err := graph.NewBuilder(fs, parser, graph.BuildDefault).Build(context.Background(), "repo/All.sln")
	require.NoError(t, err)
	return g
}

func TestGenerateMermaid(t *testing.T) {
	g := exportFixture(t)
	out := GenerateMermaid(g)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "graph TD", lines[0])

	assert.Contains(t, out, `["Core"]`)
	assert.Contains(t, out, `["App"]`)
	assert.Contains(t, out, `["App.Tests (test)"]`, "test projects are labeled")
	assert.Contains(t, out, " --> ", "resolved references are solid arrows")
	assert.Contains(t, out, " -.-> ", "unresolved references are dashed")
	assert.Contains(t, out, `["Missing (missing)"]`)

	assert.Equal(t, out, GenerateMermaid(g), "output is deterministic")
}

func TestExportSolution(t *testing.T) {
	g := exportFixture(t)
	data := ExportSolution(g, "repo/All.sln")

	assert.Equal(t, "repo/All.sln", data.Entry)
	assert.NotEmpty(t, data.ExportedAt)
	assert.Equal(t, 3, data.Nodes["project"])
	assert.Equal(t, 1, data.Nodes["file"])

	require.Len(t, data.Projects, 3)

	byName := map[string]ProjectExport{}
	for _, p := range data.Projects {
		byName[p.Name] = p
	}

	core := byName["Core"]
	assert.Equal(t, "library", core.Kind)
	assert.Equal(t, 1, core.Files)
	assert.Equal(t, 1, core.Types)
	require.Len(t, core.Packages, 1)
	assert.Equal(t, PackageExport{Name: "Serilog", Version: "3.1.1"}, core.Packages[0])

	app := byName["App"]
	assert.Equal(t, []string{"Core", "project:Missing/Missing.csproj"}, app.ProjectRefs,
		"unresolved references fall back to the raw id")
	assert.False(t, app.Cyclic)

	tests := byName["App.Tests"]
	assert.Equal(t, "test", tests.Kind)

	assert.NotEmpty(t, data.Diagnostics, "the missing project reference is surfaced")
}

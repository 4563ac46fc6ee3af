package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSolution = "\ufeff" + `
Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio Version 17
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Acme.Core", "src\Acme.Core\Acme.Core.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Acme.Billing", "src\Acme.Billing\Acme.Billing.csproj", "{22222222-2222-2222-2222-222222222222}"
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "Solution Items", "Solution Items", "{33333333-3333-3333-3333-333333333333}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Website", "web\Website.vbproj", "{44444444-4444-4444-4444-444444444444}"
EndProject
Global
EndGlobal
`

func TestParseSolution(t *testing.T) {
	sln := ParseSolution([]byte(sampleSolution), "Acme.sln")

	assert.Equal(t, "Acme", sln.Name)
	require.Len(t, sln.Projects, 2, "folders and non-csproj entries are skipped")

	assert.Equal(t, "Acme.Core", sln.Projects[0].Name)
	assert.Equal(t, "src/Acme.Core/Acme.Core.csproj", sln.Projects[0].Path)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", sln.Projects[0].GUID)

	assert.Equal(t, "Acme.Billing", sln.Projects[1].Name)
}

func TestParseSolution_Empty(t *testing.T) {
	sln := ParseSolution([]byte("Global\nEndGlobal\n"), "Empty.sln")
	assert.Empty(t, sln.Projects)
}

func TestParseProjectLine(t *testing.T) {
	line := `Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "App\App.csproj", "{AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE}"`

	entry, ok := parseProjectLine(line)
	require.True(t, ok)
	assert.Equal(t, "FAE04EC0-301F-11D3-BF4B-00C04F79EFBC", entry.TypeGUID)
	assert.Equal(t, "App", entry.Name)
	assert.Equal(t, "App/App.csproj", entry.Path)
}

func TestParseProjectLine_Malformed(t *testing.T) {
	_, ok := parseProjectLine(`Project("{GUID}") = "only", "two"`)
	assert.False(t, ok)

	_, ok = parseProjectLine(`Project("no-braces") = "A", "A.csproj", "also-no-braces"`)
	assert.False(t, ok)
}

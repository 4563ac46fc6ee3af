package project

import (
	"bufio"
	"path/filepath"
	"strings"
)

// solutionFolderGUID is the project-type GUID that marks a solution folder
// entry: a grouping node in the IDE, not a buildable project.
const solutionFolderGUID = "2150E333-8FDC-42A3-9474-1A3956D46DE8"

// projectManifestExt is the only recognized project manifest extension.
const projectManifestExt = ".csproj"

// Solution is the parsed view of a .sln manifest.
type Solution struct {
	Name     string
	Path     string
	Projects []SolutionProject
}

// SolutionProject is one buildable project entry from a solution file.
type SolutionProject struct {
	TypeGUID string
	GUID     string
	Name     string
	// Path is the manifest path relative to the solution directory,
	// slash-normalized.
	Path string
}

// ParseSolution scans solution text for project entries:
//
//	Project("{TYPE-GUID}") = "Name", "rel\path.csproj", "{PROJECT-GUID}"
//
// It is a line scanner, not a regex: each Project line is split into its
// quoted tokens. Solution folders and entries whose target is not a .csproj
// are skipped.
func ParseSolution(text []byte, slnPath string) Solution {
	sln := Solution{
		Name: strings.TrimSuffix(filepath.Base(slnPath), filepath.Ext(slnPath)),
		Path: slnPath,
	}

	scanner := bufio.NewScanner(strings.NewReader(string(text)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Strip the UTF-8 BOM Visual Studio writes on the first line.
		line = strings.TrimPrefix(line, "\ufeff")
		if !strings.HasPrefix(line, "Project(") {
			continue
		}

		entry, ok := parseProjectLine(line)
		if !ok {
			continue
		}
		if strings.EqualFold(entry.TypeGUID, solutionFolderGUID) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Path), projectManifestExt) {
			continue
		}
		sln.Projects = append(sln.Projects, entry)
	}

	return sln
}

// parseProjectLine tokenizes one Project line into its
// (typeGUID, name, relativePath, projectGUID) tuple. The four values are the
// quoted tokens in order; GUIDs additionally shed their braces.
func parseProjectLine(line string) (SolutionProject, bool) {
	tokens := quotedTokens(line)
	if len(tokens) != 4 {
		return SolutionProject{}, false
	}

	typeGUID, ok := stripBraces(tokens[0])
	if !ok {
		return SolutionProject{}, false
	}
	projGUID, ok := stripBraces(tokens[3])
	if !ok {
		return SolutionProject{}, false
	}

	return SolutionProject{
		TypeGUID: typeGUID,
		Name:     tokens[1],
		Path:     filepath.ToSlash(strings.ReplaceAll(tokens[2], `\`, "/")),
		GUID:     projGUID,
	}, true
}

// quotedTokens returns the contents of every double-quoted span in order.
func quotedTokens(line string) []string {
	var tokens []string
	for {
		start := strings.IndexByte(line, '"')
		if start < 0 {
			return tokens
		}
		rest := line[start+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return tokens
		}
		tokens = append(tokens, rest[:end])
		line = rest[end+1:]
	}
}

func stripBraces(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// Package project parses the two manifest formats of a C# solution tree:
// MSBuild project files (.csproj) and solution files (.sln).
package project

import (
	"encoding/xml"
	"path/filepath"
	"strings"
)

// Kind classifies what a project builds.
type Kind string

const (
	KindLibrary    Kind = "library"
	KindExecutable Kind = "executable"
	KindTest       Kind = "test"
	KindOther      Kind = "other"
)

// testPackages are the lowercase package names that mark a test project.
var testPackages = map[string]bool{
	"xunit":                      true,
	"xunit.runner.visualstudio":  true,
	"nunit":                      true,
	"nunit3testadapter":          true,
	"mstest.testframework":       true,
	"mstest.testadapter":         true,
	"microsoft.net.test.sdk":     true,
}

// Descriptor is the loaded view of one .csproj manifest.
type Descriptor struct {
	Name            string
	Path            string
	TargetFramework string
	RootNamespace   string
	OutputType      string
	Kind            Kind
	ProjectRefs     []ProjectRef
	PackageRefs     []PackageRef
}

// ProjectRef is a declared inter-project reference, path relative to the
// referencing manifest, slash-normalized.
type ProjectRef struct {
	Name string
	Path string
}

// PackageRef is a declared package dependency.
type PackageRef struct {
	Name    string
	Version string
}

// manifestXML mirrors the subset of the MSBuild schema the graph needs.
// Both SDK-style and legacy manifests decode into it; the MSBuild XML
// namespace on legacy files is ignored by the decoder's local-name matching.
type manifestXML struct {
	PropertyGroups []struct {
		TargetFramework  string `xml:"TargetFramework"`
		TargetFrameworks string `xml:"TargetFrameworks"`
		RootNamespace    string `xml:"RootNamespace"`
		OutputType       string `xml:"OutputType"`
	} `xml:"PropertyGroup"`
	ItemGroups []struct {
		ProjectRefs []struct {
			Include string `xml:"Include,attr"`
		} `xml:"ProjectReference"`
		PackageRefs []struct {
			Include     string `xml:"Include,attr"`
			Version     string `xml:"Version,attr"`
			VersionElem string `xml:"Version"`
		} `xml:"PackageReference"`
	} `xml:"ItemGroup"`
}

// LoadDescriptor extracts a Descriptor from manifest text. Malformed XML or
// missing fields never abort a build: the descriptor comes back with
// best-effort defaults so the project is still represented as a node.
func LoadDescriptor(manifestText []byte, manifestPath string) Descriptor {
	stem := strings.TrimSuffix(filepath.Base(manifestPath), filepath.Ext(manifestPath))
	d := Descriptor{
		Name:          stem,
		Path:          manifestPath,
		RootNamespace: stem,
		Kind:          KindLibrary,
	}

	var m manifestXML
	if err := xml.Unmarshal(manifestText, &m); err != nil {
		d.Kind = KindOther
		return d
	}

	for _, pg := range m.PropertyGroups {
		if d.TargetFramework == "" {
			if pg.TargetFramework != "" {
				d.TargetFramework = strings.TrimSpace(pg.TargetFramework)
			} else if pg.TargetFrameworks != "" {
				d.TargetFramework = strings.TrimSpace(pg.TargetFrameworks)
			}
		}
		if ns := strings.TrimSpace(pg.RootNamespace); ns != "" {
			d.RootNamespace = ns
		}
		if ot := strings.TrimSpace(pg.OutputType); ot != "" {
			d.OutputType = ot
		}
	}

	for _, ig := range m.ItemGroups {
		for _, pr := range ig.ProjectRefs {
			if pr.Include == "" {
				continue
			}
			rel := filepath.ToSlash(strings.ReplaceAll(pr.Include, `\`, "/"))
			d.ProjectRefs = append(d.ProjectRefs, ProjectRef{
				Name: strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel)),
				Path: rel,
			})
		}
		for _, pkg := range ig.PackageRefs {
			if pkg.Include == "" {
				continue
			}
			version := pkg.Version
			if version == "" {
				version = strings.TrimSpace(pkg.VersionElem)
			}
			d.PackageRefs = append(d.PackageRefs, PackageRef{Name: pkg.Include, Version: version})
		}
	}

	d.Kind = classify(d.OutputType, d.PackageRefs)
	return d
}

// classify determines the project kind from output type and package set.
// Test packages win over output type: a test console runner is still a test
// project.
func classify(outputType string, packages []PackageRef) Kind {
	for _, p := range packages {
		if testPackages[strings.ToLower(p.Name)] {
			return KindTest
		}
	}
	switch strings.ToLower(outputType) {
	case "exe", "winexe":
		return KindExecutable
	case "", "library":
		return KindLibrary
	default:
		return KindOther
	}
}

package graph

import (
	"github.com/dusk-indust/slngraph/internal/project"
	"github.com/dusk-indust/slngraph/internal/source"
)

// --- Enums ---

// NodeKind classifies nodes in the solution graph.
type NodeKind string

const (
	NodeKindSolution  NodeKind = "solution"
	NodeKindProject   NodeKind = "project"
	NodeKindFile      NodeKind = "file"
	NodeKindType      NodeKind = "type"
	NodeKindNamespace NodeKind = "namespace"
	NodeKindPackage   NodeKind = "package"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeSolutionContainsProject  EdgeKind = "SOLUTION_CONTAINS_PROJECT"
	EdgeProjectReferencesProject EdgeKind = "PROJECT_REFERENCES_PROJECT"
	EdgeProjectReferencesPackage EdgeKind = "PROJECT_REFERENCES_PACKAGE"
	EdgeProjectContainsFile      EdgeKind = "PROJECT_CONTAINS_FILE"
	EdgeFileContainsType         EdgeKind = "FILE_CONTAINS_TYPE"
	EdgeTypeInherits             EdgeKind = "TYPE_INHERITS"
	EdgeTypeImplements           EdgeKind = "TYPE_IMPLEMENTS"
	EdgeTypeUsage                EdgeKind = "TYPE_USAGE"
	EdgeFileUsesNamespace        EdgeKind = "FILE_USES_NAMESPACE"
	EdgeTypeInNamespace          EdgeKind = "TYPE_IN_NAMESPACE"
)

// UsageKind tags a TypeUsage edge with where the reference appeared. The
// values match source.RefContext, plus the two base-list contexts.
type UsageKind string

const (
	UsageField      UsageKind = "field"
	UsageProperty   UsageKind = "property"
	UsageParameter  UsageKind = "parameter"
	UsageReturn     UsageKind = "return"
	UsageLocal      UsageKind = "local"
	UsageGenericArg UsageKind = "generic-argument"
	UsageAttribute  UsageKind = "attribute"
	UsageBaseType   UsageKind = "base-type"
	UsageInterface  UsageKind = "interface"
)

// FileKind classifies files within a project.
type FileKind string

const (
	FileKindSource FileKind = "source"
	FileKindOther  FileKind = "other"
)

// --- Models ---

// SolutionNode is the entry manifest.
type SolutionNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// ProjectNode is one buildable project.
type ProjectNode struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Path            string       `json:"path"`
	TargetFramework string       `json:"targetFramework,omitempty"`
	RootNamespace   string       `json:"rootNamespace,omitempty"`
	Kind            project.Kind `json:"kind"`
}

// FileNode is one source file within a project.
type FileNode struct {
	ID        string   `json:"id"`
	Path      string   `json:"path"`
	ProjectID string   `json:"projectId"`
	Kind      FileKind `json:"kind"`
	// Namespace is the file's declared namespace, recorded here so
	// namespace-level impact queries need no re-parse.
	Namespace string `json:"namespace,omitempty"`
	Lines     int    `json:"lines,omitempty"`
	// ParseFailed marks files whose source could not be parsed; they
	// contribute no type nodes.
	ParseFailed bool `json:"parseFailed,omitempty"`
}

// TypeNode is one declared type.
type TypeNode struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	FullName   string            `json:"fullName"`
	FileID     string            `json:"fileId"`
	Kind       source.TypeKind   `json:"kind"`
	Visibility source.Visibility `json:"visibility"`
	Namespace  string            `json:"namespace,omitempty"`
	Tests      []source.TestInfo `json:"tests,omitempty"`
}

// NamespaceNode is one dotted namespace, declared or merely imported.
type NamespaceNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PackageNode is one referenced package.
type PackageNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Edge is a typed, directed relationship. The graph is a multigraph: any
// number of edges, of any kinds, may connect the same pair. Target may be an
// unresolved reference id with no node behind it.
type Edge struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Kind   EdgeKind  `json:"kind"`
	Usage  UsageKind `json:"usage,omitempty"` // TypeUsage, TypeInherits, TypeImplements
	Line   int       `json:"line,omitempty"`  // FileUsesNamespace, TypeUsage
}

// Stats summarizes the graph by node and edge kind.
type Stats struct {
	Nodes map[NodeKind]int `json:"nodes"`
	Edges map[EdgeKind]int `json:"edges"`
}

// Diagnostic records a recoverable failure observed during a build.
type Diagnostic struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

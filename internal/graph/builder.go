package graph

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/slngraph/internal/project"
	"github.com/dusk-indust/slngraph/internal/source"
)

// BuildOptions selects between the two named build presets.
type BuildOptions int

const (
	// BuildDefault extracts the full edge set, type-usage and
	// namespace-usage edges included.
	BuildDefault BuildOptions = iota

	// BuildFast skips TypeUsage and FileUsesNamespace extraction entirely.
	// That extraction is the dominant cost on large trees.
	BuildFast
)

// ErrEntryNotFound is the only fatal failure: without an entry manifest
// there is nothing to build. Every other failure degrades to a Diagnostic.
var ErrEntryNotFound = errors.New("entry manifest not found")

// defaultExcludes are build-output and generated subtrees never scanned for
// sources.
var defaultExcludes = []string{
	"bin/",
	"obj/",
	".vs/",
	".git/",
	"*.Designer.cs",
	"*.g.cs",
}

// Builder assembles a SolutionGraph from one entry manifest. A Builder is
// scoped to Build calls; it holds no state that outlives them, and the graph
// it returns is immutable. One builder goroutine performs all graph writes:
// parsing fans out, merging does not.
type Builder struct {
	fs      afero.Fs
	parser  source.Parser
	opts    BuildOptions
	matcher *ignore.GitIgnore
	workers int
}

// NewBuilder creates a Builder reading through fs and parsing with parser.
// extraExcludes are gitignore-style patterns appended to the defaults.
func NewBuilder(fs afero.Fs, parser source.Parser, opts BuildOptions, extraExcludes ...string) *Builder {
	patterns := append(append([]string{}, defaultExcludes...), extraExcludes...)
	return &Builder{
		fs:      fs,
		parser:  parser,
		opts:    opts,
		matcher: ignore.CompileIgnoreLines(patterns...),
		workers: runtime.GOMAXPROCS(0),
	}
}

// --- Intermediate build state ---

type fileEntry struct {
	projectID string
	abs       string
	rel       string
}

type pendingBase struct {
	typeID string
	ns     string
	name   string
}

type pendingRef struct {
	typeID string
	ns     string
	ref    source.TypeRef
}

type pendingUsing struct {
	fileID string
	using  source.UsingDirective
}

// Build constructs the graph for the solution or project manifest at
// entryPath. A missing entry manifest is fatal; a missing referenced project
// is logged, recorded as a diagnostic, and omitted, leaving unresolved
// edges. Cancellation is honored between files and projects and surfaces as
// an error, never as a partially-populated graph.
func (b *Builder) Build(ctx context.Context, entryPath string) (*SolutionGraph, error) {
	g := newSolutionGraph()
	root := filepath.Dir(entryPath)

	descriptors, err := b.discover(g, root, entryPath)
	if err != nil {
		return nil, err
	}

	var files []fileEntry
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled: %w", err)
		}
		enumerated, err := b.enumerateSources(root, d)
		if err != nil {
			g.diags = append(g.diags, Diagnostic{Path: d.Path, Message: "enumerate sources: " + err.Error()})
			continue
		}
		files = append(files, enumerated...)
	}

	units, err := b.parseAll(ctx, files)
	if err != nil {
		return nil, err
	}

	// Everything below is the single sequential merge phase: exactly one
	// writer touches the graph, by pipeline construction rather than locks.
	var bases []pendingBase
	var refs []pendingRef
	var usings []pendingUsing

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled: %w", err)
		}
		b.mergeUnit(g, f, units[i], &bases, &refs, &usings)
	}

	b.resolveReferences(g, bases, refs, usings)
	b.linkProjects(g, root, descriptors)

	g.freeze()
	return g, nil
}

// discover resolves the entry manifest into the project descriptor list and
// creates the solution and project nodes.
func (b *Builder) discover(g *SolutionGraph, root, entryPath string) ([]project.Descriptor, error) {
	switch strings.ToLower(filepath.Ext(entryPath)) {
	case ".sln":
		text, err := afero.ReadFile(b.fs, entryPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryPath)
		}
		sln := project.ParseSolution(text, entryPath)
		g.solution = &SolutionNode{
			ID:   SolutionID(b.rel(root, entryPath)),
			Name: sln.Name,
			Path: filepath.ToSlash(entryPath),
		}

		var descriptors []project.Descriptor
		for _, sp := range sln.Projects {
			abs := filepath.Join(root, filepath.FromSlash(sp.Path))
			d, ok := b.loadProject(g, root, abs)
			if !ok {
				continue
			}
			descriptors = append(descriptors, d)
			g.edges = append(g.edges, Edge{
				Source: g.solution.ID,
				Target: ProjectID(d.Path),
				Kind:   EdgeSolutionContainsProject,
			})
		}
		return descriptors, nil

	case ".csproj":
		d, ok := b.loadProject(g, root, entryPath)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryPath)
		}
		return []project.Descriptor{d}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported entry manifest %s", ErrEntryNotFound, entryPath)
	}
}

// loadProject reads one project manifest and creates its node. A missing
// manifest is non-fatal: logged, recorded, omitted.
func (b *Builder) loadProject(g *SolutionGraph, root, abs string) (project.Descriptor, bool) {
	rel := b.rel(root, abs)
	text, err := afero.ReadFile(b.fs, abs)
	if err != nil {
		log.Printf("WARNING: project manifest missing, skipping: %s", abs)
		g.diags = append(g.diags, Diagnostic{Path: rel, Message: "project manifest not found"})
		return project.Descriptor{}, false
	}

	d := project.LoadDescriptor(text, rel)
	g.projects[ProjectID(rel)] = &ProjectNode{
		ID:              ProjectID(rel),
		Name:            d.Name,
		Path:            rel,
		TargetFramework: d.TargetFramework,
		RootNamespace:   d.RootNamespace,
		Kind:            d.Kind,
	}
	return d, true
}

// enumerateSources walks a project directory for .cs files, excluding
// build-output and generated subtrees.
func (b *Builder) enumerateSources(root string, d project.Descriptor) ([]fileEntry, error) {
	projectID := ProjectID(d.Path)
	dir := filepath.Dir(filepath.Join(root, filepath.FromSlash(d.Path)))

	var out []fileEntry
	err := afero.Walk(b.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel := b.rel(root, p)
		if info.IsDir() {
			if p != dir && b.matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".cs") || b.matcher.MatchesPath(rel) {
			return nil
		}
		out = append(out, fileEntry{projectID: projectID, abs: p, rel: rel})
		return nil
	})
	return out, err
}

// parseAll reads and parses every file across a bounded worker pool. The
// workers share no graph state: each writes only its own result slot.
func (b *Builder) parseAll(ctx context.Context, files []fileEntry) ([]*source.SourceUnit, error) {
	units := make([]*source.SourceUnit, len(files))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)
	for i, f := range files {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := afero.ReadFile(b.fs, f.abs)
			if err != nil {
				units[i] = &source.SourceUnit{
					FileName:   f.rel,
					Failed:     true,
					Diagnostic: "read: " + err.Error(),
				}
				return nil
			}
			units[i] = b.parser.Parse(gctx, f.rel, text)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("build cancelled: %w", err)
	}
	return units, nil
}

// mergeUnit writes one parsed file into the graph and queues its references
// for the resolution pass.
func (b *Builder) mergeUnit(
	g *SolutionGraph,
	f fileEntry,
	unit *source.SourceUnit,
	bases *[]pendingBase,
	refs *[]pendingRef,
	usings *[]pendingUsing,
) {
	fileID := FileID(f.rel)
	g.files[fileID] = &FileNode{
		ID:          fileID,
		Path:        f.rel,
		ProjectID:   f.projectID,
		Kind:        FileKindSource,
		Namespace:   unit.Namespace,
		Lines:       unit.Lines,
		ParseFailed: unit.Failed,
	}
	g.edges = append(g.edges, Edge{
		Source: f.projectID,
		Target: fileID,
		Kind:   EdgeProjectContainsFile,
	})

	if unit.Failed {
		g.diags = append(g.diags, Diagnostic{Path: f.rel, Message: "parse failure: " + unit.Diagnostic})
		return
	}

	for _, td := range unit.Types {
		fullName := joinNamespace(unit.Namespace, td.NestedName())
		typeID := TypeID(fullName)
		if _, exists := g.types[typeID]; exists {
			// A type is declared in exactly one file. Partial classes and
			// duplicate names collapse onto the first declaration seen.
			g.diags = append(g.diags, Diagnostic{Path: f.rel, Message: "duplicate type declaration: " + fullName})
			continue
		}
		g.types[typeID] = &TypeNode{
			ID:         typeID,
			Name:       td.Name,
			FullName:   fullName,
			FileID:     fileID,
			Kind:       td.Kind,
			Visibility: td.Visibility,
			Namespace:  unit.Namespace,
			Tests:      td.Tests,
		}
		g.edges = append(g.edges, Edge{Source: fileID, Target: typeID, Kind: EdgeFileContainsType})

		nsID := b.ensureNamespace(g, unit.Namespace)
		g.edges = append(g.edges, Edge{Source: typeID, Target: nsID, Kind: EdgeTypeInNamespace})

		for _, base := range td.BaseTypes {
			*bases = append(*bases, pendingBase{typeID: typeID, ns: unit.Namespace, name: base})
		}
		if b.opts == BuildDefault {
			for _, ref := range td.Refs {
				*refs = append(*refs, pendingRef{typeID: typeID, ns: unit.Namespace, ref: ref})
			}
		}
	}

	if b.opts == BuildDefault {
		for _, u := range unit.Usings {
			*usings = append(*usings, pendingUsing{fileID: fileID, using: u})
		}
	}
}

// resolveReferences runs the second pass over queued base-type, usage, and
// namespace references, now that the full type set is known.
func (b *Builder) resolveReferences(g *SolutionGraph, bases []pendingBase, refs []pendingRef, usings []pendingUsing) {
	resolver := NewResolver(g.types)

	for _, pb := range bases {
		targetID, resolved, target := resolver.TargetID(pb.name, pb.ns)
		if targetID == pb.typeID {
			continue
		}
		kind, usage := EdgeTypeInherits, UsageBaseType
		if (resolved && target.Kind == source.TypeKindInterface) ||
			(!resolved && looksLikeInterface(pb.name)) {
			kind, usage = EdgeTypeImplements, UsageInterface
		}
		g.edges = append(g.edges, Edge{Source: pb.typeID, Target: targetID, Kind: kind, Usage: usage})
	}

	for _, pr := range refs {
		targetID, _, _ := resolver.TargetID(pr.ref.Name, pr.ns)
		if targetID == pr.typeID {
			continue
		}
		g.edges = append(g.edges, Edge{
			Source: pr.typeID,
			Target: targetID,
			Kind:   EdgeTypeUsage,
			Usage:  UsageKind(pr.ref.Context),
			Line:   pr.ref.Line,
		})
	}

	for _, pu := range usings {
		nsID := b.ensureNamespace(g, pu.using.Namespace)
		g.edges = append(g.edges, Edge{
			Source: pu.fileID,
			Target: nsID,
			Kind:   EdgeFileUsesNamespace,
			Line:   pu.using.Line,
		})
	}

	if resolver.Ambiguous > 0 {
		g.diags = append(g.diags, Diagnostic{
			Message: fmt.Sprintf("%d reference(s) resolved by first lexical match across namespaces", resolver.Ambiguous),
		})
	}
}

// linkProjects creates project-reference and package-reference edges.
// References to projects outside the scanned set stay as unresolved targets.
func (b *Builder) linkProjects(g *SolutionGraph, root string, descriptors []project.Descriptor) {
	for _, d := range descriptors {
		sourceID := ProjectID(d.Path)
		manifestDir := filepath.Dir(filepath.Join(root, filepath.FromSlash(d.Path)))

		for _, pr := range d.ProjectRefs {
			targetAbs := filepath.Join(manifestDir, filepath.FromSlash(pr.Path))
			targetID := ProjectID(b.rel(root, targetAbs))
			if _, ok := g.projects[targetID]; !ok {
				log.Printf("WARNING: project reference outside build: %s -> %s", d.Name, pr.Path)
				g.diags = append(g.diags, Diagnostic{Path: d.Path, Message: "unresolved project reference: " + pr.Path})
			}
			g.edges = append(g.edges, Edge{Source: sourceID, Target: targetID, Kind: EdgeProjectReferencesProject})
		}

		for _, pkg := range d.PackageRefs {
			pkgID := PackageID(pkg.Name)
			if _, ok := g.packages[pkgID]; !ok {
				g.packages[pkgID] = &PackageNode{ID: pkgID, Name: pkg.Name, Version: pkg.Version}
			}
			g.edges = append(g.edges, Edge{Source: sourceID, Target: pkgID, Kind: EdgeProjectReferencesPackage})
		}
	}
}

// ensureNamespace returns the id of the namespace node, creating it on
// first use. The empty namespace maps to the global namespace node.
func (b *Builder) ensureNamespace(g *SolutionGraph, ns string) string {
	nsID := NamespaceID(ns)
	if _, ok := g.namespaces[nsID]; !ok {
		g.namespaces[nsID] = &NamespaceNode{ID: nsID, Name: ns}
	}
	return nsID
}

// rel normalizes a path to slash-separated form relative to the build root,
// which keeps node ids stable regardless of how the entry path was spelled.
func (b *Builder) rel(root, p string) string {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return path.Clean(filepath.ToSlash(p))
	}
	return path.Clean(filepath.ToSlash(r))
}

// looksLikeInterface applies the C# naming convention to unresolved base
// names: IFoo is an interface, everything else a class.
func looksLikeInterface(name string) bool {
	name = stripGenericArgs(name)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if len(name) < 2 || name[0] != 'I' {
		return false
	}
	return unicode.IsUpper(rune(name[1]))
}

// joinNamespace prefixes a type name with its namespace.
func joinNamespace(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

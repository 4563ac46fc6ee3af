// Package analysis predicts the blast radius of a proposed structural edit
// over an already-built solution graph. Every operation is pure: it reads
// the graph, never mutates it, and always returns a report. Blocked
// operations populate the report's error list instead of failing.
package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// AffectedFile is one file touched by a proposed operation, with the
// reasons it is affected.
type AffectedFile struct {
	Path    string   `json:"path"`
	Reasons []string `json:"reasons"`
}

// ImpactReport is the structured output of one impact analysis.
type ImpactReport struct {
	Operation     string         `json:"operation"`
	AffectedFiles []AffectedFile `json:"affectedFiles"`
	Errors        []string       `json:"errors,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// AffectedFilesCount returns the number of distinct affected files.
func (r *ImpactReport) AffectedFilesCount() int {
	return len(r.AffectedFiles)
}

// Markdown renders the report deterministically: affected files ordered by
// path with one bullet each, then Errors and Warnings sections when
// non-empty.
func (r *ImpactReport) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Impact: %s\n\n", r.Operation)
	fmt.Fprintf(&sb, "**Affected files: %d**\n", r.AffectedFilesCount())

	if len(r.AffectedFiles) > 0 {
		sb.WriteString("\n")
		for _, f := range r.AffectedFiles {
			fmt.Fprintf(&sb, "- `%s` — %s\n", f.Path, strings.Join(f.Reasons, "; "))
		}
	}

	if len(r.Errors) > 0 {
		sb.WriteString("\n## Errors\n\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return sb.String()
}

// reportBuilder accumulates affected files keyed by path, merging reasons.
type reportBuilder struct {
	operation string
	affected  map[string][]string
	errors    []string
	warnings  []string
}

func newReportBuilder(operation string) *reportBuilder {
	return &reportBuilder{
		operation: operation,
		affected:  make(map[string][]string),
	}
}

func (b *reportBuilder) add(path, reason string) {
	for _, existing := range b.affected[path] {
		if existing == reason {
			return
		}
	}
	b.affected[path] = append(b.affected[path], reason)
}

func (b *reportBuilder) warn(msg string) {
	for _, existing := range b.warnings {
		if existing == msg {
			return
		}
	}
	b.warnings = append(b.warnings, msg)
}

func (b *reportBuilder) report() *ImpactReport {
	paths := make([]string, 0, len(b.affected))
	for p := range b.affected {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files := make([]AffectedFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, AffectedFile{Path: p, Reasons: b.affected[p]})
	}

	return &ImpactReport{
		Operation:     b.operation,
		AffectedFiles: files,
		Errors:        b.errors,
		Warnings:      b.warnings,
	}
}

package graph

import "path/filepath"

// Node ids are deterministic functions of stable attributes, so rebuilding
// from unchanged input yields identical ids. Path-derived ids always use
// slash separators.

func SolutionID(path string) string { return "solution:" + filepath.ToSlash(path) }

func ProjectID(path string) string { return "project:" + filepath.ToSlash(path) }

func FileID(path string) string { return "file:" + filepath.ToSlash(path) }

// TypeID derives from the fully-qualified type name. A reference to a type
// declared outside the scanned solution produces the same id shape with no
// node behind it: an unresolved reference.
func TypeID(fullName string) string { return "type:" + fullName }

func NamespaceID(ns string) string { return "ns:" + ns }

func PackageID(name string) string { return "pkg:" + name }

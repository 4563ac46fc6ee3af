package source

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// csExtractor walks a parsed C# AST and fills a SourceUnit. One extractor
// per Parse call; not safe for reuse.
type csExtractor struct {
	source []byte
	unit   *SourceUnit
}

// typeDeclKinds are the AST node kinds that declare a type. The grammar
// emits record structs either as record_declaration with a struct keyword
// child or as a dedicated kind, so both spellings are listed.
var typeDeclKinds = map[string]bool{
	"class_declaration":         true,
	"interface_declaration":     true,
	"struct_declaration":        true,
	"enum_declaration":          true,
	"record_declaration":        true,
	"record_struct_declaration": true,
}

// walkScope visits the named children of a container node (compilation unit
// or namespace body). ns is the namespace in effect; outer is the dotted
// enclosing-type path (empty at namespace scope).
func (e *csExtractor) walkScope(node *tree_sitter.Node, ns, outer string) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		switch {
		case kind == "using_directive":
			e.extractUsing(child)

		case kind == "namespace_declaration" || kind == "file_scoped_namespace_declaration":
			full := joinDotted(ns, e.fieldText(child, "name"))
			if e.unit.Namespace == "" {
				e.unit.Namespace = full
			}
			if body := child.ChildByFieldName("body"); body != nil {
				e.walkScope(body, full, outer)
			} else {
				// File-scoped namespace: the remaining declarations may be
				// children of this node or siblings, depending on grammar
				// version. Cover both.
				e.walkScope(child, full, outer)
				ns = full
			}

		case typeDeclKinds[kind]:
			e.extractType(child, ns, outer)
		}
	}
}

func (e *csExtractor) extractUsing(node *tree_sitter.Node) {
	name := node.ChildByFieldName("name")
	if name == nil {
		// Fall back to the last named child that looks like a name. This
		// covers plain, static, and alias directives alike.
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "qualified_name", "identifier", "alias_qualified_name", "member_access_expression":
				name = child
			}
		}
	}
	if name == nil {
		return
	}
	e.unit.Usings = append(e.unit.Usings, UsingDirective{
		Namespace: name.Utf8Text(e.source),
		Line:      int(node.StartPosition().Row) + 1,
	})
}

func (e *csExtractor) extractType(node *tree_sitter.Node, ns, outer string) {
	name := e.fieldText(node, "name")
	if name == "" {
		return
	}

	td := TypeDecl{
		Name:       name,
		Outer:      outer,
		Kind:       typeKindOf(node, e.source),
		Visibility: visibilityFrom(e.modifiers(node)),
		Line:       int(node.StartPosition().Row) + 1,
	}

	e.extractBaseList(&td, node)
	e.extractAttributes(&td, node, int(node.StartPosition().Row)+1)

	// Record parameter list (positional record properties) contributes
	// parameter-typed references.
	if params := node.ChildByFieldName("parameters"); params != nil {
		e.extractParameters(&td, params)
	}

	var nested []*tree_sitter.Node
	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			member := body.NamedChild(i)
			if member == nil {
				continue
			}
			switch {
			case typeDeclKinds[member.Kind()]:
				nested = append(nested, member)
			case member.Kind() == "method_declaration":
				e.extractMethod(&td, member)
			case member.Kind() == "property_declaration":
				e.extractProperty(&td, member)
			case member.Kind() == "field_declaration":
				e.extractField(&td, member)
			}
		}
	}

	e.unit.Types = append(e.unit.Types, td)

	// Nested types appear after their declaring type, carrying the dotted
	// enclosing path.
	childOuter := joinDotted(outer, name)
	for _, n := range nested {
		e.extractType(n, ns, childOuter)
	}
}

func (e *csExtractor) extractMethod(td *TypeDecl, node *tree_sitter.Node) {
	name := e.fieldText(node, "name")
	if name == "" {
		return
	}
	line := int(node.StartPosition().Row) + 1
	td.Methods = append(td.Methods, MethodDecl{Name: name, Line: line})

	// Return type. Grammar versions disagree on the field name.
	ret := node.ChildByFieldName("returns")
	if ret == nil {
		ret = node.ChildByFieldName("type")
	}
	e.addTypeRefs(td, ret, RefReturn, line)

	if params := node.ChildByFieldName("parameters"); params != nil {
		e.extractParameters(td, params)
	}

	// Test markers and other attributes.
	e.extractMethodAttributes(td, node, name, line)

	// Local declarations inside the body.
	if body := node.ChildByFieldName("body"); body != nil {
		e.extractLocals(td, body)
	}
}

func (e *csExtractor) extractParameters(td *TypeDecl, params *tree_sitter.Node) {
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil || p.Kind() != "parameter" {
			continue
		}
		e.addTypeRefs(td, p.ChildByFieldName("type"), RefParameter, int(p.StartPosition().Row)+1)
	}
}

func (e *csExtractor) extractProperty(td *TypeDecl, node *tree_sitter.Node) {
	name := e.fieldText(node, "name")
	if name == "" {
		return
	}
	line := int(node.StartPosition().Row) + 1
	typeNode := node.ChildByFieldName("type")
	td.Properties = append(td.Properties, PropertyDecl{
		Name: name,
		Type: nodeText(typeNode, e.source),
		Line: line,
	})
	e.addTypeRefs(td, typeNode, RefProperty, line)
}

func (e *csExtractor) extractField(td *TypeDecl, node *tree_sitter.Node) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "variable_declaration" {
			continue
		}
		e.addTypeRefs(td, child.ChildByFieldName("type"), RefField, int(child.StartPosition().Row)+1)
	}
}

// extractLocals walks a method body for variable declarations.
func (e *csExtractor) extractLocals(td *TypeDecl, node *tree_sitter.Node) {
	if node.Kind() == "variable_declaration" {
		e.addTypeRefs(td, node.ChildByFieldName("type"), RefLocal, int(node.StartPosition().Row)+1)
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			e.extractLocals(td, child)
		}
	}
}

func (e *csExtractor) extractBaseList(td *TypeDecl, node *tree_sitter.Node) {
	var baseList *tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() == "base_list" {
			baseList = child
			break
		}
	}
	if baseList == nil {
		return
	}
	for i := uint(0); i < baseList.NamedChildCount(); i++ {
		base := baseList.NamedChild(i)
		if base == nil {
			continue
		}
		if name := plainTypeName(base, e.source); name != "" {
			td.BaseTypes = append(td.BaseTypes, name)
		}
	}
}

// extractAttributes records attribute names on a type declaration as
// attribute usage references.
func (e *csExtractor) extractAttributes(td *TypeDecl, node *tree_sitter.Node, line int) {
	for _, attr := range attributeNodes(node) {
		if name := e.attributeName(attr); name != "" {
			td.Refs = append(td.Refs, TypeRef{Name: name, Context: RefAttribute, Line: line})
		}
	}
}

// extractMethodAttributes records attribute references and consults the
// test-marker table for each attribute on a method.
func (e *csExtractor) extractMethodAttributes(td *TypeDecl, node *tree_sitter.Node, method string, line int) {
	var info *TestInfo
	var traits []string
	for _, attr := range attributeNodes(node) {
		name := e.attributeName(attr)
		if name == "" {
			continue
		}
		td.Refs = append(td.Refs, TypeRef{Name: name, Context: RefAttribute, Line: line})

		if fw, dataDriven, ok := LookupTestAttribute(name); ok {
			if info == nil {
				info = &TestInfo{Method: method, Framework: fw, DataDriven: dataDriven, Line: line}
			} else if dataDriven {
				info.DataDriven = true
			}
		}
		if name == "Trait" {
			if trait := e.traitValue(attr); trait != "" {
				traits = append(traits, trait)
			}
		}
	}
	if info != nil {
		info.Traits = traits
		td.Tests = append(td.Tests, *info)
	}
}

// attributeNodes returns the attribute nodes attached to a declaration.
func attributeNodes(node *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		list := node.NamedChild(i)
		if list == nil || list.Kind() != "attribute_list" {
			continue
		}
		for j := uint(0); j < list.NamedChildCount(); j++ {
			if attr := list.NamedChild(j); attr != nil && attr.Kind() == "attribute" {
				out = append(out, attr)
			}
		}
	}
	return out
}

// attributeName returns the simple name of an attribute ("Fact" from
// [Xunit.Fact] or [Fact(...)]).
func (e *csExtractor) attributeName(attr *tree_sitter.Node) string {
	name := attr.ChildByFieldName("name")
	if name == nil && attr.NamedChildCount() > 0 {
		name = attr.NamedChild(0)
	}
	text := nodeText(name, e.source)
	if idx := strings.LastIndex(text, "."); idx >= 0 {
		text = text[idx+1:]
	}
	return text
}

// traitValue extracts `k:v` from [Trait("k", "v")].
func (e *csExtractor) traitValue(attr *tree_sitter.Node) string {
	var parts []string
	collectStringLiterals(attr, e.source, &parts)
	if len(parts) != 2 {
		return ""
	}
	return parts[0] + ":" + parts[1]
}

func collectStringLiterals(node *tree_sitter.Node, source []byte, out *[]string) {
	if node.Kind() == "string_literal" {
		*out = append(*out, strings.Trim(node.Utf8Text(source), `"`))
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			collectStringLiterals(child, source, out)
		}
	}
}

// addTypeRefs records the type names referenced by a type node: the outer
// name under ctx and any generic arguments under RefGenericArg. Predefined
// types (int, string, void, var) are skipped.
func (e *csExtractor) addTypeRefs(td *TypeDecl, node *tree_sitter.Node, ctx RefContext, line int) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "predefined_type", "implicit_type", "void_keyword":
		return

	case "nullable_type", "array_type", "pointer_type", "ref_type":
		inner := node.ChildByFieldName("type")
		if inner == nil && node.NamedChildCount() > 0 {
			inner = node.NamedChild(0)
		}
		e.addTypeRefs(td, inner, ctx, line)

	case "generic_name":
		if node.NamedChildCount() == 0 {
			return
		}
		if base := node.NamedChild(0); base != nil {
			if name := base.Utf8Text(e.source); name != "" {
				td.Refs = append(td.Refs, TypeRef{Name: name, Context: ctx, Line: line})
			}
		}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil || child.Kind() != "type_argument_list" {
				continue
			}
			for j := uint(0); j < child.NamedChildCount(); j++ {
				e.addTypeRefs(td, child.NamedChild(j), RefGenericArg, line)
			}
		}

	case "tuple_type":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			elem := node.NamedChild(i)
			if elem == nil {
				continue
			}
			e.addTypeRefs(td, elem.ChildByFieldName("type"), ctx, line)
		}

	case "qualified_name", "identifier", "alias_qualified_name":
		if name := node.Utf8Text(e.source); name != "" && name != "var" {
			td.Refs = append(td.Refs, TypeRef{Name: name, Context: ctx, Line: line})
		}
	}
}

// modifiers returns the modifier keywords on a declaration.
func (e *csExtractor) modifiers(node *tree_sitter.Node) []string {
	var out []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() == "modifier" {
			out = append(out, child.Utf8Text(e.source))
		}
	}
	return out
}

func (e *csExtractor) fieldText(node *tree_sitter.Node, field string) string {
	return nodeText(node.ChildByFieldName(field), e.source)
}

func nodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(source)
}

// typeKindOf maps a declaration node to a TypeKind. Record structs are
// detected by the struct keyword inside the record declaration.
func typeKindOf(node *tree_sitter.Node, source []byte) TypeKind {
	switch node.Kind() {
	case "interface_declaration":
		return TypeKindInterface
	case "struct_declaration":
		return TypeKindStruct
	case "enum_declaration":
		return TypeKindEnum
	case "record_struct_declaration":
		return TypeKindRecordStruct
	case "record_declaration":
		for i := uint(0); i < node.ChildCount(); i++ {
			if child := node.Child(i); child != nil && child.Kind() == "struct" {
				return TypeKindRecordStruct
			}
		}
		return TypeKindRecord
	default:
		return TypeKindClass
	}
}

// visibilityFrom applies explicit-modifier precedence:
// public > private protected > protected internal > protected > private >
// internal; no modifier defaults to internal.
func visibilityFrom(mods []string) Visibility {
	has := make(map[string]bool, len(mods))
	for _, m := range mods {
		has[m] = true
	}
	switch {
	case has["public"]:
		return VisPublic
	case has["private"] && has["protected"]:
		return VisPrivateProtected
	case has["protected"] && has["internal"]:
		return VisProtectedInternal
	case has["protected"]:
		return VisProtected
	case has["private"]:
		return VisPrivate
	default:
		return VisInternal
	}
}

// plainTypeName returns a base-list entry's name exactly as written, with
// generic arguments stripped.
func plainTypeName(node *tree_sitter.Node, source []byte) string {
	switch node.Kind() {
	case "identifier", "qualified_name":
		return node.Utf8Text(source)
	case "generic_name":
		if node.NamedChildCount() > 0 {
			if base := node.NamedChild(0); base != nil {
				return base.Utf8Text(source)
			}
		}
	case "primary_constructor_base_type":
		if node.NamedChildCount() > 0 {
			if inner := node.NamedChild(0); inner != nil {
				return plainTypeName(inner, source)
			}
		}
	}
	// Unknown shape: take the raw text up to any generic argument list.
	text := node.Utf8Text(source)
	if idx := strings.Index(text, "<"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(strings.TrimSuffix(text, "("))
}

// joinDotted concatenates dotted name segments, tolerating empty parts.
func joinDotted(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "." + b
	}
}

package source

import "strings"

// --- Enums ---

// TypeKind classifies a C# type declaration.
type TypeKind string

const (
	TypeKindClass        TypeKind = "class"
	TypeKindInterface    TypeKind = "interface"
	TypeKindStruct       TypeKind = "struct"
	TypeKindRecord       TypeKind = "record"
	TypeKindRecordStruct TypeKind = "record-struct"
	TypeKindEnum         TypeKind = "enum"
)

// Visibility is a declared C# access level. The zero value is invalid;
// declarations without an explicit modifier default to VisInternal.
type Visibility string

const (
	VisPublic            Visibility = "public"
	VisInternal          Visibility = "internal"
	VisProtected         Visibility = "protected"
	VisPrivate           Visibility = "private"
	VisProtectedInternal Visibility = "protected internal"
	VisPrivateProtected  Visibility = "private protected"
)

// RefContext tags where in a declaration a type name was referenced. The
// string values match the usage-kind tags on graph TypeUsage edges.
type RefContext string

const (
	RefField      RefContext = "field"
	RefProperty   RefContext = "property"
	RefParameter  RefContext = "parameter"
	RefReturn     RefContext = "return"
	RefLocal      RefContext = "local"
	RefGenericArg RefContext = "generic-argument"
	RefAttribute  RefContext = "attribute"
)

// TestFramework identifies the test framework a test-marker attribute
// belongs to.
type TestFramework string

const (
	FrameworkXUnit  TestFramework = "xunit"
	FrameworkNUnit  TestFramework = "nunit"
	FrameworkMSTest TestFramework = "mstest"
)

// testAttributes maps attribute simple names to their framework. Consulted
// during parsing; no reflection involved. The bool marks data-driven
// (parameterized) markers.
var testAttributes = map[string]struct {
	Framework  TestFramework
	DataDriven bool
}{
	"Fact":           {FrameworkXUnit, false},
	"Theory":         {FrameworkXUnit, true},
	"Test":           {FrameworkNUnit, false},
	"TestCase":       {FrameworkNUnit, true},
	"TestCaseSource": {FrameworkNUnit, true},
	"TestMethod":     {FrameworkMSTest, false},
	"DataTestMethod": {FrameworkMSTest, true},
}

// LookupTestAttribute returns the framework for a test-marker attribute name,
// tolerating the optional "Attribute" suffix ("FactAttribute" == "Fact").
func LookupTestAttribute(name string) (TestFramework, bool, bool) {
	entry, ok := testAttributes[name]
	if !ok {
		entry, ok = testAttributes[strings.TrimSuffix(name, "Attribute")]
	}
	return entry.Framework, entry.DataDriven, ok
}

// --- Models ---

// SourceUnit is the lightweight structural model of one parsed source file.
type SourceUnit struct {
	FileName  string
	Namespace string
	Usings    []UsingDirective
	Types     []TypeDecl
	Lines     int

	// Failed marks a unit produced from unparseable input. The unit is
	// still valid (empty type list); Diagnostic explains why.
	Failed     bool
	Diagnostic string
}

// UsingDirective is one import directive with its 1-based line number.
type UsingDirective struct {
	Namespace string
	Line      int
}

// TypeDecl is a declared type. Nested types carry the dotted enclosing
// path in Outer ("Outer" or "Outer.Inner"); top-level types leave it empty.
type TypeDecl struct {
	Name       string
	Outer      string
	Kind       TypeKind
	Visibility Visibility
	BaseTypes  []string // exactly as written, generics stripped
	Methods    []MethodDecl
	Properties []PropertyDecl
	Refs       []TypeRef
	Tests      []TestInfo
	Line       int
}

// NestedName returns the dotted name including enclosing types.
func (t TypeDecl) NestedName() string {
	if t.Outer == "" {
		return t.Name
	}
	return t.Outer + "." + t.Name
}

// MethodDecl is a declared method.
type MethodDecl struct {
	Name string
	Line int
}

// PropertyDecl is a declared property.
type PropertyDecl struct {
	Name string
	Type string
	Line int
}

// TypeRef is a referenced type name and the context it appeared in.
type TypeRef struct {
	Name    string
	Context RefContext
	Line    int
}

// TestInfo records one detected test method.
type TestInfo struct {
	Method     string
	Framework  TestFramework
	DataDriven bool
	Traits     []string // xUnit [Trait("k","v")] as "k:v"
	Line       int
}

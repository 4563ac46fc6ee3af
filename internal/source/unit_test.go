package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupTestAttribute(t *testing.T) {
	tests := []struct {
		name       string
		framework  TestFramework
		dataDriven bool
		ok         bool
	}{
		{"Fact", FrameworkXUnit, false, true},
		{"Theory", FrameworkXUnit, true, true},
		{"FactAttribute", FrameworkXUnit, false, true},
		{"TestCaseSource", FrameworkNUnit, true, true},
		{"DataTestMethod", FrameworkMSTest, true, true},
		{"Obsolete", "", false, false},
	}
	for _, tt := range tests {
		fw, dataDriven, ok := LookupTestAttribute(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.framework, fw, tt.name)
			assert.Equal(t, tt.dataDriven, dataDriven, tt.name)
		}
	}
}

func TestVisibilityFrom(t *testing.T) {
	tests := []struct {
		mods []string
		want Visibility
	}{
		{nil, VisInternal},
		{[]string{"public"}, VisPublic},
		{[]string{"static", "public"}, VisPublic},
		{[]string{"private"}, VisPrivate},
		{[]string{"protected"}, VisProtected},
		{[]string{"protected", "internal"}, VisProtectedInternal},
		{[]string{"private", "protected"}, VisPrivateProtected},
		{[]string{"sealed"}, VisInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, visibilityFrom(tt.mods), "%v", tt.mods)
	}
}

func TestNestedName(t *testing.T) {
	assert.Equal(t, "Inner", TypeDecl{Name: "Inner"}.NestedName())
	assert.Equal(t, "Outer.Inner", TypeDecl{Name: "Inner", Outer: "Outer"}.NestedName())
}

package extract

import (
	"strings"
	"testing"

	"github.com/codescope/backend/internal/models"
)

func classEntity(pkg, name string) *models.CodeEntity {
	return models.NewCodeEntity(name, models.KindClass, pkg, &models.SourceRange{StartLine: 1, EndLine: 10}, "")
}

func methodEntity(owner, name string) *models.CodeEntity {
	return models.NewCodeEntity(name, models.KindMethod, owner, &models.SourceRange{StartLine: 3, EndLine: 6}, "")
}

func TestGenerateID(t *testing.T) {
	tests := []struct {
		entity *models.CodeEntity
		want   string
	}{
		{classEntity("com.example", "Calculator"), "com.example.Calculator"},
		{methodEntity("Calculator", "add"), "Calculator#add"},
		{models.NewCodeEntity("counter", models.KindField, "Calculator", nil, ""), "Calculator.counter"},
	}

	for _, tt := range tests {
		if got := GenerateID(tt.entity); got != tt.want {
			t.Errorf("GenerateID(%s %s) = %q, want %q", tt.entity.Kind, tt.entity.Name, got, tt.want)
		}
	}
}

func TestGenerateIDOverloadsCollide(t *testing.T) {
	a := methodEntity("Calculator", "add")
	a.AddParameter("x", "int")
	b := methodEntity("Calculator", "add")
	b.AddParameter("x", "double")

	// Overloads share one id. Callers must not rely on the id to tell
	// them apart.
	if GenerateID(a) != GenerateID(b) {
		t.Errorf("Expected overloads to share an id, got %q and %q", GenerateID(a), GenerateID(b))
	}
}

func TestBuildPath(t *testing.T) {
	tests := []struct {
		entity *models.CodeEntity
		want   string
	}{
		{classEntity("com.example.util", "Strings"), "com/example/util/Strings"},
		{classEntity("", "Default"), "Default"},
		{methodEntity("Strings", "join"), "Strings/join"},
	}

	for _, tt := range tests {
		if got := BuildPath(tt.entity); got != tt.want {
			t.Errorf("BuildPath(%s) = %q, want %q", tt.entity.Name, got, tt.want)
		}
	}
}

func TestBuildFullTextOrder(t *testing.T) {
	m := methodEntity("Calculator", "add")
	m.Doc = "Adds two numbers."
	m.ReturnType = "int"
	m.AddParameter("a", "int")
	m.AddParameter("b", "int")
	m.AddCall("validate")
	m.AddCall("log")

	text := BuildFullText(m)

	// Fixed order: name, kind, doc, return type, parameters, calls
	// (calls sorted).
	want := "add method Adds two numbers. int int a int b log validate "
	if text != want {
		t.Errorf("BuildFullText = %q, want %q", text, want)
	}
}

func TestBuildFullTextDeterministic(t *testing.T) {
	m := methodEntity("Calculator", "run")
	for _, call := range []string{"gamma", "alpha", "beta"} {
		m.AddCall(call)
	}

	first := BuildFullText(m)
	for i := 0; i < 10; i++ {
		if got := BuildFullText(m); got != first {
			t.Fatalf("BuildFullText not deterministic: %q vs %q", first, got)
		}
	}
	if !strings.Contains(first, "alpha beta gamma") {
		t.Errorf("Expected sorted calls in %q", first)
	}
}

func TestBuildIRMethodAttributes(t *testing.T) {
	m := methodEntity("Calculator", "add")
	m.ReturnType = "int"
	m.AddParameter("a", "int")
	m.AddCall("log")

	ir := BuildIR(m)

	attrs, ok := ir.Attrs.(models.MethodAttributes)
	if !ok {
		t.Fatalf("Attrs = %T, want MethodAttributes", ir.Attrs)
	}
	if attrs.ClassName != "Calculator" {
		t.Errorf("ClassName = %q", attrs.ClassName)
	}
	if attrs.ReturnType != "int" {
		t.Errorf("ReturnType = %q", attrs.ReturnType)
	}
	if len(attrs.Parameters) != 1 || attrs.Parameters[0].Name != "a" {
		t.Errorf("Parameters = %+v", attrs.Parameters)
	}
	if len(attrs.Calls) != 1 || attrs.Calls[0] != "log" {
		t.Errorf("Calls = %v", attrs.Calls)
	}
}

func TestBuildIRTypeRelationships(t *testing.T) {
	c := classEntity("com.example", "Calculator")
	c.AddRelationship(models.RelationExtends, "BaseService")
	c.AddRelationship(models.RelationImplements, "Computable")

	ir := BuildIR(c)

	if got := ir.Relationship("EXTENDS"); len(got) != 1 || got[0] != "BaseService" {
		t.Errorf("EXTENDS = %v", got)
	}
	if got := ir.Relationship("IMPLEMENTS"); len(got) != 1 || got[0] != "Computable" {
		t.Errorf("IMPLEMENTS = %v", got)
	}
	attrs, ok := ir.Attrs.(models.TypeAttributes)
	if !ok {
		t.Fatalf("Attrs = %T, want TypeAttributes", ir.Attrs)
	}
	if attrs.IsInterface {
		t.Error("Class must not be flagged as interface")
	}
}

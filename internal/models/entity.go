package models

// EntityKind classifies an extracted declaration.
type EntityKind string

const (
	KindClass     EntityKind = "CLASS"
	KindInterface EntityKind = "INTERFACE"
	KindMethod    EntityKind = "METHOD"
	KindField     EntityKind = "FIELD"
	KindEnum      EntityKind = "ENUM"
)

// RelationKind tags a directed edge between two entity names.
type RelationKind string

const (
	RelationExtends    RelationKind = "EXTENDS"
	RelationImplements RelationKind = "IMPLEMENTS"
	RelationCalls      RelationKind = "CALLS"
)

// SourceRange is the 1-indexed line span of a declaration.
type SourceRange struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// Parameter is one method parameter. Order matters, so parameters are a
// slice rather than a map.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CodeEntity is one extracted declaration. For types ParentName is the
// package name; for members it is the owning type name. Entities are built
// during extraction and only mutated additively before registration.
type CodeEntity struct {
	Name       string
	Kind       EntityKind
	ParentName string
	Range      *SourceRange
	Doc        string

	Modifiers     []string
	Relationships map[RelationKind]map[string]bool

	// Method-specific.
	ReturnType string
	Parameters []Parameter
	Calls      map[string]bool

	// Field-specific.
	FieldType   string
	Initializer string

	// Enum-specific.
	Constants []string

	// FilePath is the source file this entity came from, relative to the
	// project source root. Used for file-level index grouping.
	FilePath string

	// Source is the raw declaration text. Captured for methods so the
	// index can chunk bodies into snippets.
	Source string
}

func NewCodeEntity(name string, kind EntityKind, parentName string, rng *SourceRange, doc string) *CodeEntity {
	return &CodeEntity{
		Name:          name,
		Kind:          kind,
		ParentName:    parentName,
		Range:         rng,
		Doc:           doc,
		Relationships: make(map[RelationKind]map[string]bool),
		Calls:         make(map[string]bool),
	}
}

func (e *CodeEntity) AddRelationship(kind RelationKind, target string) {
	targets, ok := e.Relationships[kind]
	if !ok {
		targets = make(map[string]bool)
		e.Relationships[kind] = targets
	}
	targets[target] = true
}

func (e *CodeEntity) AddModifier(mod string) {
	for _, m := range e.Modifiers {
		if m == mod {
			return
		}
	}
	e.Modifiers = append(e.Modifiers, mod)
}

func (e *CodeEntity) HasModifier(mod string) bool {
	for _, m := range e.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

func (e *CodeEntity) AddParameter(name, typ string) {
	e.Parameters = append(e.Parameters, Parameter{Name: name, Type: typ})
}

func (e *CodeEntity) AddCall(methodName string) {
	e.Calls[methodName] = true
}

func (e *CodeEntity) AddConstant(name string) {
	e.Constants = append(e.Constants, name)
}

// PackageName returns the enclosing package for type-level entities and the
// empty string for members.
func (e *CodeEntity) PackageName() string {
	switch e.Kind {
	case KindClass, KindInterface, KindEnum:
		return e.ParentName
	default:
		return ""
	}
}

// IsType reports whether the entity is a type-level declaration.
func (e *CodeEntity) IsType() bool {
	return e.Kind == KindClass || e.Kind == KindInterface || e.Kind == KindEnum
}

package models

import "sort"

// IR is the flat, indexable projection of one CodeEntity.
//
// IDs are deterministic and kind-dependent: types use "package.Name",
// methods "Owner#name", fields "Owner.name". Two overloads of the same
// method therefore collide on one id; this is a known limitation of the
// naming scheme, not something callers should paper over.
type IR struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Path string `json:"path"`
	// Text is the synthesized full-text blob used for search.
	Text string `json:"text,omitempty"`
	// Source is the raw declaration text, kept out of the wire shape.
	// Methods carry it so the index can chunk bodies into snippets.
	Source string `json:"-"`
	// FilePath is the originating source file, used to group entities
	// into file-level documents.
	FilePath string `json:"-"`

	Doc       string   `json:"doc,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	StartLine int      `json:"startLine,omitempty"`
	EndLine   int      `json:"endLine,omitempty"`

	Attrs IRAttributes `json:"attributes,omitempty"`

	Relationships map[string][]string `json:"relationships,omitempty"`
}

// IRAttributes is the kind-tagged attribute payload. Exactly one concrete
// type exists per entity kind, replacing an open string/object bag with
// compile-time field safety while keeping the wire shape.
type IRAttributes interface {
	irAttributes()
}

type TypeAttributes struct {
	Package     string `json:"package"`
	IsInterface bool   `json:"isInterface"`
}

type MethodAttributes struct {
	ClassName  string      `json:"className"`
	ReturnType string      `json:"returnType"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Calls      []string    `json:"calls,omitempty"`
}

type FieldAttributes struct {
	ClassName   string `json:"className"`
	FieldType   string `json:"fieldType"`
	Initializer string `json:"initializer,omitempty"`
}

type EnumAttributes struct {
	Package   string   `json:"package"`
	Constants []string `json:"constants,omitempty"`
}

func (TypeAttributes) irAttributes()   {}
func (MethodAttributes) irAttributes() {}
func (FieldAttributes) irAttributes()  {}
func (EnumAttributes) irAttributes()   {}

// AddRelationship records a relation edge, deduplicating targets.
func (ir *IR) AddRelationship(kind string, target string) {
	if ir.Relationships == nil {
		ir.Relationships = make(map[string][]string)
	}
	for _, t := range ir.Relationships[kind] {
		if t == target {
			return
		}
	}
	ir.Relationships[kind] = append(ir.Relationships[kind], target)
}

// Relationship returns the targets recorded for a relation kind.
func (ir *IR) Relationship(kind string) []string {
	return ir.Relationships[kind]
}

// SortedRelationKinds returns the relation kinds in stable order, for
// deterministic document generation.
func (ir *IR) SortedRelationKinds() []string {
	kinds := make([]string, 0, len(ir.Relationships))
	for k := range ir.Relationships {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

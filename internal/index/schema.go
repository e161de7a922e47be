package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Document field names. Every indexed entity, file aggregate and snippet
// shares one flat schema; which fields are populated depends on the kind.
const (
	FieldName        = "name"
	FieldKind        = "kind"
	FieldPath        = "path"
	FieldContent     = "content"
	FieldDoc         = "doc"
	FieldModifiers   = "modifiers"
	FieldRelations   = "relations"
	FieldParams      = "params"
	FieldReturnType  = "returnType"
	FieldFieldType   = "fieldType"
	FieldInitializer = "initializer"
	FieldPackage     = "package"
	FieldClass       = "class"
	FieldMethod      = "method"
	FieldSnippet     = "snippet"
	FieldStartLine   = "startLine"
	FieldEndLine     = "endLine"
)

// Synthetic kinds for documents that do not come from a single entity.
const (
	KindFile    = "file"
	KindSnippet = "snippet"
)

// buildIndexMapping returns the schema shared by all project indexes.
// Identifier-like fields use the keyword analyzer so they match as exact
// terms; name, doc and body text go through the standard analyzer.
func buildIndexMapping() mapping.IndexMapping {
	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name
	keywordField.Store = true

	textField := bleve.NewTextFieldMapping()
	textField.Store = true

	// Body text is searchable but never returned; snippets cover display.
	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false

	numericField := bleve.NewNumericFieldMapping()
	numericField.Store = true

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false
	doc.AddFieldMappingsAt(FieldName, textField)
	doc.AddFieldMappingsAt(FieldDoc, textField)
	doc.AddFieldMappingsAt(FieldSnippet, textField)
	doc.AddFieldMappingsAt(FieldContent, contentField)
	doc.AddFieldMappingsAt(FieldKind, keywordField)
	doc.AddFieldMappingsAt(FieldPath, keywordField)
	doc.AddFieldMappingsAt(FieldModifiers, keywordField)
	doc.AddFieldMappingsAt(FieldRelations, keywordField)
	doc.AddFieldMappingsAt(FieldParams, keywordField)
	doc.AddFieldMappingsAt(FieldReturnType, keywordField)
	doc.AddFieldMappingsAt(FieldFieldType, keywordField)
	doc.AddFieldMappingsAt(FieldInitializer, keywordField)
	doc.AddFieldMappingsAt(FieldPackage, keywordField)
	doc.AddFieldMappingsAt(FieldClass, keywordField)
	doc.AddFieldMappingsAt(FieldMethod, keywordField)
	doc.AddFieldMappingsAt(FieldStartLine, numericField)
	doc.AddFieldMappingsAt(FieldEndLine, numericField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

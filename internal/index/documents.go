package index

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codescope/backend/internal/models"
)

// snippetLines is the chunk size for method body snippets. Each chunk
// becomes its own document; a trailing partial chunk is kept.
const snippetLines = 3

type document struct {
	ID     string
	Fields map[string]interface{}
}

// buildDocuments flattens a project structure into the documents the
// index holds: one per entity, one per source file, and one per method
// body snippet. Output order is deterministic.
func buildDocuments(structure *models.ProjectStructure) []document {
	irs := structure.IRs()
	ids := make([]string, 0, len(irs))
	for id := range irs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var docs []document
	fileText := make(map[string][]string)

	for _, id := range ids {
		ir := irs[id]
		docs = append(docs, entityDocument(ir))
		docs = append(docs, snippetDocuments(ir)...)
		if ir.FilePath != "" {
			fileText[ir.FilePath] = append(fileText[ir.FilePath], ir.Text)
		}
	}

	paths := make([]string, 0, len(fileText))
	for p := range fileText {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		docs = append(docs, document{
			ID: "file:" + p,
			Fields: map[string]interface{}{
				FieldName:    filepath.Base(p),
				FieldKind:    KindFile,
				FieldPath:    p,
				FieldContent: strings.Join(fileText[p], "\n"),
			},
		})
	}

	return docs
}

func entityDocument(ir *models.IR) document {
	fields := map[string]interface{}{
		FieldName:      ir.Name,
		FieldKind:      ir.Kind,
		FieldPath:      ir.Path,
		FieldContent:   ir.Text,
		FieldStartLine: float64(ir.StartLine),
		FieldEndLine:   float64(ir.EndLine),
	}
	if ir.Doc != "" {
		fields[FieldDoc] = ir.Doc
	}
	if len(ir.Modifiers) > 0 {
		fields[FieldModifiers] = ir.Modifiers
	}
	if terms := relationTerms(ir); len(terms) > 0 {
		fields[FieldRelations] = terms
	}

	switch attrs := ir.Attrs.(type) {
	case models.TypeAttributes:
		fields[FieldPackage] = attrs.Package
	case models.EnumAttributes:
		fields[FieldPackage] = attrs.Package
	case models.MethodAttributes:
		fields[FieldClass] = attrs.ClassName
		fields[FieldReturnType] = attrs.ReturnType
		if len(attrs.Parameters) > 0 {
			params := make([]string, len(attrs.Parameters))
			for i, p := range attrs.Parameters {
				params[i] = p.Name + ":" + p.Type
			}
			fields[FieldParams] = params
		}
	case models.FieldAttributes:
		fields[FieldClass] = attrs.ClassName
		fields[FieldFieldType] = attrs.FieldType
		if attrs.Initializer != "" {
			fields[FieldInitializer] = attrs.Initializer
		}
	}

	return document{ID: ir.ID, Fields: fields}
}

// relationTerms encodes relationship edges as exact "KIND:target" terms
// so they can be matched without tokenization.
func relationTerms(ir *models.IR) []string {
	var terms []string
	for _, kind := range ir.SortedRelationKinds() {
		for _, target := range ir.Relationship(kind) {
			terms = append(terms, kind+":"+target)
		}
	}
	return terms
}

func snippetDocuments(ir *models.IR) []document {
	if ir.Kind != string(models.KindMethod) {
		return nil
	}
	source := ir.Source
	if source == "" {
		source = ir.Text
	}
	attrs, _ := ir.Attrs.(models.MethodAttributes)

	var docs []document
	for i, chunk := range splitSnippets(source) {
		docs = append(docs, document{
			ID: fmt.Sprintf("%s:snippet:%d", ir.ID, i),
			Fields: map[string]interface{}{
				FieldName:    ir.Name,
				FieldKind:    KindSnippet,
				FieldPath:    ir.Path,
				FieldMethod:  ir.ID,
				FieldClass:   attrs.ClassName,
				FieldSnippet: chunk,
			},
		})
	}
	return docs
}

// splitSnippets chunks text into groups of snippetLines lines. Chunks
// that are entirely blank are dropped.
func splitSnippets(text string) []string {
	lines := strings.Split(text, "\n")
	var chunks []string
	for start := 0; start < len(lines); start += snippetLines {
		end := start + snippetLines
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

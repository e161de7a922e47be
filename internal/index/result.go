package index

import (
	"strings"

	"github.com/blevesearch/bleve/v2/search"

	"github.com/codescope/backend/internal/models"
)

// Result is one search hit with its stored fields folded back into the
// shape the API returns.
type Result struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Kind      string  `json:"kind"`
	Path      string  `json:"path,omitempty"`
	Score     float64 `json:"score"`
	Doc       string  `json:"doc,omitempty"`
	StartLine int     `json:"startLine,omitempty"`
	EndLine   int     `json:"endLine,omitempty"`

	Modifiers     []string               `json:"modifiers,omitempty"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	Relationships map[string][]string    `json:"relationships,omitempty"`
}

func hitToResult(hit *search.DocumentMatch) Result {
	r := Result{
		ID:        hit.ID,
		Name:      fieldString(hit, FieldName),
		Kind:      fieldString(hit, FieldKind),
		Path:      fieldString(hit, FieldPath),
		Doc:       fieldString(hit, FieldDoc),
		Score:     hit.Score,
		StartLine: fieldInt(hit, FieldStartLine),
		EndLine:   fieldInt(hit, FieldEndLine),
		Modifiers: fieldStrings(hit, FieldModifiers),
	}

	if terms := fieldStrings(hit, FieldRelations); len(terms) > 0 {
		r.Relationships = make(map[string][]string)
		for _, term := range terms {
			kind, target, ok := strings.Cut(term, ":")
			if !ok {
				continue
			}
			r.Relationships[kind] = append(r.Relationships[kind], target)
		}
	}

	attrs := make(map[string]interface{})
	switch r.Kind {
	case string(models.KindClass), string(models.KindInterface), string(models.KindEnum):
		attrs["package"] = fieldString(hit, FieldPackage)
	case string(models.KindMethod):
		attrs["className"] = fieldString(hit, FieldClass)
		attrs["returnType"] = fieldString(hit, FieldReturnType)
		if params := fieldStrings(hit, FieldParams); len(params) > 0 {
			parameters := make(map[string]string, len(params))
			for _, p := range params {
				if name, typ, ok := strings.Cut(p, ":"); ok {
					parameters[name] = typ
				}
			}
			attrs["parameters"] = parameters
		}
	case string(models.KindField):
		attrs["className"] = fieldString(hit, FieldClass)
		attrs["fieldType"] = fieldString(hit, FieldFieldType)
		if init := fieldString(hit, FieldInitializer); init != "" {
			attrs["initializer"] = init
		}
	case KindSnippet:
		attrs["method"] = fieldString(hit, FieldMethod)
		attrs["className"] = fieldString(hit, FieldClass)
		attrs["snippet"] = fieldString(hit, FieldSnippet)
	}
	if len(attrs) > 0 {
		r.Attributes = attrs
	}

	return r
}

// Stored single-value fields come back as strings, multi-value fields as
// []interface{}. Numerics are stored as float64.

func fieldString(hit *search.DocumentMatch, name string) string {
	switch v := hit.Fields[name].(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func fieldStrings(hit *search.DocumentMatch, name string) []string {
	switch v := hit.Fields[name].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func fieldInt(hit *search.DocumentMatch, name string) int {
	if f, ok := hit.Fields[name].(float64); ok {
		return int(f)
	}
	return 0
}

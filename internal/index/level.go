package index

import (
	"fmt"
	"strings"

	"github.com/codescope/backend/internal/models"
)

// Level selects which slice of the index a search runs against. Each level
// routes the query to a different field set and, except for LevelAll,
// constrains results to one document kind.
type Level string

const (
	LevelFile      Level = "file"
	LevelClass     Level = "class"
	LevelInterface Level = "interface"
	LevelMethod    Level = "method"
	LevelField     Level = "field"
	LevelSnippet   Level = "snippet"
	LevelAll       Level = "all"
)

// ParseLevel maps a request string onto a Level, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(s)) {
	case LevelFile:
		return LevelFile, nil
	case LevelClass:
		return LevelClass, nil
	case LevelInterface:
		return LevelInterface, nil
	case LevelMethod:
		return LevelMethod, nil
	case LevelField:
		return LevelField, nil
	case LevelSnippet:
		return LevelSnippet, nil
	case LevelAll, "":
		return LevelAll, nil
	}
	return "", fmt.Errorf("unknown search level %q", s)
}

// searchFields returns the fields a query at this level runs against.
func (l Level) searchFields() []string {
	switch l {
	case LevelFile:
		return []string{FieldContent, FieldPath}
	case LevelMethod:
		return []string{FieldName, FieldContent, FieldDoc, FieldParams, FieldReturnType}
	case LevelField:
		return []string{FieldName, FieldContent, FieldDoc, FieldFieldType}
	case LevelSnippet:
		return []string{FieldSnippet}
	default:
		return []string{FieldName, FieldContent, FieldDoc}
	}
}

// kindFilter returns the document kind a level is constrained to, or ""
// for no constraint.
func (l Level) kindFilter() string {
	switch l {
	case LevelFile:
		return KindFile
	case LevelClass:
		return string(models.KindClass)
	case LevelInterface:
		return string(models.KindInterface)
	case LevelMethod:
		return string(models.KindMethod)
	case LevelField:
		return string(models.KindField)
	case LevelSnippet:
		return KindSnippet
	default:
		return ""
	}
}

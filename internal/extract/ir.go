package extract

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/codescope/backend/internal/models"
)

// GenerateID derives the deterministic IR id from (kind, parent, name).
// Types map to "package.Name", methods to "Owner#name", fields to
// "Owner.name". Overloaded methods collide on one id by design of the
// scheme; see the IR doc comment.
func GenerateID(entity *models.CodeEntity) string {
	switch entity.Kind {
	case models.KindClass, models.KindInterface, models.KindEnum:
		return entity.PackageName() + "." + entity.Name
	case models.KindMethod:
		return entity.ParentName + "#" + entity.Name
	case models.KindField:
		return entity.ParentName + "." + entity.Name
	default:
		return uuid.NewString()
	}
}

// BuildPath is the slash form of the qualified name.
func BuildPath(entity *models.CodeEntity) string {
	switch entity.Kind {
	case models.KindClass, models.KindInterface, models.KindEnum:
		pkg := strings.ReplaceAll(entity.PackageName(), ".", "/")
		if pkg == "" {
			return entity.Name
		}
		return pkg + "/" + entity.Name
	case models.KindMethod, models.KindField:
		return entity.ParentName + "/" + entity.Name
	default:
		return ""
	}
}

// BuildFullText synthesizes the searchable text blob. The concatenation
// order is a contract: name, kind, documentation, then kind-specific
// tokens. Sets are sorted so repeated extraction yields identical text.
func BuildFullText(entity *models.CodeEntity) string {
	var sb strings.Builder

	sb.WriteString(entity.Name)
	sb.WriteString(" ")
	sb.WriteString(strings.ToLower(string(entity.Kind)))
	sb.WriteString(" ")
	sb.WriteString(entity.Doc)
	sb.WriteString(" ")

	switch entity.Kind {
	case models.KindMethod:
		sb.WriteString(entity.ReturnType)
		sb.WriteString(" ")
		for _, p := range entity.Parameters {
			sb.WriteString(p.Type)
			sb.WriteString(" ")
			sb.WriteString(p.Name)
			sb.WriteString(" ")
		}
		for _, call := range sortedKeys(entity.Calls) {
			sb.WriteString(call)
			sb.WriteString(" ")
		}

	case models.KindField:
		sb.WriteString(entity.FieldType)
		sb.WriteString(" ")
		if entity.Initializer != "" {
			sb.WriteString(entity.Initializer)
			sb.WriteString(" ")
		}

	case models.KindEnum:
		for _, c := range entity.Constants {
			sb.WriteString(c)
			sb.WriteString(" ")
		}
	}

	return sb.String()
}

// BuildIR normalizes a CodeEntity into its indexable projection.
func BuildIR(entity *models.CodeEntity) *models.IR {
	ir := &models.IR{
		ID:        GenerateID(entity),
		Name:      entity.Name,
		Kind:      string(entity.Kind),
		Path:      BuildPath(entity),
		Doc:       entity.Doc,
		Modifiers: append([]string(nil), entity.Modifiers...),
		Source:    entity.Source,
		FilePath:  entity.FilePath,
	}

	if entity.Range != nil {
		ir.StartLine = entity.Range.StartLine
		ir.EndLine = entity.Range.EndLine
	}

	switch entity.Kind {
	case models.KindClass, models.KindInterface:
		ir.Attrs = models.TypeAttributes{
			Package:     entity.PackageName(),
			IsInterface: entity.Kind == models.KindInterface,
		}
		for kind, targets := range entity.Relationships {
			for _, target := range sortedKeys(targets) {
				ir.AddRelationship(string(kind), target)
			}
		}

	case models.KindMethod:
		ir.Attrs = models.MethodAttributes{
			ClassName:  entity.ParentName,
			ReturnType: entity.ReturnType,
			Parameters: append([]models.Parameter(nil), entity.Parameters...),
			Calls:      sortedKeys(entity.Calls),
		}

	case models.KindField:
		ir.Attrs = models.FieldAttributes{
			ClassName:   entity.ParentName,
			FieldType:   entity.FieldType,
			Initializer: entity.Initializer,
		}

	case models.KindEnum:
		ir.Attrs = models.EnumAttributes{
			Package:   entity.PackageName(),
			Constants: append([]string(nil), entity.Constants...),
		}
	}

	ir.Text = BuildFullText(entity)

	return ir
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

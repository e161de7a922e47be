package semantic

import (
	"fmt"
	"unicode"

	"github.com/codescope/backend/internal/extract"
	"github.com/codescope/backend/internal/models"
)

type QualitySeverity string

const (
	SeverityInfo    QualitySeverity = "INFO"
	SeverityWarning QualitySeverity = "WARNING"
	SeverityError   QualitySeverity = "ERROR"
)

// Quality issue types.
const (
	IssueMissingDoc         = "MISSING_DOC"
	IssueLongMethod         = "LONG_METHOD"
	IssueTooManyParameters  = "TOO_MANY_PARAMETERS"
	IssueInconsistentNaming = "INCONSISTENT_NAMING"
)

// QualityIssue is one finding against one entity.
type QualityIssue struct {
	EntityID string          `json:"entityId"`
	Type     string          `json:"type"`
	Severity QualitySeverity `json:"severity"`
	Message  string          `json:"message"`
}

// Quality thresholds.
const (
	maxMethodLines = 30
	maxParameters  = 5
)

// QualityAnalyzer collects rule findings across a project and scores the
// result. Rules are deliberately shallow; they flag candidates for a
// human to look at, not verdicts.
type QualityAnalyzer struct {
	issues []QualityIssue
}

func NewQualityAnalyzer() *QualityAnalyzer {
	return &QualityAnalyzer{}
}

// AnalyzeEntity dispatches on entity kind. Interfaces and enums are
// held to the same documentation rule as classes.
func (a *QualityAnalyzer) AnalyzeEntity(entity *models.CodeEntity) {
	switch entity.Kind {
	case models.KindClass, models.KindInterface, models.KindEnum:
		a.analyzeType(entity)
	case models.KindMethod:
		a.analyzeMethod(entity)
	case models.KindField:
		a.analyzeField(entity)
	}
}

func (a *QualityAnalyzer) analyzeType(entity *models.CodeEntity) {
	if entity.Doc == "" {
		a.add(entity, IssueMissingDoc, SeverityWarning,
			"type missing documentation")
	}
}

func (a *QualityAnalyzer) analyzeMethod(entity *models.CodeEntity) {
	if entity.Range != nil {
		lines := entity.Range.EndLine - entity.Range.StartLine + 1
		if lines > maxMethodLines {
			a.add(entity, IssueLongMethod, SeverityWarning,
				fmt.Sprintf("method is too long (%d lines)", lines))
		}
	}

	if len(entity.Parameters) > maxParameters {
		a.add(entity, IssueTooManyParameters, SeverityWarning,
			fmt.Sprintf("method has too many parameters (%d)", len(entity.Parameters)))
	}

	if entity.Doc == "" {
		a.add(entity, IssueMissingDoc, SeverityInfo,
			"method missing documentation")
	}
}

func (a *QualityAnalyzer) analyzeField(entity *models.CodeEntity) {
	name := []rune(entity.Name)
	if len(name) > 0 && unicode.IsUpper(name[0]) && !entity.HasModifier("static") {
		a.add(entity, IssueInconsistentNaming, SeverityInfo,
			"non-static field name starts with an uppercase letter")
	}
}

// Issues returns every finding, optionally filtered to one entity.
func (a *QualityAnalyzer) Issues(entityID string) []QualityIssue {
	if entityID == "" {
		return a.issues
	}
	var filtered []QualityIssue
	for _, issue := range a.issues {
		if issue.EntityID == entityID {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// Score aggregates findings into a 0-100 quality score: errors cost 10
// points, warnings 5, infos 1.
func (a *QualityAnalyzer) Score() int {
	score := 100
	for _, issue := range a.issues {
		switch issue.Severity {
		case SeverityError:
			score -= 10
		case SeverityWarning:
			score -= 5
		case SeverityInfo:
			score -= 1
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (a *QualityAnalyzer) add(entity *models.CodeEntity, issueType string, severity QualitySeverity, message string) {
	a.issues = append(a.issues, QualityIssue{
		EntityID: extract.GenerateID(entity),
		Type:     issueType,
		Severity: severity,
		Message:  message,
	})
}

package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescope/backend/internal/models"
)

func TestAnalyzeUndocumentedClass(t *testing.T) {
	a := NewQualityAnalyzer()
	entity := models.NewCodeEntity("Widget", models.KindClass, "com.example",
		&models.SourceRange{StartLine: 1, EndLine: 10}, "")
	a.AnalyzeEntity(entity)

	issues := a.Issues("com.example.Widget")
	require.Len(t, issues, 1)
	assert.Equal(t, IssueMissingDoc, issues[0].Type)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
}

func TestAnalyzeDocumentedClassClean(t *testing.T) {
	a := NewQualityAnalyzer()
	entity := models.NewCodeEntity("Widget", models.KindClass, "com.example",
		&models.SourceRange{StartLine: 1, EndLine: 10}, "A widget.")
	a.AnalyzeEntity(entity)

	assert.Empty(t, a.Issues(""))
	assert.Equal(t, 100, a.Score())
}

func TestAnalyzeLongMethod(t *testing.T) {
	a := NewQualityAnalyzer()
	entity := models.NewCodeEntity("process", models.KindMethod, "Widget",
		&models.SourceRange{StartLine: 10, EndLine: 50}, "Processes.")
	a.AnalyzeEntity(entity)

	issues := a.Issues("Widget#process")
	require.Len(t, issues, 1)
	assert.Equal(t, IssueLongMethod, issues[0].Type)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
}

func TestAnalyzeMethodAtLineLimit(t *testing.T) {
	a := NewQualityAnalyzer()
	entity := models.NewCodeEntity("process", models.KindMethod, "Widget",
		&models.SourceRange{StartLine: 1, EndLine: 30}, "Processes.")
	a.AnalyzeEntity(entity)

	assert.Empty(t, a.Issues(""))
}

func TestAnalyzeTooManyParameters(t *testing.T) {
	a := NewQualityAnalyzer()
	entity := models.NewCodeEntity("configure", models.KindMethod, "Widget",
		&models.SourceRange{StartLine: 1, EndLine: 3}, "Configures.")
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		entity.AddParameter(name, "int")
	}
	a.AnalyzeEntity(entity)

	issues := a.Issues("Widget#configure")
	require.Len(t, issues, 1)
	assert.Equal(t, IssueTooManyParameters, issues[0].Type)
}

func TestAnalyzeUndocumentedMethodIsInfo(t *testing.T) {
	a := NewQualityAnalyzer()
	entity := models.NewCodeEntity("process", models.KindMethod, "Widget",
		&models.SourceRange{StartLine: 1, EndLine: 3}, "")
	a.AnalyzeEntity(entity)

	issues := a.Issues("Widget#process")
	require.Len(t, issues, 1)
	assert.Equal(t, IssueMissingDoc, issues[0].Type)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
}

func TestAnalyzeFieldNaming(t *testing.T) {
	a := NewQualityAnalyzer()

	bad := models.NewCodeEntity("Count", models.KindField, "Widget", nil, "")
	a.AnalyzeEntity(bad)

	constant := models.NewCodeEntity("MAX", models.KindField, "Widget", nil, "")
	constant.AddModifier("static")
	a.AnalyzeEntity(constant)

	ok := models.NewCodeEntity("count", models.KindField, "Widget", nil, "")
	a.AnalyzeEntity(ok)

	issues := a.Issues("")
	require.Len(t, issues, 1)
	assert.Equal(t, "Widget.Count", issues[0].EntityID)
	assert.Equal(t, IssueInconsistentNaming, issues[0].Type)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
}

func TestScoreDeductions(t *testing.T) {
	a := NewQualityAnalyzer()

	// One warning and one info.
	a.AnalyzeEntity(models.NewCodeEntity("Widget", models.KindClass, "com.example",
		&models.SourceRange{StartLine: 1, EndLine: 10}, ""))
	a.AnalyzeEntity(models.NewCodeEntity("process", models.KindMethod, "Widget",
		&models.SourceRange{StartLine: 1, EndLine: 3}, ""))

	assert.Equal(t, 94, a.Score())
}

func TestScoreClampsAtZero(t *testing.T) {
	a := NewQualityAnalyzer()
	for i := 0; i < 25; i++ {
		a.AnalyzeEntity(models.NewCodeEntity("Widget", models.KindClass, "com.example",
			&models.SourceRange{StartLine: 1, EndLine: 10}, ""))
	}

	assert.Equal(t, 0, a.Score())
}

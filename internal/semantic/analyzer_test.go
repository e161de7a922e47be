package semantic

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescope/backend/internal/models"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func analyzeProject(t *testing.T, structure *models.ProjectStructure) *Analyzer {
	t.Helper()

	a := NewAnalyzer(t.TempDir(), testLogger())
	t.Cleanup(func() { a.Close() })

	_, err := a.AnalyzeProject(context.Background(), structure)
	require.NoError(t, err)
	return a
}

func TestAnalyzeProjectReport(t *testing.T) {
	a := NewAnalyzer(t.TempDir(), testLogger())
	defer a.Close()

	report, err := a.AnalyzeProject(context.Background(), calculatorProject(t))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Methods)
	assert.Equal(t, 1, report.CallEdges)
	assert.Equal(t, 2, report.DataFlowNodes)
	assert.Zero(t, report.SimilarPairs)
	assert.Greater(t, report.Concepts, 0)
	// CalculatorUser lacks a doc comment, as does its sum method.
	assert.Equal(t, 2, report.QualityIssues)
	assert.Equal(t, 94, report.QualityScore)
}

func TestFindRelatedMethods(t *testing.T) {
	a := analyzeProject(t, calculatorProject(t))

	callees, err := a.FindRelatedMethods("CalculatorUser#sum", DirectionCallees, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Calculator#add"}, callees)

	callers, err := a.FindRelatedMethods("Calculator#add", DirectionCallers, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"CalculatorUser#sum"}, callers)

	none, err := a.FindRelatedMethods("Calculator#add", DirectionCallees, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindRelatedMethodsLimit(t *testing.T) {
	structure := buildStructure(t, map[string]string{
		"Driver.java": `package p;
class Driver {
    void first() {}
    void second() {}
    void run() { first(); second(); }
}
`,
	})
	a := analyzeProject(t, structure)

	all, err := a.FindRelatedMethods("Driver#run", DirectionCallees, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := a.FindRelatedMethods("Driver#run", DirectionCallees, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestFindDataFlowNode(t *testing.T) {
	a := analyzeProject(t, calculatorProject(t))

	node, err := a.FindDataFlowNode("CalculatorUser#sum")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "CalculatorUser", node.ClassName)
	assert.Equal(t, []string{"Calculator#add"}, node.Connections)

	missing, err := a.FindDataFlowNode("Nope#nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindSimilarMethods(t *testing.T) {
	structure := buildStructure(t, map[string]string{
		"MathA.java": `package com.example;

public class MathA {
    public int add(int a, int b) { return a + b; }
}
`,
		"MathB.java": `package com.example;

public class MathB {
    public int add(int a, int b) { return a + b; }
}
`,
	})
	a := analyzeProject(t, structure)

	pairs, err := a.FindSimilarMethods("MathB#add", 0.9, 0)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "MathB#add", pairs[0].A)
	assert.Equal(t, "MathA#add", pairs[0].B)
	assert.InDelta(t, 1.0, pairs[0].Score, 0.01)

	// Raising the floor above the stored score filters the pair out.
	pairs, err = a.FindSimilarMethods("MathB#add", 1.01, 0)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestFindEntitiesByConcept(t *testing.T) {
	a := analyzeProject(t, calculatorProject(t))

	occurrences, err := a.FindEntitiesByConcept("calculator")
	require.NoError(t, err)
	require.NotEmpty(t, occurrences)

	ids := make([]string, len(occurrences))
	for i, occ := range occurrences {
		assert.Equal(t, "calculator", occ.Concept)
		ids[i] = occ.EntityID
	}
	assert.Contains(t, ids, "com.example.Calculator")

	none, err := a.FindEntitiesByConcept("nonexistent")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueriesBeforeAnalysis(t *testing.T) {
	a := NewAnalyzer(t.TempDir(), testLogger())
	defer a.Close()

	_, err := a.FindRelatedMethods("Calculator#add", DirectionCallees, 0)
	assert.ErrorIs(t, err, ErrNotAnalyzed)

	_, err = a.FindDataFlowNode("Calculator#add")
	assert.ErrorIs(t, err, ErrNotAnalyzed)

	_, err = a.QualityScore()
	assert.ErrorIs(t, err, ErrNotAnalyzed)
}

func TestArtifactsSurviveRestart(t *testing.T) {
	dir := t.TempDir()

	first := NewAnalyzer(dir, testLogger())
	_, err := first.AnalyzeProject(context.Background(), calculatorProject(t))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := NewAnalyzer(dir, testLogger())
	defer second.Close()

	callees, err := second.FindRelatedMethods("CalculatorUser#sum", DirectionCallees, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Calculator#add"}, callees)
}

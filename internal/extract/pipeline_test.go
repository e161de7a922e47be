package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/codescope/backend/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger.WithField("test", true)
}

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/Calculator.java", `package com.example;
public class Calculator {
    public int add(int a, int b) { return a + b; }
}
`)
	writeFile(t, dir, "src/User.java", `package com.example;
public class CalculatorUser {
    private Calculator calculator;
    public int sum(int x, int y) { return calculator.add(x, y); }
}
`)
	// Files under skipped directories are not extracted.
	writeFile(t, dir, "target/Generated.java", `package gen; class Generated {}`)
	// Non-Java files are ignored.
	writeFile(t, dir, "README.md", "# readme")

	pipeline := NewPipeline(2, testLogger())
	defer pipeline.Close()

	structure, result, err := pipeline.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FilesProcessed != 2 {
		t.Errorf("FilesProcessed = %d, want 2", result.FilesProcessed)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	if structure.IRByID("com.example.Calculator") == nil {
		t.Error("Expected Calculator IR")
	}
	if structure.IRByID("Calculator#add") == nil {
		t.Error("Expected Calculator#add IR")
	}
	if structure.IRByID("gen.Generated") != nil {
		t.Error("Skipped directory leaked into the structure")
	}

	// Relationship resolution ran: the caller method carries its CALLS edge.
	sum := structure.IRByID("CalculatorUser#sum")
	if sum == nil {
		t.Fatal("Expected CalculatorUser#sum IR")
	}
	if got := sum.Relationship("CALLS"); len(got) != 1 || got[0] != "add" {
		t.Errorf("CALLS = %v, want [add]", got)
	}
}

func TestPipelineFailSoft(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Good.java", `package p; class Good {}`)
	// Tree-sitter parses almost anything; unreadable files are the
	// realistic per-file failure.
	bad := filepath.Join(dir, "Bad.java")
	if err := os.WriteFile(bad, []byte("class Bad {}"), 0o000); err != nil {
		t.Fatalf("Failed to write unreadable file: %v", err)
	}
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	pipeline := NewPipeline(1, testLogger())
	defer pipeline.Close()

	structure, result, err := pipeline.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want one entry", result.Errors)
	}
	if structure.IRByID("p.Good") == nil {
		t.Error("Readable file should still be extracted")
	}
}

func TestPipelineEntityCounts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Shape.java", `package p;
public class Shape {
    private int sides;
    public int sides() { return sides; }
}
`)

	pipeline := NewPipeline(1, testLogger())
	defer pipeline.Close()

	structure, result, err := pipeline.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.EntitiesFound != 3 {
		t.Errorf("EntitiesFound = %d, want 3", result.EntitiesFound)
	}

	var kinds []models.EntityKind
	for _, e := range structure.Entities() {
		kinds = append(kinds, e.Kind)
	}
	if len(kinds) != 3 {
		t.Errorf("Entities = %v", kinds)
	}
}

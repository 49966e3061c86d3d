package docprompt

import (
	"strings"
	"testing"
)

func TestFileAnalysisContainsGraphMarkers(t *testing.T) {
	p := FileAnalysis("main.go", "package main")
	if !strings.Contains(p, "<!-- GRAPH_DATA_START -->") || !strings.Contains(p, "<!-- GRAPH_DATA_END -->") {
		t.Fatalf("expected graph markers in prompt, got:\n%s", p)
	}
	if !strings.Contains(p, "main.go") {
		t.Fatal("expected file path to appear in prompt")
	}
}

func TestDirectorySummaryReferencesDirPath(t *testing.T) {
	p := DirectorySummary("pkg", "internal/pkg", "- a.go: does a thing")
	if !strings.Contains(p, "internal/pkg") {
		t.Fatalf("expected dir path in prompt, got:\n%s", p)
	}
}

func TestReadmeMarksUnknownAsTBD(t *testing.T) {
	p := Readme("demo", "/src/demo", "docs")
	if !strings.Contains(p, "<TBD>") {
		t.Fatal("expected TBD guidance in README prompt")
	}
}

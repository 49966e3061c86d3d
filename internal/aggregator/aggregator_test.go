package aggregator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"codedocs/internal/checkpoint"
	"codedocs/internal/docmodel"
	"codedocs/internal/treewalker"
)

type fakeLLM struct{ response string }

func (f *fakeLLM) Analyze(ctx context.Context, prompt string) (string, error) {
	return f.response, nil
}

func TestRunWritesProjectGraphAndDocs(t *testing.T) {
	docsRoot := t.TempDir()

	root := docmodel.SourceNode{Kind: docmodel.KindDir, RelativePath: "", Depth: 0}
	file := docmodel.SourceNode{Kind: docmodel.KindFile, RelativePath: "a.go", Depth: 1, Name: "a.go"}

	plan := &treewalker.Plan{ByDepth: map[int][]docmodel.SourceNode{
		0: {root},
		1: {file},
	}}
	plan.Stats.TotalFiles = 1
	plan.Stats.TotalDirs = 1

	if err := os.WriteFile(filepath.Join(docsRoot, "_dir_summary.md"), []byte("# root\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(docsRoot, "a.go.md"), []byte("# a.go\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	frag := docmodel.GraphFragment{Nodes: []docmodel.GraphNode{{ID: "file::a.go", Label: "a.go", Type: docmodel.GraphNodeFile}}}
	b, _ := json.Marshal(frag)
	if err := os.WriteFile(filepath.Join(docsRoot, "a.go.graph.json"), b, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cp, err := checkpoint.LoadOrInit(docsRoot)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}

	err = Run(context.Background(), docsRoot, "demo", plan, cp, &fakeLLM{response: "content"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{docmodel.ProjectGraphName, docmodel.ReadmeName, docmodel.ReadingGuideName} {
		if info, err := os.Stat(filepath.Join(docsRoot, name)); err != nil || info.Size() == 0 {
			t.Fatalf("expected non-empty %s, err=%v", name, err)
		}
	}
	if !cp.IsProjectGraphCompleted() {
		t.Fatal("expected project graph completed flag set")
	}
	if !cp.IsAPIDocCompleted() {
		t.Fatal("expected api doc completed flag set")
	}
	if info, err := os.Stat(filepath.Join(docsRoot, docmodel.APIDocName)); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty %s, err=%v", docmodel.APIDocName, err)
	}

	pgBytes, err := os.ReadFile(filepath.Join(docsRoot, docmodel.ProjectGraphName))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var graph docmodel.ProjectGraph
	if err := json.Unmarshal(pgBytes, &graph); err != nil {
		t.Fatalf("Unmarshal project graph: %v", err)
	}
	foundFileNode := false
	foundContainsEdge := false
	for _, n := range graph.Nodes {
		if n.ID == "file::a.go" {
			foundFileNode = true
		}
	}
	for _, e := range graph.Edges {
		if e.Type == docmodel.EdgeContains && e.Target == "file::a.go" {
			foundContainsEdge = true
		}
	}
	if !foundFileNode {
		t.Fatal("expected file::a.go node in project graph")
	}
	if !foundContainsEdge {
		t.Fatal("expected contains edge from root to file::a.go")
	}
}

// countingLLM counts calls so a resumed run can assert it made none.
type countingLLM struct {
	response string
	calls    int
}

func (f *countingLLM) Analyze(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.response, nil
}

func TestRunIsResumeIdempotent(t *testing.T) {
	docsRoot := t.TempDir()

	root := docmodel.SourceNode{Kind: docmodel.KindDir, RelativePath: "", Depth: 0}
	file := docmodel.SourceNode{Kind: docmodel.KindFile, RelativePath: "a.go", Depth: 1, Name: "a.go"}
	plan := &treewalker.Plan{ByDepth: map[int][]docmodel.SourceNode{
		0: {root},
		1: {file},
	}}
	plan.Stats.TotalFiles = 1
	plan.Stats.TotalDirs = 1

	if err := os.WriteFile(filepath.Join(docsRoot, "_dir_summary.md"), []byte("# root\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(docsRoot, "a.go.md"), []byte("# a.go\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	frag := docmodel.GraphFragment{Nodes: []docmodel.GraphNode{{ID: "file::a.go", Label: "a.go", Type: docmodel.GraphNodeFile}}}
	b, _ := json.Marshal(frag)
	if err := os.WriteFile(filepath.Join(docsRoot, "a.go.graph.json"), b, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cp, err := checkpoint.LoadOrInit(docsRoot)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}

	first := &countingLLM{response: "content"}
	if err := Run(context.Background(), docsRoot, "demo", plan, cp, first); err != nil {
		t.Fatalf("Run (first pass): %v", err)
	}
	if first.calls == 0 {
		t.Fatal("expected the first pass to call the LLM")
	}

	reloaded, err := checkpoint.LoadOrInit(docsRoot)
	if err != nil {
		t.Fatalf("LoadOrInit (resume): %v", err)
	}

	second := &countingLLM{response: "content"}
	if err := Run(context.Background(), docsRoot, "demo", plan, reloaded, second); err != nil {
		t.Fatalf("Run (resumed pass): %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("expected a fully-resumed run to make no LLM calls, got %d", second.calls)
	}
}

// noEndpointLLM answers every API-extract prompt with the sentinel line and
// every other prompt with generic content, so generateAPIDoc should skip
// writing API.md entirely.
type noEndpointLLM struct{}

func (noEndpointLLM) Analyze(ctx context.Context, prompt string) (string, error) {
	if len(prompt) > 0 && prompt[0:1] == "E" {
		return "**This file defines no API endpoints.**", nil
	}
	return "content", nil
}

func TestRunSkipsAPIDocWhenNoEndpointsFound(t *testing.T) {
	docsRoot := t.TempDir()

	root := docmodel.SourceNode{Kind: docmodel.KindDir, RelativePath: "", Depth: 0}
	file := docmodel.SourceNode{Kind: docmodel.KindFile, RelativePath: "a.go", Depth: 1, Name: "a.go"}
	plan := &treewalker.Plan{ByDepth: map[int][]docmodel.SourceNode{
		0: {root},
		1: {file},
	}}
	plan.Stats.TotalFiles = 1
	plan.Stats.TotalDirs = 1

	if err := os.WriteFile(filepath.Join(docsRoot, "_dir_summary.md"), []byte("# root\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(docsRoot, "a.go.md"), []byte("# a.go\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cp, err := checkpoint.LoadOrInit(docsRoot)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}

	if err := Run(context.Background(), docsRoot, "demo", plan, cp, noEndpointLLM{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !cp.IsAPIDocCompleted() {
		t.Fatal("expected api doc completed flag set even when no endpoints were found")
	}
	if _, err := os.Stat(filepath.Join(docsRoot, docmodel.APIDocName)); !os.IsNotExist(err) {
		t.Fatalf("expected no %s to be written, err=%v", docmodel.APIDocName, err)
	}
}
